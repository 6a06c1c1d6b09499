package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"bloxstore/internal/models"

	"github.com/sourcegraph/conc"
)

// AuthState is the observer's view of the shopper's session.
type AuthState int

const (
	StateUnauthenticated AuthState = iota
	StateAuthenticating
	StateAuthenticated
	StateBanned
)

func (s AuthState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateBanned:
		return "banned"
	}
	return "unknown"
}

// SessionAuth is the part of the auth collaborator the observer drives.
type SessionAuth interface {
	SignOut(ctx context.Context) error
	Current() *models.Account
}

// SessionObserver reacts to auth events: it resolves the shopper's profile, rejects
// banned accounts and hydrates the Store with the server snapshot.
type SessionObserver struct {
	auth          SessionAuth
	profiles      *ProfileService
	notifications *NotificationService
	store         *Store
	adminEmail    string

	mu    sync.Mutex
	state AuthState

	background conc.WaitGroup
}

// NewSessionObserver creates a SessionObserver. adminEmail is the reserved operator
// address; empty disables the match.
func NewSessionObserver(auth SessionAuth, profiles *ProfileService, notifications *NotificationService, store *Store, adminEmail string) *SessionObserver {
	return &SessionObserver{
		auth:          auth,
		profiles:      profiles,
		notifications: notifications,
		store:         store,
		adminEmail:    strings.TrimSpace(adminEmail),
	}
}

func (o *SessionObserver) State() AuthState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *SessionObserver) setState(s AuthState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = s
}

func (o *SessionObserver) isAdminEmail(email string) bool {
	return o.adminEmail != "" && strings.EqualFold(strings.TrimSpace(email), o.adminEmail)
}

// Run handles events until ctx is done or events is closed.
func (o *SessionObserver) Run(ctx context.Context, events <-chan AuthEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			o.Handle(ctx, ev)
		}
	}
}

// Handle processes one auth event synchronously.
func (o *SessionObserver) Handle(ctx context.Context, ev AuthEvent) {
	switch ev.Type {
	case EventSignedIn:
		if ev.Account == nil {
			log.Printf("session: sign-in event without an account, ignoring")
			return
		}
		o.signedIn(ctx, ev.Account)
	case EventSignedOut:
		o.signedOut()
	}
}

func (o *SessionObserver) signedIn(ctx context.Context, account *models.Account) {
	o.setState(StateAuthenticating)
	admin := o.isAdminEmail(account.Email)

	profile, err := o.profiles.FetchProfile(ctx, account.ID)
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		log.Printf("session: %v", err)
	}
	if profile == nil {
		profile = o.profiles.CreateProfile(ctx, DraftProfile(account, admin))
	}

	if profile.IsBanned {
		o.setState(StateBanned)
		if err := o.auth.SignOut(ctx); err != nil {
			log.Printf("session: failed to sign out banned account %s: %v", account.ID, err)
		}
		o.store.EndSession()
		o.store.Notify(MsgAccountBanned, NoticeError, true)
		return
	}

	// The event may be stale: a logout can run before a queued sign-in is handled.
	if cur := o.auth.Current(); cur == nil || cur.ID != account.ID {
		log.Printf("session: account %s is no longer signed in, skipping hydration", account.ID)
		o.setState(StateUnauthenticated)
		return
	}

	if admin && profile.Role != models.RoleAdmin {
		role := models.RoleAdmin
		o.profiles.UpdateProfileAsync(profile.ID, models.ProfilePatch{Role: &role})
		profile.Role = models.RoleAdmin
	}

	o.setState(StateAuthenticated)
	o.store.Hydrate(models.SessionFromProfile(profile), profile.Cart, profile.Wishlist)
	o.loadNotifications(profile.ID)
}

func (o *SessionObserver) loadNotifications(userID string) {
	if o.notifications == nil {
		return
	}
	o.background.Go(func() {
		list, err := o.notifications.ForUser(context.Background(), userID)
		if err != nil {
			log.Printf("session: %v", err)
			return
		}
		o.store.SetNotifications(userID, list)
	})
}

func (o *SessionObserver) signedOut() {
	o.setState(StateUnauthenticated)
	o.store.EndSession()
}

// Logout writes the final snapshot of both lists, signs out and wipes local state.
func (o *SessionObserver) Logout(ctx context.Context) error {
	session := o.store.Session()
	if session.IsAuthenticated() {
		cart, wishlist := o.store.Snapshot()
		o.profiles.SaveSnapshot(ctx, session.UserID, cart, wishlist)
	}
	err := o.auth.SignOut(ctx)
	if err != nil {
		log.Printf("session: sign out failed: %v", err)
	}
	o.store.Reset()
	o.setState(StateUnauthenticated)
	return err
}

// Wait blocks until background work started by the observer has returned.
func (o *SessionObserver) Wait() {
	o.background.Wait()
	o.profiles.Wait()
}
