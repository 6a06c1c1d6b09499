package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"time"

	"bloxstore/internal/models"
	"bloxstore/internal/repositories"

	"github.com/sourcegraph/conc"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileService reads and writes shopper profiles in the remote store.
// Writes of the cart and wishlist snapshots are debounced per user and list.
type ProfileService struct {
	repo      repositories.ProfileRepository
	debouncer *Debouncer
	suffix    func() int
	async     conc.WaitGroup
}

// NewProfileService creates a ProfileService whose snapshot writes wait out the given window.
func NewProfileService(repo repositories.ProfileRepository, window time.Duration) *ProfileService {
	return &ProfileService{
		repo:      repo,
		debouncer: NewDebouncer(window),
		suffix:    func() int { return 1000 + rand.IntN(9000) },
	}
}

// FetchProfile returns the profile of userID, or ErrProfileNotFound.
func (s *ProfileService) FetchProfile(ctx context.Context, userID string) (*models.Profile, error) {
	p, err := s.repo.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile %s: %w", userID, err)
	}
	return p, nil
}

// DefaultUsername names a profile whose account carries neither a username nor an email local part.
const DefaultUsername = "Player"

// DraftProfile builds the profile created for an account on its first sign-in.
func DraftProfile(account *models.Account, admin bool) models.Profile {
	username := account.Username
	if username == "" {
		username = account.Email
		if at := strings.IndexByte(username, '@'); at >= 0 {
			username = username[:at]
		}
	}
	if username == "" {
		username = DefaultUsername
	}
	role := models.RoleUser
	if admin {
		role = models.RoleAdmin
	}
	return models.Profile{
		ID:        account.ID,
		Username:  username,
		Email:     account.Email,
		Role:      role,
		Cart:      []models.CartItem{},
		Wishlist:  []string{},
		CreatedAt: time.Now(),
	}
}

// CreateProfile upserts draft. A username collision is retried once with a numeric
// suffix. If the store still refuses, the draft itself is returned so the session can
// proceed with a local stand-in.
func (s *ProfileService) CreateProfile(ctx context.Context, draft models.Profile) *models.Profile {
	p := draft
	err := s.repo.Upsert(ctx, &p)
	if errors.Is(err, repositories.ErrDuplicateKey) {
		p.Username = fmt.Sprintf("%s_%d", draft.Username, s.suffix())
		err = s.repo.Upsert(ctx, &p)
	}
	if err != nil {
		log.Printf("profile: create %s failed, continuing with local profile: %v", draft.ID, err)
		stand := draft
		return &stand
	}
	return &p
}

// UpdateProfile applies patch to the profile of userID. Failures are logged and
// reported but never retried.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) error {
	if patch.IsEmpty() {
		return nil
	}
	if err := s.repo.Update(ctx, userID, patch); err != nil {
		log.Printf("profile: update %s failed: %v", userID, err)
		return err
	}
	return nil
}

// UpdateProfileAsync runs UpdateProfile in the background. Wait blocks until it returns.
func (s *ProfileService) UpdateProfileAsync(userID string, patch models.ProfilePatch) {
	s.async.Go(func() {
		_ = s.UpdateProfile(context.Background(), userID, patch)
	})
}

func cartKey(userID string) string     { return "cart:" + userID }
func wishlistKey(userID string) string { return "wishlist:" + userID }

// ScheduleCartSave writes the cart snapshot once the debounce window passes without
// another call for the same user.
func (s *ProfileService) ScheduleCartSave(userID string, cart []models.CartItem) {
	snapshot := append([]models.CartItem{}, cart...)
	s.debouncer.Trigger(cartKey(userID), func() {
		_ = s.UpdateProfile(context.Background(), userID, models.ProfilePatch{Cart: &snapshot})
	})
}

// ScheduleWishlistSave is the wishlist counterpart of ScheduleCartSave.
func (s *ProfileService) ScheduleWishlistSave(userID string, wishlist []string) {
	snapshot := append([]string{}, wishlist...)
	s.debouncer.Trigger(wishlistKey(userID), func() {
		_ = s.UpdateProfile(context.Background(), userID, models.ProfilePatch{Wishlist: &snapshot})
	})
}

// SaveSnapshot writes both lists immediately, superseding any debounced write.
// It returns once both writes have finished.
func (s *ProfileService) SaveSnapshot(ctx context.Context, userID string, cart []models.CartItem, wishlist []string) {
	s.debouncer.Cancel()
	cartCopy := append([]models.CartItem{}, cart...)
	wishlistCopy := append([]string{}, wishlist...)

	var wg conc.WaitGroup
	wg.Go(func() {
		_ = s.UpdateProfile(ctx, userID, models.ProfilePatch{Cart: &cartCopy})
	})
	wg.Go(func() {
		_ = s.UpdateProfile(ctx, userID, models.ProfilePatch{Wishlist: &wishlistCopy})
	})
	wg.Wait()
}

// PendingWrites returns the number of snapshot writes waiting for their window.
func (s *ProfileService) PendingWrites() int {
	return s.debouncer.Pending()
}

// Flush performs pending snapshot writes now.
func (s *ProfileService) Flush() {
	s.debouncer.Flush()
}

// Wait blocks until background writes already started have returned.
func (s *ProfileService) Wait() {
	s.debouncer.Wait()
	s.async.Wait()
}
