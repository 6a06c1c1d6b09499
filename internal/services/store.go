package services

import (
	"errors"
	"log"
	"sync"

	"bloxstore/internal/models"
	"bloxstore/internal/storage"

	"github.com/shopspring/decimal"
)

var (
	ErrDuplicateCartItem = errors.New("product already in cart")
	ErrOutOfStock        = errors.New("product out of stock")
)

// SyncPhase tells whether list mutations are mirrored to the remote profile.
type SyncPhase int

const (
	// PhaseIdle: anonymous, lists persist locally only.
	PhaseIdle SyncPhase = iota
	// PhaseHydrating: a merge with the server snapshot is being applied and
	// nothing is written remotely.
	PhaseHydrating
	// PhaseSyncing: every mutation schedules a debounced remote write.
	PhaseSyncing
)

func (p SyncPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseHydrating:
		return "hydrating"
	case PhaseSyncing:
		return "syncing"
	}
	return "unknown"
}

// SnapshotSyncer receives the lists to be mirrored remotely.
type SnapshotSyncer interface {
	ScheduleCartSave(userID string, cart []models.CartItem)
	ScheduleWishlistSave(userID string, wishlist []string)
}

// NoticeLevel classifies a user-facing notice.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a message for the shopper. Blocking notices must be acknowledged.
type Notice struct {
	Key      string      `json:"key"`
	Text     string      `json:"text"`
	Level    NoticeLevel `json:"level"`
	Blocking bool        `json:"blocking,omitempty"`
}

// Store is the single source of truth for the shopper's cart, wishlist, session
// and display preferences. Every list mutation is persisted locally right away and,
// while syncing, mirrored to the remote profile through the syncer.
type Store struct {
	local  storage.Store
	syncer SnapshotSyncer

	mu            sync.Mutex
	cart          []models.CartItem
	wishlist      []string
	language      Language
	session       models.Session
	phase         SyncPhase
	notices       []Notice
	notifications []models.Notification
}

// NewStore loads the persisted lists and language from local.
func NewStore(local storage.Store, syncer SnapshotSyncer) *Store {
	s := &Store{
		local:    local,
		syncer:   syncer,
		cart:     storage.Load(local, storage.CartKey, []models.CartItem{}),
		wishlist: storage.Load(local, storage.WishlistKey, []string{}),
		language: storage.Load(local, storage.LanguageKey, DefaultLanguage),
	}
	if !s.language.Valid() {
		s.language = DefaultLanguage
	}
	if s.cart == nil {
		s.cart = []models.CartItem{}
	}
	if s.wishlist == nil {
		s.wishlist = []string{}
	}
	return s
}

func (s *Store) persistCart() {
	if err := storage.Save(s.local, storage.CartKey, s.cart); err != nil {
		log.Printf("store: failed to persist cart: %v", err)
	}
	if s.phase == PhaseSyncing && s.session.IsAuthenticated() && s.syncer != nil {
		s.syncer.ScheduleCartSave(s.session.UserID, s.cart)
	}
}

func (s *Store) persistWishlist() {
	if err := storage.Save(s.local, storage.WishlistKey, s.wishlist); err != nil {
		log.Printf("store: failed to persist wishlist: %v", err)
	}
	if s.phase == PhaseSyncing && s.session.IsAuthenticated() && s.syncer != nil {
		s.syncer.ScheduleWishlistSave(s.session.UserID, s.wishlist)
	}
}

func (s *Store) inCart(id string) bool {
	for _, item := range s.cart {
		if item.ID == id {
			return true
		}
	}
	return false
}

// AddToCart appends a price snapshot of p. Out-of-stock products and products
// already in the cart are refused with a notice.
func (s *Store) AddToCart(p models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.IsOutOfStock() {
		s.notify(MsgCartOutOfStock, NoticeError, false)
		return ErrOutOfStock
	}
	if s.inCart(p.ID) {
		s.notify(MsgCartDuplicate, NoticeInfo, false)
		return ErrDuplicateCartItem
	}
	s.cart = append(s.cart, p.Snapshot())
	s.persistCart()
	return nil
}

// RemoveFromCart drops every entry with id. Unknown ids are a no-op.
func (s *Store) RemoveFromCart(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.CartItem, 0, len(s.cart))
	for _, item := range s.cart {
		if item.ID != id {
			next = append(next, item)
		}
	}
	s.cart = next
	s.persistCart()
}

// ToggleWishlist adds id to the wishlist or removes it, and reports membership afterwards.
func (s *Store) ToggleWishlist(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]string, 0, len(s.wishlist)+1)
	found := false
	for _, w := range s.wishlist {
		if w == id {
			found = true
			continue
		}
		next = append(next, w)
	}
	if !found {
		next = append(next, id)
	}
	s.wishlist = next
	s.persistWishlist()
	return !found
}

// ClearCart empties the cart.
func (s *Store) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = []models.CartItem{}
	s.persistCart()
}

func (s *Store) Cart() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CartItem{}, s.cart...)
}

func (s *Store) Wishlist() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.wishlist...)
}

// InCart reports whether a product is in the cart.
func (s *Store) InCart(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inCart(id)
}

// InWishlist reports whether a product is wishlisted.
func (s *Store) InWishlist(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.wishlist {
		if w == id {
			return true
		}
	}
	return false
}

// Total sums the cart prices.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CartTotal(s.cart)
}

// Snapshot returns copies of both lists taken under one lock.
func (s *Store) Snapshot() ([]models.CartItem, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CartItem{}, s.cart...), append([]string{}, s.wishlist...)
}

// Hydrate starts the session and merges the server snapshot into the local lists.
// The merge result is persisted locally only; remote writes resume with the next
// mutation.
func (s *Store) Hydrate(session models.Session, serverCart []models.CartItem, serverWishlist []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = session
	s.phase = PhaseHydrating
	s.cart = MergeCart(s.cart, serverCart)
	s.wishlist = MergeWishlist(s.wishlist, serverWishlist)
	s.persistCart()
	s.persistWishlist()
	s.phase = PhaseSyncing
}

// EndSession forgets the signed-in identity and its notifications. The lists stay.
func (s *Store) EndSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = models.Session{}
	s.phase = PhaseIdle
	s.notifications = nil
}

// Reset ends the session and wipes both lists, locally persisted copies included.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = models.Session{}
	s.phase = PhaseIdle
	s.notifications = nil
	s.cart = []models.CartItem{}
	s.wishlist = []string{}
	for _, key := range []string{storage.CartKey, storage.WishlistKey} {
		if err := s.local.Delete(key); err != nil {
			log.Printf("store: failed to clear %s: %v", key, err)
		}
	}
}

func (s *Store) Session() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

func (s *Store) Phase() SyncPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Store) Language() Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// SetLanguage changes and persists the display language.
func (s *Store) SetLanguage(lang Language) error {
	if !lang.Valid() {
		return errors.New("unsupported language " + string(lang))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = lang
	return storage.Save(s.local, storage.LanguageKey, lang)
}

func (s *Store) notify(key string, level NoticeLevel, blocking bool) {
	s.notices = append(s.notices, Notice{
		Key:      key,
		Text:     Message(s.language, key),
		Level:    level,
		Blocking: blocking,
	})
}

// Notify queues a notice rendered in the current language.
func (s *Store) Notify(key string, level NoticeLevel, blocking bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify(key, level, blocking)
}

// TakeNotices returns and clears the queued notices.
func (s *Store) TakeNotices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notices
	s.notices = nil
	return out
}

// SetNotifications caches the notifications of userID if that user is still signed in.
func (s *Store) SetNotifications(userID string, list []models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.UserID != userID {
		return
	}
	s.notifications = append([]models.Notification{}, list...)
}

func (s *Store) Notifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification{}, s.notifications...)
}

// MarkNotificationRead flags a cached notification as read.
func (s *Store) MarkNotificationRead(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].IsRead = true
		}
	}
}
