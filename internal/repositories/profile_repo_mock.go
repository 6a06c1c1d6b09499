package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bloxstore/internal/models"
)

// MockProfileRepository is an in-memory implementation of ProfileRepository.
// It enforces username uniqueness like the hosted store.
type MockProfileRepository struct {
	profiles map[string]models.Profile
	mu       sync.RWMutex
}

// NewMockProfileRepository creates a new instance of MockProfileRepository.
func NewMockProfileRepository(profiles ...models.Profile) *MockProfileRepository {
	r := &MockProfileRepository{
		profiles: make(map[string]models.Profile),
	}
	for _, p := range profiles {
		r.profiles[p.ID] = cloneProfile(p)
	}
	return r
}

func cloneProfile(p models.Profile) models.Profile {
	p.Cart = append([]models.CartItem{}, p.Cart...)
	p.Wishlist = append([]string{}, p.Wishlist...)
	return p
}

// GetByID returns a profile by its ID.
func (r *MockProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[id]
	if !ok {
		return nil, fmt.Errorf("profile with ID %s: %w", id, ErrNotFound)
	}
	out := cloneProfile(p)
	return &out, nil
}

// GetAll returns all profiles.
func (r *MockProfileRepository) GetAll(ctx context.Context) ([]models.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		list = append(list, cloneProfile(p))
	}
	return list, nil
}

// Upsert creates or replaces a profile.
func (r *MockProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, p := range r.profiles {
		if id != profile.ID && p.Username == profile.Username {
			return fmt.Errorf("username %s: %w", profile.Username, ErrDuplicateKey)
		}
	}
	if existing, ok := r.profiles[profile.ID]; ok {
		profile.CreatedAt = existing.CreatedAt
	} else if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now()
	}
	r.profiles[profile.ID] = cloneProfile(*profile)
	return nil
}

// Update applies the non-nil fields of patch.
func (r *MockProfileRepository) Update(ctx context.Context, id string, patch models.ProfilePatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[id]
	if !ok {
		return fmt.Errorf("profile with ID %s: %w", id, ErrNotFound)
	}
	if patch.Cart != nil {
		p.Cart = append([]models.CartItem{}, (*patch.Cart)...)
	}
	if patch.Wishlist != nil {
		p.Wishlist = append([]string{}, (*patch.Wishlist)...)
	}
	if patch.Role != nil {
		p.Role = *patch.Role
	}
	r.profiles[id] = p
	return nil
}
