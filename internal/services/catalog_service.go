package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"bloxstore/internal/models"
	"bloxstore/internal/repositories"

	"golang.org/x/sync/errgroup"
)

// ErrBackendTablesMissing means the remote store is reachable but not set up.
var ErrBackendTablesMissing = errors.New("backend tables are missing")

// DefaultBootstrapTimeout bounds the initial bulk load.
const DefaultBootstrapTimeout = 15 * time.Second

// BackendState describes where the loaded catalog came from.
type BackendState string

const (
	BackendLoading     BackendState = "LOADING"
	BackendReady       BackendState = "READY"
	BackendFallback    BackendState = "FALLBACK"
	BackendUnavailable BackendState = "TABLES_MISSING"
)

// Catalog is the result of the bulk load.
type Catalog struct {
	State    BackendState        `json:"state"`
	Products []models.Product    `json:"products"`
	Orders   []models.Order      `json:"orders"`
	Settings models.SiteSettings `json:"settings"`
	Users    []models.Profile    `json:"users"`
}

func fallbackCatalog(state BackendState) Catalog {
	return Catalog{
		State:    state,
		Products: DefaultProducts(),
		Orders:   []models.Order{},
		Settings: DefaultSettings(),
		Users:    []models.Profile{},
	}
}

// CatalogService loads products, orders, settings and profiles in one bulk read.
type CatalogService struct {
	products repositories.ProductRepository
	orders   repositories.OrderRepository
	settings repositories.SettingsRepository
	profiles repositories.ProfileRepository
	timeout  time.Duration

	mu      sync.RWMutex
	catalog Catalog
}

// NewCatalogService creates a CatalogService. A non-positive timeout means the default.
func NewCatalogService(products repositories.ProductRepository, orders repositories.OrderRepository,
	settings repositories.SettingsRepository, profiles repositories.ProfileRepository, timeout time.Duration) *CatalogService {
	if timeout <= 0 {
		timeout = DefaultBootstrapTimeout
	}
	return &CatalogService{
		products: products,
		orders:   orders,
		settings: settings,
		profiles: profiles,
		timeout:  timeout,
		catalog:  fallbackCatalog(BackendLoading),
	}
}

// Bootstrap runs the bulk load against the timeout. Missing tables are reported as
// ErrBackendTablesMissing; any other failure, the timeout included, silently falls
// back to the bundled catalog. The returned catalog is always usable.
func (s *CatalogService) Bootstrap(ctx context.Context) (Catalog, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		products []models.Product
		orders   []models.Order
		settings *models.SiteSettings
		users    []models.Profile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, err = s.products.GetAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		orders, err = s.orders.GetAll(gctx)
		return err
	})
	g.Go(func() error {
		st, err := s.settings.Get(gctx)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		settings = st
		return err
	})
	g.Go(func() (err error) {
		users, err = s.profiles.GetAll(gctx)
		return err
	})

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	switch {
	case errors.Is(err, repositories.ErrMissingTable):
		c := fallbackCatalog(BackendUnavailable)
		s.set(c)
		return c, fmt.Errorf("%w: %v", ErrBackendTablesMissing, err)
	case err != nil:
		log.Printf("catalog: bulk load failed, serving bundled data: %v", err)
		c := fallbackCatalog(BackendFallback)
		s.set(c)
		return c, nil
	}

	c := Catalog{
		State:    BackendReady,
		Products: MergeProducts(DefaultProducts(), products),
		Orders:   orders,
		Settings: DefaultSettings(),
		Users:    users,
	}
	if settings != nil {
		c.Settings = *settings
	}
	if c.Orders == nil {
		c.Orders = []models.Order{}
	}
	if c.Users == nil {
		c.Users = []models.Profile{}
	}
	s.set(c)
	return c, nil
}

func (s *CatalogService) set(c Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = c
}

// Current returns the last loaded catalog.
func (s *CatalogService) Current() Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

func (s *CatalogService) Products() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Product{}, s.catalog.Products...)
}

// Product looks a product up by id.
func (s *CatalogService) Product(id string) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.catalog.Products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

func (s *CatalogService) Settings() models.SiteSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Settings
}
