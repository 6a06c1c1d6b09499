package services_test

import (
	"encoding/json"
	"sync"
	"testing"

	"bloxstore/internal/models"
	"bloxstore/internal/services"
	"bloxstore/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSyncer struct {
	mu        sync.Mutex
	carts     [][]models.CartItem
	wishlists [][]string
}

func (r *recordingSyncer) ScheduleCartSave(userID string, cart []models.CartItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts = append(r.carts, append([]models.CartItem{}, cart...))
}

func (r *recordingSyncer) ScheduleWishlistSave(userID string, wishlist []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wishlists = append(r.wishlists, append([]string{}, wishlist...))
}

func (r *recordingSyncer) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.carts), len(r.wishlists)
}

func product(id string, price int64) models.Product {
	return models.Product{
		ID:            id,
		Name:          "product " + id,
		Price:         decimal.NewFromInt(price),
		Type:          models.ProductStyle,
		InStock:       true,
		StockQuantity: 3,
	}
}

func TestStoreAddToCart(t *testing.T) {
	local := storage.NewMemoryStore()
	s := services.NewStore(local, nil)

	require.NoError(t, s.AddToCart(product("p1", 100)))
	assert.True(t, s.InCart("p1"))

	err := s.AddToCart(product("p1", 100))
	assert.ErrorIs(t, err, services.ErrDuplicateCartItem)
	assert.Len(t, s.Cart(), 1)

	notices := s.TakeNotices()
	if assert.Len(t, notices, 1) {
		assert.Equal(t, services.MsgCartDuplicate, notices[0].Key)
	}
	assert.Empty(t, s.TakeNotices())
}

func TestStoreRefusesOutOfStock(t *testing.T) {
	s := services.NewStore(storage.NewMemoryStore(), nil)

	sold := product("p1", 100)
	sold.StockQuantity = 0
	assert.ErrorIs(t, s.AddToCart(sold), services.ErrOutOfStock)

	off := product("p2", 100)
	off.InStock = false
	assert.ErrorIs(t, s.AddToCart(off), services.ErrOutOfStock)

	account := product("p3", 100)
	account.Type = models.ProductAccount
	account.StockQuantity = 0
	assert.NoError(t, s.AddToCart(account), "accounts only honour the in-stock flag")

	assert.Len(t, s.Cart(), 1)
}

func TestStoreLocalMirrorNeverDrifts(t *testing.T) {
	local := storage.NewMemoryStore()
	s := services.NewStore(local, nil)

	steps := []func(){
		func() { _ = s.AddToCart(product("a", 1)) },
		func() { _ = s.AddToCart(product("b", 2)) },
		func() { s.ToggleWishlist("a") },
		func() { s.RemoveFromCart("a") },
		func() { s.ToggleWishlist("c") },
		func() { s.ToggleWishlist("a") },
		func() { s.ClearCart() },
	}
	for _, step := range steps {
		step()
		assertMirrored(t, local, storage.CartKey, s.Cart())
		assertMirrored(t, local, storage.WishlistKey, s.Wishlist())
	}
}

func assertMirrored(t *testing.T, local storage.Store, key string, want interface{}) {
	t.Helper()
	raw, ok, err := local.Get(key)
	require.NoError(t, err)
	if !ok {
		raw = []byte("[]")
	}
	expected, err := json.Marshal(want)
	require.NoError(t, err)
	assert.JSONEq(t, string(expected), string(raw))
}

func TestStoreReloadsPersistedState(t *testing.T) {
	local := storage.NewMemoryStore()
	s := services.NewStore(local, nil)
	require.NoError(t, s.AddToCart(product("a", 100)))
	s.ToggleWishlist("w")
	require.NoError(t, s.SetLanguage(services.LangEnglish))

	reloaded := services.NewStore(local, nil)
	assert.Equal(t, []string{"a"}, ids(reloaded.Cart()))
	assert.True(t, reloaded.Cart()[0].Price.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, []string{"w"}, reloaded.Wishlist())
	assert.Equal(t, services.LangEnglish, reloaded.Language())
}

func TestStoreToleratesCorruptLocalState(t *testing.T) {
	local := storage.NewMemoryStore()
	require.NoError(t, local.Set(storage.CartKey, []byte("{not json")))
	require.NoError(t, local.Set(storage.LanguageKey, []byte(`"fr"`)))

	s := services.NewStore(local, nil)
	assert.Empty(t, s.Cart())
	assert.Equal(t, services.DefaultLanguage, s.Language())
}

func TestStoreHydrationDoesNotWriteRemotely(t *testing.T) {
	syncer := &recordingSyncer{}
	s := services.NewStore(storage.NewMemoryStore(), syncer)
	require.NoError(t, s.AddToCart(product("a", 1)))

	carts, wishlists := syncer.counts()
	assert.Zero(t, carts, "anonymous mutations stay local")
	assert.Zero(t, wishlists)

	s.Hydrate(models.Session{UserID: "u1", Username: "sam"},
		[]models.CartItem{item("b", 2)}, []string{"w1"})

	assert.Equal(t, services.PhaseSyncing, s.Phase())
	assert.Equal(t, []string{"a", "b"}, ids(s.Cart()))
	assert.Equal(t, []string{"w1"}, s.Wishlist())
	carts, wishlists = syncer.counts()
	assert.Zero(t, carts, "the merge result is not pushed back")
	assert.Zero(t, wishlists)

	s.ToggleWishlist("w2")
	require.NoError(t, s.AddToCart(product("c", 3)))
	carts, wishlists = syncer.counts()
	assert.Equal(t, 1, carts)
	assert.Equal(t, 1, wishlists)
	assert.Equal(t, []string{"a", "b", "c"}, ids(syncer.carts[0]))
}

func TestStoreEndSessionAndReset(t *testing.T) {
	local := storage.NewMemoryStore()
	s := services.NewStore(local, &recordingSyncer{})
	s.Hydrate(models.Session{UserID: "u1"}, []models.CartItem{item("b", 2)}, []string{"w"})
	s.SetNotifications("u1", []models.Notification{{ID: "n1"}})
	s.SetNotifications("someone-else", []models.Notification{{ID: "n2"}})
	assert.Len(t, s.Notifications(), 1)

	s.EndSession()
	assert.False(t, s.Session().IsAuthenticated())
	assert.Equal(t, services.PhaseIdle, s.Phase())
	assert.Empty(t, s.Notifications())
	assert.Len(t, s.Cart(), 1, "lists survive a session ending")

	s.Reset()
	assert.Empty(t, s.Cart())
	assert.Empty(t, s.Wishlist())
	_, ok, err := local.Get(storage.CartKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreTotal(t *testing.T) {
	s := services.NewStore(storage.NewMemoryStore(), nil)
	require.NoError(t, s.AddToCart(product("a", 100)))
	require.NoError(t, s.AddToCart(product("b", 0)))
	require.NoError(t, s.AddToCart(product("c", 50)))
	assert.True(t, s.Total().Equal(decimal.NewFromInt(150)))
}
