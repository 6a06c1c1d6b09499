package services_test

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"bloxstore/internal/models"
	"bloxstore/internal/repositories"
	"bloxstore/internal/services"
	"bloxstore/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockClipboard struct {
	mock.Mock
}

func (m *MockClipboard) WriteText(text string) error {
	return m.Called(text).Error(0)
}

func newCheckout(t *testing.T, cart ...models.Product) (*services.CheckoutService, *services.Store, *repositories.MockOrderRepository) {
	t.Helper()
	store := services.NewStore(storage.NewMemoryStore(), nil)
	for _, p := range cart {
		require.NoError(t, store.AddToCart(p))
	}
	orders := repositories.NewMockOrderRepository()
	svc := services.NewCheckoutService(store, services.NewOrderService(orders, nil, nil))
	return svc, store, orders
}

var validDetails = services.CheckoutDetails{
	RobloxUsername: "blox_fan",
	Country:        "EG",
	Email:          "fan@example.com",
}

func TestCheckoutPlacesOneOrderPerLine(t *testing.T) {
	svc, store, orders := newCheckout(t, product("x", 100), product("y", 0))
	svc.Open()

	summary, err := svc.Submit(context.Background(), validDetails)
	require.NoError(t, err)
	assert.Equal(t, services.StepPlatform, svc.Step())
	assert.Empty(t, store.Cart(), "the cart is cleared at submission")

	results := svc.Wait()
	assert.Len(t, results, 2)
	for _, r := range results {
		assert.NoError(t, r.Err)
	}
	assert.Zero(t, svc.InFlight())

	placed, err := orders.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, placed, 2)
	for _, o := range placed {
		assert.Equal(t, models.StatusPendingPayment, o.Status)
		assert.Equal(t, "Guest", o.UserName)
		assert.Nil(t, o.UserID)
		assert.Equal(t, "fan@example.com", o.UserEmail)
		assert.Equal(t, "blox_fan", o.RobloxUsername)
		assert.Regexp(t, regexp.MustCompile(`^ORD-[0-9A-F]{9}$`), o.ID)
	}

	text := summary.Text(services.LangEnglish)
	assert.Contains(t, text, "- product x (100 R$)")
	assert.Contains(t, text, "- product y (custom)")
	assert.NotContains(t, text, "(0 R$)")
	assert.Contains(t, text, "Total: 100 R$")
	assert.Equal(t, text, summary.Text(services.LangEnglish))

	ar := summary.Text(services.LangArabic)
	assert.Contains(t, ar, "حسب الطلب")
}

func TestCheckoutMissingFieldCreatesNothing(t *testing.T) {
	svc, store, orders := newCheckout(t, product("x", 100))
	svc.Open()

	details := validDetails
	details.Country = "  "
	_, err := svc.Submit(context.Background(), details)

	assert.ErrorIs(t, err, services.ErrMissingCheckoutFields)
	assert.Equal(t, services.StepDetails, svc.Step())
	assert.Len(t, store.Cart(), 1)
	assert.Empty(t, svc.Wait())
	placed, err := orders.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, placed)

	notices := store.TakeNotices()
	if assert.Len(t, notices, 1) {
		assert.Equal(t, services.MsgCheckoutMissingFields, notices[0].Key)
	}
}

func TestCheckoutUsesSessionIdentity(t *testing.T) {
	svc, store, orders := newCheckout(t, product("x", 100))
	store.Hydrate(models.Session{UserID: "u1", Username: "sam", Email: "sam@example.com"}, nil, nil)

	prefilled := svc.Open()
	assert.Equal(t, "sam@example.com", prefilled.Email)

	details := validDetails
	details.Email = ""
	_, err := svc.Submit(context.Background(), details)
	require.NoError(t, err)
	svc.Wait()

	mine, err := orders.GetByUserID(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "sam", mine[0].UserName)
	assert.Equal(t, "sam@example.com", mine[0].UserEmail)
}

func TestCheckoutZeroTotalIsToBeDetermined(t *testing.T) {
	svc, _, _ := newCheckout(t, product("y", 0))
	svc.Open()
	summary, err := svc.Submit(context.Background(), validDetails)
	require.NoError(t, err)
	svc.Wait()

	assert.True(t, strings.HasSuffix(summary.Text(services.LangEnglish), "Total: to be determined"))
}

func TestCheckoutRequiresOpenDialog(t *testing.T) {
	svc, _, _ := newCheckout(t, product("x", 100))
	_, err := svc.Submit(context.Background(), validDetails)
	assert.ErrorIs(t, err, services.ErrCheckoutStep)

	svc.Open()
	svc.Close()
	assert.Equal(t, services.StepClosed, svc.Step())
	_, err = svc.Submit(context.Background(), validDetails)
	assert.ErrorIs(t, err, services.ErrCheckoutStep)
}

func TestCheckoutEmptyCart(t *testing.T) {
	svc, store, orders := newCheckout(t)
	svc.Open()
	_, err := svc.Submit(context.Background(), validDetails)
	assert.ErrorIs(t, err, services.ErrEmptyCart)
	assert.Equal(t, services.StepDetails, svc.Step())
	_, ok := svc.Summary()
	assert.False(t, ok)
	assert.Zero(t, svc.InFlight())
	placed, err := orders.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, placed)

	notices := store.TakeNotices()
	if assert.Len(t, notices, 1) {
		assert.Equal(t, services.MsgCheckoutMissingFields, notices[0].Key)
		assert.Equal(t, services.NoticeError, notices[0].Level)
	}
}

func TestCheckoutPersistenceFailureIsOnlyReported(t *testing.T) {
	store := services.NewStore(storage.NewMemoryStore(), nil)
	require.NoError(t, store.AddToCart(product("x", 100)))
	failing := new(MockOrderCreator)
	failing.On("CreateOrder", mock.Anything, mock.AnythingOfType("*models.Order")).Return(errors.New("offline")).Once()
	svc := services.NewCheckoutService(store, failing)
	svc.Open()

	_, err := svc.Submit(context.Background(), validDetails)
	require.NoError(t, err)
	results := svc.Wait()
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
	assert.Equal(t, services.StepPlatform, svc.Step())
	failing.AssertExpectations(t)
}

func TestCheckoutCopy(t *testing.T) {
	svc, _, _ := newCheckout(t, product("x", 100))
	cb := new(MockClipboard)

	_, err := svc.Copy(cb)
	assert.ErrorIs(t, err, services.ErrNoSummary)

	svc.Open()
	summary, err := svc.Submit(context.Background(), validDetails)
	require.NoError(t, err)
	svc.Wait()

	cb.On("WriteText", summary.Text(services.DefaultLanguage)).Return(nil).Once()
	ok, err := svc.Copy(cb)
	require.NoError(t, err)
	assert.True(t, ok)

	cb.On("WriteText", mock.Anything).Return(errors.New("denied")).Once()
	ok, err = svc.Copy(cb)
	require.NoError(t, err)
	assert.False(t, ok)
	cb.AssertExpectations(t)
}

type MockOrderCreator struct {
	mock.Mock
}

func (m *MockOrderCreator) CreateOrder(ctx context.Context, order *models.Order) error {
	return m.Called(ctx, order).Error(0)
}
