package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bloxstore/internal/handlers"
	"bloxstore/internal/middleware"
	"bloxstore/internal/models"
	"bloxstore/internal/repositories"
	"bloxstore/internal/services"
	"bloxstore/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const adminEmail = "admin@bloxon.test"

type testApp struct {
	app      *fiber.App
	store    *services.Store
	observer *services.SessionObserver
	checkout *services.CheckoutService
	orders   *repositories.GORMOrderRepository
	notifs   *repositories.GORMNotificationRepository
}

// setupApp wires a Fiber app over a file-backed SQLite database.
func setupApp(t *testing.T) *testApp {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "remote.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repositories.AutoMigrate(db))

	orderRepo := repositories.NewGORMOrderRepository(db)
	notificationRepo := repositories.NewGORMNotificationRepository(db)
	profiles := services.NewProfileService(repositories.NewGORMProfileRepository(db), 10*time.Millisecond)
	store := services.NewStore(storage.NewMemoryStore(), profiles)
	notifications := services.NewNotificationService(notificationRepo, 20)
	orders := services.NewOrderService(orderRepo, notifications, nil)
	catalog := services.NewCatalogService(repositories.NewGORMProductRepository(db), orderRepo,
		repositories.NewGORMSettingsRepository(db), repositories.NewGORMProfileRepository(db), time.Second)
	_, err = catalog.Bootstrap(context.Background())
	require.NoError(t, err)
	checkout := services.NewCheckoutService(store, orders)
	authService := services.NewAuthService(repositories.NewGORMAccountRepository(db), "test_jwt_secret")
	observer := services.NewSessionObserver(authService, profiles, notifications, store, adminEmail)

	events, unsubscribe := authService.Subscribe()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		observer.Run(ctx, events)
	}()
	t.Cleanup(func() {
		cancel()
		unsubscribe()
		<-done
		checkout.Wait()
		observer.Wait()
	})

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(authService, observer, store).RegisterRoutes(apiV1)
	handlers.NewCatalogHandler(catalog).RegisterRoutes(apiV1)
	handlers.NewStorefrontHandler(store, catalog, observer, notifications).RegisterRoutes(apiV1)
	handlers.NewCheckoutHandler(checkout, store, catalog).RegisterRoutes(apiV1)
	orderHandler := handlers.NewOrderHandler(orders)
	orderHandler.RegisterRoutes(apiV1.Group("/orders", middleware.AuthRequired(authService)))
	orderHandler.RegisterAdminRoutes(apiV1.Group("/admin", middleware.AuthRequired(authService), middleware.AdminRequired(profiles)))

	return &testApp{
		app:      app,
		store:    store,
		observer: observer,
		checkout: checkout,
		orders:   orderRepo,
		notifs:   notificationRepo,
	}
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func (a *testApp) do(t *testing.T, method, path string, body interface{}, token string) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]interface{}
	_ = json.Unmarshal(raw, &decoded)
	return resp, decoded
}

// register signs up an account and waits until the observer has hydrated its session.
func (a *testApp) register(t *testing.T, email, username string) string {
	t.Helper()
	resp, body := a.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email":    email,
		"password": "password123",
		"username": username,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	require.Eventually(t, func() bool {
		return a.observer.State() == services.StateAuthenticated && strings.EqualFold(a.store.Session().Email, email)
	}, 2*time.Second, 10*time.Millisecond)
	return token
}

func TestAuthRegisterAndLogin(t *testing.T) {
	a := setupApp(t)
	a.register(t, "test@example.com", "testuser")
	assert.Equal(t, "testuser", a.store.Session().Username)

	// Duplicate registration
	resp, body := a.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email":    "test@example.com",
		"password": "password123",
	}, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, services.Message(services.DefaultLanguage, services.MsgAuthAlreadyRegistered), body["message"])

	// Validation
	resp, _ = a.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{"email": "not-an-email", "password": "x"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Wrong password, English messages
	resp, _ = a.do(t, http.MethodPut, "/api/v1/language", map[string]string{"language": "en"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = a.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "test@example.com",
		"password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Incorrect email or password", body["message"])

	resp, body = a.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "test@example.com",
		"password": "password123",
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["token"])
}

func TestStorefrontCart(t *testing.T) {
	a := setupApp(t)

	resp, body := a.do(t, http.MethodPost, "/api/v1/cart", map[string]string{"productId": "style-godhuman"}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.EqualValues(t, 1, body["count"])
	assert.EqualValues(t, 2500, body["total"])

	resp, _ = a.do(t, http.MethodPost, "/api/v1/cart", map[string]string{"productId": "style-godhuman"}, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = a.do(t, http.MethodPost, "/api/v1/cart", map[string]string{"productId": "nope"}, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = a.do(t, http.MethodPost, "/api/v1/wishlist/sword-cdk/toggle", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["inWishlist"])

	resp, body = a.do(t, http.MethodDelete, "/api/v1/cart/style-godhuman", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, body["count"])

	resp, _ = a.do(t, http.MethodPut, "/api/v1/language", map[string]string{"language": "fr"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = a.do(t, http.MethodGet, "/api/v1/status", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(services.BackendReady), body["backend"])
}

func TestCheckoutPlacesOrders(t *testing.T) {
	a := setupApp(t)
	token := a.register(t, "buyer@example.com", "buyer")

	for _, id := range []string{"sword-cdk", "acc-custom"} {
		resp, _ := a.do(t, http.MethodPost, "/api/v1/cart", map[string]string{"productId": id}, "")
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, body := a.do(t, http.MethodPost, "/api/v1/checkout/open", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	details, _ := body["details"].(map[string]interface{})
	assert.Equal(t, "buyer@example.com", details["email"])

	resp, _ = a.do(t, http.MethodPost, "/api/v1/checkout/submit", map[string]string{"robloxUsername": "buyer_rbx"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Len(t, a.store.Cart(), 2)

	resp, body = a.do(t, http.MethodPost, "/api/v1/checkout/submit", map[string]string{
		"robloxUsername": "buyer_rbx",
		"country":        "SA",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, string(services.StepPlatform), body["step"])
	assert.Contains(t, body["text"], "حسب الطلب")
	assert.Empty(t, a.store.Cart())

	for _, r := range a.checkout.Wait() {
		require.NoError(t, r.Err)
	}

	resp, body = a.do(t, http.MethodPost, "/api/v1/checkout/copy", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["copied"])

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/mine", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	httpResp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer httpResp.Body.Close()
	var mine []models.Order
	require.NoError(t, json.NewDecoder(httpResp.Body).Decode(&mine))
	require.Len(t, mine, 2)
	for _, o := range mine {
		assert.Equal(t, models.StatusPendingPayment, o.Status)
		assert.Equal(t, "buyer", o.UserName)
		assert.Equal(t, "SA", o.Country)
	}
}

func TestAdminAdvancesOrders(t *testing.T) {
	a := setupApp(t)
	buyerToken := a.register(t, "buyer@example.com", "buyer")
	buyerID := a.store.Session().UserID
	require.NoError(t, a.orders.Create(context.Background(), &models.Order{
		ID:             "ORD-TEST00001",
		UserID:         &buyerID,
		UserName:       "buyer",
		ProductID:      "sword-cdk",
		ProductName:    "CDK",
		Status:         models.StatusPendingPayment,
		RobloxUsername: "buyer_rbx",
		CreatedAt:      time.Now(),
	}))

	resp, _ := a.do(t, http.MethodGet, "/api/v1/admin/orders", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, _ = a.do(t, http.MethodGet, "/api/v1/admin/orders", nil, buyerToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = a.do(t, http.MethodPost, "/api/v1/auth/logout", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	adminToken := a.register(t, "Admin@Bloxon.test", "boss")
	assert.Equal(t, models.RoleAdmin, a.store.Session().Role)

	resp, body := a.do(t, http.MethodPatch, "/api/v1/admin/orders/ORD-TEST00001/status",
		map[string]string{"status": string(models.StatusPendingDelivery)}, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(models.StatusPendingDelivery), body["status"])

	resp, _ = a.do(t, http.MethodPatch, "/api/v1/admin/orders/ORD-TEST00001/status",
		map[string]string{"status": string(models.StatusPendingPayment)}, adminToken)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = a.do(t, http.MethodPatch, "/api/v1/admin/orders/missing/status",
		map[string]string{"status": string(models.StatusDelivered)}, adminToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	list, err := a.notifs.GetByUserID(context.Background(), buyerID, 20)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
