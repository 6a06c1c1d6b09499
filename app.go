package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"bloxstore/internal/config"
	"bloxstore/internal/handlers"
	"bloxstore/internal/middleware"
	"bloxstore/internal/repositories"
	"bloxstore/internal/services"
	"bloxstore/internal/storage"
	"bloxstore/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// App is the wired storefront agent.
type App struct {
	Fiber *fiber.App

	Store         *services.Store
	Auth          *services.AuthService
	Observer      *services.SessionObserver
	Profiles      *services.ProfileService
	Catalog       *services.CatalogService
	Checkout      *services.CheckoutService
	Orders        *services.OrderService
	Notifications *services.NotificationService

	local       *storage.SQLiteStore
	mq          *rabbitmq.Client
	stopObserve context.CancelFunc
	unsubscribe func()
	observed    chan struct{}
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		dialector = postgres.Open(cfg.DatabaseDSN)
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// NewApp connects the stores, wires the services and registers the routes. The
// catalog is loaded before it returns.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := repositories.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
		}
	}

	local, err := storage.OpenSQLite(cfg.LocalStorePath)
	if err != nil {
		return nil, err
	}

	a := &App{local: local}

	// A broker is optional; without one order events are simply not published.
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Printf("RabbitMQ unavailable, order events disabled: %v", err)
		} else {
			a.mq = mq
			publisher = mq
		}
	}

	// --- Repositories ---
	productRepo := repositories.NewGORMProductRepository(db)
	profileRepo := repositories.NewGORMProfileRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	notificationRepo := repositories.NewGORMNotificationRepository(db)
	settingsRepo := repositories.NewGORMSettingsRepository(db)
	accountRepo := repositories.NewGORMAccountRepository(db)

	// --- Services ---
	a.Profiles = services.NewProfileService(profileRepo, cfg.SyncDebounce)
	a.Store = services.NewStore(local, a.Profiles)
	a.Notifications = services.NewNotificationService(notificationRepo, cfg.NotificationLimit)
	a.Orders = services.NewOrderService(orderRepo, a.Notifications, publisher)
	a.Catalog = services.NewCatalogService(productRepo, orderRepo, settingsRepo, profileRepo, cfg.BootstrapTimeout)
	a.Checkout = services.NewCheckoutService(a.Store, a.Orders)
	a.Auth = services.NewAuthService(accountRepo, cfg.JWTSecret)
	a.Observer = services.NewSessionObserver(a.Auth, a.Profiles, a.Notifications, a.Store, cfg.AdminEmail)

	events, unsubscribe := a.Auth.Subscribe()
	observeCtx, stop := context.WithCancel(context.Background())
	a.unsubscribe, a.stopObserve = unsubscribe, stop
	a.observed = make(chan struct{})
	go func() {
		defer close(a.observed)
		a.Observer.Run(observeCtx, events)
	}()

	if _, err := a.Catalog.Bootstrap(ctx); err != nil {
		if errors.Is(err, services.ErrBackendTablesMissing) {
			log.Printf("Backend is not set up, run with AUTO_MIGRATE=true: %v", err)
		} else {
			log.Printf("Catalog bootstrap failed: %v", err)
		}
	}

	if a.mq != nil {
		if err := a.mq.ConsumeOrderEvents(a.handleOrderEvent); err != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", err)
		}
	}

	a.Fiber = a.routes()
	return a, nil
}

// handleOrderEvent refreshes the notifications of the signed-in shopper when an
// operator moves one of their orders.
func (a *App) handleOrderEvent(ev rabbitmq.OrderEvent) error {
	if ev.Type != rabbitmq.RoutingOrderStatusChanged || ev.UserID == "" {
		return nil
	}
	if a.Store.Session().UserID != ev.UserID {
		return nil
	}
	list, err := a.Notifications.ForUser(context.Background(), ev.UserID)
	if err != nil {
		return err
	}
	a.Store.SetNotifications(ev.UserID, list)
	return nil
}

func (a *App) routes() *fiber.App {
	app := fiber.New()
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		mqStatus := "disabled"
		if a.mq != nil {
			mqStatus = "connected"
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"backend":  a.Catalog.Current().State,
			"rabbitMQ": mqStatus,
		})
	})

	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(a.Auth, a.Observer, a.Store).RegisterRoutes(apiV1)
	handlers.NewCatalogHandler(a.Catalog).RegisterRoutes(apiV1)
	handlers.NewStorefrontHandler(a.Store, a.Catalog, a.Observer, a.Notifications).RegisterRoutes(apiV1)
	handlers.NewCheckoutHandler(a.Checkout, a.Store, a.Catalog).RegisterRoutes(apiV1)

	orderHandler := handlers.NewOrderHandler(a.Orders)
	orderHandler.RegisterRoutes(apiV1.Group("/orders", middleware.AuthRequired(a.Auth)))
	admin := apiV1.Group("/admin", middleware.AuthRequired(a.Auth), middleware.AdminRequired(a.Profiles))
	orderHandler.RegisterAdminRoutes(admin)

	return app
}

// Close flushes pending profile writes and releases the connections.
func (a *App) Close() error {
	a.Profiles.Flush()
	a.Checkout.Wait()
	a.stopObserve()
	a.unsubscribe()
	<-a.observed
	a.Observer.Wait()

	var errs []error
	if a.mq != nil {
		if err := a.mq.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.local.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
