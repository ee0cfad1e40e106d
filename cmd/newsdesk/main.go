package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ManuelReschke/NewsDesk/app/controllers"
	"github.com/ManuelReschke/NewsDesk/app/repository"
	"github.com/ManuelReschke/NewsDesk/app/repository/mongostore"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/analytics"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/billing"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/cache"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/config"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/content"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/database"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/entitlements"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/env"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/firebaseapp"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/identity"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/metrics"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/push"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/router"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/weather"
)

func main() {
	env.SetupEnvFile()
	cfg := config.Load()
	log := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := NewApplication(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("shutdown failed", "error", err)
		}
	}()

	if err := app.Listen(fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort)); err != nil {
		log.Error("server stopped", "error", err)
	}
}

// NewApplication wires every collaborator once and returns the Fiber app
// together with a cleanup func for the opened connections.
func NewApplication(ctx context.Context, cfg config.Config, log *slog.Logger) (*fiber.App, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	repos, closeStore, err := setupStore(ctx, cfg, log)
	if err != nil {
		return nil, cleanup, err
	}
	closers = append(closers, closeStore)

	// the cache is optional
	var weatherCache weather.Cache
	var limiterStorage fiber.Storage
	redisClient, err := cache.SetupCache(ctx, cfg.Cache, log)
	if err != nil {
		log.Warn("cache unavailable, running without it", "error", err)
	} else {
		closers = append(closers, func() { _ = redisClient.Close() })
		weatherCache = cache.NewStore(redisClient, "newsdesk:")
		limiterStorage = newLimiterStorage(cfg, log)
	}

	verifier, sender := setupFirebase(ctx, cfg, log)
	tracker := analytics.New(cfg.PixelID, cfg.PixelAccessToken, log)
	plans := entitlements.NewPlanTable(cfg.Stripe.PricePlans)

	channels := push.NewChannelService(repos.UserProfile)
	contentSvc := content.NewService(repos.Content, channels, sender, tracker, log)
	billingSvc := billing.NewService(
		billing.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret),
		repos.WebhookEvent, repos.Entitlement, plans, cfg.AppURL, log,
	)
	if cfg.Stripe.WebhookSecret == "" {
		log.Warn("STRIPE_WEBHOOK_SECRET is not set, all webhook deliveries will be rejected")
	}
	weatherClient := weather.NewClient(cfg.WeatherAPIKey, cfg.WeatherBaseURL, weatherCache, cfg.WeatherCacheTTL, log)

	app := fiber.New(fiber.Config{
		AppName:   "NewsDesk",
		BodyLimit: 1 << 20,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New(), metrics.Middleware())

	// SWAGGER / OPENAPI
	if docFile, ok := findOpenAPIDocument(); ok {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/docs/api/",
			FilePath: docFile,
			Path:     "v1",
		}))
	} else {
		log.Warn("openapi document not found, /docs/api disabled")
	}

	// ROUTER
	router.InstallRouter(app, router.Handlers{
		Content: controllers.NewContentController(contentSvc, log),
		Channel: controllers.NewChannelController(channels, log),
		Billing: controllers.NewBillingController(billingSvc, entitlements.NewService(repos.Entitlement), log),
		Main: controllers.NewMainController(weatherClient, tracker, plans,
			cfg.PixelID, cfg.Stripe.PublishableKey, log),
	}, router.Options{
		Verifier:        verifier,
		LimiterStorage:  limiterStorage,
		RateLimit:       cfg.APIRateLimit,
		MetricsUser:     cfg.MetricsUser,
		MetricsPassword: cfg.MetricsPassword,
	})

	return app, cleanup, nil
}

func setupStore(ctx context.Context, cfg config.Config, log *slog.Logger) (*repository.Repositories, func(), error) {
	if cfg.StoreDriver == config.StoreMongo {
		client, db, err := database.SetupMongo(ctx, cfg.Mongo, log)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(shutdownCtx)
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("mongo indexes: %w", err)
		}
		return mongostore.NewRepositories(db), closeFn, nil
	}

	db, err := database.SetupDatabase(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return repository.NewFactory(db).GetRepositories(), closeFn, nil
}

func newLimiterStorage(cfg config.Config, log *slog.Logger) fiber.Storage {
	storage, err := cache.NewLimiterStorage(cfg.Cache)
	if err != nil {
		log.Warn("shared rate limiter storage unavailable, using memory", "error", err)
		return nil
	}
	return storage
}

// setupFirebase falls back to a rejecting verifier and a logging sender
// when the Firebase app cannot be created.
func setupFirebase(ctx context.Context, cfg config.Config, log *slog.Logger) (identity.Verifier, push.Sender) {
	if cfg.FirebaseProjectID == "" && cfg.FirebaseCredentialsFile == "" {
		log.Warn("firebase is not configured, authentication disabled and notifications only logged")
		return identity.DisabledVerifier{}, push.NewLogSender(log)
	}

	fbApp, err := firebaseapp.Setup(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
	if err != nil {
		log.Error("firebase setup failed", "error", err)
		return identity.DisabledVerifier{}, push.NewLogSender(log)
	}

	var verifier identity.Verifier = identity.DisabledVerifier{}
	if authClient, err := fbApp.Auth(ctx); err != nil {
		log.Error("firebase auth client failed", "error", err)
	} else {
		verifier = identity.NewFirebaseVerifier(authClient, cfg.AdminEmails)
	}

	var sender push.Sender = push.NewLogSender(log)
	if msgClient, err := fbApp.Messaging(ctx); err != nil {
		log.Error("firebase messaging client failed", "error", err)
	} else {
		sender = push.NewFirebaseSender(msgClient, log)
	}
	return verifier, sender
}

// findOpenAPIDocument looks for the document from the project root or from cmd/newsdesk.
func findOpenAPIDocument() (string, bool) {
	for _, base := range []string{"./", "../../", "../../../"} {
		path := base + "public/docs/v1/openapi.yml"
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}
