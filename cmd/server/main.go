package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/evmarket/checkout-client/internal/adapter/api"
	"github.com/evmarket/checkout-client/internal/adapter/cache"
	"github.com/evmarket/checkout-client/internal/adapter/http/fiber/handlers"
	"github.com/evmarket/checkout-client/internal/adapter/http/fiber/middleware"
	"github.com/evmarket/checkout-client/internal/adapter/queue"
	"github.com/evmarket/checkout-client/internal/adapter/storage/memory"
	"github.com/evmarket/checkout-client/internal/adapter/storage/postgres"
	"github.com/evmarket/checkout-client/internal/adapter/vault"
	wsAdapter "github.com/evmarket/checkout-client/internal/adapter/websocket"
	"github.com/evmarket/checkout-client/internal/infrastructure/circuitbreaker"
	"github.com/evmarket/checkout-client/internal/observability/logging"
	"github.com/evmarket/checkout-client/internal/observability/telemetry"
	"github.com/evmarket/checkout-client/internal/ports"
	"github.com/evmarket/checkout-client/internal/service/auth"
	"github.com/evmarket/checkout-client/internal/service/chatbot"
	"github.com/evmarket/checkout-client/internal/service/checkout"
	"github.com/evmarket/checkout-client/internal/service/health"
	"github.com/evmarket/checkout-client/internal/service/listing"
	"github.com/evmarket/checkout-client/internal/service/notification"
	"github.com/evmarket/checkout-client/internal/service/session"
	"github.com/evmarket/checkout-client/internal/service/transaction"
	"github.com/evmarket/checkout-client/internal/service/wallet"
	"github.com/evmarket/checkout-client/pkg/config"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	// 2. Initialize Logger
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}
	defer logger.Sync()

	logger.Info("Starting EVmarket checkout BFF",
		zap.String("service", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("backend", cfg.API.BaseURL),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 3. Pull secrets from Vault
	if cfg.Vault.Enabled {
		loadSecrets(ctx, cfg, logger)
	}

	// 4. Initialize OpenTelemetry (Distributed Tracing)
	if cfg.OpenTelemetry.Enabled {
		tracerProvider, err := telemetry.InitTracer(telemetry.TracerConfig{
			ServiceName:    cfg.OpenTelemetry.ServiceName,
			ServiceVersion: cfg.App.Version,
			Endpoint:       cfg.OpenTelemetry.Jaeger.Endpoint,
			SampleRatio:    cfg.OpenTelemetry.Jaeger.SamplerParam,
			Attributes:     cfg.OpenTelemetry.Attributes,
		})
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				logger.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	// 5. Circuit Breakers
	breakers := circuitbreaker.NewManager(circuitbreaker.Settings{
		MaxRequests:  cfg.CircuitBreaker.MaxRequests,
		Interval:     cfg.CircuitBreaker.Interval,
		Timeout:      cfg.CircuitBreaker.Timeout,
		FailureRatio: cfg.CircuitBreaker.FailureThreshold,
		MinRequests:  cfg.CircuitBreaker.MinRequests,
	}, logger)
	var apiBreaker *circuitbreaker.CircuitBreaker
	if cfg.CircuitBreaker.Enabled {
		apiBreaker = breakers.Get("evmarket-api")
	}

	// 6. Session Store
	sessionCache := newSessionCache(cfg, logger)
	defer sessionCache.Close()
	sessions := session.NewStore(sessionCache, session.Config{
		KeyPrefix: cfg.Session.KeyPrefix,
		TTL:       cfg.Session.TTL,
	}, logger)

	// 7. Backend Client
	client := api.NewClient(api.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		UserAgent: cfg.API.UserAgent,
	}, apiBreaker, sessions, logger)

	// 8. Checkout Records
	records, healthCfg := newRecordRepository(cfg, logger)
	healthCfg.Version = cfg.App.Version
	healthCfg.Cache = sessionCache
	healthCfg.Breakers = breakers

	// 9. Message Queue
	messageQueue := newMessageQueue(cfg, logger)
	defer messageQueue.Close()
	events := queue.NewEventPublisher(messageQueue, logger)

	// 10. Services
	checkoutService := checkout.NewService(
		checkout.NewGate(client, logger),
		checkout.NewRouter(client, logger),
		records, events, sessions, logger,
	)
	authService := auth.NewService(client, sessions, logger)
	walletService := wallet.NewService(client, logger)
	transactionService := transaction.NewService(client, records, logger)
	listingService := listing.NewService(client, logger)
	chatbotService := chatbot.NewService(client, logger)
	healthService := health.NewService(healthCfg, logger)

	// 11. WebSocket Hub and event consumers
	wsHub := wsAdapter.NewHub(sessions, logger)
	go wsHub.Run(ctx)
	startEventConsumers(cfg, messageQueue, wsHub, logger)

	// 12. Initialize Fiber HTTP Server
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		ServerHeader:          cfg.App.Name,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	// Global Middleware
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Telemetry(logger))
	app.Use(middleware.NewCORS(cfg.CORS))

	// Health Check Endpoints
	health.NewFiberHandler(healthService).RegisterRoutes(app)

	// Metrics endpoint for Prometheus
	if cfg.Prometheus.Enabled {
		metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
		app.Get(cfg.Prometheus.Path, func(c *fiber.Ctx) error {
			metricsHandler(c.Context())
			return nil
		})
	}

	// Checkout events WebSocket
	app.Use("/ws", wsHub.Upgrade)
	app.Get("/ws/checkout", wsHub.Handler())

	// API v1 Routes
	v1 := app.Group("/api/v1", middleware.Session(), middleware.RateLimit(120, time.Minute))
	if cfg.CircuitBreaker.Enabled {
		v1.Use(middleware.CircuitBreaker(breakers.Get("bff")))
	}
	requireSession := middleware.RequireSession(sessions)

	// Public routes
	handlers.NewAuthHandler(authService, sessions, logger).RegisterRoutes(v1, requireSession)
	handlers.NewListingHandler(listingService, logger).RegisterRoutes(v1)
	handlers.NewChatbotHandler(chatbotService, logger).RegisterRoutes(v1)

	// Protected routes
	protected := v1.Group("", requireSession)
	handlers.NewCheckoutHandler(checkoutService, logger).RegisterRoutes(protected)
	handlers.NewWalletHandler(walletService, logger).RegisterRoutes(protected)
	handlers.NewTransactionHandler(transactionService, logger).RegisterRoutes(protected)

	// 13. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 14. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	stop()

	logger.Info("Server exited gracefully")
}

// loadSecrets overrides configured credentials with the ones kept in Vault.
// Missing secrets keep the configured values.
func loadSecrets(ctx context.Context, cfg *config.Config, logger *zap.Logger) {
	secrets, err := vault.NewSecretManager(cfg.Vault.Address, cfg.Vault.Token, cfg.Vault.MountPath, logger)
	if err != nil {
		logger.Fatal("Failed to create Vault client", zap.Error(err))
	}

	if key, err := secrets.GetSendGridAPIKey(ctx); err == nil {
		cfg.Notification.Email.APIKey = key
	} else {
		logger.Warn("SendGrid key not loaded from Vault", zap.Error(err))
	}
	if url, err := secrets.GetDatabaseURL(ctx); err == nil {
		cfg.Database.URL = url
	} else {
		logger.Warn("Database URL not loaded from Vault", zap.Error(err))
	}
	if url, err := secrets.GetRedisURL(ctx); err == nil {
		cfg.Redis.URL = url
	} else {
		logger.Warn("Redis URL not loaded from Vault", zap.Error(err))
	}
}

func newSessionCache(cfg *config.Config, logger *zap.Logger) ports.Cache {
	if cfg.Session.Store != "redis" {
		return cache.NewLocalCache(time.Minute, logger)
	}

	redisCache, err := cache.NewRedisCache(cfg.Redis.URL, logger, func(o *redis.Options) {
		o.MaxRetries = cfg.Redis.MaxRetries
		o.PoolSize = cfg.Redis.PoolSize
		o.MinIdleConns = cfg.Redis.MinIdleConns
		if cfg.Redis.DialTimeout > 0 {
			o.DialTimeout = cfg.Redis.DialTimeout
		}
		if cfg.Redis.ReadTimeout > 0 {
			o.ReadTimeout = cfg.Redis.ReadTimeout
		}
		if cfg.Redis.WriteTimeout > 0 {
			o.WriteTimeout = cfg.Redis.WriteTimeout
		}
	})
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	return redisCache
}

// newRecordRepository uses PostgreSQL when a database is configured and
// keeps records in memory otherwise.
func newRecordRepository(cfg *config.Config, logger *zap.Logger) (ports.CheckoutRecordRepository, *health.Config) {
	if cfg.Database.URL == "" {
		logger.Warn("No database configured, checkout records are kept in memory")
		return memory.NewCheckoutRecordRepository(), &health.Config{}
	}

	db, err := postgres.NewConnection(cfg.Database.URL, postgres.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogQueries:      cfg.Database.LogQueries,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(db); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get underlying SQL DB", zap.Error(err))
	}
	return postgres.NewCheckoutRecordRepository(db, logger), &health.Config{DB: sqlDB}
}

func newMessageQueue(cfg *config.Config, logger *zap.Logger) queue.MessageQueue {
	switch cfg.Queue.Driver {
	case "nats":
		mq, err := queue.NewNATSQueue(cfg.NATS.URL, queue.NATSOptions{
			Name:          cfg.App.Name,
			MaxReconnects: cfg.NATS.MaxReconnects,
			ReconnectWait: cfg.NATS.ReconnectWait,
			Timeout:       cfg.NATS.Timeout,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		return mq
	case "rabbitmq":
		mq, err := queue.NewRabbitMQQueue(cfg.RabbitMQ.URL, logger)
		if err != nil {
			logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		return mq
	default:
		return queue.NewLocalQueue(logger)
	}
}

// startEventConsumers forwards checkout events to app websockets and sends
// purchase receipts.
func startEventConsumers(cfg *config.Config, mq queue.MessageQueue, hub *wsAdapter.Hub, logger *zap.Logger) {
	if err := queue.SubscribeCheckoutEvents(mq, queue.CheckoutSubjects, hub.Forward, logger); err != nil {
		logger.Fatal("Failed to subscribe websocket hub", zap.Error(err))
	}

	email := cfg.Notification.Email
	if !email.Enabled {
		logger.Info("Receipt e-mails disabled")
		return
	}

	var sender notification.Sender
	switch email.Provider {
	case "smtp":
		sender = notification.NewSMTPSender(email.SMTP.Host, email.SMTP.Port, email.SMTP.Username, email.SMTP.Password, email.From, email.FromName, email.SMTP.UseTLS)
	default:
		if email.APIKey == "" {
			logger.Warn("Receipt e-mails enabled without a SendGrid key, skipping")
			return
		}
		sender = notification.NewSendGridSender(email.APIKey, email.From, email.FromName)
	}

	receipts := notification.NewReceiptService(sender, logger)
	if err := queue.SubscribeReceipts(mq, receipts, 10*time.Second, logger); err != nil {
		logger.Fatal("Failed to subscribe receipt notifier", zap.Error(err))
	}
}
