package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuongbtq/hirenest-be/internal/api/access"
	"github.com/cuongbtq/hirenest-be/internal/api/authn"
	"github.com/cuongbtq/hirenest-be/internal/api/contact"
	"github.com/cuongbtq/hirenest-be/internal/api/fanout"
	"github.com/cuongbtq/hirenest-be/internal/api/files"
	"github.com/cuongbtq/hirenest-be/internal/api/handler"
	"github.com/cuongbtq/hirenest-be/internal/api/jobs"
	"github.com/cuongbtq/hirenest-be/internal/api/lifecycle"
	"github.com/cuongbtq/hirenest-be/internal/api/moderation"
	"github.com/cuongbtq/hirenest-be/internal/api/notification"
	"github.com/cuongbtq/hirenest-be/internal/api/outbox"
	"github.com/cuongbtq/hirenest-be/internal/api/realtime"
	"github.com/cuongbtq/hirenest-be/internal/api/router"
	"github.com/cuongbtq/hirenest-be/internal/api/storage"
	"github.com/cuongbtq/hirenest-be/internal/api/users"
	"github.com/cuongbtq/hirenest-be/internal/config"
	"github.com/cuongbtq/hirenest-be/internal/mail"
	"github.com/cuongbtq/hirenest-be/shared/logger"
	"github.com/cuongbtq/hirenest-be/shared/postgresql"
	"github.com/cuongbtq/hirenest-be/shared/rabbitmq"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
)

const (
	serviceName         = "api-service"
	defaultRelayChannel = "hirenest:realtime"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	// Parse command-line flags
	defaultConfigPath := os.Getenv("API_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/api-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateAPIConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Initialize logger
	appLogger, err := initLogger(&cfg.Logging, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	appLogger.Info("Starting API service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	// Initialize PostgreSQL client
	dbClient, err := initPostgreSQL(&cfg.Database, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbClient.Close()

	appLogger.Info("Database connection established",
		slog.String("pool", dbClient.Stats()),
	)

	if cfg.Database.AutoMigrate {
		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := dbClient.Migrate(migrateCtx, storage.Schema)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	store := storage.NewStorage(dbClient.GetDB())

	// Initialize mail delivery
	sender, err := initMailSender(&cfg.Mail, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize mail sender: %w", err)
	}

	// background loops stop when run returns
	backgroundCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	var (
		mailQueue fanout.MailQueue
		broker    handler.BrokerStatus
	)
	if cfg.Mail.Delivery == config.MailDeliveryDirect {
		mailQueue = mail.NewDirectQueue(sender)
		appLogger.Info("Mail is sent in-process")
	} else {
		rabbitClient, err := initRabbitMQ(&cfg.RabbitMQ, appLogger.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
		}
		defer rabbitClient.Close()

		appLogger.Info("RabbitMQ connection established")
		mailQueue = outbox.New(store, rabbitClient, cfg.Mail.Retry.Attempts, appLogger.Logger)
		broker = rabbitClient

		sweeper := outbox.NewSweeper(store, rabbitClient, outbox.SweeperConfig{
			Interval:   cfg.Mail.Sweep.Interval,
			StaleAfter: cfg.Mail.Sweep.StaleAfter,
			BatchSize:  cfg.Mail.Sweep.BatchSize,
		}, appLogger.Logger)
		go sweeper.Run(backgroundCtx)
	}

	// Initialize realtime hub and, when configured, the cross-replica relay
	hub := realtime.NewHub(realtime.Options{
		SendBuffer:     cfg.Realtime.SendBuffer,
		PingInterval:   cfg.Realtime.PingInterval,
		WriteTimeout:   cfg.Realtime.WriteTimeout,
		MaxMessageSize: cfg.Realtime.MaxMessageSize,
	}, appLogger.Logger)

	if cfg.Realtime.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Realtime.RedisAddr})
		defer redisClient.Close()

		channel := cfg.Realtime.RedisChannel
		if channel == "" {
			channel = defaultRelayChannel
		}
		relay := realtime.NewRedisRelay(redisClient, channel, appLogger.Logger)
		hub.SetRelay(relay)

		go func() {
			if err := relay.Run(backgroundCtx, hub); err != nil {
				appLogger.Error("Realtime relay stopped", slog.Any("error", err))
			}
		}()
	}

	// Wire the lifecycle services
	notifications := notification.NewService(store)
	dispatcher := fanout.NewDispatcher(
		notifications,
		hub,
		mailQueue,
		fanout.Policies{
			Notification: retryPolicy(cfg.Fanout.Notification),
			Broadcast:    retryPolicy(cfg.Fanout.Broadcast),
			Email:        retryPolicy(cfg.Fanout.Email),
		},
		mail.Branding{Name: cfg.Mail.BrandName, ClientURL: cfg.Mail.ClientURL},
		appLogger.Logger,
	)
	hub.OnFeedback(dispatcher.Feedback)

	guard := access.NewGuard(store, appLogger.Logger)
	gate := moderation.NewGate(store, dispatcher, appLogger.Logger)
	disk := files.NewDiskStore(cfg.Upload.StorageDir, cfg.Upload.PublicBaseURL)

	handlerDeps := &handler.Dependencies{
		Logger:         appLogger.Logger,
		Database:       dbClient,
		Broker:         broker,
		Jobs:           jobs.NewService(store, guard, gate, disk, dispatcher, cfg.Upload.MaxLogoBytes, appLogger.Logger),
		Lifecycle:      lifecycle.NewService(store, guard, gate, disk, dispatcher, cfg.Upload.MaxResumeBytes, appLogger.Logger),
		Moderation:     gate,
		Notifications:  notifications,
		Contact:        contact.NewService(store, dispatcher, appLogger.Logger),
		Users:          users.NewService(store, guard, disk),
		Verifier:       authn.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer, appLogger.Logger),
		Hub:            hub,
		UploadDir:      disk.Dir(),
		MaxResumeBytes: cfg.Upload.MaxResumeBytes,
		MaxLogoBytes:   cfg.Upload.MaxLogoBytes,
	}

	// Initialize router
	r := initRouter(cfg.App.Environment, handlerDeps)

	// Create HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	appLogger.Info("Starting HTTP server",
		slog.String("address", addr),
		slog.Duration("read_timeout", cfg.Server.ReadTimeout),
		slog.Duration("write_timeout", cfg.Server.WriteTimeout),
	)

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	appLogger.Info("API service is running",
		slog.String("address", addr),
	)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Shutting down server...", slog.String("signal", sig.String()))
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown",
			slog.Any("error", err),
		)
		return err
	}

	// Pending side effects still write to the database and the broker
	hub.Close()
	dispatcher.Wait()
	stopBackground()

	appLogger.Info("Server shutdown complete")
	return nil
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig, service string) (*logger.Logger, error) {
	loggerCfg := &logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
		Service:      service,
	}

	return logger.New(loggerCfg)
}

// initPostgreSQL initializes the PostgreSQL database client
func initPostgreSQL(cfg *config.DatabaseConfig, logger *slog.Logger) (*postgresql.Client, error) {
	dbConfig := &postgresql.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		Database:        cfg.Database,
		SSLMode:         cfg.SSLMode,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}

	return postgresql.NewClient(dbConfig, logger)
}

// initRabbitMQ initializes the RabbitMQ client
func initRabbitMQ(cfg *config.RabbitMQConfig, logger *slog.Logger) (*rabbitmq.Client, error) {
	rabbitConfig := &rabbitmq.Config{
		Host:               cfg.Host,
		Port:               cfg.Port,
		User:               cfg.User,
		Password:           cfg.Password,
		VHost:              cfg.VHost,
		ExchangeName:       cfg.Exchange.Name,
		ExchangeType:       cfg.Exchange.Type,
		ExchangeDurable:    cfg.Exchange.Durable,
		ExchangeAutoDelete: cfg.Exchange.AutoDelete,
		QueueName:          cfg.Queue.Name,
		QueueDurable:       cfg.Queue.Durable,
		QueueAutoDelete:    cfg.Queue.AutoDelete,
		QueueExclusive:     cfg.Queue.Exclusive,
		RoutingKey:         cfg.RoutingKey,
		RetryAttempts:      cfg.Connection.RetryAttempts,
		RetryInterval:      cfg.Connection.RetryInterval,
		Heartbeat:          cfg.Connection.Heartbeat,
		ConnectionTimeout:  cfg.Connection.ConnectionTimeout,
		PublishRetries:     cfg.Publish.RetryAttempts,
		PublishRetryDelay:  cfg.Publish.RetryInterval,
		PublishBackoffMult: cfg.Publish.BackoffMultiplier,
	}

	return rabbitmq.NewClient(rabbitConfig, logger)
}

// initMailSender picks SMTP when a host is configured and logs mail otherwise
func initMailSender(cfg *config.MailConfig, logger *slog.Logger) (mail.Sender, error) {
	if cfg.SMTP.Host == "" {
		logger.Warn("No SMTP host configured, mail will only be logged")
		return mail.NewLogSender(logger), nil
	}

	return mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		TLS:      cfg.SMTP.TLS,
		Timeout:  cfg.SMTP.Timeout,
		From:     cfg.From,
	})
}

func retryPolicy(cfg config.RetryConfig) fanout.RetryPolicy {
	return fanout.RetryPolicy{
		Attempts:          cfg.Attempts,
		BaseDelay:         cfg.BaseDelay,
		BackoffMultiplier: cfg.BackoffMultiplier,
	}
}

// initRouter initializes the Gin router with all routes and middleware
func initRouter(environment string, deps *handler.Dependencies) *gin.Engine {
	// Set Gin mode based on environment
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	return router.SetupRouter(deps)
}
