package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/wikimasters/wikimasters/internal/cache"
	"github.com/wikimasters/wikimasters/internal/config"
	"github.com/wikimasters/wikimasters/internal/email"
	"github.com/wikimasters/wikimasters/internal/event"
	"github.com/wikimasters/wikimasters/internal/handler"
	"github.com/wikimasters/wikimasters/internal/middleware"
	"github.com/wikimasters/wikimasters/internal/repository"
	"github.com/wikimasters/wikimasters/internal/service"
	"github.com/wikimasters/wikimasters/internal/worker"
)

func main() {
	// Load and validate configuration; invalid config is fatal with
	// one message per field.
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintln(os.Stderr, "Invalid configuration:")
			for _, f := range verr.Fields {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", f.Field, f.Message)
			}
			os.Exit(1)
		}
		log.Fatalf("Failed to load config: %v", err)
	}

	// Set up logger
	logger, err := createLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	db, err := connectToDB(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		// Pageviews and the listing cache are best-effort; keep running
		// and let the client reconnect.
		logger.Warn("Failed to ping Redis", zap.Error(err))
	} else {
		logger.Info("Connected to Redis", zap.String("address", cfg.Redis.Addr))
	}

	// Initialize repositories
	articleRepo := repository.NewArticleRepository(db, logger)
	tagRepo := repository.NewTagRepository(db, logger)
	cronLogRepo := repository.NewCronLogRepository(db, logger)

	// Initialize caches and outbound clients
	pageviewCounter := cache.NewPageviewCounter(redisClient, logger)
	articleCache := cache.NewArticleCache(redisClient, cfg.Cache.ArticlesTTL, logger)
	emailSender := email.NewSender(cfg.Email.APIKey, cfg.Email.From, logger)

	var milestonePublisher service.MilestonePublisher
	if cfg.Kafka.Enabled {
		producer := event.NewProducer(
			strings.Split(cfg.Kafka.Brokers, ","),
			cfg.Kafka.Topic,
			"wikimasters",
			logger,
		)
		defer producer.Close()
		milestonePublisher = producer
	}

	// Background executor for fire-and-forget notification work
	dispatcher := worker.NewDispatcher(64, 4, 30*time.Second, logger)
	dispatcher.Start()

	// Initialize services
	notificationService := service.NewNotificationService(
		articleRepo,
		emailSender,
		cfg.Server.BaseURL,
		cfg.Email.To,
		logger,
	)
	pageviewService := service.NewPageviewService(
		pageviewCounter,
		notificationService,
		dispatcher,
		milestonePublisher,
		logger,
	)
	articleService := service.NewArticleService(articleRepo, articleCache, tagRepo, logger)
	tagService := service.NewTagService(tagRepo, logger)
	cronService := service.NewCronService(cronLogRepo, logger)

	// Initialize handlers
	articleHandler := handler.NewArticleHandler(articleService, pageviewService, logger)
	tagHandler := handler.NewTagHandler(tagService, logger)
	cronHandler := handler.NewCronHandler(cronService, logger)

	router := setupRouter(cfg, articleHandler, tagHandler, cronHandler, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	// Let in-flight notification jobs finish within the same deadline
	dispatcher.Stop(ctx)

	logger.Info("Server exited properly")
}

func createLogger(level string) (*zap.Logger, error) {
	var zapLevel zap.AtomicLevel
	switch level {
	case "debug":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	config := zap.Config{
		Level:            zapLevel,
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

// connectToDB opens the Postgres pool, retrying with exponential backoff
// so a slow-starting database does not kill the process.
func connectToDB(dbConfig config.DatabaseConfig) (*sqlx.DB, error) {
	var db *sqlx.DB

	operation := func() error {
		var err error
		db, err = sqlx.Connect("pgx", dbConfig.URL)
		return err
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(dbConfig.MaxOpenConns)
	db.SetMaxIdleConns(dbConfig.MaxIdleConns)
	db.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	return db, nil
}

func setupRouter(
	cfg *config.Config,
	articleHandler *handler.ArticleHandler,
	tagHandler *handler.TagHandler,
	cronHandler *handler.CronHandler,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Scheduled heartbeat, guarded by the cron bearer secret
	router.GET("/api/cron", middleware.CronAuth(cfg.Cron.Secret), cronHandler.Run)

	// API routes
	v1 := router.Group("/api/v1")
	{
		articles := v1.Group("/articles")
		{
			// Public read endpoints
			articles.GET("", articleHandler.List)
			articles.GET("/:id", articleHandler.Get)

			// Protected mutation endpoints
			auth := articles.Group("")
			auth.Use(middleware.Auth(cfg.Auth.JWTSecret, logger))
			auth.POST("", articleHandler.Create)
			auth.PUT("/:id", articleHandler.Update)
			auth.DELETE("/:id", articleHandler.Delete)
		}

		tags := v1.Group("/tags")
		{
			tags.GET("", tagHandler.List)

			tags.Use(middleware.Auth(cfg.Auth.JWTSecret, logger))
			tags.POST("", tagHandler.Create)
		}
	}

	return router
}
