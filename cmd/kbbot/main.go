package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kbbot/internal/api"
	"kbbot/internal/api/handlers"
	"kbbot/internal/bot"
	"kbbot/internal/extract"
	"kbbot/internal/ingest"
	"kbbot/internal/repository"
	"kbbot/internal/search"
	"kbbot/internal/service"
	"kbbot/pkg/auth"
	"kbbot/pkg/config"
	"kbbot/pkg/lock"
	"kbbot/pkg/logger"
	"kbbot/pkg/postgres"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// @title KB Bot API
// @version 1.0
// @description Knowledge-base chat bots: bot registry, document ingestion and keyword search

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting kbbot service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db, appLogger); err != nil {
		appLogger.Fatal("Failed to apply schema", zap.Error(err))
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	botRepo := repository.NewBotRepository(db, appLogger)
	kbRepo := repository.NewKnowledgeBaseRepository(db, appLogger)
	docRepo := repository.NewDocumentRepository(db, appLogger)
	chunkRepo := repository.NewChunkRepository(db, appLogger)
	convRepo := repository.NewConversationRepository(db, appLogger)

	// No bot survives a restart
	if err := botRepo.DeactivateAll(ctx); err != nil {
		appLogger.Warn("Failed to reset bot activity flags", zap.Error(err))
	}

	locker, closeLocker := newLocker(ctx, &cfg.Redis, appLogger)
	defer closeLocker()

	segmenter, err := search.NewSegmenter(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	if err != nil {
		appLogger.Fatal("Invalid chunking settings", zap.Error(err))
	}

	engine := search.NewEngine(
		repository.NewSearchStore(kbRepo, docRepo, chunkRepo),
		search.Options{
			MaxResults:    cfg.Search.MaxResults,
			MinScore:      cfg.Search.MinScore,
			DisplayLimit:  cfg.Search.DisplayLimit,
			SnippetLength: cfg.Search.SnippetLength,
		},
		logger.Named("search"),
	)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	// Initialize services
	pool := ingest.NewPool(cfg.Ingest.Workers, cfg.Ingest.QueueSize, cfg.Ingest.LockTTL, logger.Named("ingest"))

	authService := service.NewAuthService(userRepo, jwtManager, appLogger)
	botService := service.NewBotService(botRepo, appLogger)
	kbService := service.NewKnowledgeBaseService(botRepo, kbRepo, engine, appLogger)
	convService := service.NewConversationService(botRepo, convRepo, appLogger)
	docService := service.NewDocumentService(
		kbRepo, docRepo, chunkRepo,
		extract.New(logger.Named("extract")),
		segmenter,
		locker,
		pool,
		service.DocumentServiceConfig{
			UploadDir:     cfg.Storage.UploadDir,
			MaxUploadSize: int64(cfg.Storage.MaxUploadSize),
			LockTTL:       cfg.Ingest.LockTTL,
		},
		appLogger,
	)

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	pool.Start(workerCtx, docService)

	supervisor := bot.NewSupervisor(
		botRepo,
		bot.NewTelegramConnectFunc(cfg.Telegram.PollTimeout, logger.Named("telegram")),
		kbService,
		convService,
		bot.Config{RateLimit: cfg.Telegram.RateLimit, RateBurst: cfg.Telegram.RateBurst},
		logger.Named("bots"),
	)

	// Initialize handlers
	app := api.SetupRouter(
		api.Handlers{
			Auth:           handlers.NewAuthHandler(authService, appLogger),
			Bots:           handlers.NewBotHandler(botService, supervisor, appLogger),
			KnowledgeBases: handlers.NewKnowledgeBaseHandler(kbService, appLogger),
			Documents:      handlers.NewDocumentHandler(docService, appLogger),
			Conversations:  handlers.NewConversationHandler(convService, appLogger),
		},
		jwtManager,
		api.Options{
			BodyLimit:    cfg.Storage.MaxUploadSize + 1024*1024,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		appLogger,
	)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
	supervisor.StopAll(shutdownCtx)
	pool.Stop()
}

// newLocker uses Redis when it is configured and reachable, otherwise an
// in-process lock.
func newLocker(ctx context.Context, cfg *config.RedisConfig, appLogger *zap.Logger) (lock.Locker, func()) {
	if cfg.Addr == "" {
		appLogger.Info("Redis not configured, using in-process document locks")
		return lock.NewLocalLocker(), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		appLogger.Warn("Redis unreachable, using in-process document locks", zap.String("addr", cfg.Addr), zap.Error(err))
		_ = client.Close()
		return lock.NewLocalLocker(), func() {}
	}

	appLogger.Info("Using Redis document locks", zap.String("addr", cfg.Addr))
	return lock.NewRedisLocker(client, "kbbot:lock:"), func() { _ = client.Close() }
}
