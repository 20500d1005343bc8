package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amyangfei/redlock-go/v3/redlock"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/selivandex/situation-monitor/internal/accounts"
	"github.com/selivandex/situation-monitor/internal/adapters/ai"
	"github.com/selivandex/situation-monitor/internal/adapters/config"
	"github.com/selivandex/situation-monitor/internal/adapters/database"
	"github.com/selivandex/situation-monitor/internal/adapters/telegram"
	"github.com/selivandex/situation-monitor/internal/adapters/twitter"
	"github.com/selivandex/situation-monitor/internal/kv"
	"github.com/selivandex/situation-monitor/internal/metrics"
	"github.com/selivandex/situation-monitor/internal/refresh"
	"github.com/selivandex/situation-monitor/internal/server"
	"github.com/selivandex/situation-monitor/internal/signals"
	"github.com/selivandex/situation-monitor/internal/watchlist"
	"github.com/selivandex/situation-monitor/pkg/logger"
	"github.com/selivandex/situation-monitor/pkg/worker"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// .env is optional, environment variables win either way
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("situation monitor starting...",
		zap.Bool("db_enabled", cfg.Database.Enabled),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.Bool("twitter_configured", cfg.Twitter.BearerToken != ""),
		zap.Bool("ai_configured", cfg.AI.AIEnabled()))

	// Storage: Postgres when enabled, otherwise KV snapshots
	// (Redis when available, plain memory as the last fallback)
	var (
		db           *database.DB
		accountRepo  accounts.Repository
		signalRepo   signals.Repository
		watchRepo    watchlist.Repository
		health       server.HealthChecker
		closeStorage func()
	)

	if cfg.Database.Enabled {
		db, err = database.New(&cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.RunMigrations(db.Conn(), cfg.Database.MigrationsPath); err != nil {
			db.Close()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		accountRepo = accounts.NewPostgresRepository(db)
		signalRepo = signals.NewPostgresRepository(db)
		watchRepo = watchlist.NewPostgresRepository(db)
		health = db
		closeStorage = func() { db.Close() }
		logger.Info("storage: postgres",
			zap.String("host", cfg.Database.Host),
			zap.String("database", cfg.Database.Name))
	} else {
		var store kv.Store
		if cfg.Redis.Enabled {
			redisStore, err := kv.NewRedisStore(&cfg.Redis)
			if err != nil {
				return fmt.Errorf("failed to connect to redis: %w", err)
			}
			store = redisStore
			closeStorage = func() { redisStore.Close() }
			logger.Info("storage: redis KV snapshots",
				zap.String("host", cfg.Redis.Host))
		} else {
			store = kv.NewMemoryStore()
			logger.Info("storage: in-memory only, state is lost on restart")
		}
		accountRepo = accounts.NewKVRepository(ctx, store)
		signalRepo = signals.NewKVRepository(ctx, store)
		watchRepo = watchlist.NewKVRepository(ctx, store)
	}
	if closeStorage != nil {
		defer closeStorage()
	}

	// Adapters
	aiClient := ai.NewClient(&cfg.AI)
	classifier := ai.NewClassifier(aiClient)
	twitterClient := twitter.New(&cfg.Twitter)

	// Classification metrics sink
	var recorder signals.Recorder
	if cfg.ClickHouse.Enabled {
		chDB, err := database.NewClickHouse(&cfg.ClickHouse)
		if err != nil {
			return fmt.Errorf("failed to connect to clickhouse: %w", err)
		}
		defer chDB.Close()

		writer := metrics.NewBatchWriter(metrics.NewRepository(chDB.DB()), 100, 10*time.Second)
		defer writer.Close()
		recorder = writer
		logger.Info("classification metrics sink: clickhouse",
			zap.String("host", cfg.ClickHouse.Host))
	}

	// Services
	signalSvc := signals.NewService(signalRepo, classifier, recorder)
	accountSvc := accounts.NewService(accountRepo, twitterClient, classifier, signalSvc)
	watchSvc := watchlist.NewService(watchRepo)

	// Refresh guard: distributed whenever Redis is configured, even when
	// Postgres is the storage backend, local otherwise
	var lock refresh.Lock = refresh.NewLocalLock()
	if cfg.Redis.Enabled {
		redisAddrs := []string{fmt.Sprintf("tcp://%s:%d", cfg.Redis.Host, cfg.Redis.Port)}
		lockCtx, lockCancel := context.WithTimeout(ctx, 5*time.Second)
		lockManager, err := redlock.NewRedLock(lockCtx, redisAddrs)
		lockCancel()
		if err != nil {
			return fmt.Errorf("failed to create redlock manager: %w", err)
		}
		lock = refresh.NewRedisLock(lockManager, 5*time.Minute)
	}

	// Signal alerts
	var notifier refresh.Notifier
	if cfg.Refresh.AlertEnabled {
		tgNotifier, err := telegram.NewNotifier(&cfg.Telegram)
		if err != nil {
			return fmt.Errorf("failed to create telegram notifier: %w", err)
		}
		if tgNotifier.IsEnabled() {
			notifier = tgNotifier
		}
	}

	orchestrator := refresh.NewOrchestrator(
		accountSvc, twitterClient, signalSvc, lock, notifier, cfg.Refresh.MaxPosts)

	// Background refresh loop
	refreshWorker := worker.NewPeriodicWorker(orchestrator, cfg.Refresh.Interval)
	refreshWorker.Start(ctx)
	defer refreshWorker.Stop(10 * time.Second)

	// HTTP API
	srv := server.New(&cfg.Server, server.Deps{
		Accounts:    accountSvc,
		Signals:     signalSvc,
		Watchlist:   watchSvc,
		Refresher:   orchestrator,
		TweetSource: twitterClient,
		Analyzer:    classifier,
		Health:      health,
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
