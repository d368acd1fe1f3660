package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/classtrack/backend/internal/config"
	"github.com/classtrack/backend/internal/logger"
	"github.com/classtrack/backend/internal/mailer"
	"github.com/classtrack/backend/internal/repositories"
	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting mail worker")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	// Test Redis connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
		os.Exit(1)
	}

	// Initialize repositories for the cleanup jobs
	magicLinkRepo := repositories.NewMagicLinkRepository(db)
	userTokenRepo := repositories.NewUserTokenRepository(db)

	// Create Asynq server
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Queues: map[string]int{
				mailer.QueueMail: 5,
				"default":        1,
			},
		},
	)

	// Create worker instance
	worker := NewWorker(
		logger.Logger,
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
		cfg.SMTP.From,
	)

	// Register task handlers
	mux := asynq.NewServeMux()
	mux.HandleFunc(mailer.TypeMagicLinkEmail, worker.HandleMagicLinkEmail)

	// Periodic cleanup of spent sign-in links and stale refresh tokens
	c := cron.New()
	c.AddFunc("@hourly", func() {
		purged, err := magicLinkRepo.PurgeExpired(context.Background())
		if err != nil {
			logger.Logger.Error("Failed to purge magic links", zap.Error(err))
			return
		}
		if purged > 0 {
			logger.Logger.Info("Purged magic links", zap.Int64("count", purged))
		}
	})
	c.AddFunc("@daily", func() {
		cutoff := time.Now().Add(-cfg.JWT.RefreshTokenExpiry)
		purged, err := userTokenRepo.PurgeOlderThan(context.Background(), cutoff)
		if err != nil {
			logger.Logger.Error("Failed to purge stale refresh tokens", zap.Error(err))
			return
		}
		if purged > 0 {
			logger.Logger.Info("Purged stale refresh tokens", zap.Int64("count", purged))
		}
	})
	c.Start()
	defer c.Stop()

	// Start worker
	go func() {
		if err := srv.Run(mux); err != nil {
			logger.Logger.Fatal("Failed to start worker", zap.Error(err))
		}
	}()

	logger.Logger.Info("Worker started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down worker...")
	srv.Shutdown()
	logger.Logger.Info("Worker exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
