// Package main запускает HTTP-сервер книжного магазина.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/bookstore-system/internal/config"
	"github.com/mmeshcher/bookstore-system/internal/handler"
	"github.com/mmeshcher/bookstore-system/internal/middleware"
	"github.com/mmeshcher/bookstore-system/internal/repository"
	"github.com/mmeshcher/bookstore-system/internal/service"
	"github.com/mmeshcher/bookstore-system/internal/session"
	"github.com/mmeshcher/bookstore-system/internal/storage"
)

const sessionSweepInterval = time.Minute

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}

	covers, err := newCoverStorage(ctx, cfg.Minio)
	if err != nil {
		sugar.Fatalw("cover storage initialization error", "error", err.Error())
	}
	sugar.Infow("cover storage ready", "bucket", covers.Bucket())

	svc := service.NewService(repo, covers, cfg.PageSize)
	defer svc.Close()

	g, ctx := errgroup.WithContext(ctx)

	var store session.Store
	if cfg.RedisAddress != "" {
		client, err := session.Connect(ctx, cfg.RedisAddress)
		if err != nil {
			sugar.Fatalw("redis initialization error", "error", err.Error())
		}
		defer client.Close()
		store = session.NewRedisStore(client, cfg.SessionTTL)
		sugar.Infow("using redis sessions", "addr", cfg.RedisAddress)
	} else {
		mem := session.NewMemoryStore(cfg.SessionTTL)
		g.Go(func() error {
			mem.StartSweeper(ctx, sessionSweepInterval)
			return nil
		})
		store = mem
		sugar.Info("using in-memory sessions")
	}

	if cfg.SessionSecret == "" {
		sugar.Warn("SESSION_SECRET is empty, sessions will not survive a restart")
	}
	authMiddleware := middleware.NewAuthMiddleware(cfg.SessionSecret, store, logger)
	h := handler.NewHandler(svc, logger, authMiddleware)

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           h.SetupRouter(cfg.RequestTimeout),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		sugar.Infow("starting bookstore server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}

func newCoverStorage(ctx context.Context, cfg config.MinioConfig) (*storage.Storage, error) {
	if cfg.Endpoint == "" {
		return storage.NewStorage(storage.NewMemoryStorage()), nil
	}

	client, err := storage.NewMinioClient(storage.MinioConfig{
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Bucket:    cfg.Bucket,
		UseSSL:    cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	s := storage.NewStorage(client)
	if err := s.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}
	return s, nil
}
