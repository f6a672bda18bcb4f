package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"brewhaha/internal/client/payment"
	"brewhaha/internal/client/strapi"
	"brewhaha/internal/config"
	"brewhaha/internal/db"
	"brewhaha/internal/httpserver"
	"brewhaha/internal/migrate"
	"brewhaha/internal/repository/storage"
	catalogsvc "brewhaha/internal/service/catalog"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.Named("api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		pool  *pgxpool.Pool
		store storage.Repository
	)
	switch cfg.StorageBackend {
	case "memory":
		store = storage.NewMemory()
		logger.Warn("device storage is in memory; carts and sessions are lost on restart")
	case "postgres":
		pool, err = db.Connect(ctx, cfg.DBConnString, logger)
		if err != nil {
			logger.Fatal("connect to db", zap.Error(err))
		}
		defer pool.Close()
		if err := migrate.Apply(ctx, pool, logger); err != nil {
			logger.Fatal("apply migrations", zap.Error(err))
		}
		store = storage.NewPostgres(pool, logger)
	default:
		logger.Fatal("unknown storage backend", zap.String("backend", cfg.StorageBackend))
	}

	httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}
	content := strapi.New(cfg.APIURL, httpClient, logger.Named("strapi"))
	tokenizer := payment.New(cfg.PaymentAPIURL, cfg.PaymentKey, httpClient, logger.Named("payment"))
	if cfg.PaymentKey == "" {
		logger.Warn("PAYMENT_PUBLISHABLE_KEY not set; checkout confirmations will fail")
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, pool, httpserver.Deps{
		Storage:        store,
		Catalog:        catalogsvc.New(content, logger.Named("catalog")),
		Auth:           content,
		Tokenizer:      tokenizer,
		Orders:         content,
		AllowedOrigins: cfg.AllowedOrigins,
		RedirectDelay:  cfg.ToastDuration,
		ReviewTTL:      cfg.ReviewTTL,
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr), zap.String("storage", cfg.StorageBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
