package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"outlay/internal/config"
	"outlay/internal/expense"
	apphttp "outlay/internal/http"
	"outlay/internal/kv"
	applog "outlay/internal/log"
	"outlay/internal/storage"
)

func main() {
	// Load .env for local development; absence is fine.
	_ = godotenv.Load()

	cfg := config.Load()

	logCfg := applog.DefaultConfig()
	logCfg.Level = applog.ParseLevel(cfg.LogLevel)
	logCfg.Handler = nil
	logger := applog.New(logCfg)
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	store, err := openBackend(cfg)
	if err != nil {
		logger.Error("Failed to initialize storage backend",
			applog.FieldBackend, cfg.Backend,
			applog.FieldError, err)
		os.Exit(1)
	}
	repo := storage.New(store, logger)
	defer repo.Close()

	expenses := expense.New(repo, logger)
	expenses.Open(context.Background())
	logger.Info("Expense store ready",
		applog.FieldBackend, cfg.Backend,
		applog.FieldCount, expenses.Snapshot().Summary.ExpenseCount)

	handler := apphttp.NewHandler(expenses, logger)
	srv := apphttp.NewServer(":"+cfg.Port, handler)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting outlay server",
			applog.FieldOperation, applog.OpStartup,
			"port", cfg.Port,
			applog.FieldBackend, cfg.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received", applog.FieldOperation, applog.OpShutdown)
		return srv.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

// openBackend picks the durable key-value store from config. The "none"
// backend runs the core without persistence.
func openBackend(cfg *config.Config) (kv.Store, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		return kv.NewSQLite(cfg.SQLitePath)
	case config.BackendNone:
		return kv.NewNull(), nil
	default:
		return kv.NewFile(cfg.DataDir)
	}
}
