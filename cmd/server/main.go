package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/atmledger/ledger-service/internal/config"
	"github.com/atmledger/ledger-service/internal/db"
	"github.com/atmledger/ledger-service/internal/domain"
	"github.com/atmledger/ledger-service/internal/events"
	"github.com/atmledger/ledger-service/internal/httpapi"
	"github.com/atmledger/ledger-service/internal/logging"
	"github.com/atmledger/ledger-service/internal/memstore"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Logging)
	slog.SetDefault(logger)

	ctx := context.Background()

	var accounts domain.AccountStore
	var txLog domain.TransactionLog
	var txManager domain.TransactionManager

	switch cfg.Store.Backend {
	case "memory":
		store := memstore.New()
		accounts, txLog, txManager = store, store, store
		logger.Info("using in-memory store; state is not durable across restarts")
	default:
		pool, err := db.NewPool(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			logger.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := db.Migrate(ctx, pool.Pool); err != nil {
			logger.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("database connection pool initialized")

		accounts = db.NewAccountRepository(pool.Pool)
		txLog = db.NewTransactionLogRepository(pool.Pool)
		txManager = db.NewTransactionManager(pool.Pool, logger)
	}

	var publisher domain.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		rabbit, err := events.NewRabbitMQPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			logger.Error("failed to create event publisher", "error", err)
			os.Exit(1)
		}
		defer rabbit.Close()
		publisher = rabbit
		logger.Info("event publisher initialized", "exchange", cfg.RabbitMQ.Exchange)
	}

	ledger := domain.NewLedger(accounts, txLog, txManager, publisher, logger)
	queries := domain.NewQueries(accounts, txLog)

	handler := httpapi.NewHandler(ledger, queries, logger)
	server := httpapi.NewServer(logger, cfg.HTTPPort, httpapi.NewRouter(handler))

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(runCtx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
