package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httpadapter "github.com/coding-with-maaz/chatbot-api/internal/adapters/http"
	"github.com/coding-with-maaz/chatbot-api/internal/adapters/llm"
	memstore "github.com/coding-with-maaz/chatbot-api/internal/adapters/storage/memory"
	mongostore "github.com/coding-with-maaz/chatbot-api/internal/adapters/storage/mongo"
	"github.com/coding-with-maaz/chatbot-api/internal/app/chat"
	"github.com/coding-with-maaz/chatbot-api/internal/app/gapanalysis"
	"github.com/coding-with-maaz/chatbot-api/internal/config"
	"github.com/coding-with-maaz/chatbot-api/internal/domain"
	"github.com/coding-with-maaz/chatbot-api/internal/observability"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	logger, err := observability.Init(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// Storage: MongoDB or in-memory. A failed Mongo connection at startup
	// is logged, not fatal; the service runs degraded (health reports
	// unhealthy, writes fail individually) until the store reconnects.
	var (
		store       domain.ConversationStore
		health      httpadapter.StorageHealth
		mongoClient *mongostore.Client
	)

	switch cfg.StorageBackend {
	case config.BackendMemory:
		logger.Info("using in-memory storage")
		mem := memstore.NewConversationStore()
		store = mem
		health = mem

	default:
		uri, uriErr := cfg.MongoURI()
		if uriErr != nil {
			logger.Error("mongodb not configured, storage will be unavailable", zap.Error(uriErr))
		}

		mongoClient = mongostore.NewClient(uri, cfg.MongoDBName, logger)
		if _, connErr := mongoClient.Connect(ctx); connErr != nil {
			logger.Error("initial mongodb connection failed, continuing degraded", zap.Error(connErr))
		}
		store = mongostore.NewConversationStore(mongoClient, logger)
		health = mongoClient
	}

	// AI provider: configured primary with fallback to the other; no
	// provider at all is a startup failure.
	provider, err := llm.Select(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("AI initialization failed", zap.Error(err))
	}

	chatSvc := chat.NewService(provider, store)
	gapSvc := gapanalysis.NewService(chatSvc)

	srv := httpadapter.NewServer(chatSvc, gapSvc, health, cfg, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("server stopped", zap.Error(err))
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			logger.Error("mongodb disconnect failed", zap.Error(err))
		}
	}
	logger.Info("application shut down")
}
