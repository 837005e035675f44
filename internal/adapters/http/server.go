// Package httpadapter provides the HTTP API for the chatbot service.
package httpadapter

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/coding-with-maaz/chatbot-api/internal/app/chat"
	"github.com/coding-with-maaz/chatbot-api/internal/app/gapanalysis"
	"github.com/coding-with-maaz/chatbot-api/internal/config"
)

// StorageHealth is the storage introspection surface used by the health
// endpoints. The mongo client implements it; the memory backend stands in
// with trivially healthy answers.
type StorageHealth interface {
	HealthCheck(ctx context.Context) bool
	DatabaseName() string
	CollectionNames(ctx context.Context) ([]string, error)
}

// Server is the HTTP server for the chatbot API.
type Server struct {
	chat    *chat.Service
	gaps    *gapanalysis.Service
	storage StorageHealth
	cfg     *config.Config
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	chatSvc *chat.Service,
	gapSvc *gapanalysis.Service,
	storage StorageHealth,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		chat:    chatSvc,
		gaps:    gapSvc,
		storage: storage,
		cfg:     cfg,
		logger:  logger,
	}
}

// Handler builds the router. Exposed separately from Start so tests can
// drive it with httptest.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(withRequestID)
	r.Use(s.withLogging)
	r.Use(s.withCORS)
	r.Use(s.withRecovery)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/", s.handleRoot)

	r.Route("/chat", func(r chi.Router) {
		r.Post("/", s.handleChat)
		r.Get("/history/{conversationID}", s.handleHistory)
		r.Get("/conversations", s.handleListConversations)
		r.Delete("/conversations/{conversationID}", s.handleDeleteConversation)
		r.Get("/conversations/{conversationID}/stats", s.handleConversationStats)
	})

	r.Route("/gap-analysis", func(r chi.Router) {
		r.Get("/conversation/{conversationID}", s.handleAnalyzeConversation)
		r.Get("/all", s.handleAnalyzeAll)
	})

	r.Get("/health", s.handleHealth)
	r.Get("/health/db", s.handleHealthDB)
	r.Get("/ai/info", s.handleAIInfo)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	s.logger.Info("starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
