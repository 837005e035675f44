package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/coding-with-maaz/chatbot-api/internal/app/chat"
	"github.com/coding-with-maaz/chatbot-api/internal/config"
	"github.com/coding-with-maaz/chatbot-api/internal/domain"
	"github.com/coding-with-maaz/chatbot-api/internal/observability"
)

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type chatMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Message        string               `json:"message"`
	ConversationID string               `json:"conversation_id,omitempty"`
	ChatHistory    []chatMessageRequest `json:"chat_history,omitempty"`
	Stream         bool                 `json:"stream,omitempty"`
}

type chatResponse struct {
	Response       string    `json:"response"`
	ConversationID string    `json:"conversation_id"`
	Timestamp      time.Time `json:"timestamp"`
}

type aiInfoResponse struct {
	Provider           string          `json:"provider"`
	ModelName          string          `json:"model_name"`
	Status             string          `json:"status"`
	AvailableProviders map[string]bool `json:"available_providers"`
}

// ─────────────────────────────────────────────
// Chat
// ─────────────────────────────────────────────

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	if err := validateMessage(req.Message); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.ConversationID != "" {
		if err := validateConversationID(req.ConversationID); err != nil {
			badRequest(w, err.Error())
			return
		}
	}

	history := make([]domain.ChatMessage, 0, len(req.ChatHistory))
	for _, m := range req.ChatHistory {
		role := domain.Role(m.Role)
		if !domain.ValidRole(role) {
			badRequest(w, "chat_history role must be 'user' or 'assistant'")
			return
		}
		history = append(history, domain.ChatMessage{Role: role, Content: m.Content})
	}

	out, err := s.chat.SendMessage(r.Context(), chat.SendMessageInput{
		Message:        req.Message,
		ConversationID: domain.ConversationID(req.ConversationID),
		History:        history,
	})
	if err != nil {
		s.writeProviderError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Success", chatResponse{
		Response:       out.Response,
		ConversationID: string(out.ConversationID),
		Timestamp:      out.Timestamp,
	})
}

// writeProviderError maps AI failures onto status codes: quota and rate
// limit errors become 429 (with Retry-After when the provider reported a
// delay), everything else a 500.
func (s *Server) writeProviderError(w http.ResponseWriter, r *http.Request, err error) {
	log := observability.LoggerFromContext(r.Context())
	log.Error("error processing chat request", zap.Error(err))

	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		if pe.RateLimitShaped() {
			if pe.RetryAfter > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(int(pe.RetryAfter.Seconds()+0.5)))
			}
			writeError(w, http.StatusTooManyRequests, pe.Message, "RATE_LIMITED")
			return
		}
		internalError(w, "Error processing chat: "+pe.Message)
		return
	}

	// Errors from outside the provider adapters are still sniffed for
	// quota/rate-limit wording before defaulting to 500.
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "quota") || strings.Contains(lower, "rate limit") || strings.Contains(lower, "429") {
		writeError(w, http.StatusTooManyRequests, err.Error(), "RATE_LIMITED")
		return
	}
	internalError(w, "Error processing chat: "+err.Error())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "conversationID")
	if err := validateConversationID(id); err != nil {
		badRequest(w, err.Error())
		return
	}

	defaultLimit := s.cfg.MaxChatHistory
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	limit, err := parseLimit(r, defaultLimit)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	history, err := s.chat.GetHistory(r.Context(), domain.ConversationID(id), limit)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error("error retrieving history", zap.Error(err))
		internalError(w, "Error retrieving history")
		return
	}

	writeSuccess(w, http.StatusOK, "Conversation history retrieved successfully", history)
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, 20)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	summaries, err := s.chat.ListSummaries(r.Context(), limit)
	if err != nil {
		// Listing must not fail the caller; degrade to an empty list.
		observability.LoggerFromContext(r.Context()).Error("error listing conversations", zap.Error(err))
		writeSuccessMeta(w, http.StatusOK,
			"No conversations found or database unavailable",
			[]domain.ConversationSummary{},
			map[string]any{"error": err.Error()},
		)
		return
	}

	writeSuccessMeta(w, http.StatusOK,
		fmt.Sprintf("Retrieved %d conversations from database", len(summaries)),
		summaries,
		map[string]any{"count": len(summaries), "limit": limit},
	)
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "conversationID")
	if err := validateConversationID(id); err != nil {
		badRequest(w, err.Error())
		return
	}

	deleted, err := s.chat.DeleteConversation(r.Context(), domain.ConversationID(id))
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error("error deleting conversation", zap.Error(err))
		internalError(w, "Error deleting conversation")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Conversation not found", "NOT_FOUND")
		return
	}

	writeSuccess(w, http.StatusOK, "Conversation deleted successfully",
		map[string]string{"conversation_id": id})
}

func (s *Server) handleConversationStats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "conversationID")
	if err := validateConversationID(id); err != nil {
		badRequest(w, err.Error())
		return
	}

	stats, err := s.chat.Stats(r.Context(), domain.ConversationID(id))
	if err != nil {
		internalError(w, "Error retrieving conversation stats")
		return
	}

	writeSuccess(w, http.StatusOK, "Conversation stats retrieved successfully", stats)
}

// ─────────────────────────────────────────────
// Gap analysis
// ─────────────────────────────────────────────

func (s *Server) handleAnalyzeConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "conversationID")
	if err := validateConversationID(id); err != nil {
		badRequest(w, err.Error())
		return
	}

	analysis, err := s.gaps.AnalyzeConversation(r.Context(), domain.ConversationID(id))
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error("error analyzing conversation", zap.Error(err))
		internalError(w, "Error analyzing conversation")
		return
	}

	writeSuccess(w, http.StatusOK, "Gap analysis completed successfully", analysis)
}

func (s *Server) handleAnalyzeAll(w http.ResponseWriter, r *http.Request) {
	analysis, err := s.gaps.AnalyzeAll(r.Context())
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error("error analyzing conversations", zap.Error(err))
		internalError(w, "Error analyzing conversations")
		return
	}

	writeSuccess(w, http.StatusOK, "Gap analysis of all conversations completed", analysis)
}

// ─────────────────────────────────────────────
// Health & introspection
// ─────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.storage.HealthCheck(r.Context()) {
		writeError(w, http.StatusServiceUnavailable, "Database connection failed", "SERVICE_UNAVAILABLE")
		return
	}

	writeSuccess(w, http.StatusOK, "All services are healthy", map[string]any{
		"status":   "healthy",
		"database": "connected",
		"services": map[string]string{"mongodb": "connected"},
	})
}

func (s *Server) handleHealthDB(w http.ResponseWriter, r *http.Request) {
	names, err := s.storage.CollectionNames(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotConnected) {
			writeError(w, http.StatusServiceUnavailable, "Database not connected", "SERVICE_UNAVAILABLE")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error(), "DATABASE_ERROR")
		return
	}

	writeSuccess(w, http.StatusOK, "Database information retrieved successfully", map[string]any{
		"database_name":    s.storage.DatabaseName(),
		"collections":      names,
		"collection_count": len(names),
	})
}

func (s *Server) handleAIInfo(w http.ResponseWriter, r *http.Request) {
	info := s.chat.ProviderInfo()

	writeSuccess(w, http.StatusOK, "AI model information retrieved successfully", aiInfoResponse{
		Provider:  info.Provider,
		ModelName: info.ModelName,
		Status:    info.Status,
		AvailableProviders: map[string]bool{
			string(config.ProviderOpenAI): s.cfg.OpenAIAPIKey != "",
			string(config.ProviderGemini): s.cfg.GeminiAPIKey != "",
		},
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, s.cfg.AppName+" is running", map[string]string{
		"health":        "/health",
		"chat":          "/chat",
		"conversations": "/chat/conversations",
		"gap_analysis":  "/gap-analysis/all",
	})
}
