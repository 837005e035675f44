package httpadapter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	httpadapter "github.com/coding-with-maaz/chatbot-api/internal/adapters/http"
	"github.com/coding-with-maaz/chatbot-api/internal/adapters/llm"
	"github.com/coding-with-maaz/chatbot-api/internal/adapters/storage/memory"
	"github.com/coding-with-maaz/chatbot-api/internal/app/chat"
	"github.com/coding-with-maaz/chatbot-api/internal/app/gapanalysis"
	"github.com/coding-with-maaz/chatbot-api/internal/config"
	"github.com/coding-with-maaz/chatbot-api/internal/domain"
)

type apiResponse struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	ErrorCode string          `json:"error_code"`
	Metadata  map[string]any  `json:"metadata"`
}

func testConfig() *config.Config {
	return &config.Config{
		AppName:     "Chatbot API",
		Host:        "127.0.0.1",
		Port:        "0",
		CORSOrigins: []string{"*"},
	}
}

func newTestHandler(t *testing.T, provider domain.AIProvider, store domain.ConversationStore) http.Handler {
	t.Helper()
	chatSvc := chat.NewService(provider, store)
	gapSvc := gapanalysis.NewService(chatSvc)

	health, ok := store.(httpadapter.StorageHealth)
	if !ok {
		health = memory.NewConversationStore()
	}
	srv := httpadapter.NewServer(chatSvc, gapSvc, health, testConfig(), zap.NewNop())
	return srv.Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp apiResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, rec.Body.String())
	}
	return rec, resp
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t, llm.NewMockProvider(), memory.NewConversationStore())

	rec, resp := doJSON(t, h, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !resp.Success {
		t.Fatalf("expected success envelope, got %+v", resp)
	}
}

func TestChatReturnsConversationID(t *testing.T) {
	store := memory.NewConversationStore()
	h := newTestHandler(t, llm.NewMockProvider(), store)

	rec, resp := doJSON(t, h, http.MethodPost, "/chat", map[string]any{
		"message": "Hello there",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !resp.Success {
		t.Fatalf("expected success, got %+v", resp)
	}

	var data struct {
		Response       string `json:"response"`
		ConversationID string `json:"conversation_id"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.Response == "" {
		t.Fatal("expected a non-empty response")
	}
	if !strings.HasPrefix(data.ConversationID, "conv_") {
		t.Fatalf("expected generated conversation id, got %q", data.ConversationID)
	}

	// The exchange must be readable back as two messages.
	history, err := store.GetHistory(context.Background(), domain.ConversationID(data.ConversationID), 50)
	if err != nil {
		t.Fatal(err)
	}
	if history.MessageCount != 2 {
		t.Fatalf("expected 2 messages persisted, got %d", history.MessageCount)
	}
}

func TestChatKeepsSuppliedConversationID(t *testing.T) {
	h := newTestHandler(t, llm.NewMockProvider(), memory.NewConversationStore())

	rec, resp := doJSON(t, h, http.MethodPost, "/chat", map[string]any{
		"message":         "Hello",
		"conversation_id": "abc-123_ok",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var data struct {
		ConversationID string `json:"conversation_id"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.ConversationID != "abc-123_ok" {
		t.Fatalf("expected supplied id back, got %q", data.ConversationID)
	}
}

func TestChatValidation(t *testing.T) {
	h := newTestHandler(t, llm.NewMockProvider(), memory.NewConversationStore())

	cases := []struct {
		name string
		body map[string]any
	}{
		{"empty message", map[string]any{"message": ""}},
		{"whitespace message", map[string]any{"message": "   "}},
		{"oversized message", map[string]any{"message": strings.Repeat("x", 5001)}},
		{"bad conversation id", map[string]any{"message": "hi", "conversation_id": "abc 123"}},
		{"bad history role", map[string]any{
			"message":      "hi",
			"chat_history": []map[string]string{{"role": "system", "content": "x"}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, resp := doJSON(t, h, http.MethodPost, "/chat", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if resp.ErrorCode != "VALIDATION_ERROR" {
				t.Fatalf("expected VALIDATION_ERROR, got %q", resp.ErrorCode)
			}
		})
	}
}

type quotaProvider struct{}

func (quotaProvider) GenerateResponse(context.Context, string, []domain.ChatMessage) (string, error) {
	return "", &domain.ProviderError{
		Provider:   "openai",
		Kind:       domain.ProviderQuotaExceeded,
		Message:    "quota exceeded, retry in 20s",
		RetryAfter: 20 * time.Second,
	}
}

func (quotaProvider) ModelInfo() domain.ModelInfo {
	return domain.ModelInfo{Provider: "openai", ModelName: "gpt-4o-mini", Status: "active"}
}

func TestChatQuotaErrorMapsTo429(t *testing.T) {
	h := newTestHandler(t, quotaProvider{}, memory.NewConversationStore())

	rec, resp := doJSON(t, h, http.MethodPost, "/chat", map[string]any{"message": "hi"})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if resp.ErrorCode != "RATE_LIMITED" {
		t.Fatalf("expected RATE_LIMITED, got %q", resp.ErrorCode)
	}
	if got := rec.Header().Get("Retry-After"); got != "20" {
		t.Fatalf("expected Retry-After 20, got %q", got)
	}
}

type failingStore struct{}

func (failingStore) AppendExchange(context.Context, domain.ConversationID, string, string, map[string]any) (domain.ExchangeID, error) {
	return "", &domain.StorageError{Op: "append", Err: domain.ErrNotConnected}
}

func (failingStore) GetHistory(_ context.Context, id domain.ConversationID, _ int) (*domain.ConversationHistory, error) {
	return &domain.ConversationHistory{ConversationID: id, Messages: []domain.ChatMessage{}}, nil
}

func (failingStore) ListSummaries(context.Context, int) ([]domain.ConversationSummary, error) {
	return nil, &domain.StorageError{Op: "list", Err: domain.ErrNotConnected}
}

func (failingStore) DeleteConversation(context.Context, domain.ConversationID) (bool, error) {
	return false, &domain.StorageError{Op: "delete", Err: domain.ErrNotConnected}
}

func (failingStore) Stats(_ context.Context, id domain.ConversationID) (*domain.ConversationStats, error) {
	return &domain.ConversationStats{ConversationID: id}, nil
}

func TestChatSurvivesStorageFailure(t *testing.T) {
	h := newTestHandler(t, llm.NewMockProvider(), failingStore{})

	rec, resp := doJSON(t, h, http.MethodPost, "/chat", map[string]any{"message": "hi"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 despite storage failure, got %d", rec.Code)
	}
	if !resp.Success {
		t.Fatalf("expected success, got %+v", resp)
	}
}

func TestListConversationsDegradesOnStorageFailure(t *testing.T) {
	h := newTestHandler(t, llm.NewMockProvider(), failingStore{})

	rec, resp := doJSON(t, h, http.MethodGet, "/chat/conversations", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !resp.Success {
		t.Fatalf("expected success envelope, got %+v", resp)
	}
	var summaries []domain.ConversationSummary
	if err := json.Unmarshal(resp.Data, &summaries); err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 0 {
		t.Fatalf("expected empty list, got %d", len(summaries))
	}
	if _, ok := resp.Metadata["error"]; !ok {
		t.Fatalf("expected error detail in metadata, got %+v", resp.Metadata)
	}
}

func TestDeleteConversation(t *testing.T) {
	store := memory.NewConversationStore()
	h := newTestHandler(t, llm.NewMockProvider(), store)

	rec, resp := doJSON(t, h, http.MethodDelete, "/chat/conversations/conv_missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown conversation, got %d", rec.Code)
	}
	if resp.ErrorCode != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %q", resp.ErrorCode)
	}

	if _, err := store.AppendExchange(context.Background(), "conv_gone", "hi", "hello", nil); err != nil {
		t.Fatal(err)
	}
	rec, _ = doJSON(t, h, http.MethodDelete, "/chat/conversations/conv_gone", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec, _ = doJSON(t, h, http.MethodDelete, "/chat/conversations/conv_gone", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestHistoryLimitValidation(t *testing.T) {
	h := newTestHandler(t, llm.NewMockProvider(), memory.NewConversationStore())

	for _, limit := range []string{"0", "101", "abc"} {
		rec, resp := doJSON(t, h, http.MethodGet, "/chat/history/conv_x?limit="+limit, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("limit %q: expected 400, got %d", limit, rec.Code)
		}
		if resp.ErrorCode != "VALIDATION_ERROR" {
			t.Fatalf("limit %q: expected VALIDATION_ERROR, got %q", limit, resp.ErrorCode)
		}
	}
}

func TestHistoryEmptyConversation(t *testing.T) {
	h := newTestHandler(t, llm.NewMockProvider(), memory.NewConversationStore())

	rec, resp := doJSON(t, h, http.MethodGet, "/chat/history/conv_none", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var history domain.ConversationHistory
	if err := json.Unmarshal(resp.Data, &history); err != nil {
		t.Fatal(err)
	}
	if history.MessageCount != 0 || len(history.Messages) != 0 {
		t.Fatalf("expected empty history, got %+v", history)
	}
}

func TestGapAnalysisEndpoints(t *testing.T) {
	store := memory.NewConversationStore()
	h := newTestHandler(t, llm.NewMockProvider(), store)

	rec, resp := doJSON(t, h, http.MethodGet, "/gap-analysis/all", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var overall domain.OverallAnalysis
	if err := json.Unmarshal(resp.Data, &overall); err != nil {
		t.Fatal(err)
	}
	if overall.Status != domain.AnalysisNoConversations {
		t.Fatalf("expected no_conversations, got %s", overall.Status)
	}

	if _, err := store.AppendExchange(context.Background(), "conv_x", "Tell me more",
		"A reasonably long assistant answer exceeding the brevity threshold easily.", nil); err != nil {
		t.Fatal(err)
	}

	rec, resp = doJSON(t, h, http.MethodGet, "/gap-analysis/conversation/conv_x", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var analysis domain.ConversationAnalysis
	if err := json.Unmarshal(resp.Data, &analysis); err != nil {
		t.Fatal(err)
	}
	if analysis.Status != domain.AnalysisAnalyzed {
		t.Fatalf("expected analyzed, got %s", analysis.Status)
	}
	if analysis.GapCount == 0 {
		t.Fatal("expected single-exchange gaps to be reported")
	}
}

func TestAIInfo(t *testing.T) {
	h := newTestHandler(t, llm.NewMockProvider(), memory.NewConversationStore())

	rec, resp := doJSON(t, h, http.MethodGet, "/ai/info", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var info struct {
		Provider           string          `json:"provider"`
		Status             string          `json:"status"`
		AvailableProviders map[string]bool `json:"available_providers"`
	}
	if err := json.Unmarshal(resp.Data, &info); err != nil {
		t.Fatal(err)
	}
	if info.Provider == "" || info.Status == "" {
		t.Fatalf("expected provider info, got %+v", info)
	}
	if _, ok := info.AvailableProviders["openai"]; !ok {
		t.Fatalf("expected openai key presence flag, got %+v", info.AvailableProviders)
	}
}
