package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/coding-with-maaz/chatbot-api/internal/adapters/storage/memory"
	"github.com/coding-with-maaz/chatbot-api/internal/domain"
)

// tickingClock returns a clock that advances one second per call, so every
// exchange gets a distinct timestamp.
func tickingClock() func() time.Time {
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memory.NewConversationStore()
	store.SetNow(tickingClock())

	id := domain.ConversationID("conv_roundtrip")
	exchanges := [][2]string{
		{"first question", "first answer"},
		{"second question", "second answer"},
		{"third question", "third answer"},
	}
	for _, ex := range exchanges {
		if _, err := store.AppendExchange(ctx, id, ex[0], ex[1], nil); err != nil {
			t.Fatalf("AppendExchange failed: %v", err)
		}
	}

	history, err := store.GetHistory(ctx, id, 50)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}

	if history.MessageCount != 2*len(exchanges) {
		t.Fatalf("expected message_count %d, got %d", 2*len(exchanges), history.MessageCount)
	}
	if len(history.Messages) != 2*len(exchanges) {
		t.Fatalf("expected %d messages, got %d", 2*len(exchanges), len(history.Messages))
	}

	for i, ex := range exchanges {
		user, assistant := history.Messages[2*i], history.Messages[2*i+1]
		if user.Role != domain.RoleUser || user.Content != ex[0] {
			t.Errorf("message %d: expected user %q, got %s %q", 2*i, ex[0], user.Role, user.Content)
		}
		if assistant.Role != domain.RoleAssistant || assistant.Content != ex[1] {
			t.Errorf("message %d: expected assistant %q, got %s %q", 2*i+1, ex[1], assistant.Role, assistant.Content)
		}
	}

	for i := 1; i < len(history.Messages); i++ {
		if history.Messages[i].Timestamp.Before(history.Messages[i-1].Timestamp) {
			t.Fatalf("timestamps not non-decreasing at index %d", i)
		}
	}

	if history.CreatedAt == nil || history.UpdatedAt == nil {
		t.Fatal("expected created_at and updated_at to be set")
	}
	if history.UpdatedAt.Before(*history.CreatedAt) {
		t.Fatal("updated_at before created_at")
	}
}

func TestHistoryEmptyConversation(t *testing.T) {
	store := memory.NewConversationStore()

	history, err := store.GetHistory(context.Background(), "conv_missing", 50)
	if err != nil {
		t.Fatalf("expected empty history, got error: %v", err)
	}
	if history.MessageCount != 0 || len(history.Messages) != 0 {
		t.Fatalf("expected empty history, got %d messages", len(history.Messages))
	}
}

func TestHistoryLimit(t *testing.T) {
	ctx := context.Background()
	store := memory.NewConversationStore()
	store.SetNow(tickingClock())

	id := domain.ConversationID("conv_limited")
	for i := 0; i < 5; i++ {
		if _, err := store.AppendExchange(ctx, id, "q", "a", nil); err != nil {
			t.Fatalf("AppendExchange failed: %v", err)
		}
	}

	history, err := store.GetHistory(ctx, id, 2)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(history.Messages) != 4 {
		t.Fatalf("expected 2 exchanges expanded to 4 messages, got %d", len(history.Messages))
	}
}

func TestListSummaries(t *testing.T) {
	ctx := context.Background()
	store := memory.NewConversationStore()
	store.SetNow(tickingClock())

	if _, err := store.AppendExchange(ctx, "conv_old", "old first", "a", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := store.AppendExchange(ctx, "conv_new", "new first", "a", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := store.AppendExchange(ctx, "conv_new", "new last", "a", nil); err != nil {
		t.Fatal(err)
	}

	summaries, err := store.ListSummaries(ctx, 20)
	if err != nil {
		t.Fatalf("ListSummaries failed: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}

	// Most recently updated first.
	if summaries[0].ConversationID != "conv_new" {
		t.Fatalf("expected conv_new first, got %s", summaries[0].ConversationID)
	}
	if summaries[0].FirstMessage != "new first" || summaries[0].LastMessage != "new last" {
		t.Fatalf("unexpected first/last: %q / %q", summaries[0].FirstMessage, summaries[0].LastMessage)
	}
	// Summaries count exchanges, not expanded messages.
	if summaries[0].MessageCount != 2 {
		t.Fatalf("expected exchange count 2, got %d", summaries[0].MessageCount)
	}

	limited, err := store.ListSummaries(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected 1 summary with limit 1, got %d", len(limited))
	}
}

func TestListSummariesEmptyStore(t *testing.T) {
	store := memory.NewConversationStore()

	summaries, err := store.ListSummaries(context.Background(), 20)
	if err != nil {
		t.Fatalf("ListSummaries failed: %v", err)
	}
	if summaries == nil || len(summaries) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", summaries)
	}
}

func TestDeleteConversation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewConversationStore()

	deleted, err := store.DeleteConversation(ctx, "conv_nope")
	if err != nil {
		t.Fatalf("delete of nonexistent conversation errored: %v", err)
	}
	if deleted {
		t.Fatal("expected deleted=false for nonexistent conversation")
	}

	if _, err := store.AppendExchange(ctx, "conv_gone", "q", "a", nil); err != nil {
		t.Fatal(err)
	}
	deleted, err = store.DeleteConversation(ctx, "conv_gone")
	if err != nil {
		t.Fatal(err)
	}
	if !deleted {
		t.Fatal("expected deleted=true")
	}

	history, err := store.GetHistory(ctx, "conv_gone", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(history.Messages) != 0 {
		t.Fatal("expected no messages after delete")
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	store := memory.NewConversationStore()
	store.SetNow(tickingClock())

	stats, err := store.Stats(ctx, "conv_empty")
	if err != nil {
		t.Fatal(err)
	}
	if stats.MessageCount != 0 || stats.FirstMessageAt != nil {
		t.Fatalf("expected zero stats, got %+v", stats)
	}

	for i := 0; i < 3; i++ {
		if _, err := store.AppendExchange(ctx, "conv_stats", "q", "a", nil); err != nil {
			t.Fatal(err)
		}
	}
	stats, err = store.Stats(ctx, "conv_stats")
	if err != nil {
		t.Fatal(err)
	}
	if stats.MessageCount != 3 {
		t.Fatalf("expected 3 exchanges, got %d", stats.MessageCount)
	}
	if stats.FirstMessageAt == nil || stats.LastMessageAt == nil {
		t.Fatal("expected first/last timestamps")
	}
	if stats.LastMessageAt.Before(*stats.FirstMessageAt) {
		t.Fatal("last before first")
	}
}
