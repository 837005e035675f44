package domain

// ChatMessage is a single role-tagged message in a conversation timeline.
type ChatMessage struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp Timestamp `json:"timestamp,omitempty"`
}

// Exchange is the stored unit: one user message and the assistant response
// it produced. Exchanges are immutable once written and are only ever
// deleted in bulk by conversation id.
type Exchange struct {
	ID               ExchangeID
	ConversationID   ConversationID
	UserMessage      string
	AssistantMessage string
	Timestamp        Timestamp
	CreatedAt        Timestamp

	// Metadata holds optional provider details (model used, tokens, etc.)
	Metadata map[string]any
}

// ConversationHistory is a conversation reconstructed from its exchanges,
// each exchange expanded into a user message followed by an assistant
// message, in chronological order.
//
// MessageCount counts the expanded role-tagged messages (two per exchange),
// unlike ConversationSummary.MessageCount which counts exchanges. The two
// units are intentionally distinct.
type ConversationHistory struct {
	ConversationID ConversationID `json:"conversation_id"`
	Messages       []ChatMessage  `json:"messages"`
	CreatedAt      *Timestamp     `json:"created_at"`
	UpdatedAt      *Timestamp     `json:"updated_at"`
	MessageCount   int            `json:"message_count"`
}

// ConversationSummary is the aggregate projection of one conversation:
// chronologically first and last user messages, exchange count, and the
// creation/update bounds. MessageCount here counts exchanges, not expanded
// messages.
type ConversationSummary struct {
	ConversationID ConversationID `json:"conversation_id"`
	FirstMessage   string         `json:"first_message"`
	LastMessage    string         `json:"last_message"`
	MessageCount   int            `json:"message_count"`
	CreatedAt      *Timestamp     `json:"created_at"`
	UpdatedAt      *Timestamp     `json:"updated_at"`
}

// ConversationStats are lightweight per-conversation counters used by the
// stats endpoint; unlike summaries they are computed with point queries
// rather than a grouping aggregation.
type ConversationStats struct {
	ConversationID ConversationID `json:"conversation_id"`
	MessageCount   int            `json:"message_count"`
	FirstMessageAt *Timestamp     `json:"first_message_at"`
	LastMessageAt  *Timestamp     `json:"last_message_at"`
}
