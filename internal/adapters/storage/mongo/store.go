package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/coding-with-maaz/chatbot-api/internal/domain"
)

const conversationsCollection = "conversations"

// ConversationStore persists message exchanges in a single collection, one
// document per exchange.
type ConversationStore struct {
	client *Client
	logger *zap.Logger
	now    func() time.Time
}

func NewConversationStore(client *Client, logger *zap.Logger) *ConversationStore {
	return &ConversationStore{
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// exchangeDoc is the stored document shape. The ObjectID doubles as the
// monotonic tie-break key for exchanges sharing a timestamp.
type exchangeDoc struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty"`
	ConversationID         string             `bson:"conversation_id"`
	UserMessage            string             `bson:"user_message"`
	AssistantMessage       string             `bson:"assistant_message"`
	Timestamp              time.Time          `bson:"timestamp"`
	CreatedAt              time.Time          `bson:"created_at"`
	MessageLength          int                `bson:"message_length"`
	UserMessageLength      int                `bson:"user_message_length"`
	AssistantMessageLength int                `bson:"assistant_message_length"`
	Metadata               map[string]any     `bson:"metadata,omitempty"`
}

// chronologicalOrder sorts by timestamp with the ObjectID as a stable
// secondary key, keeping same-instant exchanges in insertion order.
var chronologicalOrder = bson.D{
	{Key: "timestamp", Value: 1},
	{Key: "_id", Value: 1},
}

// collection returns the conversations collection, reconnecting the client
// transparently when the handle is absent.
func (s *ConversationStore) collection(ctx context.Context) (*mongo.Collection, error) {
	coll, err := s.client.Collection(conversationsCollection)
	if err == nil {
		return coll, nil
	}

	s.logger.Info("database not connected, attempting to connect")
	if _, err := s.client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("reconnecting: %w", err)
	}
	return s.client.Collection(conversationsCollection)
}

// AppendExchange inserts exactly one exchange document with the current
// timestamp and returns its id.
func (s *ConversationStore) AppendExchange(
	ctx context.Context,
	id domain.ConversationID,
	userMessage, assistantMessage string,
	metadata map[string]any,
) (domain.ExchangeID, error) {
	coll, err := s.collection(ctx)
	if err != nil {
		return "", &domain.StorageError{Op: "append", Err: err}
	}

	now := s.now().UTC()
	doc := exchangeDoc{
		ConversationID:         string(id),
		UserMessage:            userMessage,
		AssistantMessage:       assistantMessage,
		Timestamp:              now,
		CreatedAt:              now,
		MessageLength:          len(userMessage) + len(assistantMessage),
		UserMessageLength:      len(userMessage),
		AssistantMessageLength: len(assistantMessage),
		Metadata:               metadata,
	}

	res, err := coll.InsertOne(ctx, doc)
	if err != nil {
		return "", &domain.StorageError{Op: "append", Err: err}
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", &domain.StorageError{Op: "append", Err: fmt.Errorf("unexpected inserted id type %T", res.InsertedID)}
	}

	s.logger.Info("stored exchange",
		zap.String("conversation_id", string(id)),
		zap.String("exchange_id", oid.Hex()),
	)
	return domain.ExchangeID(oid.Hex()), nil
}

// GetHistory returns the conversation's exchanges in chronological order,
// each expanded into a user message followed by an assistant message. An
// unknown conversation yields an empty history, not an error.
func (s *ConversationStore) GetHistory(ctx context.Context, id domain.ConversationID, limit int) (*domain.ConversationHistory, error) {
	coll, err := s.collection(ctx)
	if err != nil {
		return nil, &domain.StorageError{Op: "history", Err: err}
	}

	opts := options.Find().SetSort(chronologicalOrder)
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}

	cursor, err := coll.Find(ctx, bson.D{{Key: "conversation_id", Value: string(id)}}, opts)
	if err != nil {
		return nil, &domain.StorageError{Op: "history", Err: err}
	}
	defer cursor.Close(ctx)

	history := &domain.ConversationHistory{
		ConversationID: id,
		Messages:       []domain.ChatMessage{},
	}

	for cursor.Next(ctx) {
		var doc exchangeDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, &domain.StorageError{Op: "history", Err: fmt.Errorf("decoding exchange: %w", err)}
		}

		if history.CreatedAt == nil {
			created := doc.CreatedAt
			history.CreatedAt = &created
		}
		updated := doc.Timestamp
		history.UpdatedAt = &updated

		history.Messages = append(history.Messages,
			domain.ChatMessage{Role: domain.RoleUser, Content: doc.UserMessage, Timestamp: doc.Timestamp},
			domain.ChatMessage{Role: domain.RoleAssistant, Content: doc.AssistantMessage, Timestamp: doc.Timestamp},
		)
	}
	if err := cursor.Err(); err != nil {
		return nil, &domain.StorageError{Op: "history", Err: err}
	}

	history.MessageCount = len(history.Messages)
	return history, nil
}

// summaryRow is the aggregation output shape of ListSummaries.
type summaryRow struct {
	ID           string    `bson:"_id"`
	FirstMessage string    `bson:"first_message"`
	LastMessage  string    `bson:"last_message"`
	MessageCount int       `bson:"message_count"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

// ListSummaries groups all exchanges by conversation and projects first/last
// user message, exchange count, and time bounds, most recently updated
// first. Storage failures are logged and reported as an empty list so that
// listing never blocks the caller.
func (s *ConversationStore) ListSummaries(ctx context.Context, limit int) ([]domain.ConversationSummary, error) {
	coll, err := s.collection(ctx)
	if err != nil {
		s.logger.Warn("cannot reach database, returning empty conversation list", zap.Error(err))
		return []domain.ConversationSummary{}, nil
	}

	count, err := coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		s.logger.Warn("counting conversations failed, returning empty list", zap.Error(err))
		return []domain.ConversationSummary{}, nil
	}
	if count == 0 {
		return []domain.ConversationSummary{}, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: chronologicalOrder}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$conversation_id"},
			{Key: "first_message", Value: bson.D{{Key: "$first", Value: "$user_message"}}},
			{Key: "last_message", Value: bson.D{{Key: "$last", Value: "$user_message"}}},
			{Key: "message_count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "created_at", Value: bson.D{{Key: "$min", Value: "$created_at"}}},
			{Key: "updated_at", Value: bson.D{{Key: "$max", Value: "$timestamp"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "updated_at", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		s.logger.Warn("summary aggregation failed, returning empty list", zap.Error(err))
		return []domain.ConversationSummary{}, nil
	}
	defer cursor.Close(ctx)

	summaries := []domain.ConversationSummary{}
	for cursor.Next(ctx) {
		var row summaryRow
		if err := cursor.Decode(&row); err != nil {
			s.logger.Warn("decoding summary failed, returning empty list", zap.Error(err))
			return []domain.ConversationSummary{}, nil
		}
		if row.ID == "" {
			continue
		}

		created, updated := row.CreatedAt, row.UpdatedAt
		summaries = append(summaries, domain.ConversationSummary{
			ConversationID: domain.ConversationID(row.ID),
			FirstMessage:   row.FirstMessage,
			LastMessage:    row.LastMessage,
			MessageCount:   row.MessageCount,
			CreatedAt:      &created,
			UpdatedAt:      &updated,
		})
	}
	if err := cursor.Err(); err != nil {
		s.logger.Warn("reading summaries failed, returning empty list", zap.Error(err))
		return []domain.ConversationSummary{}, nil
	}

	s.logger.Info("retrieved conversation summaries", zap.Int("count", len(summaries)))
	return summaries, nil
}

// DeleteConversation removes every exchange for the id and reports whether
// anything was deleted. Unlike the read paths, failures here surface.
func (s *ConversationStore) DeleteConversation(ctx context.Context, id domain.ConversationID) (bool, error) {
	coll, err := s.collection(ctx)
	if err != nil {
		return false, &domain.StorageError{Op: "delete", Err: err}
	}

	res, err := coll.DeleteMany(ctx, bson.D{{Key: "conversation_id", Value: string(id)}})
	if err != nil {
		return false, &domain.StorageError{Op: "delete", Err: err}
	}

	s.logger.Info("deleted conversation",
		zap.String("conversation_id", string(id)),
		zap.Int64("deleted", res.DeletedCount),
	)
	return res.DeletedCount > 0, nil
}

// Stats computes per-conversation counters with point queries. Failures
// degrade to a zero-count result.
func (s *ConversationStore) Stats(ctx context.Context, id domain.ConversationID) (*domain.ConversationStats, error) {
	zero := &domain.ConversationStats{ConversationID: id}

	coll, err := s.collection(ctx)
	if err != nil {
		s.logger.Warn("cannot reach database for stats", zap.Error(err))
		return zero, nil
	}

	filter := bson.D{{Key: "conversation_id", Value: string(id)}}

	count, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		s.logger.Warn("counting exchanges failed", zap.Error(err))
		return zero, nil
	}
	if count == 0 {
		return zero, nil
	}

	var first, last exchangeDoc
	if err := coll.FindOne(ctx, filter, options.FindOne().SetSort(chronologicalOrder)).Decode(&first); err != nil {
		s.logger.Warn("loading first exchange failed", zap.Error(err))
		return zero, nil
	}
	reverse := bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}
	if err := coll.FindOne(ctx, filter, options.FindOne().SetSort(reverse)).Decode(&last); err != nil {
		s.logger.Warn("loading last exchange failed", zap.Error(err))
		return zero, nil
	}

	firstAt, lastAt := first.CreatedAt, last.CreatedAt
	return &domain.ConversationStats{
		ConversationID: id,
		MessageCount:   int(count),
		FirstMessageAt: &firstAt,
		LastMessageAt:  &lastAt,
	}, nil
}
