// Package mongo implements the document-store adapters on MongoDB.
package mongo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/coding-with-maaz/chatbot-api/internal/domain"
)

const (
	connectTimeout = 30 * time.Second
	pingTimeout    = 5 * time.Second
)

// Client manages a single lazily established MongoDB connection shared by
// the whole process. Connect is idempotent; once a handle exists every call
// returns it unchanged.
type Client struct {
	mu     sync.Mutex
	uri    string
	dbName string
	logger *zap.Logger

	client *mongo.Client
	db     *mongo.Database
}

// NewClient builds a client without connecting. An empty uri is allowed and
// produces a client whose Connect always fails; the rest of the system runs
// degraded in that case.
func NewClient(uri, dbName string, logger *zap.Logger) *Client {
	return &Client{
		uri:    uri,
		dbName: dbName,
		logger: logger,
	}
}

// Connect establishes the connection or returns the cached handle.
func (c *Client) Connect(ctx context.Context) (*mongo.Database, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return c.db, nil
	}

	if c.uri == "" {
		return nil, fmt.Errorf("mongodb uri not configured")
	}

	opts := options.Client().
		ApplyURI(c.uri).
		SetServerSelectionTimeout(connectTimeout).
		SetConnectTimeout(connectTimeout).
		SetSocketTimeout(connectTimeout).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	c.client = client
	c.db = client.Database(c.dbName)
	c.logger.Info("connected to mongodb", zap.String("database", c.dbName))
	return c.db, nil
}

// Disconnect releases the connection and clears cached state.
func (c *Client) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil
	}

	err := c.client.Disconnect(ctx)
	c.client = nil
	c.db = nil
	if err != nil {
		return fmt.Errorf("disconnecting from mongodb: %w", err)
	}
	c.logger.Info("mongodb connection closed")
	return nil
}

// Database returns the current handle, or nil when not connected.
func (c *Client) Database() *mongo.Database {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db
}

// HealthCheck runs a liveness ping. Any failure reports unhealthy; errors
// are never propagated.
func (c *Client) HealthCheck(ctx context.Context) bool {
	db := c.Database()
	if db == nil {
		return false
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	var result bson.M
	if err := db.RunCommand(pingCtx, bson.D{{Key: "ping", Value: 1}}).Decode(&result); err != nil {
		c.logger.Warn("mongodb health check failed", zap.Error(err))
		return false
	}
	return true
}

// Collection returns the named collection, or domain.ErrNotConnected when
// called before a successful Connect.
func (c *Client) Collection(name string) (*mongo.Collection, error) {
	db := c.Database()
	if db == nil {
		return nil, domain.ErrNotConnected
	}
	return db.Collection(name), nil
}

// DatabaseName returns the configured database name.
func (c *Client) DatabaseName() string {
	return c.dbName
}

// CollectionNames lists the collections in the connected database.
func (c *Client) CollectionNames(ctx context.Context) ([]string, error) {
	db := c.Database()
	if db == nil {
		return nil, domain.ErrNotConnected
	}
	names, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	return names, nil
}
