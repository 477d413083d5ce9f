// Package db manages MongoDB connections and collections.
package db

import (
	"context" // For connection timeout/cancellation
	"fmt"     // Error formatting
	"time"    // Duration for timeouts

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"          // MongoDB driver
	"go.mongodb.org/mongo-driver/v2/mongo/options"  // MongoDB options
	"go.mongodb.org/mongo-driver/v2/mongo/readpref" // MongoDB read preference
)

// DefaultDatabase is used when no database name is configured.
const DefaultDatabase = "chat_db"

// Client wraps mongo.Client and exposes collections.
type Client struct {
	// client is the underlying MongoDB connection (thread-safe, can be reused)
	client *mongo.Client

	// db holds the users, rooms and messages collections
	db *mongo.Database
}

// New connects to MongoDB and returns a Client for database dbName.
func New(ctx context.Context, mongoURI, dbName string) (*Client, error) {
	if dbName == "" {
		dbName = DefaultDatabase
	}

	opts := options.Client().
		ApplyURI(mongoURI).
		SetConnectTimeout(10 * time.Second) // fail fast if MongoDB is unreachable

	// Connect only creates the client; Ping below is the actual connection test
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Client{
		client: client,
		db:     client.Database(dbName),
	}, nil
}

// Database returns the underlying database, used by the change feed.
func (c *Client) Database() *mongo.Database {
	return c.db
}

// UsersCollection returns the users collection.
func (c *Client) UsersCollection() *mongo.Collection {
	return c.db.Collection("users")
}

// MessagesCollection returns the messages collection.
func (c *Client) MessagesCollection() *mongo.Collection {
	return c.db.Collection("messages")
}

// LedgerHeadsCollection returns the per-room sequence counters of the message ledger.
func (c *Client) LedgerHeadsCollection() *mongo.Collection {
	return c.db.Collection("ledger_heads")
}

// RoomsCollection returns the private rooms collection.
func (c *Client) RoomsCollection() *mongo.Collection {
	return c.db.Collection("rooms")
}

// Close disconnects from MongoDB.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// CreateIndexes creates necessary indexes for users, rooms and messages collections.
func (c *Client) CreateIndexes(ctx context.Context) error {
	// ===== USERS COLLECTION INDEXES =====
	usersIndexes := []mongo.IndexModel{
		{
			// no two users can register the same email
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// directory listing is ordered by display name
			Keys: bson.D{{Key: "display_name", Value: 1}, {Key: "_id", Value: 1}},
		},
	}
	if _, err := c.UsersCollection().Indexes().CreateMany(ctx, usersIndexes); err != nil {
		return fmt.Errorf("failed to create users indexes: %w", err)
	}

	// ===== MESSAGES COLLECTION INDEX =====
	// Serves FetchOrdered: every message of one room in ledger order
	messagesIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "room_id", Value: 1},
			{Key: "created_at", Value: 1},
			{Key: "seq", Value: 1},
		},
	}
	if _, err := c.MessagesCollection().Indexes().CreateOne(ctx, messagesIndex); err != nil {
		return fmt.Errorf("failed to create message index: %w", err)
	}

	// ===== ROOMS COLLECTION INDEX =====
	// Multikey index for "rooms I take part in", newest activity first
	roomsIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "participants", Value: 1},
			{Key: "last_message_at", Value: -1},
		},
	}
	if _, err := c.RoomsCollection().Indexes().CreateOne(ctx, roomsIndex); err != nil {
		return fmt.Errorf("failed to create rooms index: %w", err)
	}

	return nil
}
