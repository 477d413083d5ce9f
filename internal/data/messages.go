package data

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MessagesStore is the MongoDB message ledger: one logical, append-only log per room.
type MessagesStore struct {
	// coll is reference to "messages" collection in MongoDB
	coll *mongo.Collection
	// heads holds one document per room with its last sequence number and time
	heads *mongo.Collection
}

// NewMessagesStore returns a MessagesStore using the given messages and
// ledger heads collections.
func NewMessagesStore(coll, heads *mongo.Collection) *MessagesStore {
	return &MessagesStore{coll: coll, heads: heads}
}

// ledgerOrder sorts a room's messages by creation time, ties by sequence.
var ledgerOrder = bson.D{
	{Key: "created_at", Value: 1},
	{Key: "seq", Value: 1},
}

// ledgerHead is the per-room counter Append advances.
type ledgerHead struct {
	Seq    int64     `bson:"seq"`
	LastAt time.Time `bson:"last_at"`
}

// advanceHead bumps seq and moves last_at to the database clock, never
// backwards. $max ignores a missing last_at on the first append.
var advanceHead = mongo.Pipeline{
	{{Key: "$set", Value: bson.D{
		{Key: "seq", Value: bson.D{{Key: "$add", Value: bson.A{
			bson.D{{Key: "$ifNull", Value: bson.A{"$seq", 0}}}, 1,
		}}}},
		{Key: "last_at", Value: bson.D{{Key: "$max", Value: bson.A{"$$NOW", "$last_at"}}}},
	}}},
}

// Append stores msg with a server-assigned id, sequence number and creation
// time and returns the saved record. The caller's ID, Seq and CreatedAt are
// ignored. Times come from the database, so writers on different hosts
// cannot reorder a room with skewed clocks.
func (m *MessagesStore) Append(ctx context.Context, msg *Message) (*Message, error) {
	head, err := m.advance(ctx, msg.RoomID)
	if err != nil {
		return nil, err
	}

	saved := *msg
	saved.ID = bson.NewObjectID().Hex()
	saved.Seq = head.Seq
	saved.CreatedAt = head.LastAt.UTC()

	if _, err := m.coll.InsertOne(ctx, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (m *MessagesStore) advance(ctx context.Context, roomID string) (*ledgerHead, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var head ledgerHead
	err := m.heads.FindOneAndUpdate(ctx, bson.M{"_id": roomID}, advanceHead, opts).Decode(&head)
	if mongo.IsDuplicateKeyError(err) {
		// two first appends raced on the upsert; the head exists now
		err = m.heads.FindOneAndUpdate(ctx, bson.M{"_id": roomID}, advanceHead, opts).Decode(&head)
	}
	if err != nil {
		return nil, err
	}
	return &head, nil
}

// FetchOrdered returns every message of roomID, oldest first.
func (m *MessagesStore) FetchOrdered(ctx context.Context, roomID string) ([]*Message, error) {
	cursor, err := m.coll.Find(ctx, bson.M{"room_id": roomID}, options.Find().SetSort(ledgerOrder))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	messages := []*Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
