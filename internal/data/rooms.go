package data

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// RoomsStore keeps private room records keyed by their deterministic id.
type RoomsStore struct {
	coll *mongo.Collection
}

// NewRoomsStore returns a RoomsStore using given collection.
func NewRoomsStore(coll *mongo.Collection) *RoomsStore {
	return &RoomsStore{coll: coll}
}

// EnsureRoom creates the room record if it is absent. created reports whether
// this call inserted it. Concurrent callers for the same id converge on one record.
func (r *RoomsStore) EnsureRoom(ctx context.Context, id string, participants [2]string) (created bool, err error) {
	// $setOnInsert only writes on the upsert path, so an existing room keeps
	// its created_at and last-message summary
	update := bson.M{"$setOnInsert": bson.M{
		"participants":    participants[:],
		"created_at":      time.Now().UTC(),
		"last_message":    nil,
		"last_message_at": nil,
	}}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		// Two simultaneous upserts on the same _id: the loser sees a duplicate
		// key error, but the record it wanted is there
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

// GetRoom returns the room record for id.
func (r *RoomsStore) GetRoom(ctx context.Context, id string) (*Room, error) {
	var room Room
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&room); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &room, nil
}

// UpdateLastMessage moves the room's last-message summary forward. An older
// timestamp never replaces a newer one.
func (r *RoomsStore) UpdateLastMessage(ctx context.Context, id, text string, at time.Time) error {
	filter := bson.M{
		"_id": id,
		"$or": bson.A{
			bson.M{"last_message_at": nil}, // matches null and missing
			bson.M{"last_message_at": bson.M{"$lt": at.UTC()}},
		},
	}
	_, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"last_message":    text,
		"last_message_at": at.UTC(),
	}})
	return err
}

// ListRoomsForUser returns the private rooms userID takes part in, most recently active first.
func (r *RoomsStore) ListRoomsForUser(ctx context.Context, userID string, limit int64) ([]*Room, error) {
	// Descending sort puts rooms without messages (null last_message_at) last
	opts := options.Find().
		SetSort(bson.D{
			{Key: "last_message_at", Value: -1},
			{Key: "created_at", Value: -1},
		}).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, bson.M{"participants": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	rooms := []*Room{}
	if err := cursor.All(ctx, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}
