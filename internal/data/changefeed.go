package data

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	pkglog "github.com/PaulBabatuyi/roomChat-gRPC/internal/log"
	"github.com/PaulBabatuyi/roomChat-gRPC/internal/notify"
)

// Publisher receives change signals. notify.Hub satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string) error
	PublishAll(ctx context.Context) error
}

// ChangeFeed turns MongoDB change stream events on the messages, users and
// rooms collections into notify topics. It lets every server instance observe
// writes made by the others. Change streams need a replica set.
type ChangeFeed struct {
	db  *mongo.Database
	pub Publisher

	// resume is the token of the last event seen; only Run touches it
	resume bson.Raw
}

// NewChangeFeed returns a feed that publishes into pub.
func NewChangeFeed(db *mongo.Database, pub Publisher) *ChangeFeed {
	return &ChangeFeed{db: db, pub: pub}
}

// changeEvent is the subset of a change stream document the feed needs.
type changeEvent struct {
	OperationType string `bson:"operationType"`
	NS            struct {
		Coll string `bson:"coll"`
	} `bson:"ns"`
	FullDocument bson.Raw `bson:"fullDocument"`
}

// Run watches until ctx is done, re-opening the stream after errors.
func (f *ChangeFeed) Run(ctx context.Context) {
	l := pkglog.L()
	for {
		err := f.watch(ctx)
		if ctx.Err() != nil {
			return
		}
		l.Warn().Err(err).Msg("mongo change stream error, reopening in 2s")
		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
}

func (f *ChangeFeed) watch(ctx context.Context) error {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "ns.coll", Value: bson.D{{Key: "$in", Value: bson.A{"messages", "users", "rooms"}}}},
		}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	if f.resume != nil {
		opts.SetResumeAfter(f.resume)
	}

	stream, err := f.db.Watch(ctx, pipeline, opts)
	if err != nil {
		// the token may have rolled off the oplog; start fresh next time
		f.resume = nil
		return err
	}
	defer stream.Close(context.Background())

	// events between the previous stream dying and this one opening may be
	// gone, so every live subscriber re-reads once
	_ = f.pub.PublishAll(ctx)

	for stream.Next(ctx) {
		f.resume = stream.ResumeToken()

		var ev changeEvent
		if err := stream.Decode(&ev); err != nil {
			l := pkglog.L()
			l.Warn().Err(err).Msg("undecodable change event")
			continue
		}
		for _, topic := range topicsFor(ev) {
			_ = f.pub.Publish(ctx, topic)
		}
	}
	return stream.Err()
}

// topicsFor maps a change event to the topics whose subscribers must re-read.
func topicsFor(ev changeEvent) []string {
	switch ev.NS.Coll {
	case "users":
		return []string{notify.UsersTopic}
	case "messages":
		// the ledger is append-only; only inserts matter
		if ev.OperationType != "insert" || ev.FullDocument == nil {
			return nil
		}
		roomID, ok := ev.FullDocument.Lookup("room_id").StringValueOK()
		if !ok || roomID == "" {
			return nil
		}
		return []string{notify.RoomTopic(roomID)}
	case "rooms":
		if ev.FullDocument == nil {
			return nil
		}
		arr, ok := ev.FullDocument.Lookup("participants").ArrayOK()
		if !ok {
			return nil
		}
		vals, err := arr.Values()
		if err != nil {
			return nil
		}
		var topics []string
		for _, v := range vals {
			if uid, ok := v.StringValueOK(); ok && uid != "" {
				topics = append(topics, notify.ChatsTopic(uid))
			}
		}
		return topics
	}
	return nil
}
