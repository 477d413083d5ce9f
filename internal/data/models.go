package data

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a user or room record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUserExists is returned by CreateUser for an already registered email.
	ErrUserExists = errors.New("user already exists")
)

// Status is a user's presence.
type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)

// User maps to users collection (profile, presence, password hash, timestamps)
type User struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	Password     string    `bson:"password"`
	DisplayName  string    `bson:"display_name"`
	AvatarRef    string    `bson:"avatar_ref,omitempty"`
	Status       Status    `bson:"status"`
	CreatedAt    time.Time `bson:"created_at"`
	LastActiveAt time.Time `bson:"last_active_at"`
}

// Message maps to messages collection. Messages are immutable once appended.
type Message struct {
	ID                string    `bson:"_id"`
	RoomID            string    `bson:"room_id"`
	AuthorID          string    `bson:"author_id"`
	AuthorDisplayName string    `bson:"author_display_name"`
	AuthorAvatarRef   string    `bson:"author_avatar_ref,omitempty"`
	Text              string    `bson:"text"`
	Seq               int64     `bson:"seq"` // position in the room, from 1
	CreatedAt         time.Time `bson:"created_at"`
}

// Room maps to rooms collection; only private rooms are stored.
// LastMessageText and LastMessageAt are an advisory summary of the ledger.
type Room struct {
	ID              string     `bson:"_id"`
	Participants    []string   `bson:"participants"`
	CreatedAt       time.Time  `bson:"created_at"`
	LastMessageText *string    `bson:"last_message"`
	LastMessageAt   *time.Time `bson:"last_message_at"`
}
