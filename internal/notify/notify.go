// Package notify carries "something changed" signals between writers and the
// live subscriptions that re-read state when signalled.
//
// Signals carry no payload. Subscribers always re-read the full ordered state,
// so a lost or duplicated signal only costs a redundant read, and a burst of
// signals coalesces into one.
package notify

import (
	"context"
	"errors"
)

// UsersTopic is signalled on any change to a user record.
const UsersTopic = "users"

// ErrClosed is returned by a notifier after it has been shut down.
var ErrClosed = errors.New("notifier closed")

// RoomTopic is signalled when a message is appended to roomID.
func RoomTopic(roomID string) string { return "room:" + roomID }

// ChatsTopic is signalled when one of userID's private rooms is created or
// gets a new last message.
func ChatsTopic(userID string) string { return "chats:" + userID }

// Notifier publishes and subscribes to change signals.
//
// Subscribe returns a channel that receives at least one value after every
// Publish on topic that happens after Subscribe returns. The channel is closed
// if the notifier drops the subscription; cancel releases it and is safe to
// call more than once.
type Notifier interface {
	Publish(ctx context.Context, topic string) error
	Subscribe(ctx context.Context, topic string) (signals <-chan struct{}, cancel func(), err error)
}
