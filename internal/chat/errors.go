package chat

import (
	"errors"

	"github.com/PaulBabatuyi/roomChat-gRPC/internal/data"
	"github.com/PaulBabatuyi/roomChat-gRPC/internal/rooms"
)

var (
	// ErrInvalidParticipant rejects bad room-addressing input.
	ErrInvalidParticipant = rooms.ErrInvalidParticipant
	// ErrNotFound is returned for unknown users and unopened or malformed rooms.
	ErrNotFound = data.ErrNotFound
	// ErrEmptyMessage rejects blank sends before they reach the ledger.
	ErrEmptyMessage = errors.New("message text is empty")
	// ErrForbidden is returned when the caller is not a participant of a private room.
	ErrForbidden = errors.New("not a participant of this room")
	// ErrWriteFailed wraps store failures on append and room creation.
	ErrWriteFailed = errors.New("write failed")
	// ErrSubscription is reported once by a subscription whose live feed dropped.
	ErrSubscription = errors.New("subscription dropped")
)
