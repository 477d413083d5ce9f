// Package chat implements room addressing, the per-room message ledger and
// live snapshot subscriptions on top of the data stores.
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PaulBabatuyi/roomChat-gRPC/internal/data"
	pkglog "github.com/PaulBabatuyi/roomChat-gRPC/internal/log"
	"github.com/PaulBabatuyi/roomChat-gRPC/internal/metrics"
	"github.com/PaulBabatuyi/roomChat-gRPC/internal/normalize"
	"github.com/PaulBabatuyi/roomChat-gRPC/internal/notify"
	"github.com/PaulBabatuyi/roomChat-gRPC/internal/rooms"
)

// UserStore is the identity directory the service reads and updates presence in.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*data.User, error)
	ListUsers(ctx context.Context) ([]*data.User, error)
	SetStatus(ctx context.Context, id string, status data.Status, at time.Time) error
}

// RoomStore keeps private room records.
type RoomStore interface {
	EnsureRoom(ctx context.Context, id string, participants [2]string) (bool, error)
	GetRoom(ctx context.Context, id string) (*data.Room, error)
	UpdateLastMessage(ctx context.Context, id, text string, at time.Time) error
	ListRoomsForUser(ctx context.Context, userID string, limit int64) ([]*data.Room, error)
}

// MessageStore is the append-only ledger.
type MessageStore interface {
	Append(ctx context.Context, msg *data.Message) (*data.Message, error)
	FetchOrdered(ctx context.Context, roomID string) ([]*data.Message, error)
}

// Session is the authenticated caller. It is passed explicitly to every
// operation that acts on the caller's behalf.
type Session struct {
	UserID      string
	DisplayName string
	AvatarRef   string
}

// Service wires the stores and the change notifier together.
type Service struct {
	users    UserStore
	rooms    RoomStore
	msgs     MessageStore
	notifier notify.Notifier
	now      func() time.Time
}

// NewService returns a Service. notifier is signalled after every write and
// listened on by subscriptions.
func NewService(users UserStore, rooms RoomStore, msgs MessageStore, notifier notify.Notifier) *Service {
	return &Service{
		users:    users,
		rooms:    rooms,
		msgs:     msgs,
		notifier: notifier,
		now:      time.Now,
	}
}

// Session loads the directory record of userID into a Session.
func (s *Service) Session(ctx context.Context, userID string) (Session, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return Session{}, err
	}
	return Session{UserID: u.ID, DisplayName: u.DisplayName, AvatarRef: u.AvatarRef}, nil
}

// GetUser returns the directory record for id or ErrNotFound.
func (s *Service) GetUser(ctx context.Context, id string) (*data.User, error) {
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return u, nil
}

// ListUsers returns the directory ordered by display name.
func (s *Service) ListUsers(ctx context.Context) ([]*data.User, error) {
	return s.users.ListUsers(ctx)
}

// SetPresence records a login or logout and notifies directory subscribers.
func (s *Service) SetPresence(ctx context.Context, userID string, status data.Status) error {
	if err := s.users.SetStatus(ctx, userID, status, s.now()); err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	s.publish(ctx, notify.UsersTopic)
	return nil
}

// DirectoryChanged notifies directory subscribers of a change made outside
// the service, such as a registration.
func (s *Service) DirectoryChanged(ctx context.Context) {
	s.publish(ctx, notify.UsersTopic)
}

// EnsureRoom returns the private room id for a and b, creating the room
// record on first contact. Calling it again, from either side or
// concurrently, returns the same id and leaves one record.
func (s *Service) EnsureRoom(ctx context.Context, a, b string) (string, error) {
	pair, err := rooms.Pair(a, b)
	if err != nil {
		return "", err
	}
	id := pair[0] + rooms.Delimiter + pair[1]

	for _, uid := range pair {
		if _, err := s.GetUser(ctx, uid); err != nil {
			return "", err
		}
	}

	created, err := s.rooms.EnsureRoom(ctx, id, pair)
	if err != nil {
		return "", fmt.Errorf("%w: ensure room %s: %v", ErrWriteFailed, id, err)
	}
	metrics.RecordEnsure(created)
	if created {
		pkglog.Ctx(ctx).Info().Str(pkglog.FieldRoomID, id).Msg("private room created")
		s.publishChats(ctx, pair)
	}
	return id, nil
}

// Send appends text to roomID as the session user. Blank text is rejected
// with ErrEmptyMessage and never reaches the ledger. For private rooms the
// room's last-message summary is updated afterwards; failing that only logs.
func (s *Service) Send(ctx context.Context, sess Session, roomID, text string) (*data.Message, error) {
	text = normalize.Text(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if err := s.authorize(ctx, roomID, sess.UserID); err != nil {
		return nil, err
	}

	saved, err := s.msgs.Append(ctx, &data.Message{
		RoomID:            roomID,
		AuthorID:          sess.UserID,
		AuthorDisplayName: sess.DisplayName,
		AuthorAvatarRef:   sess.AvatarRef,
		Text:              text,
	})
	metrics.RecordAppend(roomKind(roomID), err)
	if err != nil {
		return nil, fmt.Errorf("%w: append to %s: %v", ErrWriteFailed, roomID, err)
	}

	if pair, ok := rooms.Participants(roomID); ok {
		if err := s.rooms.UpdateLastMessage(ctx, roomID, saved.Text, saved.CreatedAt); err != nil {
			metrics.SummaryUpdateFailures.Inc()
			pkglog.Ctx(ctx).Warn().Err(err).Str(pkglog.FieldRoomID, roomID).Msg("last message summary not updated")
		} else {
			s.publishChats(ctx, pair)
		}
	}

	s.publish(ctx, notify.RoomTopic(roomID))
	return saved, nil
}

// History returns every message of roomID in ledger order.
func (s *Service) History(ctx context.Context, sess Session, roomID string) ([]*data.Message, error) {
	if err := s.authorize(ctx, roomID, sess.UserID); err != nil {
		return nil, err
	}
	return s.msgs.FetchOrdered(ctx, roomID)
}

// ListChats returns the session user's private rooms, most recently active first.
func (s *Service) ListChats(ctx context.Context, sess Session, limit int64) ([]*data.Room, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.rooms.ListRoomsForUser(ctx, sess.UserID, limit)
}

// SubscribeChats opens a live subscription to the session user's private
// rooms, most recently active first.
func (s *Service) SubscribeChats(ctx context.Context, sess Session, limit int64) (*Subscription[[]*data.Room], error) {
	if limit <= 0 {
		limit = 50
	}
	signals, release, err := s.notifier.Subscribe(ctx, notify.ChatsTopic(sess.UserID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubscription, err)
	}
	fetch := func(ctx context.Context) ([]*data.Room, error) {
		return s.rooms.ListRoomsForUser(ctx, sess.UserID, limit)
	}
	return watch(ctx, "chats", signals, release, fetch, sameRooms), nil
}

// SubscribeRoom opens a live subscription to roomID's ordered messages.
func (s *Service) SubscribeRoom(ctx context.Context, sess Session, roomID string) (*Subscription[[]*data.Message], error) {
	if err := s.authorize(ctx, roomID, sess.UserID); err != nil {
		return nil, err
	}
	signals, release, err := s.notifier.Subscribe(ctx, notify.RoomTopic(roomID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubscription, err)
	}
	fetch := func(ctx context.Context) ([]*data.Message, error) {
		return s.msgs.FetchOrdered(ctx, roomID)
	}
	return watch(ctx, "room", signals, release, fetch, sameMessages), nil
}

// SubscribeUsers opens a live subscription to the directory ordered by display name.
func (s *Service) SubscribeUsers(ctx context.Context) (*Subscription[[]*data.User], error) {
	signals, release, err := s.notifier.Subscribe(ctx, notify.UsersTopic)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubscription, err)
	}
	return watch(ctx, "users", signals, release, s.users.ListUsers, sameUsers), nil
}

// authorize checks that userID may use roomID. Private rooms must have been
// opened with EnsureRoom first.
func (s *Service) authorize(ctx context.Context, roomID, userID string) error {
	if rooms.IsGroup(roomID) {
		return nil
	}
	if !rooms.IsPrivate(roomID) {
		return fmt.Errorf("room %q: %w", roomID, ErrNotFound)
	}
	if !rooms.IsMember(roomID, userID) {
		return ErrForbidden
	}
	if _, err := s.rooms.GetRoom(ctx, roomID); err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return fmt.Errorf("room %q: %w", roomID, ErrNotFound)
		}
		return err
	}
	return nil
}

// publish signals subscribers. Notifiers deliver to this instance before
// anything that can fail, so an error here only means other instances may
// lag until their relay reconnects; it is logged rather than returned.
func (s *Service) publish(ctx context.Context, topic string) {
	if err := s.notifier.Publish(ctx, topic); err != nil {
		pkglog.Ctx(ctx).Warn().Err(err).Str("topic", topic).Msg("change signal not published")
	}
}

func (s *Service) publishChats(ctx context.Context, pair [2]string) {
	for _, uid := range pair {
		s.publish(ctx, notify.ChatsTopic(uid))
	}
}

func roomKind(roomID string) string {
	if rooms.IsGroup(roomID) {
		return "group"
	}
	return "private"
}

func sameMessages(a, b []*data.Message) bool {
	if len(a) != len(b) {
		return false
	}
	// messages are immutable and append-only: same length means same ids
	return len(a) == 0 || a[len(a)-1].ID == b[len(b)-1].ID
}

func sameUsers(a, b []*data.User) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.ID != y.ID || x.DisplayName != y.DisplayName || x.AvatarRef != y.AvatarRef ||
			x.Status != y.Status || !x.LastActiveAt.Equal(y.LastActiveAt) {
			return false
		}
	}
	return true
}

func sameRooms(a, b []*data.Room) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || !sameTime(a[i].LastMessageAt, b[i].LastMessageAt) ||
			!sameText(a[i].LastMessageText, b[i].LastMessageText) {
			return false
		}
	}
	return true
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func sameText(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
