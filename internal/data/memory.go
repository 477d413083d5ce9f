package data

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PaulBabatuyi/roomChat-gRPC/internal/normalize"
)

// Memory is an in-process implementation of the users, rooms and messages
// stores. It backs tests and single-instance development runs (STORE=memory).
type Memory struct {
	mu       sync.RWMutex
	now      func() time.Time
	users    map[string]*User
	byEmail  map[string]string
	rooms    map[string]*Room
	messages map[string][]*Message
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		now:      time.Now,
		users:    map[string]*User{},
		byEmail:  map[string]string{},
		rooms:    map[string]*Room{},
		messages: map[string][]*Message{},
	}
}

// CreateUser registers a new, online user.
func (m *Memory) CreateUser(_ context.Context, email, hashedPassword, displayName string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email = normalize.Email(email)
	if _, ok := m.byEmail[email]; ok {
		return nil, ErrUserExists
	}

	now := m.now().UTC()
	u := &User{
		// uuids use '-' only, never the room delimiter
		ID:           strings.ReplaceAll(uuid.NewString(), "-", ""),
		Email:        email,
		Password:     hashedPassword,
		DisplayName:  normalize.DisplayName(displayName),
		Status:       StatusOnline,
		CreatedAt:    now,
		LastActiveAt: now,
	}
	m.users[u.ID] = u
	m.byEmail[email] = u.ID

	cp := *u
	return &cp, nil
}

// GetUserByEmail finds a user by email.
func (m *Memory) GetUserByEmail(_ context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[normalize.Email(email)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m.users[id]
	return &cp, nil
}

// GetUserByID finds a user by id.
func (m *Memory) GetUserByID(_ context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// ListUsers returns every user ordered by display name (ties by id).
func (m *Memory) ListUsers(_ context.Context) ([]*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]*User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		users = append(users, &cp)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].DisplayName != users[j].DisplayName {
			return users[i].DisplayName < users[j].DisplayName
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

// SetStatus records a presence change and bumps LastActiveAt.
func (m *Memory) SetStatus(_ context.Context, id string, status Status, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Status = status
	u.LastActiveAt = at.UTC()
	return nil
}

// EnsureRoom creates the room record if it is absent.
func (m *Memory) EnsureRoom(_ context.Context, id string, participants [2]string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rooms[id]; ok {
		return false, nil
	}
	m.rooms[id] = &Room{
		ID:           id,
		Participants: []string{participants[0], participants[1]},
		CreatedAt:    m.now().UTC(),
	}
	return true, nil
}

// GetRoom returns the room record for id.
func (m *Memory) GetRoom(_ context.Context, id string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyRoom(r), nil
}

// UpdateLastMessage moves the room's last-message summary forward.
func (m *Memory) UpdateLastMessage(_ context.Context, id, text string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[id]
	if !ok {
		return ErrNotFound
	}
	if r.LastMessageAt != nil && !r.LastMessageAt.Before(at) {
		return nil
	}
	at = at.UTC()
	r.LastMessageText = &text
	r.LastMessageAt = &at
	return nil
}

// ListRoomsForUser returns the private rooms userID takes part in, most recently active first.
func (m *Memory) ListRoomsForUser(_ context.Context, userID string, limit int64) ([]*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rooms := []*Room{}
	for _, r := range m.rooms {
		if r.Participants[0] == userID || r.Participants[1] == userID {
			rooms = append(rooms, copyRoom(r))
		}
	}
	sort.Slice(rooms, func(i, j int) bool {
		a, b := rooms[i], rooms[j]
		switch {
		case a.LastMessageAt == nil && b.LastMessageAt != nil:
			return false
		case a.LastMessageAt != nil && b.LastMessageAt == nil:
			return true
		case a.LastMessageAt != nil && !a.LastMessageAt.Equal(*b.LastMessageAt):
			return a.LastMessageAt.After(*b.LastMessageAt)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	if limit > 0 && int64(len(rooms)) > limit {
		rooms = rooms[:limit]
	}
	return rooms, nil
}

// Append stores msg with a fresh id and a creation time that never goes
// backwards within the room.
func (m *Memory) Append(_ context.Context, msg *Message) (*Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved := *msg
	saved.ID = uuid.NewString()
	saved.CreatedAt = m.now().UTC()

	log := m.messages[saved.RoomID]
	saved.Seq = int64(len(log)) + 1
	if n := len(log); n > 0 && saved.CreatedAt.Before(log[n-1].CreatedAt) {
		saved.CreatedAt = log[n-1].CreatedAt
	}
	m.messages[saved.RoomID] = append(log, &saved)

	cp := saved
	return &cp, nil
}

// FetchOrdered returns every message of roomID, oldest first.
func (m *Memory) FetchOrdered(_ context.Context, roomID string) ([]*Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	log := m.messages[roomID]
	out := make([]*Message, len(log))
	for i, msg := range log {
		cp := *msg
		out[i] = &cp
	}
	return out, nil
}

func copyRoom(r *Room) *Room {
	cp := *r
	cp.Participants = append([]string(nil), r.Participants...)
	if r.LastMessageText != nil {
		text := *r.LastMessageText
		cp.LastMessageText = &text
	}
	if r.LastMessageAt != nil {
		at := *r.LastMessageAt
		cp.LastMessageAt = &at
	}
	return &cp
}
