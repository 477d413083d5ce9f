package main

import (
	"time"

	v1 "github.com/PaulBabatuyi/roomChat-gRPC/api/chat/v1"
	"github.com/PaulBabatuyi/roomChat-gRPC/internal/data"
	"github.com/PaulBabatuyi/roomChat-gRPC/internal/rooms"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func toUser(u *data.User) *v1.User {
	return &v1.User{
		ID:           u.ID,
		DisplayName:  u.DisplayName,
		AvatarRef:    u.AvatarRef,
		Status:       string(u.Status),
		CreatedAt:    timestamppb.New(u.CreatedAt),
		LastActiveAt: timestamppb.New(u.LastActiveAt),
	}
}

func toUsers(users []*data.User) []*v1.User {
	out := make([]*v1.User, 0, len(users))
	for _, u := range users {
		out = append(out, toUser(u))
	}
	return out
}

func toMessage(m *data.Message) *v1.Message {
	return &v1.Message{
		ID:                m.ID,
		RoomID:            m.RoomID,
		AuthorID:          m.AuthorID,
		AuthorDisplayName: m.AuthorDisplayName,
		AuthorAvatarRef:   m.AuthorAvatarRef,
		Text:              m.Text,
		CreatedAt:         timestamppb.New(m.CreatedAt),
	}
}

func toMessages(msgs []*data.Message) []*v1.Message {
	out := make([]*v1.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessage(m))
	}
	return out
}

// toChat summarizes room from the point of view of userID.
func toChat(r *data.Room, userID string) *v1.Chat {
	c := &v1.Chat{RoomID: r.ID, CreatedAt: timestamppb.New(r.CreatedAt)}
	if pair, ok := rooms.Participants(r.ID); ok {
		c.PeerID = pair[0]
		if pair[0] == userID {
			c.PeerID = pair[1]
		}
	}
	if r.LastMessageText != nil {
		c.LastMessage = *r.LastMessageText
	}
	c.LastMessageAt = optionalTimestamp(r.LastMessageAt)
	return c
}

func optionalTimestamp(t *time.Time) *timestamppb.Timestamp {
	if t == nil {
		return nil
	}
	return timestamppb.New(*t)
}
