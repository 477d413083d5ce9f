package chatv1

import "google.golang.org/protobuf/types/known/timestamppb"

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

func (r *RegisterRequest) GetEmail() string {
	if r == nil {
		return ""
	}
	return r.Email
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) GetEmail() string {
	if r == nil {
		return ""
	}
	return r.Email
}

// AuthResponse carries the bearer token for later calls.
type AuthResponse struct {
	Token     string                 `json:"token"`
	ExpiresAt *timestamppb.Timestamp `json:"expires_at"`
	User      *User                  `json:"user"`
}

type LogoutRequest struct{}

type LogoutResponse struct{}

type GetUserRequest struct {
	UserID string `json:"user_id"`
}

type User struct {
	ID           string                 `json:"id"`
	DisplayName  string                 `json:"display_name"`
	AvatarRef    string                 `json:"avatar_ref,omitempty"`
	Status       string                 `json:"status"`
	CreatedAt    *timestamppb.Timestamp `json:"created_at,omitempty"`
	LastActiveAt *timestamppb.Timestamp `json:"last_active_at,omitempty"`
}

// OpenPrivateChatRequest opens (or reopens) the caller's private room with PeerID.
type OpenPrivateChatRequest struct {
	PeerID string `json:"peer_id"`
}

type OpenPrivateChatResponse struct {
	RoomID string `json:"room_id"`
}

type SendMessageRequest struct {
	RoomID string `json:"room_id"`
	Text   string `json:"text"`
}

type Message struct {
	ID                string                 `json:"id"`
	RoomID            string                 `json:"room_id"`
	AuthorID          string                 `json:"author_id"`
	AuthorDisplayName string                 `json:"author_display_name"`
	AuthorAvatarRef   string                 `json:"author_avatar_ref,omitempty"`
	Text              string                 `json:"text"`
	CreatedAt         *timestamppb.Timestamp `json:"created_at"`
}

type GetHistoryRequest struct {
	RoomID string `json:"room_id"`
}

type ListChatsRequest struct {
	Limit int64 `json:"limit,omitempty"`
}

// Chat summarizes one of the caller's private rooms.
type Chat struct {
	RoomID        string                 `json:"room_id"`
	PeerID        string                 `json:"peer_id"`
	LastMessage   string                 `json:"last_message,omitempty"`
	LastMessageAt *timestamppb.Timestamp `json:"last_message_at,omitempty"`
	CreatedAt     *timestamppb.Timestamp `json:"created_at"`
}

type SubscribeRoomRequest struct {
	RoomID string `json:"room_id"`
}

// RoomSnapshot is the full ordered message list of a room at one point in time.
type RoomSnapshot struct {
	RoomID   string     `json:"room_id"`
	Messages []*Message `json:"messages"`
}

type SubscribeUsersRequest struct{}

// UsersSnapshot is the directory ordered by display name.
type UsersSnapshot struct {
	Users []*User `json:"users"`
}

// SubscribeChatsRequest opens a live view of the caller's private chats.
type SubscribeChatsRequest struct {
	Limit int64 `json:"limit,omitempty"`
}

// ChatsSnapshot is the caller's private chats, most recently active first.
type ChatsSnapshot struct {
	Chats []*Chat `json:"chats"`
}
