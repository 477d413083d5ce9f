package main

import (
	"context"
	"errors"
	"strings"

	v1 "github.com/PaulBabatuyi/roomChat-gRPC/api/chat/v1"
	"github.com/PaulBabatuyi/roomChat-gRPC/internal/auth"
	"github.com/PaulBabatuyi/roomChat-gRPC/internal/chat"
	"github.com/PaulBabatuyi/roomChat-gRPC/internal/data"
	pkglog "github.com/PaulBabatuyi/roomChat-gRPC/internal/log"
	"github.com/PaulBabatuyi/roomChat-gRPC/internal/normalize"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const minPasswordLen = 8

// Register handles user registration: hashes password, stores user, returns JWT token
func (s *Server) Register(ctx context.Context, req *v1.RegisterRequest) (*v1.AuthResponse, error) {
	email := normalize.Email(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, status.Errorf(codes.InvalidArgument, "a valid email is required")
	}
	if len(req.Password) < minPasswordLen {
		return nil, status.Errorf(codes.InvalidArgument, "password must be at least %d characters", minPasswordLen)
	}
	name := normalize.DisplayName(req.DisplayName)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to hash password: %v", err)
	}

	user, err := s.accounts.CreateUser(ctx, email, hashed, name)
	if err != nil {
		if errors.Is(err, data.ErrUserExists) {
			return nil, status.Errorf(codes.AlreadyExists, "email already registered")
		}
		pkglog.Ctx(ctx).Error().Err(err).Msg("create user failed")
		return nil, status.Errorf(codes.Internal, "failed to create user")
	}
	s.chat.DirectoryChanged(ctx)

	return s.issueToken(user)
}

// Login authenticates a user, marks them online and returns a JWT token
func (s *Server) Login(ctx context.Context, req *v1.LoginRequest) (*v1.AuthResponse, error) {
	user, err := s.accounts.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, status.Errorf(codes.Unauthenticated, "invalid credentials")
		}
		return nil, toStatus(err)
	}
	if err := auth.CheckPassword(user.Password, req.Password); err != nil {
		return nil, status.Errorf(codes.Unauthenticated, "invalid credentials")
	}

	if err := s.chat.SetPresence(ctx, user.ID, data.StatusOnline); err != nil {
		return nil, toStatus(err)
	}
	user.Status = data.StatusOnline
	return s.issueToken(user)
}

// Logout marks the caller offline. The token itself stays valid until it expires.
func (s *Server) Logout(ctx context.Context, _ *v1.LogoutRequest) (*v1.LogoutResponse, error) {
	claims, ok := getClaimsFromContext(ctx)
	if !ok {
		return nil, status.Errorf(codes.Unauthenticated, "missing auth claims")
	}
	if err := s.chat.SetPresence(ctx, claims.UserID, data.StatusOffline); err != nil {
		return nil, toStatus(err)
	}
	return &v1.LogoutResponse{}, nil
}

func (s *Server) GetUser(ctx context.Context, req *v1.GetUserRequest) (*v1.User, error) {
	u, err := s.chat.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, toStatus(err)
	}
	return toUser(u), nil
}

// OpenPrivateChat returns the room shared by the caller and req.PeerID, creating it on first contact.
func (s *Server) OpenPrivateChat(ctx context.Context, req *v1.OpenPrivateChatRequest) (*v1.OpenPrivateChatResponse, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	id, err := s.chat.EnsureRoom(ctx, sess.UserID, req.PeerID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &v1.OpenPrivateChatResponse{RoomID: id}, nil
}

func (s *Server) SendMessage(ctx context.Context, req *v1.SendMessageRequest) (*v1.Message, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	msg, err := s.chat.Send(ctx, sess, req.RoomID, req.Text)
	if err != nil {
		return nil, toStatus(err)
	}
	return toMessage(msg), nil
}

// GetHistory streams the room's messages in ledger order
func (s *Server) GetHistory(req *v1.GetHistoryRequest, stream grpc.ServerStreamingServer[v1.Message]) error {
	ctx := stream.Context()
	sess, err := s.session(ctx)
	if err != nil {
		return err
	}
	msgs, err := s.chat.History(ctx, sess, req.RoomID)
	if err != nil {
		return toStatus(err)
	}
	for _, m := range msgs {
		if err := stream.Send(toMessage(m)); err != nil {
			return status.Errorf(codes.Internal, "failed to send message: %v", err)
		}
	}
	return nil
}

// ListChats streams the caller's private rooms, most recently active first
func (s *Server) ListChats(req *v1.ListChatsRequest, stream grpc.ServerStreamingServer[v1.Chat]) error {
	ctx := stream.Context()
	sess, err := s.session(ctx)
	if err != nil {
		return err
	}
	chats, err := s.chat.ListChats(ctx, sess, req.Limit)
	if err != nil {
		return toStatus(err)
	}
	for _, r := range chats {
		if err := stream.Send(toChat(r, sess.UserID)); err != nil {
			return status.Errorf(codes.Internal, "failed to send chat: %v", err)
		}
	}
	return nil
}

// SubscribeRoom streams a full snapshot of the room now and after every change
// until the client goes away.
func (s *Server) SubscribeRoom(req *v1.SubscribeRoomRequest, stream grpc.ServerStreamingServer[v1.RoomSnapshot]) error {
	ctx := stream.Context()
	sess, err := s.session(ctx)
	if err != nil {
		return err
	}
	sub, err := s.chat.SubscribeRoom(ctx, sess, req.RoomID)
	if err != nil {
		return toStatus(err)
	}
	return forward(ctx, sub, func(msgs []*data.Message) error {
		return stream.Send(&v1.RoomSnapshot{RoomID: req.RoomID, Messages: toMessages(msgs)})
	})
}

// SubscribeUsers streams the directory ordered by display name.
func (s *Server) SubscribeUsers(_ *v1.SubscribeUsersRequest, stream grpc.ServerStreamingServer[v1.UsersSnapshot]) error {
	ctx := stream.Context()
	if _, err := s.session(ctx); err != nil {
		return err
	}
	sub, err := s.chat.SubscribeUsers(ctx)
	if err != nil {
		return toStatus(err)
	}
	return forward(ctx, sub, func(users []*data.User) error {
		return stream.Send(&v1.UsersSnapshot{Users: toUsers(users)})
	})
}

// SubscribeChats streams the caller's private rooms whenever one is opened or
// gets a new last message.
func (s *Server) SubscribeChats(req *v1.SubscribeChatsRequest, stream grpc.ServerStreamingServer[v1.ChatsSnapshot]) error {
	ctx := stream.Context()
	sess, err := s.session(ctx)
	if err != nil {
		return err
	}
	sub, err := s.chat.SubscribeChats(ctx, sess, req.Limit)
	if err != nil {
		return toStatus(err)
	}
	return forward(ctx, sub, func(rs []*data.Room) error {
		chats := make([]*v1.Chat, 0, len(rs))
		for _, r := range rs {
			chats = append(chats, toChat(r, sess.UserID))
		}
		return stream.Send(&v1.ChatsSnapshot{Chats: chats})
	})
}

// forward pumps snapshots from sub into send until the client leaves or the
// subscription ends.
func forward[T any](ctx context.Context, sub *chat.Subscription[T], send func(T) error) error {
	defer sub.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-sub.Updates():
			if !ok {
				if err := sub.Err(); err != nil {
					return toStatus(err)
				}
				return nil
			}
			if err := send(snap); err != nil {
				return status.Errorf(codes.Internal, "failed to send snapshot: %v", err)
			}
		}
	}
}

// session builds the explicit caller session from the verified claims.
func (s *Server) session(ctx context.Context) (chat.Session, error) {
	claims, ok := getClaimsFromContext(ctx)
	if !ok {
		return chat.Session{}, status.Errorf(codes.Unauthenticated, "missing auth claims")
	}
	sess, err := s.chat.Session(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			return chat.Session{}, status.Errorf(codes.Unauthenticated, "unknown user")
		}
		return chat.Session{}, toStatus(err)
	}
	return sess, nil
}

func (s *Server) issueToken(user *data.User) (*v1.AuthResponse, error) {
	token, expiresAt, err := s.auth.GenerateToken(user.ID, user.Email, user.DisplayName)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to generate token: %v", err)
	}
	return &v1.AuthResponse{
		Token:     token,
		ExpiresAt: timestamppb.New(expiresAt),
		User:      toUser(user),
	}, nil
}

// toStatus maps service errors onto gRPC status codes.
func toStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, chat.ErrInvalidParticipant), errors.Is(err, chat.ErrEmptyMessage):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, chat.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, chat.ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, data.ErrUserExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, chat.ErrWriteFailed), errors.Is(err, chat.ErrSubscription):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Errorf(codes.Internal, "internal error: %v", err)
}
