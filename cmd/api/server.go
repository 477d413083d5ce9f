package main

import (
	"context"

	v1 "github.com/PaulBabatuyi/roomChat-gRPC/api/chat/v1"
	"github.com/PaulBabatuyi/roomChat-gRPC/internal/auth"
	"github.com/PaulBabatuyi/roomChat-gRPC/internal/chat"
	"github.com/PaulBabatuyi/roomChat-gRPC/internal/data"
	"google.golang.org/grpc"
)

// AccountStore is the part of the user store that registration and login need.
type AccountStore interface {
	CreateUser(ctx context.Context, email, hashedPassword, displayName string) (*data.User, error)
	GetUserByEmail(ctx context.Context, email string) (*data.User, error)
}

// Server implements the chat service on top of chat.Service.
type Server struct {
	v1.UnimplementedChatServiceServer

	chat     *chat.Service
	accounts AccountStore
	auth     *auth.JWTManager
}

// newServer returns a ready-to-use Server wired with the chat service, account store and auth manager.
func newServer(svc *chat.Service, accounts AccountStore, authMgr *auth.JWTManager) *Server {
	return &Server{chat: svc, accounts: accounts, auth: authMgr}
}

// registerService registers the ChatService on the given gRPC server.
func registerService(s *grpc.Server, srv *Server) {
	v1.RegisterChatServiceServer(s, srv)
}
