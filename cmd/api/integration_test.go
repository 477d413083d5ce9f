package main

import (
	"context"
	"net"
	"os"
	"testing"
	"time"

	v1 "github.com/PaulBabatuyi/roomChat-gRPC/api/chat/v1"
	"github.com/PaulBabatuyi/roomChat-gRPC/internal/auth"
	"github.com/PaulBabatuyi/roomChat-gRPC/internal/chat"
	"github.com/PaulBabatuyi/roomChat-gRPC/internal/data"
	"github.com/PaulBabatuyi/roomChat-gRPC/internal/db"
	"github.com/PaulBabatuyi/roomChat-gRPC/internal/notify"
	"github.com/PaulBabatuyi/roomChat-gRPC/internal/rooms"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

const bufSize = 1024 * 1024

// startBufServer serves the chat service over an in-memory listener and
// returns a connected client.
func startBufServer(t *testing.T, svc *chat.Service, accounts AccountStore) v1.ChatServiceClient {
	t.Helper()
	jwtMgr := auth.NewJWTManager("test-secret", time.Hour)

	lis := bufconn.Listen(bufSize)
	s := grpc.NewServer(
		grpc.UnaryInterceptor(authUnaryInterceptor(jwtMgr)),
		grpc.StreamInterceptor(authStreamInterceptor(jwtMgr)),
	)
	registerService(s, newServer(svc, accounts, jwtMgr))

	go func() {
		_ = s.Serve(lis)
	}()
	t.Cleanup(s.Stop)

	dialer := func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }
	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("failed to dial bufnet: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return v1.NewChatServiceClient(conn)
}

func withToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

func TestChatFlowOverGRPC(t *testing.T) {
	store := data.NewMemory()
	client := startBufServer(t, chat.NewService(store, store, store, notify.NewHub()), store)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	register := func(email, name string) *v1.AuthResponse {
		resp, err := client.Register(ctx, &v1.RegisterRequest{Email: email, Password: "testPass123", DisplayName: name})
		if err != nil {
			t.Fatalf("Register RPC failed: %v", err)
		}
		if resp.Token == "" || resp.User == nil || resp.User.ID == "" {
			t.Fatalf("Register response missing token or user")
		}
		return resp
	}
	alice := register("alice@example.com", "Alice")
	bob := register("bob@example.com", "Bob")
	carol := register("carol@example.com", "Carol")
	aliceCtx := withToken(ctx, alice.Token)
	bobCtx := withToken(ctx, bob.Token)

	// no token
	if _, err := client.GetUser(ctx, &v1.GetUserRequest{UserID: alice.User.ID}); status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated without token, got %v", err)
	}

	opened, err := client.OpenPrivateChat(aliceCtx, &v1.OpenPrivateChatRequest{PeerID: bob.User.ID})
	if err != nil {
		t.Fatalf("OpenPrivateChat RPC failed: %v", err)
	}
	want, _ := rooms.ID(alice.User.ID, bob.User.ID)
	if opened.RoomID != want {
		t.Fatalf("room id = %s, want %s", opened.RoomID, want)
	}

	sub, err := client.SubscribeRoom(bobCtx, &v1.SubscribeRoomRequest{RoomID: opened.RoomID})
	if err != nil {
		t.Fatalf("SubscribeRoom RPC failed: %v", err)
	}
	first, err := sub.Recv()
	if err != nil {
		t.Fatalf("initial snapshot: %v", err)
	}
	if len(first.Messages) != 0 {
		t.Fatalf("expected empty room, got %d messages", len(first.Messages))
	}

	if _, err := client.SendMessage(aliceCtx, &v1.SendMessageRequest{RoomID: opened.RoomID, Text: "hi"}); err != nil {
		t.Fatalf("SendMessage RPC failed: %v", err)
	}
	snap, err := sub.Recv()
	if err != nil {
		t.Fatalf("snapshot after send: %v", err)
	}
	if len(snap.Messages) != 1 || snap.Messages[0].Text != "hi" || snap.Messages[0].AuthorID != alice.User.ID {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.Messages[0].CreatedAt == nil || snap.Messages[0].CreatedAt.AsTime().IsZero() {
		t.Fatal("timestamp lost on the wire")
	}

	if _, err := client.SendMessage(bobCtx, &v1.SendMessageRequest{RoomID: opened.RoomID, Text: "hey"}); err != nil {
		t.Fatalf("SendMessage RPC failed: %v", err)
	}

	history, err := client.GetHistory(aliceCtx, &v1.GetHistoryRequest{RoomID: opened.RoomID})
	if err != nil {
		t.Fatalf("GetHistory RPC failed: %v", err)
	}
	var texts []string
	for {
		m, err := history.Recv()
		if err != nil {
			break
		}
		texts = append(texts, m.Text)
	}
	if len(texts) != 2 || texts[0] != "hi" || texts[1] != "hey" {
		t.Fatalf("expected [hi hey], got %v", texts)
	}

	chats, err := client.ListChats(bobCtx, &v1.ListChatsRequest{})
	if err != nil {
		t.Fatalf("ListChats RPC failed: %v", err)
	}
	c, err := chats.Recv()
	if err != nil {
		t.Fatalf("ListChats recv: %v", err)
	}
	if c.PeerID != alice.User.ID || c.LastMessage != "hey" {
		t.Fatalf("unexpected chat summary: %+v", c)
	}

	_, err = client.SendMessage(withToken(ctx, carol.Token), &v1.SendMessageRequest{RoomID: opened.RoomID, Text: "me too"})
	if status.Code(err) != codes.PermissionDenied {
		t.Fatalf("outsider send: expected PermissionDenied, got %v", err)
	}
}

func TestSubscribeUsersOverGRPC(t *testing.T) {
	store := data.NewMemory()
	client := startBufServer(t, chat.NewService(store, store, store, notify.NewHub()), store)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	zed, err := client.Register(ctx, &v1.RegisterRequest{Email: "zed@example.com", Password: "testPass123", DisplayName: "Zed"})
	if err != nil {
		t.Fatalf("Register RPC failed: %v", err)
	}
	zedCtx := withToken(ctx, zed.Token)

	sub, err := client.SubscribeUsers(zedCtx, &v1.SubscribeUsersRequest{})
	if err != nil {
		t.Fatalf("SubscribeUsers RPC failed: %v", err)
	}
	if snap, err := sub.Recv(); err != nil || len(snap.Users) != 1 {
		t.Fatalf("initial directory: %+v, %v", snap, err)
	}

	if _, err := client.Register(ctx, &v1.RegisterRequest{Email: "ann@example.com", Password: "testPass123", DisplayName: "Ann"}); err != nil {
		t.Fatalf("Register RPC failed: %v", err)
	}
	snap, err := sub.Recv()
	if err != nil {
		t.Fatalf("directory after register: %v", err)
	}
	if len(snap.Users) != 2 || snap.Users[0].DisplayName != "Ann" || snap.Users[1].DisplayName != "Zed" {
		t.Fatalf("expected [Ann Zed], got %+v", snap.Users)
	}

	if _, err := client.Logout(zedCtx, &v1.LogoutRequest{}); err != nil {
		t.Fatalf("Logout RPC failed: %v", err)
	}
	snap, err = sub.Recv()
	if err != nil {
		t.Fatalf("directory after logout: %v", err)
	}
	if snap.Users[1].Status != string(data.StatusOffline) {
		t.Fatalf("expected Zed offline, got %+v", snap.Users[1])
	}
}

func TestSubscribeChatsOverGRPC(t *testing.T) {
	store := data.NewMemory()
	client := startBufServer(t, chat.NewService(store, store, store, notify.NewHub()), store)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	alice, err := client.Register(ctx, &v1.RegisterRequest{Email: "alice@example.com", Password: "testPass123", DisplayName: "Alice"})
	if err != nil {
		t.Fatalf("Register RPC failed: %v", err)
	}
	bob, err := client.Register(ctx, &v1.RegisterRequest{Email: "bob@example.com", Password: "testPass123", DisplayName: "Bob"})
	if err != nil {
		t.Fatalf("Register RPC failed: %v", err)
	}
	aliceCtx := withToken(ctx, alice.Token)

	sub, err := client.SubscribeChats(aliceCtx, &v1.SubscribeChatsRequest{})
	if err != nil {
		t.Fatalf("SubscribeChats RPC failed: %v", err)
	}
	if snap, err := sub.Recv(); err != nil || len(snap.Chats) != 0 {
		t.Fatalf("initial chats: %+v, %v", snap, err)
	}

	opened, err := client.OpenPrivateChat(withToken(ctx, bob.Token), &v1.OpenPrivateChatRequest{PeerID: alice.User.ID})
	if err != nil {
		t.Fatalf("OpenPrivateChat RPC failed: %v", err)
	}
	snap, err := sub.Recv()
	if err != nil {
		t.Fatalf("chats after open: %v", err)
	}
	if len(snap.Chats) != 1 || snap.Chats[0].RoomID != opened.RoomID || snap.Chats[0].PeerID != bob.User.ID {
		t.Fatalf("unexpected chats: %+v", snap.Chats)
	}

	if _, err := client.SendMessage(withToken(ctx, bob.Token), &v1.SendMessageRequest{RoomID: opened.RoomID, Text: "yo"}); err != nil {
		t.Fatalf("SendMessage RPC failed: %v", err)
	}
	snap, err = sub.Recv()
	if err != nil {
		t.Fatalf("chats after send: %v", err)
	}
	if snap.Chats[0].LastMessage != "yo" {
		t.Fatalf("expected last message yo, got %+v", snap.Chats[0])
	}
}

func TestRegisterAndLoginMongo(t *testing.T) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping integration test")
	}

	ctx := context.Background()
	dbClient, err := db.New(ctx, uri, "chat_db_test")
	if err != nil {
		t.Fatalf("db.New failed: %v", err)
	}
	defer func() {
		_ = dbClient.Database().Drop(context.Background())
		_ = dbClient.Close(context.Background())
	}()
	if err := dbClient.CreateIndexes(ctx); err != nil {
		t.Fatalf("CreateIndexes failed: %v", err)
	}

	users := data.NewUsersStore(dbClient.UsersCollection())
	svc := chat.NewService(users, data.NewRoomsStore(dbClient.RoomsCollection()), data.NewMessagesStore(dbClient.MessagesCollection(), dbClient.LedgerHeadsCollection()), notify.NewHub())
	client := startBufServer(t, svc, users)

	email := time.Now().UTC().Format("20060102-150405") + "-it@example.com"
	pwd := "testPass123"

	regResp, err := client.Register(ctx, &v1.RegisterRequest{Email: email, Password: pwd})
	if err != nil {
		t.Fatalf("Register RPC failed: %v", err)
	}
	if regResp.Token == "" || regResp.User.ID == "" {
		t.Fatalf("Register response missing token or user id")
	}

	loginResp, err := client.Login(ctx, &v1.LoginRequest{Email: email, Password: pwd})
	if err != nil {
		t.Fatalf("Login RPC failed: %v", err)
	}
	if loginResp.Token == "" {
		t.Fatalf("Login response missing token")
	}

	if _, err := client.SendMessage(withToken(ctx, loginResp.Token), &v1.SendMessageRequest{RoomID: rooms.GroupID, Text: "hello"}); err != nil {
		t.Fatalf("SendMessage RPC failed: %v", err)
	}
}
