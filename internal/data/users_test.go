package data

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/PaulBabatuyi/roomChat-gRPC/internal/db"
)

func setupDB(t *testing.T) *db.Client {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping integration test")
	}

	ctx := context.Background()
	c, err := db.New(ctx, uri, "chat_db_test")
	if err != nil {
		t.Fatalf("db.New failed: %v", err)
	}

	// ensure clean collections in case previous runs left data
	_ = c.UsersCollection().Drop(ctx)
	_ = c.MessagesCollection().Drop(ctx)
	_ = c.LedgerHeadsCollection().Drop(ctx)
	_ = c.RoomsCollection().Drop(ctx)

	if err := c.CreateIndexes(ctx); err != nil {
		t.Fatalf("CreateIndexes failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return c
}

func TestUsersCreateAndGet(t *testing.T) {
	c := setupDB(t)
	users := NewUsersStore(c.UsersCollection())

	ctx := context.Background()
	email := time.Now().UTC().Format("20060102-150405") + "-integration@example.com"

	user, err := users.CreateUser(ctx, email, "hashed-password", "Integration")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.Email != email || user.Status != StatusOnline {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := users.CreateUser(ctx, email, "x", "Dup"); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	u2, err := users.GetUserByEmail(ctx, email)
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if u2.ID != user.ID {
		t.Fatalf("GetUserByEmail returned wrong user: %s", u2.ID)
	}

	if err := users.SetStatus(ctx, user.ID, StatusOffline, time.Now()); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	got, err := users.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if got.Status != StatusOffline {
		t.Fatalf("expected offline, got %s", got.Status)
	}

	if _, err := users.GetUserByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUsersListOrderedByDisplayName(t *testing.T) {
	c := setupDB(t)
	users := NewUsersStore(c.UsersCollection())
	ctx := context.Background()

	if _, err := users.CreateUser(ctx, "zed@example.com", "h", "Zed"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if _, err := users.CreateUser(ctx, "ann@example.com", "h", "Ann"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	list, err := users.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(list) != 2 || list[0].DisplayName != "Ann" || list[1].DisplayName != "Zed" {
		t.Fatalf("unexpected order: %+v", list)
	}
}
