package middleware

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

type dummy struct{ email string }

func (d dummy) GetEmail() string { return d.email }

func TestLimiterStore_AllowAndCleanup(t *testing.T) {
	// allow 5 events immediately then the 6th should be rejected
	s := NewLimiterStore(5, 5, time.Hour)
	defer s.Stop()

	key := "test@example.com"
	for i := 0; i < 5; i++ {
		if !s.Allow(key) {
			t.Fatalf("expected allow at iteration %d", i)
		}
	}
	if s.Allow(key) {
		t.Fatalf("expected limiter to block after burst consumed")
	}

	s.sweep(time.Now().Add(time.Second))
	s.mu.Lock()
	_, kept := s.clients[key]
	s.mu.Unlock()
	if kept {
		t.Fatal("idle entry should have been swept")
	}
	if !s.Allow(key) {
		t.Fatal("a swept key starts with a fresh budget")
	}
	s.Stop()
}

func TestByEmail(t *testing.T) {
	if k, ok := ByEmail(context.Background(), dummy{" A@Example.com"}); !ok || k != "email:a@example.com" {
		t.Fatalf("ByEmail = %q, %v", k, ok)
	}
	if _, ok := ByEmail(context.Background(), dummy{""}); ok {
		t.Fatal("empty email must fall back")
	}
	if _, ok := ByEmail(context.Background(), struct{}{}); ok {
		t.Fatal("request without email must fall back")
	}
}

func TestRateLimitUnaryInterceptor(t *testing.T) {
	s := NewLimiterStore(1, 1, time.Hour)
	defer s.Stop()

	const limited = "/chat.v1.ChatService/Login"
	icpt := RateLimitUnaryInterceptor(s, map[string]bool{limited: true}, ByEmail)
	handler := func(ctx context.Context, req any) (any, error) { return "ok", nil }
	ctx := peer.NewContext(context.Background(), &peer.Peer{Addr: &net.TCPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 1}})

	call := func(method string, req any) error {
		_, err := icpt(ctx, req, &grpc.UnaryServerInfo{FullMethod: method}, handler)
		return err
	}

	if err := call(limited, dummy{"a@example.com"}); err != nil {
		t.Fatalf("first call rejected: %v", err)
	}
	if err := call(limited, dummy{"a@example.com"}); status.Code(err) != codes.ResourceExhausted {
		t.Fatalf("expected ResourceExhausted, got %v", err)
	}
	// a different account has its own budget
	if err := call(limited, dummy{"b@example.com"}); err != nil {
		t.Fatalf("other email rejected: %v", err)
	}
	// unlimited methods pass through
	for i := 0; i < 3; i++ {
		if err := call("/chat.v1.ChatService/GetUser", dummy{"a@example.com"}); err != nil {
			t.Fatalf("unlimited method rejected: %v", err)
		}
	}
	// falls back to the peer address
	if err := call(limited, struct{}{}); err != nil {
		t.Fatalf("first peer-keyed call rejected: %v", err)
	}
	if err := call(limited, struct{}{}); status.Code(err) != codes.ResourceExhausted {
		t.Fatalf("expected peer key to be limited, got %v", err)
	}
}
