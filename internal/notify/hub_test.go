package notify

import (
	"context"
	"errors"
	"testing"
)

func TestHub_PublishReachesEveryListener(t *testing.T) {
	hub := NewHub()
	ctx := context.Background()

	a, cancelA, err := hub.Subscribe(ctx, RoomTopic("alice_bob"))
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer cancelA()
	b, cancelB, _ := hub.Subscribe(ctx, RoomTopic("alice_bob"))
	defer cancelB()
	other, cancelOther, _ := hub.Subscribe(ctx, RoomTopic("group"))
	defer cancelOther()

	if err := hub.Publish(ctx, RoomTopic("alice_bob")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	for name, ch := range map[string]<-chan struct{}{"a": a, "b": b} {
		select {
		case <-ch:
		default:
			t.Fatalf("listener %s was not signalled", name)
		}
	}
	select {
	case <-other:
		t.Fatal("listener on another topic was signalled")
	default:
	}
}

func TestHub_BurstCoalesces(t *testing.T) {
	hub := NewHub()
	ch, cancel, _ := hub.Subscribe(context.Background(), UsersTopic)
	defer cancel()

	for i := 0; i < 10; i++ {
		_ = hub.Publish(context.Background(), UsersTopic)
	}

	<-ch
	select {
	case <-ch:
		t.Fatal("expected burst to coalesce into a single pending signal")
	default:
	}
}

func TestHub_CancelIsIdempotentAndStopsDelivery(t *testing.T) {
	hub := NewHub()
	ch, cancel, _ := hub.Subscribe(context.Background(), UsersTopic)

	cancel()
	cancel()

	if n := hub.Listeners(UsersTopic); n != 0 {
		t.Fatalf("expected no listeners after cancel, got %d", n)
	}
	_ = hub.Publish(context.Background(), UsersTopic)
	select {
	case <-ch:
		t.Fatal("cancelled listener was signalled")
	default:
	}
}

func TestHub_CloseDropsListeners(t *testing.T) {
	hub := NewHub()
	ch, cancel, _ := hub.Subscribe(context.Background(), UsersTopic)
	defer cancel()

	hub.Close()
	hub.Close()

	if _, ok := <-ch; ok {
		t.Fatal("expected listener channel to be closed")
	}
	if err := hub.Publish(context.Background(), UsersTopic); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed from Publish, got %v", err)
	}
	if _, _, err := hub.Subscribe(context.Background(), UsersTopic); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed from Subscribe, got %v", err)
	}
}

func TestHub_PublishAllSignalsEveryTopic(t *testing.T) {
	hub := NewHub()
	ctx := context.Background()

	room, cancelRoom, _ := hub.Subscribe(ctx, RoomTopic("group"))
	defer cancelRoom()
	users, cancelUsers, _ := hub.Subscribe(ctx, UsersTopic)
	defer cancelUsers()

	if err := hub.PublishAll(ctx); err != nil {
		t.Fatalf("PublishAll failed: %v", err)
	}
	for name, ch := range map[string]<-chan struct{}{"room": room, "users": users} {
		select {
		case <-ch:
		default:
			t.Fatalf("listener %s was not signalled", name)
		}
	}

	hub.Close()
	if err := hub.PublishAll(ctx); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after Close, got %v", err)
	}
}
