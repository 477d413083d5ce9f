package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	pkglog "github.com/PaulBabatuyi/roomChat-gRPC/internal/log"
)

// DefaultRedisPrefix namespaces the pub/sub channels used for change signals.
const DefaultRedisPrefix = "roomchat:changes:"

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	Prefix   string
}

// DialRedis connects to Redis and verifies the connection.
func DialRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// Redis is a Notifier that fans signals out to every server instance through
// Redis pub/sub. Each instance runs one pattern subscription (Run) and relays
// what it receives into a local Hub, which its own subscribers listen on.
type Redis struct {
	client *redis.Client
	prefix string
	local  *Hub
	doneCh chan struct{}
}

// NewRedis creates a Redis notifier. Run must be started for Subscribe to see signals.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{
		client: client,
		prefix: prefix,
		local:  NewHub(),
		doneCh: make(chan struct{}),
	}
}

// Publish signals this instance's subscribers directly, then every other
// instance through Redis. Local delivery does not depend on Redis being up.
func (r *Redis) Publish(ctx context.Context, topic string) error {
	if err := r.local.Publish(ctx, topic); err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.prefix+topic, "1").Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe implements Notifier using the local relay hub.
func (r *Redis) Subscribe(ctx context.Context, topic string) (<-chan struct{}, func(), error) {
	return r.local.Subscribe(ctx, topic)
}

// Done returns a channel that is closed when Run exits.
func (r *Redis) Done() <-chan struct{} { return r.doneCh }

// Run relays Redis signals into the local hub until ctx is done, reconnecting
// on receive errors. On exit every local subscriber is dropped.
func (r *Redis) Run(ctx context.Context) {
	defer close(r.doneCh)
	defer r.local.Close()
	l := pkglog.L()

	for {
		err := r.relay(ctx)
		if ctx.Err() != nil {
			return
		}
		l.Warn().Err(err).Msg("redis change subscription error, reconnecting in 2s")
		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
}

func (r *Redis) relay(ctx context.Context) error {
	pubsub := r.client.PSubscribe(ctx, r.prefix+"*")
	defer pubsub.Close()

	// Wait for subscription to be active
	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	// whatever other instances published while we were not subscribed is gone
	_ = r.local.PublishAll(ctx)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("redis pubsub channel closed")
			}
			topic := strings.TrimPrefix(msg.Channel, r.prefix)
			_ = r.local.Publish(ctx, topic)
		}
	}
}
