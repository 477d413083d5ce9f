package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/PaulBabatuyi/roomChat-gRPC/internal/metrics"
)

var errFeedClosed = errors.New("change feed closed")

// Subscription is a live stream of full snapshots. The first snapshot is
// delivered as soon as it is read; later ones follow every change. Snapshots
// not yet received are replaced by newer ones, so a slow reader skips
// intermediate states but always ends on the latest.
//
// The Updates channel is closed when the subscription ends, after which Err
// reports why (nil after Close or context cancellation).
type Subscription[T any] struct {
	updates chan T
	done    chan struct{}
	cancel  context.CancelFunc

	mu  sync.Mutex
	err error
}

// Updates returns the snapshot channel.
func (s *Subscription[T]) Updates() <-chan T { return s.updates }

// Done is closed once the subscription has released its resources.
func (s *Subscription[T]) Done() <-chan struct{} { return s.done }

// Err returns the error that ended the subscription, wrapping ErrSubscription.
func (s *Subscription[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops delivery and releases the change listener. It is safe to call
// more than once and returns after the subscription has fully stopped.
func (s *Subscription[T]) Close() {
	s.cancel()
	<-s.done
}

func (s *Subscription[T]) fail(cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = fmt.Errorf("%w: %v", ErrSubscription, cause)
	}
}

// offer hands snap to the reader, replacing an unread older snapshot.
func (s *Subscription[T]) offer(ctx context.Context, snap T) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case s.updates <- snap:
			return true
		default:
		}
		// drop the stale snapshot; if the reader took it first the next send succeeds
		select {
		case <-s.updates:
		default:
		}
	}
}

// watch starts the re-read loop. signals must already be registered so that
// no change between the first read and the first wait is missed.
func watch[T any](
	ctx context.Context,
	kind string,
	signals <-chan struct{},
	release func(),
	fetch func(context.Context) (T, error),
	same func(a, b T) bool,
) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription[T]{
		updates: make(chan T, 1),
		done:    make(chan struct{}),
		cancel:  cancel,
	}

	metrics.TrackSubscription(kind, true)
	go func() {
		defer close(sub.done)
		defer close(sub.updates)
		defer metrics.TrackSubscription(kind, false)
		defer release()
		defer cancel()

		var (
			last      T
			delivered bool
		)
		for {
			snap, err := fetch(ctx)
			if err != nil {
				if ctx.Err() == nil {
					sub.fail(err)
				}
				return
			}

			// duplicate signals re-read identical state; skip those
			if !delivered || !same(last, snap) {
				if !sub.offer(ctx, snap) {
					return
				}
				metrics.RecordSnapshot(kind)
				last, delivered = snap, true
			}

			select {
			case <-ctx.Done():
				return
			case _, ok := <-signals:
				if !ok {
					sub.fail(errFeedClosed)
					return
				}
			}
		}
	}()
	return sub
}
