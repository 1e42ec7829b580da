package pubsub

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	errPoolClosed = errors.New("channel pool closed")
	errConnClosed = errors.New("amqp connection closed")
)

// ChannelPool keeps a bounded number of publishing channels alive.
// Invariant: len(permits) == open channels (idle + borrowed) <= capacity.
type ChannelPool struct {
	conn    *amqp.Connection
	idle    chan *amqp.Channel
	permits chan struct{}

	closed atomic.Bool
	openMu sync.Mutex
}

func NewChannelPool(conn *amqp.Connection, capacity int) *ChannelPool {
	if capacity <= 0 {
		capacity = 16
	}
	return &ChannelPool{
		conn:    conn,
		idle:    make(chan *amqp.Channel, capacity),
		permits: make(chan struct{}, capacity),
	}
}

// Borrow returns an idle channel or opens a new one while under capacity,
// waiting retryDelay between attempts until ctx ends.
func (cp *ChannelPool) Borrow(ctx context.Context, retryDelay time.Duration) (*amqp.Channel, error) {
	if retryDelay <= 0 {
		retryDelay = 50 * time.Millisecond
	}
	for {
		if cp.closed.Load() {
			return nil, errPoolClosed
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case ch, ok := <-cp.idle:
			if !ok {
				return nil, errPoolClosed
			}
			if !ch.IsClosed() && !cp.conn.IsClosed() {
				return ch, nil
			}
			// The permit stays with the replacement.
			_ = SafeClose(ch)
			if nch, err := cp.open(); err == nil {
				return nch, nil
			}
			cp.release()
			if err := sleepCtx(ctx, retryDelay); err != nil {
				return nil, err
			}

		default:
			if cp.conn.IsClosed() {
				return nil, errConnClosed
			}
			select {
			case cp.permits <- struct{}{}:
				nch, err := cp.open()
				if err == nil {
					return nch, nil
				}
				cp.release()
				if err := sleepCtx(ctx, retryDelay); err != nil {
					return nil, err
				}
			case ch, ok := <-cp.idle:
				if !ok {
					return nil, errPoolClosed
				}
				if !ch.IsClosed() {
					return ch, nil
				}
				_ = SafeClose(ch)
				cp.release()
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}
}

// Return hands ch back; broken channels are closed and their permit released.
func (cp *ChannelPool) Return(ch *amqp.Channel) {
	if ch == nil {
		return
	}
	if cp.closed.Load() || cp.conn.IsClosed() || ch.IsClosed() {
		_ = SafeClose(ch)
		cp.release()
		return
	}
	select {
	case cp.idle <- ch:
	default:
		_ = SafeClose(ch)
		cp.release()
	}
}

// Discard closes a borrowed channel instead of returning it.
func (cp *ChannelPool) Discard(ch *amqp.Channel) {
	_ = SafeClose(ch)
	cp.release()
}

func (cp *ChannelPool) Close() {
	if cp.closed.Swap(true) {
		return
	}
	for {
		select {
		case ch := <-cp.idle:
			_ = SafeClose(ch)
			cp.release()
		default:
			return
		}
	}
}

func (cp *ChannelPool) release() {
	select {
	case <-cp.permits:
	default:
	}
}

func (cp *ChannelPool) open() (*amqp.Channel, error) {
	cp.openMu.Lock()
	defer cp.openMu.Unlock()
	if cp.conn.IsClosed() {
		return nil, errConnClosed
	}
	return cp.conn.Channel()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
