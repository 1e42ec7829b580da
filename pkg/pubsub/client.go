package pubsub

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Client owns one AMQP connection, a publishing channel pool and any number of
// supervised consumers.
type Client struct {
	mu     sync.RWMutex
	conn   *amqp.Connection
	pool   *ChannelPool
	config Config
	log    *zap.Logger

	consumerWG     sync.WaitGroup
	consumerClosed chan consumerExit
	consumerSpecs  map[string]ConsumerSpec
}

func (c *Client) Config() Config { return c.config }

func NewClient(ctx context.Context, config Config, logger *zap.Logger) (*Client, error) {
	if config.URL == "" {
		return nil, errors.New("pubsub: broker URL is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	config = config.withDefaults()
	c := &Client{config: config, log: logger.Named("pubsub")}

	host := ""
	if u, err := url.Parse(config.URL); err == nil {
		host = u.Host
	}
	c.log.Info("connecting to rabbitmq", zap.String("host", host))

	dctx, cancel := context.WithTimeout(ctx, config.ConnTimeout)
	defer cancel()
	if err := c.connect(dctx); err != nil {
		return nil, err
	}
	c.log.Info("client ready", zap.Int("pool_size", config.PublishPoolSize))
	return c, nil
}

// connect dials with retry, declares exchanges and swaps in a fresh pool.
func (c *Client) connect(ctx context.Context) error {
	conn, err := c.dialWithRetry(ctx)
	if err != nil {
		return err
	}

	tmp, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if err := declareExchanges(tmp, c.config.Exchanges); err != nil {
		_ = tmp.Close()
		_ = conn.Close()
		return err
	}
	_ = tmp.Close()

	pool := NewChannelPool(conn, c.config.PublishPoolSize)

	c.mu.Lock()
	old, oldConn := c.pool, c.conn
	c.conn, c.pool = conn, pool
	c.mu.Unlock()

	if old != nil {
		old.Close()
	}
	if oldConn != nil && !oldConn.IsClosed() {
		_ = oldConn.Close()
	}
	return nil
}

// dialWithRetry backs off exponentially between attempts, capped at the
// reconnect cap, and gives up when ctx ends.
func (c *Client) dialWithRetry(ctx context.Context) (*amqp.Connection, error) {
	var lastErr error
	sleep := c.config.DialDelay
	for i := 1; i <= c.config.DialAttempts; i++ {
		conn, err := c.config.Dialer(ctx, c.config.URL)
		if err == nil {
			if i > 1 {
				c.log.Info("rabbit connected", zap.Int("attempt", i))
			}
			return conn, nil
		}
		lastErr = err
		if i == c.config.DialAttempts {
			break
		}
		c.log.Warn("rabbit dial failed",
			zap.Int("attempt", i),
			zap.Duration("sleep", sleep),
			zap.Error(err),
		)
		t := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, fmt.Errorf("dial cancelled: %w", ctx.Err())
		case <-t.C:
		}
		sleep = min(sleep*2, c.config.ReconnectBackoffCap)
	}
	return nil, fmt.Errorf("connect to rabbitmq after %d attempts: %w", c.config.DialAttempts, lastErr)
}

func declareExchanges(ch *amqp.Channel, exchanges []string) error {
	for _, ex := range exchanges {
		if ex == "" {
			continue
		}
		if err := ch.ExchangeDeclare(ex, "topic", true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare exchange %q: %w", ex, err)
		}
	}
	return nil
}

func (c *Client) current() (*amqp.Connection, *ChannelPool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn, c.pool
}

// Healthy reports whether the underlying connection is open.
func (c *Client) Healthy() bool {
	conn, _ := c.current()
	return conn != nil && !conn.IsClosed()
}

// Close waits briefly for consumers to stop, then closes the pool and connection.
func (c *Client) Close() error {
	done := make(chan struct{})
	go func() {
		c.consumerWG.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		c.log.Warn("consumers still running at close")
	}

	conn, pool := c.current()
	if pool != nil {
		pool.Close()
	}
	if conn != nil && !conn.IsClosed() {
		return conn.Close()
	}
	return nil
}
