package pubsub

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Config defines client settings and the exchanges declared on connect.
type Config struct {
	URL string
	// Producer is stamped as AppId on every publishing.
	Producer string
	// Exchanges are declared as durable topic exchanges on connect and reconnect.
	Exchanges []string

	PublishPoolSize  int
	ConsumerPrefetch int
	// PublisherConfirms waits for a broker ack on every Publish.
	PublisherConfirms bool

	ConnTimeout    time.Duration
	DialAttempts   int
	DialDelay      time.Duration
	PoolRetryDelay time.Duration

	ReconnectBackoffBase   time.Duration
	ReconnectBackoffCap    time.Duration
	ReconnectJitterPercent int

	Dialer func(ctx context.Context, url string) (*amqp.Connection, error)
}

func (c Config) withDefaults() Config {
	if c.PublishPoolSize <= 0 {
		c.PublishPoolSize = 16
	}
	if c.ConsumerPrefetch <= 0 {
		c.ConsumerPrefetch = 1
	}
	if c.ConnTimeout <= 0 {
		c.ConnTimeout = 30 * time.Second
	}
	if c.DialAttempts <= 0 {
		c.DialAttempts = 1
	}
	if c.DialDelay <= 0 {
		c.DialDelay = time.Second
	}
	if c.PoolRetryDelay <= 0 {
		c.PoolRetryDelay = 50 * time.Millisecond
	}
	if c.ReconnectBackoffBase <= 0 {
		c.ReconnectBackoffBase = time.Second
	}
	if c.ReconnectBackoffCap <= 0 {
		c.ReconnectBackoffCap = 30 * time.Second
	}
	if c.Dialer == nil {
		c.Dialer = func(_ context.Context, u string) (*amqp.Connection, error) { return amqp.Dial(u) }
	}
	return c
}
