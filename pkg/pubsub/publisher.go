package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/roboricindustries/chatview/pkg/schemas/common"
)

// Publisher sends envelopes to the exchange and routing key named by em.
type Publisher interface {
	Publish(ctx context.Context, em common.EventMeta, env common.Envelope) error
	Close() error
}

var _ Publisher = (*Client)(nil)

var errNacked = errors.New("publish nacked by broker")

// Publish marshals env and sends it persistently. With PublisherConfirms set it
// waits for the broker ack.
func (c *Client) Publish(ctx context.Context, em common.EventMeta, env common.Envelope) error {
	msg, err := c.publishing(env)
	if err != nil {
		return err
	}
	if c.config.PublisherConfirms {
		return c.WithConfirmChan(ctx, func(ch *amqp.Channel, confirms <-chan amqp.Confirmation) error {
			if err := ch.PublishWithContext(ctx, em.Exchange, em.RoutingKey, false, false, msg); err != nil {
				return err
			}
			select {
			case conf := <-confirms:
				if !conf.Ack {
					return errNacked
				}
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}

	_, pool := c.current()
	ch, err := pool.Borrow(ctx, c.config.PoolRetryDelay)
	if err != nil {
		return fmt.Errorf("borrow channel: %w", err)
	}
	defer pool.Return(ch)
	return ch.PublishWithContext(ctx, em.Exchange, em.RoutingKey, false, false, msg)
}

func (c *Client) publishing(env common.Envelope) (amqp.Publishing, error) {
	if env.Meta.ID == "" {
		return amqp.Publishing{}, errors.New("envelope meta id is required")
	}
	if env.Meta.Time.IsZero() {
		env.Meta.Time = time.Now().UTC()
	}
	body, err := json.Marshal(env)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal envelope: %w", err)
	}
	return amqp.Publishing{
		ContentType:   "application/json",
		Body:          body,
		DeliveryMode:  amqp.Persistent,
		MessageId:     env.Meta.ID,
		CorrelationId: env.Meta.Correlation(),
		Type:          env.Meta.Type,
		Timestamp:     env.Meta.Time,
		AppId:         c.config.Producer,
	}, nil
}

// WithConfirmChan runs fn on a pooled channel in confirm mode.
func (c *Client) WithConfirmChan(
	ctx context.Context,
	fn func(ch *amqp.Channel, confirms <-chan amqp.Confirmation) error,
) error {
	_, pool := c.current()
	ch, err := pool.Borrow(ctx, c.config.PoolRetryDelay)
	if err != nil {
		return fmt.Errorf("borrow channel: %w", err)
	}
	// Confirm listeners cannot be removed, so the channel is not reused.
	defer pool.Discard(ch)

	if err := ch.Confirm(false); err != nil {
		return fmt.Errorf("confirm mode: %w", err)
	}
	confirms := ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	return fn(ch, confirms)
}
