package pubsub

import (
	"context"
	"math/rand/v2"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// JitteredDelay spreads base by ±jitterPct percent (default 25) and caps it.
func JitteredDelay(base, cap time.Duration, jitterPct int) time.Duration {
	if jitterPct <= 0 {
		jitterPct = 25
	}
	delta := (rand.Float64()*2 - 1) * float64(jitterPct) / 100.0
	wait := time.Duration(float64(base) * (1 + delta))
	if wait < 0 {
		wait = base
	}
	return min(wait, cap)
}

func FirstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func TryFinalEx(s ConsumerSpec) string {
	if s.Retry != nil {
		return s.Retry.FinalExchange
	}
	return ""
}

func TryFinalQ(s ConsumerSpec) string {
	if s.Retry != nil {
		return s.Retry.FinalQueue
	}
	return ""
}

// DeathCount reads how many times d was dead-lettered from queue.
func DeathCount(d amqp.Delivery, queue string) int {
	list, ok := d.Headers["x-death"].([]any)
	if !ok {
		return 0
	}
	for _, it := range list {
		m, ok := it.(amqp.Table)
		if !ok {
			continue
		}
		if q, _ := m["queue"].(string); q != queue {
			continue
		}
		switch n := m["count"].(type) {
		case int64:
			return int(n)
		case int32:
			return int(n)
		}
	}
	return 0
}

// PublishFinal copies d to the fanout exchange holding undeliverable messages.
func PublishFinal(ch *amqp.Channel, exchange string, d amqp.Delivery) error {
	return ch.PublishWithContext(context.Background(), exchange, "", false, false, amqp.Publishing{
		ContentType:   FirstNonEmpty(d.ContentType, "application/json"),
		Body:          d.Body,
		Headers:       d.Headers,
		MessageId:     d.MessageId,
		CorrelationId: d.CorrelationId,
		DeliveryMode:  amqp.Persistent,
		Timestamp:     time.Now(),
		Type:          d.Type,
		AppId:         d.AppId,
	})
}

func SafeClose(ch *amqp.Channel) error {
	if ch == nil {
		return nil
	}
	defer func() { _ = recover() }()
	return ch.Close()
}
