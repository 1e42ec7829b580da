package pubsub

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/roboricindustries/chatview/pkg/schemas/common"
)

// RetrySpec configures the DLX-based retry pipeline.
type RetrySpec struct {
	Enabled     bool
	TTL         time.Duration
	MaxAttempts int

	DeadExchange  string
	DeadQueue     string
	FinalExchange string
	FinalQueue    string
}

// ConsumerSpec defines a single supervised consumer.
type ConsumerSpec struct {
	Name         string
	Exchange     string
	ExchangeKind string // default: topic
	Queue        string
	BindingKey   string
	Prefetch     int // 0 => Config.ConsumerPrefetch
	Retry        *RetrySpec

	// PoisonToFinal copies poison messages to the final queue before acking them.
	PoisonToFinal bool

	Consume func(ctx context.Context, d amqp.Delivery) error
}

// ErrPoison marks a delivery that can never succeed, e.g. an undecodable body.
var ErrPoison = errors.New("poison message")

// Poison wraps err so the consumer acks the delivery instead of retrying it.
func Poison(err error) error {
	return fmt.Errorf("%w: %w", ErrPoison, err)
}

// JSONHandler decodes the delivery as an envelope of T and hands it to h.
// Decode failures and mismatched event types are poison.
func JSONHandler[T any](eventType string, h func(context.Context, common.GenericEnvelope[T]) error) func(context.Context, amqp.Delivery) error {
	return func(ctx context.Context, d amqp.Delivery) error {
		env, err := common.DecodeEnvelope[T](d.Body, eventType)
		if err != nil {
			return Poison(err)
		}
		if env.Meta.CorrelationID == nil && d.CorrelationId != "" {
			env.Meta = env.Meta.WithCorrelation(d.CorrelationId)
		}
		return h(ctx, env)
	}
}

// consumerExit reports a consumer goroutine that stopped while its context was
// still live. gen is the connection generation the consumer was started on.
type consumerExit struct {
	name string
	gen  uint64
}

// restarts tracks the connection generation and per-consumer restart attempts.
// Exits and retries tagged with an older generation are stale: the reconnect
// that bumped the generation already restarted every consumer.
type restarts struct {
	gen      uint64
	attempts map[string]int
}

func newRestarts() *restarts {
	return &restarts{attempts: map[string]int{}}
}

func (r *restarts) current(gen uint64) bool { return gen == r.gen }

// advance starts a new generation after a reconnect.
func (r *restarts) advance() {
	r.gen++
	clear(r.attempts)
}

func (r *restarts) succeeded(name string) { delete(r.attempts, name) }

// backoff records a failed restart of name and returns the wait before the next try.
func (r *restarts) backoff(name string, cfg Config) time.Duration {
	r.attempts[name]++
	wait := cfg.ReconnectBackoffBase
	for i := 1; i < r.attempts[name] && wait < cfg.ReconnectBackoffCap; i++ {
		wait *= 2
	}
	return JitteredDelay(min(wait, cfg.ReconnectBackoffCap), cfg.ReconnectBackoffCap, cfg.ReconnectJitterPercent)
}

// RunWithConsumers starts every spec and supervises them until ctx ends,
// restarting closed consumers and reconnecting after connection loss.
func (c *Client) RunWithConsumers(ctx context.Context, specs ...ConsumerSpec) error {
	c.consumerClosed = make(chan consumerExit, len(specs))
	c.consumerSpecs = make(map[string]ConsumerSpec, len(specs))
	state := newRestarts()
	retryCh := make(chan consumerExit, len(specs))

	for _, s := range specs {
		c.consumerSpecs[s.Name] = s
		if err := c.startConsumer(ctx, s, state.gen); err != nil {
			return fmt.Errorf("start %s: %w", s.Name, err)
		}
	}

	restart := func(s ConsumerSpec) {
		err := c.startConsumer(ctx, s, state.gen)
		if err == nil {
			state.succeeded(s.Name)
			return
		}
		wait := state.backoff(s.Name, c.config)
		c.log.Error("restart consumer failed", zap.String("name", s.Name), zap.Duration("retry_in", wait), zap.Error(err))
		ev := consumerExit{name: s.Name, gen: state.gen}
		time.AfterFunc(wait, func() {
			select {
			case retryCh <- ev:
			case <-ctx.Done():
			}
		})
	}

	conn, _ := c.current()
	errCh := conn.NotifyClose(make(chan *amqp.Error, 1))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev := <-c.consumerClosed:
			if !state.current(ev.gen) {
				continue
			}
			if s, ok := c.consumerSpecs[ev.name]; ok {
				restart(s)
			}

		case ev := <-retryCh:
			if !state.current(ev.gen) {
				continue
			}
			if s, ok := c.consumerSpecs[ev.name]; ok {
				restart(s)
			}

		case err, ok := <-errCh:
			if !ok {
				err = &amqp.Error{Reason: "connection closed"}
			}
			c.log.Error("amqp connection closed, reconnecting", zap.Error(err))
			if rerr := c.reconnect(ctx); rerr != nil {
				return rerr
			}
			state.advance()
			for _, s := range c.consumerSpecs {
				restart(s)
			}
			conn, _ := c.current()
			errCh = conn.NotifyClose(make(chan *amqp.Error, 1))
		}
	}
}

func (c *Client) reconnect(ctx context.Context) error {
	backoff := c.config.ReconnectBackoffBase
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := c.connect(ctx)
		if err == nil {
			c.log.Info("reconnected")
			return nil
		}
		wait := JitteredDelay(backoff, c.config.ReconnectBackoffCap, c.config.ReconnectJitterPercent)
		c.log.Error("reconnect failed", zap.Error(err), zap.Duration("retry_in", wait))
		if err := sleepCtx(ctx, wait); err != nil {
			return err
		}
		backoff = min(backoff*2, c.config.ReconnectBackoffCap)
	}
}

// startConsumer declares the per-consumer topology and runs its delivery loop.
func (c *Client) startConsumer(ctx context.Context, spec ConsumerSpec, gen uint64) error {
	conn, _ := c.current()
	ch, err := conn.Channel()
	if err != nil {
		return err
	}

	pf := spec.Prefetch
	if pf <= 0 {
		pf = c.config.ConsumerPrefetch
	}
	if err := ch.Qos(pf, 0, false); err != nil {
		_ = ch.Close()
		return err
	}
	if err := declareConsumerTopology(ch, spec); err != nil {
		_ = ch.Close()
		return err
	}
	msgs, err := ch.Consume(spec.Queue, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return err
	}
	closeCh := ch.NotifyClose(make(chan *amqp.Error, 1))
	log := c.log.With(zap.String("consumer", spec.Name))

	c.consumerWG.Add(1)
	go func() {
		defer c.consumerWG.Done()
		defer func() { _ = SafeClose(ch) }()
		exited := func() {
			select {
			case c.consumerClosed <- consumerExit{name: spec.Name, gen: gen}:
			case <-ctx.Done():
			}
		}
		for {
			select {
			case <-ctx.Done():
				return

			case <-closeCh:
				drainRequeue(msgs)
				exited()
				return

			case d, ok := <-msgs:
				if !ok {
					exited()
					return
				}
				c.handle(ctx, ch, spec, d, log)
			}
		}
	}()

	log.Info("consumer started", zap.String("queue", spec.Queue), zap.Int("prefetch", pf))
	return nil
}

func (c *Client) handle(ctx context.Context, ch *amqp.Channel, spec ConsumerSpec, d amqp.Delivery, log *zap.Logger) {
	retry := spec.Retry != nil && spec.Retry.Enabled
	if retry && spec.Retry.MaxAttempts > 0 && DeathCount(d, spec.Queue) >= spec.Retry.MaxAttempts {
		log.Warn("retries exhausted", zap.String("message_id", d.MessageId))
		_ = PublishFinal(ch, FirstNonEmpty(spec.Retry.FinalExchange, spec.Queue+".final"), d)
		_ = d.Ack(false)
		return
	}

	err := spec.Consume(ctx, d)
	switch {
	case err == nil:
		_ = d.Ack(false)

	case errors.Is(err, ErrPoison):
		log.Warn("poison message", zap.String("message_id", d.MessageId), zap.Error(err))
		if spec.PoisonToFinal {
			_ = PublishFinal(ch, FirstNonEmpty(TryFinalEx(spec), spec.Queue+".final"), d)
		}
		_ = d.Ack(false)

	case retry:
		log.Warn("handler failed, dead-lettering", zap.String("message_id", d.MessageId), zap.Error(err))
		_ = d.Nack(false, false)

	default:
		log.Warn("handler failed, requeueing", zap.String("message_id", d.MessageId), zap.Error(err))
		_ = d.Nack(false, true)
	}
}

// drainRequeue returns buffered deliveries to the queue.
func drainRequeue(msgs <-chan amqp.Delivery) {
	for {
		select {
		case d, ok := <-msgs:
			if !ok {
				return
			}
			_ = d.Nack(false, true)
		default:
			return
		}
	}
}

// declareConsumerTopology declares the main queue and binding, the DLX/TTL retry
// stage and the final queue.
func declareConsumerTopology(ch *amqp.Channel, s ConsumerSpec) error {
	kind := FirstNonEmpty(s.ExchangeKind, "topic")
	if err := ch.ExchangeDeclare(s.Exchange, kind, true, false, false, false, nil); err != nil {
		return err
	}
	retry := s.Retry != nil && s.Retry.Enabled

	mainArgs := amqp.Table{}
	if retry {
		mainArgs["x-dead-letter-exchange"] = FirstNonEmpty(s.Retry.DeadExchange, s.Queue+".dead")
	}
	if _, err := ch.QueueDeclare(s.Queue, true, false, false, false, mainArgs); err != nil {
		return err
	}
	if err := ch.QueueBind(s.Queue, s.BindingKey, s.Exchange, false, nil); err != nil {
		return err
	}

	if retry {
		deadEx := FirstNonEmpty(s.Retry.DeadExchange, s.Queue+".dead")
		deadQ := FirstNonEmpty(s.Retry.DeadQueue, s.Queue+".dead")
		if err := ch.ExchangeDeclare(deadEx, "fanout", true, false, false, false, nil); err != nil {
			return err
		}
		args := amqp.Table{
			"x-message-ttl":             int32(s.Retry.TTL / time.Millisecond),
			"x-dead-letter-exchange":    s.Exchange,
			"x-dead-letter-routing-key": s.BindingKey,
		}
		if _, err := ch.QueueDeclare(deadQ, true, false, false, false, args); err != nil {
			return err
		}
		if err := ch.QueueBind(deadQ, "", deadEx, false, nil); err != nil {
			return err
		}
	}

	if retry || s.PoisonToFinal {
		finalEx := FirstNonEmpty(TryFinalEx(s), s.Queue+".final")
		finalQ := FirstNonEmpty(TryFinalQ(s), s.Queue+".final")
		if err := ch.ExchangeDeclare(finalEx, "fanout", true, false, false, false, nil); err != nil {
			return err
		}
		if _, err := ch.QueueDeclare(finalQ, true, false, false, false, nil); err != nil {
			return err
		}
		if err := ch.QueueBind(finalQ, "", finalEx, false, nil); err != nil {
			return err
		}
	}
	return nil
}
