package pubsub

import (
	"context"

	"go.uber.org/zap"

	"github.com/roboricindustries/chatview/pkg/schemas/common"
)

// FallbackPublisher logs and drops everything. It stands in when no broker is
// configured.
type FallbackPublisher struct {
	log *zap.Logger
}

func NewFallback(logger *zap.Logger) Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackPublisher{log: logger.Named("pubsub")}
}

func (p *FallbackPublisher) Publish(_ context.Context, em common.EventMeta, env common.Envelope) error {
	p.log.Warn("fallback publisher: skipped publish",
		zap.String("exchange", em.Exchange),
		zap.String("routing_key", em.RoutingKey),
		zap.String("event_id", env.Meta.ID),
	)
	return nil
}

func (p *FallbackPublisher) Close() error { return nil }
