package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/roboricindustries/chatview/pkg/metrics"
	chat "github.com/roboricindustries/chatview/pkg/schemas/chat/v1"
	"github.com/roboricindustries/chatview/pkg/viewstate"
)

// PaidTexts serves decrypted paid text bodies stored by the purchase flow under
// paidtext:<message uuid>.
type PaidTexts struct{ R *redis.Client }

var _ viewstate.PaidContentFetcher = (*PaidTexts)(nil)

func paidTextKey(uuid string) string { return "paidtext:" + uuid }

// FetchPaidText returns nil without error while the body is not available yet.
func (p *PaidTexts) FetchPaidText(ctx context.Context, m *chat.Message) (*viewstate.TextBubble, error) {
	if m.UUID == "" {
		metrics.PaidTextFetches.WithLabelValues("miss").Inc()
		return nil, nil
	}
	text, err := p.R.Get(ctx, paidTextKey(m.UUID)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		metrics.PaidTextFetches.WithLabelValues("miss").Inc()
		return nil, nil
	case err != nil:
		metrics.PaidTextFetches.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("paid text %s: %w", m.UUID, err)
	}
	metrics.PaidTextFetches.WithLabelValues("hit").Inc()
	return &viewstate.TextBubble{Text: text}, nil
}

func (p *PaidTexts) Store(ctx context.Context, uuid, text string, ttl time.Duration) error {
	return p.R.Set(ctx, paidTextKey(uuid), text, ttl).Err()
}
