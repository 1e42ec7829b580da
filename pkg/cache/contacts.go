package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/roboricindustries/chatview/pkg/logger"
	chat "github.com/roboricindustries/chatview/pkg/schemas/chat/v1"
	"github.com/roboricindustries/chatview/pkg/viewstate"
)

// Contacts resolves sender attribution from contacts cached in Redis, falling
// back to the alias and picture embedded in the message. Concurrent lookups of
// one contact share a single round trip, bounded by Timeout (default 2s) rather
// than by whichever caller started it.
type Contacts struct {
	R       *redis.Client
	TTL     time.Duration
	Timeout time.Duration
	Log     *zap.Logger

	group singleflight.Group
}

var _ viewstate.SenderInfoResolver = (*Contacts)(nil)

func contactKey(id chat.ContactID) string { return "contact:" + strconv.FormatInt(int64(id), 10) }

func (c *Contacts) Get(ctx context.Context, id chat.ContactID) (*chat.Contact, error) {
	key := contactKey(id)
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ch := c.group.DoChan(key, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		b, err := c.R.Get(lctx, key).Bytes()
		if err != nil {
			return nil, err
		}
		var ct chat.Contact
		if err := json.Unmarshal(b, &ct); err != nil {
			return nil, err
		}
		return ct, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		ct := res.Val.(chat.Contact)
		return &ct, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Contacts) Set(ctx context.Context, ct chat.Contact) error {
	b, err := json.Marshal(ct)
	if err != nil {
		return err
	}
	ttl := c.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return c.R.Set(ctx, contactKey(ct.ID), b, ttl).Err()
}

func (c *Contacts) SenderInfo(ctx context.Context, m *chat.Message) viewstate.SenderInfo {
	ct, err := c.Get(ctx, m.Sender)
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			logger.OrNop(c.Log).Warn("contact lookup failed", zap.Int64("contact_id", int64(m.Sender)), zap.Error(err))
		}
		return viewstate.EmbeddedSenderInfo(m)
	}
	info := viewstate.SenderInfo{PhotoURL: ct.PhotoURL, Alias: ct.Alias, ColorKey: ct.ColorKey()}
	if info.Alias == "" {
		info.Alias = m.SenderAlias
	}
	return info
}
