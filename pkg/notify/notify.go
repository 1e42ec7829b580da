// Package notify turns download requests raised while projecting messages into
// media.download.requested.v1 events.
package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/roboricindustries/chatview/pkg/logger"
	"github.com/roboricindustries/chatview/pkg/metrics"
	"github.com/roboricindustries/chatview/pkg/pubsub"
	chat "github.com/roboricindustries/chatview/pkg/schemas/chat/v1"
	"github.com/roboricindustries/chatview/pkg/schemas/common"
	media "github.com/roboricindustries/chatview/pkg/schemas/media/v1"
	"github.com/roboricindustries/chatview/pkg/viewstate"
)

// Downloads publishes each request in the background so RequestDownload never
// blocks the caller.
type Downloads struct {
	pub      pubsub.Publisher
	log      *zap.Logger
	producer string
	timeout  time.Duration
	now      func() time.Time

	wg sync.WaitGroup
}

var _ viewstate.DownloadNotifier = (*Downloads)(nil)

func NewDownloads(pub pubsub.Publisher, producer string, timeout time.Duration, log *zap.Logger) *Downloads {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Downloads{
		pub:      pub,
		log:      logger.OrNop(log).Named("notify"),
		producer: producer,
		timeout:  timeout,
		now:      time.Now,
	}
}

func (d *Downloads) RequestDownload(m *chat.Message) {
	req := media.DownloadRequestFor(m, d.now())
	if err := req.Validate(); err != nil {
		metrics.DownloadRequests.WithLabelValues("invalid").Inc()
		d.log.Warn("download request dropped", zap.Int64("message_id", m.ID), zap.Error(err))
		return
	}
	env := common.Wrap(media.DownloadRequestedMeta, d.producer, req)
	env.Meta = env.Meta.WithCorrelation(m.UUID)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.pub.Publish(ctx, media.DownloadRequestedMeta, env.Untyped()); err != nil {
			metrics.DownloadRequests.WithLabelValues("failed").Inc()
			d.log.Error("publish download request", zap.Int64("message_id", req.MessageID), zap.Error(err))
			return
		}
		metrics.DownloadRequests.WithLabelValues("published").Inc()
		d.log.Debug("download requested", zap.Int64("message_id", req.MessageID), zap.String("event_id", env.Meta.ID))
	}()
}

// Wait blocks until every in-flight publish has finished.
func (d *Downloads) Wait() { d.wg.Wait() }
