// Package worker consumes render requests, projects every message into view
// state and publishes the ordered snapshots.
package worker

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roboricindustries/chatview/pkg/logger"
	"github.com/roboricindustries/chatview/pkg/metrics"
	"github.com/roboricindustries/chatview/pkg/pubsub"
	"github.com/roboricindustries/chatview/pkg/schemas/common"
	render "github.com/roboricindustries/chatview/pkg/schemas/render/v1"
	"github.com/roboricindustries/chatview/pkg/viewstate"
)

type Options struct {
	Producer        string
	Concurrency     int
	JobTimeout      time.Duration
	PaidTextTimeout time.Duration
	Location        *time.Location
	// Clock overrides time.Now for rendered timestamps and invoice expiry.
	Clock func() time.Time
}

// Renderer is safe for concurrent use; each request gets its own holders.
type Renderer struct {
	pub  pubsub.Publisher
	deps viewstate.Deps
	opts Options
	log  *zap.Logger
}

// New builds a Renderer. deps.Owner is ignored: the owner travels with each request.
func New(pub pubsub.Publisher, deps viewstate.Deps, opts Options, log *zap.Logger) *Renderer {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Renderer{pub: pub, deps: deps, opts: opts, log: logger.OrNop(log).Named("worker")}
}

// ConsumerSpec binds Handle to queue on the render request exchange.
func (r *Renderer) ConsumerSpec(queue string, retry *pubsub.RetrySpec) pubsub.ConsumerSpec {
	return pubsub.ConsumerSpec{
		Name:          "render",
		Exchange:      render.RequestedMeta.Exchange,
		Queue:         queue,
		BindingKey:    render.RequestedMeta.RoutingKey,
		Retry:         retry,
		PoisonToFinal: true,
		Consume:       pubsub.JSONHandler(render.RequestedType, r.Handle),
	}
}

// Handle renders one request and publishes the result. Invalid requests are poison;
// render and publish failures are returned for retry.
func (r *Renderer) Handle(ctx context.Context, env common.GenericEnvelope[render.RenderRequestV1]) error {
	start := time.Now()
	defer func() { metrics.RenderDuration.Observe(time.Since(start).Seconds()) }()

	req := env.Data
	log := r.log.With(zap.String("request_id", req.RequestID), zap.String("correlation_id", env.Meta.Correlation()))

	if err := req.Validate(); err != nil {
		metrics.RenderJobs.WithLabelValues("invalid").Inc()
		var ve *render.ValidationError
		if errors.As(err, &ve) {
			log.Warn("invalid render request", zap.Any("issues", ve.Issues))
		}
		return pubsub.Poison(err)
	}

	if r.opts.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.JobTimeout)
		defer cancel()
	}

	out, err := r.Render(ctx, req)
	if err != nil {
		metrics.RenderJobs.WithLabelValues("failed").Inc()
		log.Error("render failed", zap.Error(err))
		return err
	}

	res := common.Wrap(render.RenderedMeta, r.opts.Producer, out)
	res.Meta = res.Meta.WithCorrelation(env.Meta.Correlation())
	if err := r.pub.Publish(ctx, render.RenderedMeta, res.Untyped()); err != nil {
		metrics.RenderJobs.WithLabelValues("publish_failed").Inc()
		log.Error("publish rendered view state", zap.Error(err))
		return err
	}

	metrics.RenderJobs.WithLabelValues("ok").Inc()
	log.Info("rendered",
		zap.Int("messages", len(out.Snapshots)),
		zap.Int("paid_text_errors", len(out.PaidTextErrors)),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// Render projects req.Messages in parallel, keeping request order. A failed paid
// text lookup is reported in PaidTextErrors and does not fail the request.
func (r *Renderer) Render(ctx context.Context, req render.RenderRequestV1) (render.RenderedV1, error) {
	deps := r.deps
	deps.Owner = viewstate.StaticOwner(req.Owner)
	opts := []viewstate.Option{
		viewstate.WithClock(r.opts.Clock),
		viewstate.WithLocation(r.opts.Location),
	}

	backgrounds := viewstate.Backgrounds(req.Messages)
	snapshots := make([]viewstate.Snapshot, len(req.Messages))

	var (
		mu         sync.Mutex
		paidFailed []int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for i := range req.Messages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m := &req.Messages[i]
			dir := viewstate.DirectionOf(m, req.Owner)
			h := viewstate.New(gctx, viewstate.Input{
				Direction:  dir,
				Message:    *m,
				Chat:       req.Chat,
				Background: backgrounds[i],
			}, deps, opts...)
			metrics.HoldersBuilt.WithLabelValues(dir.String()).Inc()

			if req.ResolvePaidText && h.PaidTextBubble() != nil {
				if err := r.resolvePaidText(gctx, h); err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					r.log.Warn("paid text unavailable", zap.Int64("message_id", m.ID), zap.Error(err))
					mu.Lock()
					paidFailed = append(paidFailed, m.ID)
					mu.Unlock()
				}
			}

			snapshots[i] = h.Snapshot()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return render.RenderedV1{}, err
	}

	slices.Sort(paidFailed)
	return render.RenderedV1{
		RequestID:      req.RequestID,
		ChatID:         req.Chat.ID,
		Snapshots:      snapshots,
		RenderedAt:     r.opts.Clock().UTC(),
		PaidTextErrors: paidFailed,
	}, nil
}

func (r *Renderer) resolvePaidText(ctx context.Context, h *viewstate.Holder) error {
	if r.opts.PaidTextTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.PaidTextTimeout)
		defer cancel()
	}
	_, err := h.RetrievePaidTextContent(ctx)
	return err
}
