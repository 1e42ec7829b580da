package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roboricindustries/chatview/pkg/pubsub"
	chat "github.com/roboricindustries/chatview/pkg/schemas/chat/v1"
	"github.com/roboricindustries/chatview/pkg/schemas/common"
	render "github.com/roboricindustries/chatview/pkg/schemas/render/v1"
	"github.com/roboricindustries/chatview/pkg/viewstate"
)

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

type recorder struct {
	mu   sync.Mutex
	sent []common.Envelope
	err  error
}

func (r *recorder) Publish(_ context.Context, _ common.EventMeta, env common.Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, env)
	return nil
}

func (r *recorder) Close() error { return nil }

func strPtr(s string) *string { return &s }

func message(id int64, sender chat.ContactID, body string) chat.Message {
	return chat.Message{
		ID:               id,
		UUID:             "uuid-" + body,
		ChatID:           10,
		Type:             chat.TypeMessage,
		Status:           chat.StatusReceived,
		Sender:           sender,
		Date:             testNow.Add(-time.Minute),
		ContentDecrypted: strPtr(body),
	}
}

func paidText(id int64, uuid string) chat.Message {
	return chat.Message{
		ID:       id,
		UUID:     uuid,
		ChatID:   10,
		Type:     chat.TypeAttachment,
		Status:   chat.StatusReceived,
		Sender:   2,
		Date:     testNow.Add(-time.Minute),
		Purchase: chat.PurchaseAccepted,
		Media:    &chat.MessageMedia{MediaType: chat.MediaTypeSphinxText, Price: 10},
	}
}

func request() render.RenderRequestV1 {
	audio := chat.Message{
		ID: 4, UUID: "audio", ChatID: 10, Type: chat.TypeAttachment, Status: chat.StatusReceived,
		Sender: 2, Date: testNow.Add(-time.Minute),
		Media: &chat.MessageMedia{MediaType: "audio/ogg", URL: "https://media/4.ogg"},
	}
	return render.RenderRequestV1{
		RequestID: "req-1",
		Chat:      chat.Chat{ID: 10, Type: chat.ChatConversation},
		Owner:     chat.Contact{ID: 1, Alias: "me"},
		Messages: []chat.Message{
			message(1, 2, "a"),
			message(2, 2, "b"),
			message(3, 1, "mine"),
			audio,
			paidText(5, "ok"),
			paidText(6, "broken"),
		},
		ResolvePaidText: true,
	}
}

func newRenderer(pub pubsub.Publisher, downloads *atomic.Int32) *Renderer {
	deps := viewstate.Deps{
		PaidContent: viewstate.PaidContentFunc(func(_ context.Context, m *chat.Message) (*viewstate.TextBubble, error) {
			if m.UUID == "broken" {
				return nil, errors.New("upstream down")
			}
			return &viewstate.TextBubble{Text: "paid " + m.UUID}, nil
		}),
		Downloads: viewstate.DownloadFunc(func(*chat.Message) { downloads.Add(1) }),
		Owner:     viewstate.StaticOwner(chat.Contact{ID: 99}),
	}
	return New(pub, deps, Options{
		Producer:    "chatview-test",
		Concurrency: 3,
		Clock:       func() time.Time { return testNow },
	}, nil)
}

func TestRender(t *testing.T) {
	var downloads atomic.Int32
	r := newRenderer(&recorder{}, &downloads)

	out, err := r.Render(context.Background(), request())
	require.NoError(t, err)
	require.Len(t, out.Snapshots, 6)

	ids := make([]int64, 0, len(out.Snapshots))
	for _, s := range out.Snapshots {
		ids = append(ids, s.MessageID)
	}
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, ids, "request order is kept")

	s := out.Snapshots
	assert.Equal(t, viewstate.Received, s[0].Direction)
	assert.Equal(t, viewstate.BackgroundFirst, s[0].Background)
	assert.Equal(t, viewstate.BackgroundLast, s[1].Background)
	assert.Equal(t, viewstate.Sent, s[2].Direction, "owner comes from the request")

	require.NotNil(t, s[3].AudioAttachment)
	assert.Equal(t, viewstate.FileUnavailable, s[3].AudioAttachment.State)
	assert.Equal(t, int32(1), downloads.Load())

	require.NotNil(t, s[4].PaidTextContent)
	assert.Equal(t, "paid ok", s[4].PaidTextContent.Text)
	assert.Nil(t, s[5].PaidTextContent)
	assert.Equal(t, []int64{6}, out.PaidTextErrors)
	assert.Equal(t, testNow, out.RenderedAt)
}

func TestRenderCancelled(t *testing.T) {
	var downloads atomic.Int32
	r := newRenderer(&recorder{}, &downloads)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Render(ctx, request())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHandlePublishes(t *testing.T) {
	rec := &recorder{}
	var downloads atomic.Int32
	r := newRenderer(rec, &downloads)

	env := common.Wrap(render.RequestedMeta, "tests", request())
	env.Meta = env.Meta.WithCorrelation("corr-9")
	require.NoError(t, r.Handle(context.Background(), env))

	require.Len(t, rec.sent, 1)
	sent := rec.sent[0]
	assert.Equal(t, render.RenderedType, sent.Meta.Type)
	assert.Equal(t, "corr-9", sent.Meta.Correlation())

	raw, err := json.Marshal(sent)
	require.NoError(t, err)
	back, err := common.DecodeEnvelope[render.RenderedV1](raw, render.RenderedType)
	require.NoError(t, err)
	assert.Equal(t, "req-1", back.Data.RequestID)
	assert.Len(t, back.Data.Snapshots, 6)
}

func TestHandleInvalidIsPoison(t *testing.T) {
	rec := &recorder{}
	var downloads atomic.Int32
	r := newRenderer(rec, &downloads)

	req := request()
	req.Messages = nil
	err := r.Handle(context.Background(), common.Wrap(render.RequestedMeta, "tests", req))
	assert.ErrorIs(t, err, pubsub.ErrPoison)
	assert.ErrorIs(t, err, chat.ErrInvalidContract)
	assert.Empty(t, rec.sent)
}

func TestHandlePublishFailureIsTransient(t *testing.T) {
	rec := &recorder{err: errors.New("broker down")}
	var downloads atomic.Int32
	r := newRenderer(rec, &downloads)

	err := r.Handle(context.Background(), common.Wrap(render.RequestedMeta, "tests", request()))
	require.Error(t, err)
	assert.NotErrorIs(t, err, pubsub.ErrPoison)
}

func TestConsumerSpec(t *testing.T) {
	rec := &recorder{}
	var downloads atomic.Int32
	spec := newRenderer(rec, &downloads).ConsumerSpec("chatview.render", nil)

	assert.Equal(t, render.RequestedMeta.Exchange, spec.Exchange)
	assert.Equal(t, render.RequestedType, spec.BindingKey)

	body, err := json.Marshal(common.Wrap(render.RequestedMeta, "tests", request()))
	require.NoError(t, err)
	require.NoError(t, spec.Consume(context.Background(), amqp.Delivery{Body: body}))
	assert.Len(t, rec.sent, 1)

	assert.ErrorIs(t, spec.Consume(context.Background(), amqp.Delivery{Body: []byte("nope")}), pubsub.ErrPoison)
}
