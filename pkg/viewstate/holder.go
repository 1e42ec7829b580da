// Package viewstate projects a chat message and its surrounding context into an
// immutable, render-ready view state.
//
// A Holder is built once per message per render pass and replaced wholesale when
// the message changes. Every block is derived at construction except the audio and
// video attachments, which resolve on first access so the download request they may
// issue fires only for holders that are actually bound, and the paid text body,
// which is fetched on demand through RetrievePaidTextContent.
package viewstate

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	chat "github.com/roboricindustries/chatview/pkg/schemas/chat/v1"
)

type Direction uint8

const (
	Sent Direction = iota + 1
	Received
)

func (d Direction) String() string {
	switch d {
	case Sent:
		return "sent"
	case Received:
		return "received"
	}
	return "unknown"
}

func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// DirectionOf tags messages authored by the account owner as Sent.
func DirectionOf(m *chat.Message, owner chat.Contact) Direction {
	if m.Sender == owner.ID {
		return Sent
	}
	return Received
}

type Input struct {
	Direction  Direction
	Message    chat.Message
	Chat       chat.Chat
	Background BubbleBackground
}

type Option func(*options)

type options struct {
	now func() time.Time
	loc *time.Location
}

// WithClock fixes the reference time used for timestamps and invoice expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLocation sets the zone timestamps are rendered in. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.loc = loc }
}

// Holder is the view state of one message. All accessors are read-only; returned
// pointers must not be modified.
type Holder struct {
	direction  Direction
	message    chat.Message
	chat       chat.Chat
	background BubbleBackground
	deps       Deps

	unsupported             *UnsupportedMessageType
	statusHeader            *StatusHeader
	invoiceExpirationHeader *InvoiceExpirationHeader
	deletedOrFlagged        *DeletedOrFlagged
	invoicePayment          *InvoicePayment
	directPayment           *DirectPayment
	invoice                 *Invoice
	text                    *TextBubble
	paidTextBubble          *PaidTextBubble
	callInvite              *CallInvite
	botResponse             *BotResponse
	paidReceivedDetails     *PaidReceivedDetails
	paidSentStatus          *PaidSentStatus
	image                   *ImageAttachment
	podcastClip             *PodcastClip
	podcastBoost            *PodcastBoost
	reactionBoosts          *ReactionBoosts
	replyPreview            *ReplyPreview
	groupAction             *GroupActionIndicator
	menu                    []MenuItem

	audio func() *AudioAttachment
	video func() *VideoAttachment

	downloadOnce sync.Once

	paidFlight singleflight.Group
	paidText   atomic.Pointer[TextBubble]
}

// New builds the view state for in. It does not retain ctx; ctx only bounds the
// sender and owner lookups made during construction.
func New(ctx context.Context, in Input, deps Deps, opts ...Option) *Holder {
	o := options{now: time.Now, loc: time.UTC}
	for _, opt := range opts {
		opt(&o)
	}

	h := &Holder{
		direction:  in.Direction,
		message:    in.Message,
		chat:       in.Chat,
		background: in.Background,
		deps:       deps,
	}

	s := &source{
		dir:        h.direction,
		msg:        &h.message,
		chat:       &h.chat,
		background: h.background,
		owner:      deps.accountOwner(ctx),
		now:        o.now(),
		loc:        o.loc,
	}

	h.unsupported = buildUnsupported(s)
	h.statusHeader = buildStatusHeader(s)
	h.invoiceExpirationHeader = buildInvoiceExpirationHeader(s)
	h.deletedOrFlagged = buildDeletedOrFlagged(s)
	h.invoicePayment = buildInvoicePayment(s)
	h.directPayment = buildDirectPayment(s)
	h.invoice = buildInvoice(s)
	h.text = buildText(s)
	h.paidTextBubble = buildPaidText(s)
	h.callInvite = buildCallInvite(s)
	h.botResponse = buildBotResponse(s)
	h.paidReceivedDetails = buildPaidReceivedDetails(s)
	h.paidSentStatus = buildPaidSentStatus(s)
	h.image = buildImage(s)
	h.podcastClip = buildPodcastClip(s)
	h.podcastBoost = buildPodcastBoost(s)
	h.reactionBoosts = buildReactionBoosts(ctx, s, deps)
	h.replyPreview = buildReplyPreview(ctx, s, deps)
	h.groupAction = buildGroupAction(s)
	h.menu = buildMenu(s)

	h.audio = sync.OnceValue(func() *AudioAttachment { return buildAudio(s, h.notifyDownload) })
	h.video = sync.OnceValue(func() *VideoAttachment { return buildVideo(s, h.notifyDownload) })
	return h
}

func (h *Holder) notifyDownload() {
	h.downloadOnce.Do(func() { h.deps.requestDownload(&h.message) })
}

func (h *Holder) Direction() Direction                { return h.direction }
func (h *Holder) IsSent() bool                        { return h.direction == Sent }
func (h *Holder) IsReceived() bool                    { return h.direction == Received }
func (h *Holder) Message() *chat.Message              { return &h.message }
func (h *Holder) Chat() *chat.Chat                    { return &h.chat }
func (h *Holder) Background() BubbleBackground        { return h.background }
func (h *Holder) StatusHeader() *StatusHeader         { return h.statusHeader }
func (h *Holder) DeletedOrFlagged() *DeletedOrFlagged { return h.deletedOrFlagged }
func (h *Holder) InvoicePayment() *InvoicePayment     { return h.invoicePayment }
func (h *Holder) DirectPayment() *DirectPayment       { return h.directPayment }
func (h *Holder) Invoice() *Invoice                   { return h.invoice }
func (h *Holder) Text() *TextBubble                   { return h.text }
func (h *Holder) PaidTextBubble() *PaidTextBubble     { return h.paidTextBubble }
func (h *Holder) CallInvite() *CallInvite             { return h.callInvite }
func (h *Holder) BotResponse() *BotResponse           { return h.botResponse }
func (h *Holder) PaidSentStatus() *PaidSentStatus     { return h.paidSentStatus }
func (h *Holder) ImageAttachment() *ImageAttachment   { return h.image }
func (h *Holder) PodcastClip() *PodcastClip           { return h.podcastClip }
func (h *Holder) PodcastBoost() *PodcastBoost         { return h.podcastBoost }
func (h *Holder) ReactionBoosts() *ReactionBoosts     { return h.reactionBoosts }
func (h *Holder) ReplyPreview() *ReplyPreview         { return h.replyPreview }
func (h *Holder) GroupAction() *GroupActionIndicator  { return h.groupAction }

func (h *Holder) UnsupportedMessageType() *UnsupportedMessageType { return h.unsupported }

func (h *Holder) InvoiceExpirationHeader() *InvoiceExpirationHeader {
	return h.invoiceExpirationHeader
}

func (h *Holder) PaidReceivedDetails() *PaidReceivedDetails { return h.paidReceivedDetails }

// AudioAttachment resolves on first call; an unavailable file requests a download then.
func (h *Holder) AudioAttachment() *AudioAttachment { return h.audio() }

// VideoAttachment resolves on first call; an unavailable file requests a download then.
func (h *Holder) VideoAttachment() *VideoAttachment { return h.video() }

// MenuItems is nil when the message has no context menu.
func (h *Holder) MenuItems() []MenuItem {
	if h.menu == nil {
		return nil
	}
	return slices.Clone(h.menu)
}

func (h *Holder) ShowSentBubbleArrow() bool {
	return h.background == BackgroundFirst && h.direction == Sent
}

func (h *Holder) ShowReceivedBubbleArrow() bool {
	return h.background == BackgroundFirst && h.direction == Received
}

// RetrievePaidTextContent returns the plain text bubble when there is one, and
// otherwise fetches the paid body once per Holder. Overlapping callers join the
// in-flight fetch and receive its outcome, absent and failed results included;
// only a non-nil success is kept, so later calls retry the rest.
//
// The fetch is detached from the caller's cancellation so one caller giving up
// does not fail the others; the fetcher is expected to bound its own work.
func (h *Holder) RetrievePaidTextContent(ctx context.Context) (*TextBubble, error) {
	if h.text != nil {
		return h.text, nil
	}
	if t := h.paidText.Load(); t != nil {
		return t, nil
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := h.paidFlight.DoChan("paid", func() (any, error) {
		if t := h.paidText.Load(); t != nil {
			return t, nil
		}
		t, err := h.deps.fetchPaidText(fetchCtx, &h.message)
		if err != nil {
			return nil, err
		}
		if t != nil {
			h.paidText.Store(t)
		}
		return t, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		t, _ := res.Val.(*TextBubble)
		return t, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ShouldAdaptBubbleWidth reports whether a plain message bubble may shrink to its text.
func ShouldAdaptBubbleWidth(m *chat.Message) bool {
	return m.Type.IsMessage() && m.PodcastClip() == nil && m.ReplyUUID == "" &&
		!m.IsDeleted() && !m.IsFlagged()
}
