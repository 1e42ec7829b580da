package viewstate

import (
	"context"

	chat "github.com/roboricindustries/chatview/pkg/schemas/chat/v1"
)

type SenderInfo struct {
	PhotoURL string
	Alias    string
	ColorKey string
}

// SenderInfoResolver attributes a message to its sender for reaction and reply blocks.
type SenderInfoResolver interface {
	SenderInfo(ctx context.Context, m *chat.Message) SenderInfo
}

type OwnerResolver interface {
	AccountOwner(ctx context.Context) chat.Contact
}

// PaidContentFetcher resolves the body of a paid text attachment. It may be slow.
type PaidContentFetcher interface {
	FetchPaidText(ctx context.Context, m *chat.Message) (*TextBubble, error)
}

// DownloadNotifier is told that an attachment's bytes are not local. Fire-and-forget.
type DownloadNotifier interface {
	RequestDownload(m *chat.Message)
}

type SenderInfoFunc func(ctx context.Context, m *chat.Message) SenderInfo

func (f SenderInfoFunc) SenderInfo(ctx context.Context, m *chat.Message) SenderInfo {
	return f(ctx, m)
}

type OwnerFunc func(ctx context.Context) chat.Contact

func (f OwnerFunc) AccountOwner(ctx context.Context) chat.Contact { return f(ctx) }

// StaticOwner always resolves to c.
func StaticOwner(c chat.Contact) OwnerResolver {
	return OwnerFunc(func(context.Context) chat.Contact { return c })
}

type PaidContentFunc func(ctx context.Context, m *chat.Message) (*TextBubble, error)

func (f PaidContentFunc) FetchPaidText(ctx context.Context, m *chat.Message) (*TextBubble, error) {
	return f(ctx, m)
}

type DownloadFunc func(m *chat.Message)

func (f DownloadFunc) RequestDownload(m *chat.Message) { f(m) }

// Deps bundles the collaborators a Holder consumes. Nil members fall back to
// behaviour that needs no external state.
type Deps struct {
	Senders     SenderInfoResolver
	Owner       OwnerResolver
	PaidContent PaidContentFetcher
	Downloads   DownloadNotifier
}

// EmbeddedSenderInfo reads attribution from the fields carried on the message itself.
func EmbeddedSenderInfo(m *chat.Message) SenderInfo {
	return SenderInfo{PhotoURL: m.SenderPic, Alias: m.SenderAlias, ColorKey: m.ColorKey()}
}

func (d Deps) senderInfo(ctx context.Context, m *chat.Message) SenderInfo {
	if d.Senders == nil {
		return EmbeddedSenderInfo(m)
	}
	return d.Senders.SenderInfo(ctx, m)
}

func (d Deps) accountOwner(ctx context.Context) chat.Contact {
	if d.Owner == nil {
		return chat.Contact{}
	}
	return d.Owner.AccountOwner(ctx)
}

func (d Deps) requestDownload(m *chat.Message) {
	if d.Downloads != nil {
		d.Downloads.RequestDownload(m)
	}
}

func (d Deps) fetchPaidText(ctx context.Context, m *chat.Message) (*TextBubble, error) {
	if d.PaidContent == nil {
		return nil, nil
	}
	return d.PaidContent.FetchPaidText(ctx, m)
}
