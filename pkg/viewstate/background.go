package viewstate

import chat "github.com/roboricindustries/chatview/pkg/schemas/chat/v1"

// BubbleBackground is the position of a message within a run of consecutive
// messages from one sender. Gone drops the bubble chrome.
type BubbleBackground uint8

const (
	BackgroundFirst BubbleBackground = iota + 1
	BackgroundMiddle
	BackgroundLast
	BackgroundGone
)

func (b BubbleBackground) String() string {
	switch b {
	case BackgroundFirst:
		return "first"
	case BackgroundMiddle:
		return "middle"
	case BackgroundLast:
		return "last"
	case BackgroundGone:
		return "gone"
	}
	return "unknown"
}

func (b BubbleBackground) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

func chromeless(m *chat.Message) bool {
	return m.Type.IsBoost() || m.Type.IsGroupAction()
}

func sameRun(a, b *chat.Message) bool {
	return a != nil && b != nil && !chromeless(a) && !chromeless(b) && a.Sender == b.Sender
}

// BackgroundFor places cur between its neighbours. prev and next may be nil.
func BackgroundFor(prev, cur, next *chat.Message) BubbleBackground {
	switch {
	case chromeless(cur):
		return BackgroundGone
	case !sameRun(prev, cur):
		return BackgroundFirst
	case sameRun(cur, next):
		return BackgroundMiddle
	default:
		return BackgroundLast
	}
}

// Backgrounds computes BackgroundFor over an ordered list.
func Backgrounds(msgs []chat.Message) []BubbleBackground {
	out := make([]BubbleBackground, len(msgs))
	for i := range msgs {
		var prev, next *chat.Message
		if i > 0 {
			prev = &msgs[i-1]
		}
		if i+1 < len(msgs) {
			next = &msgs[i+1]
		}
		out[i] = BackgroundFor(prev, &msgs[i], next)
	}
	return out
}
