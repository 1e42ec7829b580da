package viewstate

import (
	"slices"

	chat "github.com/roboricindustries/chatview/pkg/schemas/chat/v1"
)

type MenuItem uint8

const (
	MenuBoost MenuItem = iota + 1
	MenuSaveFile
	MenuCopyText
	MenuReply
	MenuResend
	MenuDelete
	MenuFlag
)

func (m MenuItem) SortPriority() int {
	switch m {
	case MenuBoost:
		return 1
	case MenuSaveFile:
		return 2
	case MenuCopyText:
		return 3
	case MenuReply:
		return 4
	case MenuResend:
		return 5
	case MenuDelete:
		return 6
	case MenuFlag:
		return 7
	}
	return 100
}

func (m MenuItem) String() string {
	switch m {
	case MenuBoost:
		return "boost"
	case MenuSaveFile:
		return "save_file"
	case MenuCopyText:
		return "copy_text"
	case MenuReply:
		return "reply"
	case MenuResend:
		return "resend"
	case MenuDelete:
		return "delete"
	case MenuFlag:
		return "flag"
	}
	return "unknown"
}

func (m MenuItem) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// IsDeleteAllowed reports whether the account may delete a message: its own
// messages always, others only in a tribe the account owns.
func IsDeleteAllowed(dir Direction, c *chat.Chat, accountPubKey *string) bool {
	switch dir {
	case Sent:
		return true
	case Received:
		return c.IsTribeOwnedByAccount(accountPubKey)
	}
	return false
}

// buildMenu returns nil for "no menu"; a non-nil result always has an entry.
func buildMenu(s *source) []MenuItem {
	m := s.msg
	if s.background == BackgroundGone || m.Type.IsBoost() || m.FeedBoost() != nil {
		return nil
	}

	items := make([]MenuItem, 0, 4)
	if s.dir == Received && m.IsBoostAllowed() {
		items = append(items, MenuBoost)
	}
	if m.IsMediaAttachmentAvailable() {
		items = append(items, MenuSaveFile)
	}
	if m.IsCopyAllowed() {
		items = append(items, MenuCopyText)
	}
	if m.IsReplyAllowed() {
		items = append(items, MenuReply)
	}
	if m.IsResendAllowed() {
		items = append(items, MenuResend)
	}
	if IsDeleteAllowed(s.dir, s.chat, s.owner.NodePubKey) {
		items = append(items, MenuDelete)
	}
	if s.dir == Received {
		items = append(items, MenuFlag)
	}

	if len(items) == 0 {
		return nil
	}
	slices.SortStableFunc(items, func(a, b MenuItem) int {
		return a.SortPriority() - b.SortPriority()
	})
	return items
}
