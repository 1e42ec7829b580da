package render

import (
	"time"

	chat "github.com/roboricindustries/chatview/pkg/schemas/chat/v1"
	"github.com/roboricindustries/chatview/pkg/viewstate"
)

// RenderRequestV1 asks for view state of an ordered slice of one chat's messages,
// oldest first. Owner is the account the messages are rendered for.
type RenderRequestV1 struct {
	RequestID string         `json:"request_id"`
	Chat      chat.Chat      `json:"chat"`
	Owner     chat.Contact   `json:"owner"`
	Messages  []chat.Message `json:"messages"`
	// ResolvePaidText fetches the body of every paid text message before snapshotting.
	ResolvePaidText bool      `json:"resolve_paid_text,omitempty"`
	RequestedAt     time.Time `json:"requested_at"`
}

// RenderedV1 carries one snapshot per requested message, in request order.
type RenderedV1 struct {
	RequestID  string               `json:"request_id"`
	ChatID     int64                `json:"chat_id"`
	Snapshots  []viewstate.Snapshot `json:"snapshots"`
	RenderedAt time.Time            `json:"rendered_at"`
	// PaidTextErrors lists message ids whose paid text could not be fetched.
	PaidTextErrors []int64 `json:"paid_text_errors,omitempty"`
}

// --------- validation ----------------

type ValidationIssue struct{ Field, Reason string }
type ValidationError struct{ Issues []ValidationIssue }

func (e *ValidationError) Error() string   { return chat.ErrInvalidContract.Error() }
func (e *ValidationError) add(f, r string) { e.Issues = append(e.Issues, ValidationIssue{f, r}) }
func (e *ValidationError) Is(target error) bool {
	return target == chat.ErrInvalidContract
}

// MaxMessages bounds a single render request.
const MaxMessages = 500

func (r *RenderRequestV1) Validate() error {
	ve := &ValidationError{}
	if r.RequestID == "" {
		ve.add("request_id", "required")
	}
	if r.Chat.ID == 0 {
		ve.add("chat.id", "required")
	}
	if err := r.Chat.Validate(); err != nil {
		ve.add("chat.type", "required or unknown")
	}
	if r.Owner.ID == 0 {
		ve.add("owner.id", "required")
	}
	switch {
	case len(r.Messages) == 0:
		ve.add("messages", "required")
	case len(r.Messages) > MaxMessages:
		ve.add("messages", "too many")
	}
	for i := range r.Messages {
		m := &r.Messages[i]
		if err := m.Validate(); err != nil {
			ve.add("messages", err.Error())
			break
		}
		if m.ChatID != 0 && m.ChatID != r.Chat.ID {
			ve.add("messages.chat_id", "does not match chat")
			break
		}
	}
	if len(ve.Issues) > 0 {
		return ve
	}
	return nil
}
