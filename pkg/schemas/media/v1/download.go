package media

import (
	"time"

	chat "github.com/roboricindustries/chatview/pkg/schemas/chat/v1"
)

// DownloadRequestedV1 asks the media service to fetch an attachment that has no
// local copy yet. Consumers should treat repeated requests for one message as a no-op.
type DownloadRequestedV1 struct {
	MessageID   int64          `json:"message_id"`
	MessageUUID string         `json:"message_uuid,omitempty"`
	ChatID      int64          `json:"chat_id"`
	MediaType   chat.MediaType `json:"media_type"`
	URL         string         `json:"url"`
	// Only set when the key is already decrypted on the producing side.
	MediaKeyDecrypted *string   `json:"media_key_decrypted,omitempty"`
	RequestedAt       time.Time `json:"requested_at"`
}

// DownloadRequestFor builds the request for m. m must carry media.
func DownloadRequestFor(m *chat.Message, at time.Time) DownloadRequestedV1 {
	r := DownloadRequestedV1{
		MessageID:   m.ID,
		MessageUUID: m.UUID,
		ChatID:      m.ChatID,
		RequestedAt: at.UTC(),
	}
	if m.Media != nil {
		r.MediaType = m.Media.MediaType
		r.URL = m.Media.URL
		r.MediaKeyDecrypted = m.Media.MediaKeyDecrypted
	}
	return r
}

func (r *DownloadRequestedV1) Validate() error {
	ve := &ValidationError{}
	if r.MessageID == 0 {
		ve.add("message_id", "required")
	}
	if r.URL == "" {
		ve.add("url", "required")
	}
	if !r.MediaType.IsAudio() && !r.MediaType.IsVideo() {
		ve.add("media_type", "must be audio or video")
	}
	if r.RequestedAt.IsZero() {
		ve.add("requested_at", "required")
	}
	if len(ve.Issues) > 0 {
		return ve
	}
	return nil
}

// --------- validation ----------------

type ValidationIssue struct{ Field, Reason string }
type ValidationError struct{ Issues []ValidationIssue }

func (e *ValidationError) Error() string   { return chat.ErrInvalidContract.Error() }
func (e *ValidationError) add(f, r string) { e.Issues = append(e.Issues, ValidationIssue{f, r}) }
func (e *ValidationError) Is(target error) bool {
	return target == chat.ErrInvalidContract
}
