package media

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chat "github.com/roboricindustries/chatview/pkg/schemas/chat/v1"
)

func TestDownloadRequestFor(t *testing.T) {
	at := time.Date(2026, 10, 18, 14, 0, 0, 0, time.FixedZone("X", 2*3600))
	m := &chat.Message{
		ID:     30,
		UUID:   "audio-1",
		ChatID: 10,
		Type:   chat.TypeAttachment,
		Media:  &chat.MessageMedia{MediaType: "audio/mpeg", URL: "https://media/a.mp3"},
	}
	r := DownloadRequestFor(m, at)
	require.NoError(t, r.Validate())
	assert.Equal(t, int64(30), r.MessageID)
	assert.Equal(t, "https://media/a.mp3", r.URL)
	assert.Equal(t, time.UTC, r.RequestedAt.Location())

	m.Media.MediaType = "image/png"
	bad := DownloadRequestFor(m, at)
	err := bad.Validate()
	assert.True(t, errors.Is(err, chat.ErrInvalidContract))
}
