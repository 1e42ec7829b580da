package viewstate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotJSON(t *testing.T) {
	m := audioMessage()
	m.Media.LocalFile = strPtr("/data/a.mp3")
	h := build(t, Received, m, conversation, BackgroundFirst, Deps{})
	snap := h.Snapshot()

	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"direction":"received"`)
	assert.Contains(t, string(raw), `"background":"first"`)
	assert.Contains(t, string(raw), `"state":"available"`)
	assert.Contains(t, string(raw), `"menu_items":["boost","save_file","reply","flag"]`)

	var back Snapshot
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, snap, back)
}

func TestUnmarshalUnknownEnum(t *testing.T) {
	var d Direction
	assert.Error(t, d.UnmarshalText([]byte("sideways")))
	var item MenuItem
	require.NoError(t, item.UnmarshalText([]byte("copy_text")))
	assert.Equal(t, MenuCopyText, item)
}
