package viewstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectMessage(t *testing.T) {
	g := Geometry{
		HolderYPosTop:   500,
		HolderHeight:    80,
		HolderWidth:     600,
		BubbleXPosStart: 20,
		BubbleHeight:    60,
		BubbleWidth:     200,
		HeaderHeight:    64,
		ListWidth:       800,
		ScreenHeight:    900,
	}

	h := build(t, Received, textMessage(5, 2, "hi"), conversation, BackgroundFirst, Deps{})
	sel := SelectMessage(h, g)
	require.NotNil(t, sel)
	assert.Same(t, h, sel.Holder)
	assert.Equal(t, Px(564), sel.HolderYPos)
	assert.Equal(t, Px(220), sel.BubbleCenterXPos)
	assert.Equal(t, Px(60), sel.BubbleHeight)
	assert.True(t, sel.ShowMenuTop, "564 above vs 256 below")

	g.HolderYPosTop = 100
	assert.False(t, SelectMessage(h, g).ShowMenuTop)

	gone := build(t, Received, textMessage(5, 2, "hi"), conversation, BackgroundGone, Deps{})
	assert.Nil(t, SelectMessage(gone, g))
	assert.Nil(t, SelectMessage(nil, g))
}
