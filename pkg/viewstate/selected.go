package viewstate

// Px is a length in device-independent pixels.
type Px float32

// Geometry describes where a message sits on screen when it is long-pressed.
// HolderYPosTop is measured within the message list.
type Geometry struct {
	HolderYPosTop Px
	HolderHeight  Px
	HolderWidth   Px

	BubbleXPosStart Px
	BubbleHeight    Px
	BubbleWidth     Px

	HeaderHeight Px
	ListWidth    Px
	ScreenHeight Px
}

type SelectedMessage struct {
	Holder           *Holder
	HolderYPos       Px
	BubbleCenterXPos Px
	BubbleHeight     Px
	ListWidth        Px
	ScreenHeight     Px
	// ShowMenuTop places the menu above the bubble when there is more room there.
	ShowMenuTop bool
}

// SelectMessage returns nil unless h has a context menu.
func SelectMessage(h *Holder, g Geometry) *SelectedMessage {
	if h == nil || len(h.menu) == 0 {
		return nil
	}

	spaceTop := g.HolderYPosTop + g.HeaderHeight
	spaceBottom := g.ScreenHeight - (spaceTop + g.HolderHeight)
	margin := (g.ListWidth - g.HolderWidth) / 2

	return &SelectedMessage{
		Holder:           h,
		HolderYPos:       spaceTop,
		BubbleCenterXPos: g.BubbleWidth/2 + g.BubbleXPosStart + margin,
		BubbleHeight:     g.BubbleHeight,
		ListWidth:        g.ListWidth,
		ScreenHeight:     g.ScreenHeight,
		ShowMenuTop:      spaceTop >= spaceBottom,
	}
}
