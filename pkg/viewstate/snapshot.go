package viewstate

import chat "github.com/roboricindustries/chatview/pkg/schemas/chat/v1"

// Snapshot is the serialisable form of a Holder as handed to a renderer.
type Snapshot struct {
	MessageID  int64            `json:"message_id"`
	UUID       string           `json:"uuid,omitempty"`
	Type       chat.MessageType `json:"type"`
	Direction  Direction        `json:"direction"`
	Background BubbleBackground `json:"background"`

	UnsupportedMessageType  *UnsupportedMessageType  `json:"unsupported_message_type,omitempty"`
	StatusHeader            *StatusHeader            `json:"status_header,omitempty"`
	InvoiceExpirationHeader *InvoiceExpirationHeader `json:"invoice_expiration_header,omitempty"`
	DeletedOrFlagged        *DeletedOrFlagged        `json:"deleted_or_flagged,omitempty"`
	InvoicePayment          *InvoicePayment          `json:"invoice_payment,omitempty"`
	DirectPayment           *DirectPayment           `json:"direct_payment,omitempty"`
	Invoice                 *Invoice                 `json:"invoice,omitempty"`
	Text                    *TextBubble              `json:"text,omitempty"`
	PaidTextBubble          *PaidTextBubble          `json:"paid_text_bubble,omitempty"`
	PaidTextContent         *TextBubble              `json:"paid_text_content,omitempty"`
	CallInvite              *CallInvite              `json:"call_invite,omitempty"`
	BotResponse             *BotResponse             `json:"bot_response,omitempty"`
	PaidReceivedDetails     *PaidReceivedDetails     `json:"paid_received_details,omitempty"`
	PaidSentStatus          *PaidSentStatus          `json:"paid_sent_status,omitempty"`
	AudioAttachment         *AudioAttachment         `json:"audio_attachment,omitempty"`
	ImageAttachment         *ImageAttachment         `json:"image_attachment,omitempty"`
	VideoAttachment         *VideoAttachment         `json:"video_attachment,omitempty"`
	PodcastClip             *PodcastClip             `json:"podcast_clip,omitempty"`
	PodcastBoost            *PodcastBoost            `json:"podcast_boost,omitempty"`
	ReactionBoosts          *ReactionBoosts          `json:"reaction_boosts,omitempty"`
	ReplyPreview            *ReplyPreview            `json:"reply_preview,omitempty"`
	GroupAction             *GroupActionIndicator    `json:"group_action,omitempty"`

	MenuItems []MenuItem `json:"menu_items,omitempty"`
}

// Snapshot binds every block, resolving the lazy attachments. The paid text body
// is included only if it has already been retrieved.
func (h *Holder) Snapshot() Snapshot {
	return Snapshot{
		MessageID:  h.message.ID,
		UUID:       h.message.UUID,
		Type:       h.message.Type,
		Direction:  h.direction,
		Background: h.background,

		UnsupportedMessageType:  h.unsupported,
		StatusHeader:            h.statusHeader,
		InvoiceExpirationHeader: h.invoiceExpirationHeader,
		DeletedOrFlagged:        h.deletedOrFlagged,
		InvoicePayment:          h.invoicePayment,
		DirectPayment:           h.directPayment,
		Invoice:                 h.invoice,
		Text:                    h.text,
		PaidTextBubble:          h.paidTextBubble,
		PaidTextContent:         h.paidText.Load(),
		CallInvite:              h.callInvite,
		BotResponse:             h.botResponse,
		PaidReceivedDetails:     h.paidReceivedDetails,
		PaidSentStatus:          h.paidSentStatus,
		AudioAttachment:         h.AudioAttachment(),
		ImageAttachment:         h.image,
		VideoAttachment:         h.VideoAttachment(),
		PodcastClip:             h.podcastClip,
		PodcastBoost:            h.podcastBoost,
		ReactionBoosts:          h.reactionBoosts,
		ReplyPreview:            h.replyPreview,
		GroupAction:             h.groupAction,

		MenuItems: h.MenuItems(),
	}
}
