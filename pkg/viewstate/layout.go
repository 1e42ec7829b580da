package viewstate

import chat "github.com/roboricindustries/chatview/pkg/schemas/chat/v1"

// Sub-views. A nil pointer on the Holder means the block is not rendered.

type UnsupportedMessageType struct {
	MessageType chat.MessageType `json:"message_type"`
	AlignStart  bool             `json:"align_start"`
}

type StatusHeader struct {
	// SenderName is empty in one-to-one conversations.
	SenderName      string `json:"sender_name,omitempty"`
	ColorKey        string `json:"color_key"`
	ShowSent        bool   `json:"show_sent"`
	ShowSendingIcon bool   `json:"show_sending_icon"`
	ShowBoltIcon    bool   `json:"show_bolt_icon"`
	ShowFailed      bool   `json:"show_failed"`
	ShowLockIcon    bool   `json:"show_lock_icon"`
	Timestamp       string `json:"timestamp"`
}

type InvoiceExpirationHeader struct {
	ShowExpirationReceivedHeader bool   `json:"show_expiration_received_header"`
	ShowExpirationSentHeader     bool   `json:"show_expiration_sent_header"`
	ShowExpiredLabel             bool   `json:"show_expired_label"`
	ShowExpiresAtLabel           bool   `json:"show_expires_at_label"`
	ExpirationTimestamp          string `json:"expiration_timestamp,omitempty"`
}

type DeletedOrFlagged struct {
	AlignStart bool   `json:"align_start"`
	Deleted    bool   `json:"deleted"`
	Flagged    bool   `json:"flagged"`
	Timestamp  string `json:"timestamp"`
}

type InvoicePayment struct {
	ShowSent    bool   `json:"show_sent"`
	PaymentDate string `json:"payment_date"`
}

type DirectPayment struct {
	ShowSent bool     `json:"show_sent"`
	Amount   chat.Sat `json:"amount"`
}

type Invoice struct {
	ShowSent                  bool     `json:"show_sent"`
	Amount                    chat.Sat `json:"amount"`
	Text                      string   `json:"text"`
	ShowPaidInvoiceBottomLine bool     `json:"show_paid_invoice_bottom_line"`
	HideBubbleArrows          bool     `json:"hide_bubble_arrows"`
	ShowPayButton             bool     `json:"show_pay_button"`
	ShowDashedBorder          bool     `json:"show_dashed_border"`
	ShowExpiredLayout         bool     `json:"show_expired_layout"`
}

type TextBubble struct {
	Text string `json:"text"`
}

type PaidTextBubble struct {
	ShowSent       bool                `json:"show_sent"`
	PurchaseStatus chat.PurchaseStatus `json:"purchase_status"`
}

type CallInvite struct {
	URL       string `json:"url"`
	AudioOnly bool   `json:"audio_only"`
}

type BotResponse struct {
	HTML string `json:"html"`
}

type PaidReceivedDetails struct {
	Amount                    chat.Sat            `json:"amount"`
	PurchaseStatus            chat.PurchaseStatus `json:"purchase_status"`
	ShowStatusIcon            bool                `json:"show_status_icon"`
	ShowProcessingProgressBar bool                `json:"show_processing_progress_bar"`
	ShowStatusLabel           bool                `json:"show_status_label"`
	ShowPayElements           bool                `json:"show_pay_elements"`
}

type PaidSentStatus struct {
	Amount         chat.Sat            `json:"amount"`
	PurchaseStatus chat.PurchaseStatus `json:"purchase_status"`
}

type FileState uint8

const (
	FileAvailable FileState = iota + 1
	FileUnavailable
)

func (s FileState) String() string {
	switch s {
	case FileAvailable:
		return "available"
	case FileUnavailable:
		return "unavailable"
	}
	return "unknown"
}

func (s FileState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// AttachmentFile is either FileAvailable with a local Path, or FileUnavailable
// carrying whether the bytes wait on a payment.
type AttachmentFile struct {
	State          FileState `json:"state"`
	Path           string    `json:"path,omitempty"`
	PendingPayment bool      `json:"pending_payment,omitempty"`
}

type AudioAttachment struct {
	MessageID int64 `json:"message_id"`
	AttachmentFile
}

type VideoAttachment struct {
	AttachmentFile
}

type ImageAttachment struct {
	URL            string            `json:"url"`
	Media          chat.MessageMedia `json:"media"`
	PendingPayment bool              `json:"pending_payment"`
}

type PodcastClip struct {
	MessageID int64            `json:"message_id"`
	UUID      string           `json:"uuid"`
	Clip      chat.PodcastClip `json:"clip"`
}

type PodcastBoost struct {
	Amount chat.Sat `json:"amount"`
}

// BoostSender identifies one distinct booster in a reaction summary.
type BoostSender struct {
	PhotoURL string `json:"photo_url,omitempty"`
	Alias    string `json:"alias,omitempty"`
	ColorKey string `json:"color_key"`
}

type ReactionBoosts struct {
	ShowSent       bool          `json:"show_sent"`
	BoostedByOwner bool          `json:"boosted_by_owner"`
	Senders        []BoostSender `json:"senders"`
	TotalAmount    chat.Sat      `json:"total_amount"`
}

type ReplyPreview struct {
	ShowSent    bool               `json:"show_sent"`
	SenderAlias string             `json:"sender_alias"`
	ColorKey    string             `json:"color_key"`
	Text        string             `json:"text"`
	IsAudio     bool               `json:"is_audio"`
	MediaURL    string             `json:"media_url,omitempty"`
	Media       *chat.MessageMedia `json:"media,omitempty"`
}

type GroupActionIndicator struct {
	ActionType  chat.MessageType `json:"action_type"`
	IsAdminView bool             `json:"is_admin_view"`
	ChatType    chat.ChatType    `json:"chat_type"`
	SubjectName string           `json:"subject_name"`
}
