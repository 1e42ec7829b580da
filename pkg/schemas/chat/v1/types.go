package chat

import "strings"

type MessageType int

const (
	TypeMessage                MessageType = 0
	TypeConfirmation           MessageType = 1
	TypeInvoice                MessageType = 2
	TypePayment                MessageType = 3
	TypeCancellation           MessageType = 4
	TypeDirectPayment          MessageType = 5
	TypeAttachment             MessageType = 6
	TypePurchaseProcessing     MessageType = 7
	TypePurchaseAccepted       MessageType = 8
	TypePurchaseDenied         MessageType = 9
	TypeContactKey             MessageType = 10
	TypeContactKeyConfirmation MessageType = 11
	TypeGroupCreate            MessageType = 12
	TypeGroupInvite            MessageType = 13
	TypeGroupJoin              MessageType = 14
	TypeGroupLeave             MessageType = 15
	TypeGroupKick              MessageType = 16
	TypeDelete                 MessageType = 17
	TypeRepayment              MessageType = 18
	TypeMemberRequest          MessageType = 19
	TypeMemberApprove          MessageType = 20
	TypeMemberReject           MessageType = 21
	TypeTribeDelete            MessageType = 22
	TypeBotInstall             MessageType = 23
	TypeBotCmd                 MessageType = 24
	TypeBotRes                 MessageType = 25
	TypeBoost                  MessageType = 29
	TypeInvoicePayment         MessageType = 33
)

var messageTypeNames = map[MessageType]string{
	TypeMessage:                "message",
	TypeConfirmation:           "confirmation",
	TypeInvoice:                "invoice",
	TypePayment:                "payment",
	TypeCancellation:           "cancellation",
	TypeDirectPayment:          "direct_payment",
	TypeAttachment:             "attachment",
	TypePurchaseProcessing:     "purchase_processing",
	TypePurchaseAccepted:       "purchase_accepted",
	TypePurchaseDenied:         "purchase_denied",
	TypeContactKey:             "contact_key",
	TypeContactKeyConfirmation: "contact_key_confirmation",
	TypeGroupCreate:            "group_create",
	TypeGroupInvite:            "group_invite",
	TypeGroupJoin:              "group_join",
	TypeGroupLeave:             "group_leave",
	TypeGroupKick:              "group_kick",
	TypeDelete:                 "delete",
	TypeRepayment:              "repayment",
	TypeMemberRequest:          "member_request",
	TypeMemberApprove:          "member_approve",
	TypeMemberReject:           "member_reject",
	TypeTribeDelete:            "tribe_delete",
	TypeBotInstall:             "bot_install",
	TypeBotCmd:                 "bot_cmd",
	TypeBotRes:                 "bot_res",
	TypeBoost:                  "boost",
	TypeInvoicePayment:         "invoice_payment",
}

func (t MessageType) String() string {
	if n, ok := messageTypeNames[t]; ok {
		return n
	}
	return "unknown"
}

func (t MessageType) Known() bool {
	_, ok := messageTypeNames[t]
	return ok
}

func (t MessageType) IsMessage() bool        { return t == TypeMessage }
func (t MessageType) IsInvoice() bool        { return t == TypeInvoice }
func (t MessageType) IsInvoicePayment() bool { return t == TypeInvoicePayment }
func (t MessageType) IsDirectPayment() bool  { return t == TypeDirectPayment }
func (t MessageType) IsAttachment() bool     { return t == TypeAttachment }
func (t MessageType) IsBotRes() bool         { return t == TypeBotRes }
func (t MessageType) IsBoost() bool          { return t == TypeBoost }

func (t MessageType) IsGroupAction() bool {
	switch t {
	case TypeGroupCreate, TypeGroupInvite, TypeGroupJoin, TypeGroupLeave, TypeGroupKick,
		TypeMemberRequest, TypeMemberApprove, TypeMemberReject, TypeTribeDelete:
		return true
	}
	return false
}

type MessageStatus int

const (
	StatusPending   MessageStatus = 0
	StatusConfirmed MessageStatus = 1
	StatusCancelled MessageStatus = 2
	StatusReceived  MessageStatus = 3
	StatusFailed    MessageStatus = 4
	StatusDeleted   MessageStatus = 5
)

func (s MessageStatus) IsPending() bool   { return s == StatusPending }
func (s MessageStatus) IsConfirmed() bool { return s == StatusConfirmed }
func (s MessageStatus) IsReceived() bool  { return s == StatusReceived }
func (s MessageStatus) IsFailed() bool    { return s == StatusFailed }
func (s MessageStatus) IsDeleted() bool   { return s == StatusDeleted }

func (s MessageStatus) Known() bool { return s >= StatusPending && s <= StatusDeleted }

// MediaType is the mime type of an attachment. "sphinx/text" marks a paid text body.
type MediaType string

const MediaTypeSphinxText MediaType = "sphinx/text"

func (m MediaType) IsImage() bool      { return strings.HasPrefix(string(m), "image") }
func (m MediaType) IsAudio() bool      { return strings.HasPrefix(string(m), "audio") }
func (m MediaType) IsVideo() bool      { return strings.HasPrefix(string(m), "video") }
func (m MediaType) IsSphinxText() bool { return m == MediaTypeSphinxText }

// Recognized reports whether the type maps to one of the renderable media blocks.
func (m MediaType) Recognized() bool {
	return m.IsSphinxText() || m.IsImage() || m.IsAudio() || m.IsVideo()
}

type PurchaseStatus string

const (
	PurchasePending    PurchaseStatus = "pending"
	PurchaseProcessing PurchaseStatus = "processing"
	PurchaseAccepted   PurchaseStatus = "accepted"
	PurchaseDenied     PurchaseStatus = "denied"
)

func (p PurchaseStatus) IsPending() bool    { return p == PurchasePending }
func (p PurchaseStatus) IsProcessing() bool { return p == PurchaseProcessing }
func (p PurchaseStatus) IsAccepted() bool   { return p == PurchaseAccepted }
func (p PurchaseStatus) IsDenied() bool     { return p == PurchaseDenied }

type ChatType string

const (
	ChatConversation ChatType = "conversation"
	ChatGroup        ChatType = "group"
	ChatTribe        ChatType = "tribe"
)
