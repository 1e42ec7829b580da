package chat

import (
	"fmt"
	"time"
)

type ContactID int64

type MessageMedia struct {
	MediaType MediaType `json:"media_type"`
	URL       string    `json:"url,omitempty"`
	// MediaKeyDecrypted is set once the attachment key has been decrypted locally.
	MediaKeyDecrypted *string `json:"media_key_decrypted,omitempty"`
	Price             Sat     `json:"price,omitempty"`
	// LocalFile is the path of the downloaded bytes, nil until fetched.
	LocalFile *string `json:"local_file,omitempty"`
}

type Message struct {
	// ID is negative for provisional (not yet acknowledged) messages.
	ID          int64         `json:"id"`
	UUID        string        `json:"uuid,omitempty"`
	ChatID      int64         `json:"chat_id"`
	Type        MessageType   `json:"type"`
	Status      MessageStatus `json:"status"`
	Sender      ContactID     `json:"sender"`
	SenderAlias string        `json:"sender_alias,omitempty"`
	SenderPic   string        `json:"sender_pic,omitempty"`
	Amount      Sat           `json:"amount"`

	Date           time.Time  `json:"date"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`

	ContentDecrypted *string       `json:"content_decrypted,omitempty"`
	Media            *MessageMedia `json:"media,omitempty"`

	ReplyUUID    string    `json:"reply_uuid,omitempty"`
	ReplyMessage *Message  `json:"reply_message,omitempty"`
	Reactions    []Message `json:"reactions,omitempty"`

	// Purchase is the latest purchase state of a paid attachment; empty means pending.
	Purchase PurchaseStatus `json:"purchase,omitempty"`
	Flagged  bool           `json:"flagged,omitempty"`
}

func (m *Message) IsProvisional() bool { return m.ID < 0 }

func (m *Message) ColorKey() string {
	return fmt.Sprintf("message-%d-color", m.Sender)
}

type Chat struct {
	ID          int64    `json:"id"`
	Type        ChatType `json:"type"`
	Name        string   `json:"name,omitempty"`
	OwnerPubKey *string  `json:"owner_pub_key,omitempty"`
}

func (c *Chat) IsConversation() bool { return c.Type == ChatConversation }

// IsTribeOwnedByAccount reports whether c is a tribe whose owner is pubKey.
func (c *Chat) IsTribeOwnedByAccount(pubKey *string) bool {
	if c.Type != ChatTribe || c.OwnerPubKey == nil || pubKey == nil {
		return false
	}
	return *c.OwnerPubKey == *pubKey
}

type Contact struct {
	ID         ContactID `json:"id"`
	NodePubKey *string   `json:"node_pub_key,omitempty"`
	Alias      string    `json:"alias,omitempty"`
	PhotoURL   string    `json:"photo_url,omitempty"`
}

func (c *Contact) ColorKey() string {
	return fmt.Sprintf("contact-%d-color", c.ID)
}
