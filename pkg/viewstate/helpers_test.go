package viewstate

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	chat "github.com/roboricindustries/chatview/pkg/schemas/chat/v1"
)

var (
	testNow      = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	ownerKey     = "02owner"
	testOwner    = chat.Contact{ID: 1, NodePubKey: &ownerKey, Alias: "me", PhotoURL: "https://img/me.png"}
	conversation = chat.Chat{ID: 10, Type: chat.ChatConversation}
	tribe        = chat.Chat{ID: 11, Type: chat.ChatTribe, Name: "gophers"}
)

func strPtr(s string) *string { return &s }

func textMessage(id int64, sender chat.ContactID, body string) chat.Message {
	return chat.Message{
		ID:               id,
		UUID:             "uuid-" + body,
		ChatID:           conversation.ID,
		Type:             chat.TypeMessage,
		Status:           chat.StatusReceived,
		Sender:           sender,
		SenderAlias:      "alice",
		Date:             testNow.Add(-time.Minute),
		ContentDecrypted: strPtr(body),
	}
}

type downloads struct{ n atomic.Int32 }

func (d *downloads) RequestDownload(*chat.Message) { d.n.Add(1) }

func build(t *testing.T, dir Direction, m chat.Message, c chat.Chat, bg BubbleBackground, deps Deps) *Holder {
	t.Helper()
	if deps.Owner == nil {
		deps.Owner = StaticOwner(testOwner)
	}
	return New(context.Background(), Input{Direction: dir, Message: m, Chat: c, Background: bg}, deps,
		WithClock(func() time.Time { return testNow }))
}
