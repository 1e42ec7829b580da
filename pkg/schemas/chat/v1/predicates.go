package chat

import "time"

// Availability predicates. Every rendering decision derives from these; they must
// stay free of side effects.

func (m *Message) IsDeleted() bool { return m.Status.IsDeleted() }
func (m *Message) IsFlagged() bool { return m.Flagged }

// TextToShow returns the plain body to render as a text bubble. ok is false when the
// body is hidden or rendered by a dedicated block (clip, boost, call, bot, invoice).
func (m *Message) TextToShow() (text string, ok bool) {
	if m.ContentDecrypted == nil || m.IsDeleted() || m.IsFlagged() {
		return "", false
	}
	switch {
	case m.Type.IsInvoice(), m.Type.IsBotRes(), m.Type.IsBoost():
		return "", false
	case m.PodcastClip() != nil, m.FeedBoost() != nil, m.CallLink() != nil:
		return "", false
	}
	return *m.ContentDecrypted, true
}

func (m *Message) InvoiceTextToShow() (string, bool) {
	if !m.Type.IsInvoice() || m.ContentDecrypted == nil {
		return "", false
	}
	return *m.ContentDecrypted, true
}

func (m *Message) BotResponseHTML() (string, bool) {
	if !m.Type.IsBotRes() || m.ContentDecrypted == nil || *m.ContentDecrypted == "" {
		return "", false
	}
	return *m.ContentDecrypted, true
}

func (m *Message) ImageURLAndMedia() (string, *MessageMedia, bool) {
	if m.Media == nil || !m.Media.MediaType.IsImage() || m.Media.URL == "" {
		return "", nil, false
	}
	return m.Media.URL, m.Media, true
}

func (m *Message) IsAudioMessage() bool {
	return m.Media != nil && m.Media.MediaType.IsAudio()
}

func (m *Message) IsPaidMessage() bool {
	return m.Type.IsAttachment() && m.Media != nil && m.Media.Price > 0
}

func (m *Message) IsPaidTextMessage() bool {
	return m.IsPaidMessage() && m.Media.MediaType.IsSphinxText()
}

// PurchaseStatus is defined only for paid messages.
func (m *Message) PurchaseStatus() (PurchaseStatus, bool) {
	if !m.IsPaidMessage() {
		return "", false
	}
	if m.Purchase == "" {
		return PurchasePending, true
	}
	return m.Purchase, true
}

func (m *Message) IsPaidPendingMessage() bool {
	ps, ok := m.PurchaseStatus()
	return ok && !ps.IsAccepted()
}

func (m *Message) IsPaidInvoice() bool {
	return m.Type.IsInvoice() && m.Status.IsConfirmed()
}

func (m *Message) IsExpiredInvoice(now time.Time) bool {
	return m.Type.IsInvoice() && !m.IsPaidInvoice() &&
		m.ExpirationDate != nil && m.ExpirationDate.Before(now)
}

func (m *Message) canInteract() bool {
	switch m.Type {
	case TypeMessage, TypeAttachment, TypeBotRes:
	default:
		return false
	}
	return m.UUID != "" && !m.IsDeleted() && !m.IsFlagged()
}

func (m *Message) IsBoostAllowed() bool {
	return m.canInteract() && !m.IsProvisional()
}

func (m *Message) IsReplyAllowed() bool { return m.canInteract() }

func (m *Message) IsCopyAllowed() bool {
	text, ok := m.TextToShow()
	return ok && text != ""
}

func (m *Message) IsResendAllowed() bool {
	return m.Type.IsMessage() && m.Status.IsFailed()
}

func (m *Message) IsMediaAttachmentAvailable() bool {
	return m.Type.IsAttachment() && m.Media != nil && m.Media.LocalFile != nil &&
		!m.IsDeleted() && !m.IsPaidPendingMessage()
}
