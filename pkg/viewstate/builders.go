package viewstate

import (
	"context"
	"slices"
	"time"

	chat "github.com/roboricindustries/chatview/pkg/schemas/chat/v1"
)

var unsupportedTypes = []chat.MessageType{
	chat.TypeAttachment,
	chat.TypePayment,
	chat.TypeTribeDelete,
}

// UnsupportedTypes returns the message types rendered as a banner unless a
// recognized media block covers them.
func UnsupportedTypes() []chat.MessageType { return slices.Clone(unsupportedTypes) }

// source is the immutable input shared by every builder of one Holder.
type source struct {
	dir        Direction
	msg        *chat.Message
	chat       *chat.Chat
	background BubbleBackground
	owner      chat.Contact
	now        time.Time
	loc        *time.Location
}

func (s *source) timestamp() string { return chatTime(s.msg.Date, s.now, s.loc) }

func buildUnsupported(s *source) *UnsupportedMessageType {
	m := s.msg
	if !slices.Contains(unsupportedTypes, m.Type) {
		return nil
	}
	if m.Media != nil && m.Media.MediaType.Recognized() {
		return nil
	}
	return &UnsupportedMessageType{MessageType: m.Type, AlignStart: s.dir == Received}
}

func buildStatusHeader(s *source) *StatusHeader {
	m := s.msg
	first := s.background == BackgroundFirst
	invoicePayment := m.Type.IsInvoicePayment() && m.Status.IsConfirmed()
	if !first && !invoicePayment {
		return nil
	}

	sent := s.dir == Sent
	h := &StatusHeader{
		ColorKey:        m.ColorKey(),
		ShowSent:        sent,
		ShowSendingIcon: sent && m.IsProvisional() && m.Status.IsPending(),
		ShowBoltIcon:    sent && (m.Status.IsReceived() || m.Status.IsConfirmed()),
		ShowFailed:      sent && m.Status.IsFailed(),
		ShowLockIcon:    m.ContentDecrypted != nil || (m.Media != nil && m.Media.MediaKeyDecrypted != nil),
		Timestamp:       s.timestamp(),
	}
	if !s.chat.IsConversation() {
		h.SenderName = m.SenderAlias
	}
	return h
}

func buildInvoiceExpirationHeader(s *source) *InvoiceExpirationHeader {
	m := s.msg
	if !m.Type.IsInvoice() || m.IsDeleted() {
		return nil
	}
	paid := m.IsPaidInvoice()
	expired := m.IsExpiredInvoice(s.now)
	h := &InvoiceExpirationHeader{
		ShowExpirationReceivedHeader: !paid && s.dir == Received,
		ShowExpirationSentHeader:     !paid && s.dir == Sent,
		ShowExpiredLabel:             expired,
		ShowExpiresAtLabel:           !expired && !paid,
	}
	if m.ExpirationDate != nil {
		h.ExpirationTimestamp = invoiceExpirationTime(*m.ExpirationDate, s.loc)
	}
	return h
}

func buildDeletedOrFlagged(s *source) *DeletedOrFlagged {
	m := s.msg
	if !m.IsDeleted() && !m.IsFlagged() {
		return nil
	}
	return &DeletedOrFlagged{
		AlignStart: s.dir == Received,
		Deleted:    m.IsDeleted(),
		Flagged:    m.IsFlagged(),
		Timestamp:  s.timestamp(),
	}
}

func buildInvoicePayment(s *source) *InvoicePayment {
	if !s.msg.Type.IsInvoicePayment() {
		return nil
	}
	return &InvoicePayment{
		ShowSent:    s.dir == Sent,
		PaymentDate: invoicePaymentDate(s.msg.Date, s.loc),
	}
}

func buildDirectPayment(s *source) *DirectPayment {
	if !s.msg.Type.IsDirectPayment() {
		return nil
	}
	return &DirectPayment{ShowSent: s.dir == Sent, Amount: s.msg.Amount}
}

func buildInvoice(s *source) *Invoice {
	m := s.msg
	if !m.Type.IsInvoice() {
		return nil
	}
	paid := m.IsPaidInvoice()
	expired := m.IsExpiredInvoice(s.now)
	open := !expired && !paid
	text, _ := m.InvoiceTextToShow()
	return &Invoice{
		ShowSent:                  s.dir == Sent,
		Amount:                    m.Amount,
		Text:                      text,
		ShowPaidInvoiceBottomLine: paid,
		HideBubbleArrows:          open,
		ShowPayButton:             open && s.dir == Received,
		ShowDashedBorder:          open,
		ShowExpiredLayout:         expired,
	}
}

func buildText(s *source) *TextBubble {
	text, ok := s.msg.TextToShow()
	if !ok || text == "" {
		return nil
	}
	return &TextBubble{Text: text}
}

func buildPaidText(s *source) *PaidTextBubble {
	m := s.msg
	if _, hasText := m.TextToShow(); hasText || !m.IsPaidTextMessage() {
		return nil
	}
	status, _ := m.PurchaseStatus()
	return &PaidTextBubble{ShowSent: s.dir == Sent, PurchaseStatus: status}
}

func buildCallInvite(s *source) *CallInvite {
	link := s.msg.CallLink()
	if link == nil {
		return nil
	}
	return &CallInvite{URL: link.URL, AudioOnly: link.StartAudioOnly}
}

func buildBotResponse(s *source) *BotResponse {
	html, ok := s.msg.BotResponseHTML()
	if !ok {
		return nil
	}
	return &BotResponse{HTML: html}
}

func buildPaidReceivedDetails(s *source) *PaidReceivedDetails {
	if s.dir == Sent {
		return nil
	}
	status, ok := s.msg.PurchaseStatus()
	if !ok {
		return nil
	}
	return &PaidReceivedDetails{
		Amount:                    s.msg.Media.Price,
		PurchaseStatus:            status,
		ShowStatusIcon:            status.IsAccepted() || status.IsDenied(),
		ShowProcessingProgressBar: status.IsProcessing(),
		ShowStatusLabel:           status.IsProcessing() || status.IsAccepted() || status.IsDenied(),
		ShowPayElements:           status.IsPending(),
	}
}

func buildPaidSentStatus(s *source) *PaidSentStatus {
	if s.dir != Sent {
		return nil
	}
	status, ok := s.msg.PurchaseStatus()
	if !ok {
		return nil
	}
	return &PaidSentStatus{Amount: s.msg.Media.Price, PurchaseStatus: status}
}

// attachmentFile resolves the local state of the media; an unavailable file not
// gated on payment asks for a download.
func attachmentFile(s *source, notify func()) AttachmentFile {
	if s.msg.Media.LocalFile != nil {
		return AttachmentFile{State: FileAvailable, Path: *s.msg.Media.LocalFile}
	}
	pending := s.dir == Received && s.msg.IsPaidPendingMessage()
	if !pending {
		notify()
	}
	return AttachmentFile{State: FileUnavailable, PendingPayment: pending}
}

func buildAudio(s *source, notify func()) *AudioAttachment {
	if s.msg.Media == nil || !s.msg.Media.MediaType.IsAudio() {
		return nil
	}
	return &AudioAttachment{MessageID: s.msg.ID, AttachmentFile: attachmentFile(s, notify)}
}

func buildVideo(s *source, notify func()) *VideoAttachment {
	if s.msg.Media == nil || !s.msg.Media.MediaType.IsVideo() {
		return nil
	}
	return &VideoAttachment{AttachmentFile: attachmentFile(s, notify)}
}

func buildImage(s *source) *ImageAttachment {
	url, media, ok := s.msg.ImageURLAndMedia()
	if !ok {
		return nil
	}
	return &ImageAttachment{
		URL:            url,
		Media:          *media,
		PendingPayment: s.dir == Received && s.msg.IsPaidPendingMessage(),
	}
}

func buildPodcastClip(s *source) *PodcastClip {
	clip := s.msg.PodcastClip()
	if clip == nil {
		return nil
	}
	return &PodcastClip{MessageID: s.msg.ID, UUID: s.msg.UUID, Clip: *clip}
}

func buildPodcastBoost(s *source) *PodcastBoost {
	boost := s.msg.FeedBoost()
	if boost == nil {
		return nil
	}
	return &PodcastBoost{Amount: boost.Amount}
}

// buildReactionBoosts folds reactions into distinct senders in first-seen order.
func buildReactionBoosts(ctx context.Context, s *source, deps Deps) *ReactionBoosts {
	reactions := s.msg.Reactions
	if len(reactions) == 0 {
		return nil
	}

	out := &ReactionBoosts{ShowSent: s.dir == Sent}
	seen := make(map[BoostSender]struct{}, len(reactions))
	add := func(b BoostSender) {
		if _, ok := seen[b]; ok {
			return
		}
		seen[b] = struct{}{}
		out.Senders = append(out.Senders, b)
	}

	for i := range reactions {
		r := &reactions[i]
		switch {
		case r.Sender == s.owner.ID:
			out.BoostedByOwner = true
			add(BoostSender{PhotoURL: s.owner.PhotoURL, Alias: s.owner.Alias, ColorKey: s.owner.ColorKey()})
		case s.chat.IsConversation():
			info := deps.senderInfo(ctx, r)
			add(BoostSender{PhotoURL: info.PhotoURL, Alias: info.Alias, ColorKey: info.ColorKey})
		default:
			info := EmbeddedSenderInfo(r)
			add(BoostSender{PhotoURL: info.PhotoURL, Alias: info.Alias, ColorKey: info.ColorKey})
		}
		out.TotalAmount += r.Amount
	}
	return out
}

func buildReplyPreview(ctx context.Context, s *source, deps Deps) *ReplyPreview {
	reply := s.msg.ReplyMessage
	if reply == nil {
		return nil
	}
	text, _ := reply.TextToShow()
	p := &ReplyPreview{
		ShowSent:    s.dir == Sent,
		SenderAlias: deps.senderInfo(ctx, reply).Alias,
		ColorKey:    reply.ColorKey(),
		Text:        text,
		IsAudio:     reply.IsAudioMessage(),
	}
	if url, media, ok := reply.ImageURLAndMedia(); ok {
		mc := *media
		p.MediaURL, p.Media = url, &mc
	}
	return p
}

func buildGroupAction(s *source) *GroupActionIndicator {
	m := s.msg
	if !m.Type.IsGroupAction() {
		return nil
	}
	admin := s.chat.OwnerPubKey != nil && s.owner.NodePubKey != nil &&
		*s.chat.OwnerPubKey == *s.owner.NodePubKey
	return &GroupActionIndicator{
		ActionType:  m.Type,
		IsAdminView: admin,
		ChatType:    s.chat.Type,
		SubjectName: m.SenderAlias,
	}
}
