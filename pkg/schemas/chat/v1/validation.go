package chat

import "errors"

type ValidationIssue struct{ Field, Reason string }

type ValidationError struct{ Issues []ValidationIssue }

var ErrInvalidContract = errors.New("invalid contract")

func (e *ValidationError) Error() string { return ErrInvalidContract.Error() }
func (e *ValidationError) add(f, r string) {
	e.Issues = append(e.Issues, ValidationIssue{Field: f, Reason: r})
}
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidContract }

func (e *ValidationError) orNil() error {
	if len(e.Issues) > 0 {
		return e
	}
	return nil
}

func (m *Message) Validate() error {
	ve := &ValidationError{}
	m.validate(ve, "")
	return ve.orNil()
}

func (m *Message) validate(ve *ValidationError, prefix string) {
	if m.ID == 0 {
		ve.add(prefix+"id", "required")
	}
	if !m.Type.Known() {
		ve.add(prefix+"type", "unknown")
	}
	if !m.Status.Known() {
		ve.add(prefix+"status", "unknown")
	}
	if m.Date.IsZero() {
		ve.add(prefix+"date", "required")
	}
	if m.Media != nil && m.Media.Price < 0 {
		ve.add(prefix+"media.price", "must not be negative")
	}
	if m.Amount < 0 {
		ve.add(prefix+"amount", "must not be negative")
	}
	if m.ReplyMessage != nil && m.ReplyMessage.ReplyMessage != nil {
		ve.add(prefix+"reply_message.reply_message", "nested replies are not resolved")
	}
	for i := range m.Reactions {
		if m.Reactions[i].Amount < 0 {
			ve.add(prefix+"reactions.amount", "must not be negative")
			break
		}
	}
}

func (c *Chat) Validate() error {
	ve := &ValidationError{}
	switch c.Type {
	case ChatConversation, ChatGroup, ChatTribe:
	case "":
		ve.add("type", "required")
	default:
		ve.add("type", "unknown")
	}
	return ve.orNil()
}
