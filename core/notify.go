package core

import (
	"context"
	"net/mail"
)

type (
	// SMSMessage is a single text message to one recipient.
	SMSMessage struct {
		To   string // phone number
		Body string
	}

	// SMSService is any service that can deliver text messages.
	// Send is synchronous: the Alert Dispatcher needs a per-recipient
	// outcome, so fan-out is the caller's business, not the channel's.
	// Implementations must honor ctx cancellation/deadline.
	SMSService interface {
		Send(ctx context.Context, msg SMSMessage) error
	}

	// EmailMessage is a plain-text email.
	EmailMessage struct {
		To      []mail.Address
		Subject string
		Body    string
	}

	// EmailService is any service that can send emails.
	// SendMessages sends messages concurrently, best-effort.
	EmailService interface {
		SendMessages(messages ...*EmailMessage)
	}
)

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return m.Body != "" }
