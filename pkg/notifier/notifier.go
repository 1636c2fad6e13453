package notifier

import (
	"context"

	"crm-backend/internal/domain"
)

// EmailSender delivers one notification email. The boolean result is the
// whole contract: senders log their own failures and never panic.
type EmailSender interface {
	SendNotificationEmail(ctx context.Context, to, title, message string) bool
}

// SMSSender delivers one notification SMS under the same best-effort
// contract as email.
type SMSSender interface {
	SendNotificationSMS(ctx context.Context, phone, title, message string) bool
}

// Broadcaster pushes an event to all currently connected sessions. No
// backpressure signal comes back to the caller.
type Broadcaster interface {
	Publish(event domain.WSEvent)
}

// Notifier bundles the delivery channels handed to the dispatcher. All
// channels are injected; there is no package-level transport state.
type Notifier struct {
	Email EmailSender
	SMS   SMSSender
	WS    Broadcaster
}

func NewNotifier(email EmailSender, sms SMSSender, ws Broadcaster) *Notifier {
	return &Notifier{Email: email, SMS: sms, WS: ws}
}
