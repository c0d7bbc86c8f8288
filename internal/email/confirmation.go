package email

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const confirmationEmailTimeout = 5 * time.Second

// SendConfirmationEmail sends a booking confirmation asynchronously. The
// booking is already committed, so delivery failures are logged and never
// surfaced to the customer.
func SendConfirmationEmail(ctx context.Context, client EmailSender, recipient string, message BookingEmail, logger *zerolog.Logger) {
	if client == nil {
		return
	}
	if message.Subject == "" || message.Body == "" {
		return
	}
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return
	}

	sendCtx, cancel := newEmailContext(ctx, confirmationEmailTimeout)
	go func() {
		defer cancel()
		if err := client.Send(sendCtx, recipient, message.Subject, message.Body); err != nil && logger != nil {
			logger.Error().Err(err).Str("recipient", recipient).Msg("Failed to send confirmation email")
		}
	}()
}
