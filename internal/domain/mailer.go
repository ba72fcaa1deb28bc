package domain

import "context"

// Mailer sends plain-text email. Implementations return ErrMailUnavailable
// (possibly wrapped) when the mail server cannot be reached, so callers can
// distinguish connectivity trouble from a rejected message.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
