package ports

import "context"

type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer is the capability port onto the templated-send email
// provider. Idempotency of a given send is the caller's responsibility
// per spec §6.3; Mailer itself just delivers.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}
