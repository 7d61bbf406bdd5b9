// Package mail is the outbound email port and its SMTP implementation.
package mail

import "context"

// Kind selects an email template
type Kind string

const (
	KindVerification            Kind = "verification"
	KindPasswordReset           Kind = "password_reset"
	KindAdminInvitation         Kind = "admin_invitation"
	KindApplicationNotification Kind = "application_notification"
	KindAdminApproval           Kind = "admin_approval"
	KindAdminRejection          Kind = "admin_rejection"
)

// Message is a templated email to a single recipient
type Message struct {
	Kind Kind
	To   string
	Data map[string]string
}

// Mailer delivers templated messages. Callers decide whether a failure
// rolls back state (primary-path sends) or is logged and swallowed
// (notifications).
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
