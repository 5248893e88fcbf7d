package email

import "context"

// Service is the outbound mail transport. Failures are reported
// synchronously; callers decide whether a failed send is fatal.
type Service interface {
	SendTemporaryPassword(ctx context.Context, to, tempPassword string) error
	SendCustom(ctx context.Context, to, subject, body string) error
}
