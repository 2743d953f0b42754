// internal/sender/sender.go
package sender

import "context"

// Sender is the message send port. Send delivers content to a resolved
// target and returns the delivery receipt id. Failures are the typed errors
// in internal/errors: ErrChannelUnreachable when the target is gone or the
// bot lacks rights, ErrTransientDelivery for rate limits and timeouts.
type Sender interface {
	Send(ctx context.Context, target, content string) (string, error)
}
