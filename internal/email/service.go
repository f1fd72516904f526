package email

import (
	"context"
)

// Sender is the opaque delivery collaborator the notification sinks
// depend on.
type Sender interface {
	Send(ctx context.Context, to string, subject string, body string) error
}
