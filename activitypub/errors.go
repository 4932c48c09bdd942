package activitypub

import (
	"errors"
	"fmt"
)

// Error taxonomy for the delivery pipeline. The worker retries any
// handler failure by default; errors wrapped as unrecoverable are
// dead-lettered immediately.
var (
	// ErrUnrecoverable marks a message as permanently undeliverable.
	ErrUnrecoverable = errors.New("unrecoverable message")

	// ErrActorUnresolvable is returned when an identifier cannot be
	// resolved to an actor: malformed handle, failed discovery, or a
	// profile document missing its public key or inbox.
	ErrActorUnresolvable = errors.New("actor unresolvable")

	// ErrMalformedNote is returned when an inbound Note carries no
	// extractable url or title.
	ErrMalformedNote = errors.New("malformed note object")

	// ErrMissingKey is returned when a local actor has no usable
	// private key material. This is a configuration problem, never a
	// delivery problem.
	ErrMissingKey = errors.New("missing private key")
)

// Unrecoverable wraps err so the delivery worker will not retry it.
func Unrecoverable(err error) error {
	return fmt.Errorf("%w: %w", ErrUnrecoverable, err)
}

// Unrecoverablef is Unrecoverable with a fresh message.
func Unrecoverablef(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrUnrecoverable, fmt.Sprintf(format, args...))
}

// IsUnrecoverable reports whether err must not be retried.
func IsUnrecoverable(err error) bool {
	return errors.Is(err, ErrUnrecoverable)
}
