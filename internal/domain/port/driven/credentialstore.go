package driven

import (
	"context"
	"errors"
)

// ErrEncryptionKeyNotSet is returned by CredentialStore operations when
// PROJECTCATALOG_SECRET_KEY has not been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set PROJECTCATALOG_SECRET_KEY")

// CredentialStore persists API tokens for external services. The adapter
// encrypts values at rest; this interface works on plaintext.
type CredentialStore interface {
	// SetToken stores or replaces the token for service.
	SetToken(ctx context.Context, service, token string) error

	// Token returns the token for service, or "" with a nil error when none
	// is stored.
	Token(ctx context.Context, service string) (string, error)

	// DeleteToken removes the token for service. Deleting a missing token is
	// not an error.
	DeleteToken(ctx context.Context, service string) error
}
