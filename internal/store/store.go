package store

import "context"

// ErrNotFound signals the absence of a stored token. Absence is not a failure;
// it simply means the client is logged out.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "credential not found" }

// CredentialStore is durable key/value persistence holding at most one access
// token. All implementations must make Remove idempotent.
type CredentialStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Remove(ctx context.Context) error
}
