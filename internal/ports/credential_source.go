package ports

import "context"

// CredentialSource resolves a named credential for CLI commands. It is
// read-only: nothing in this module writes credentials.
type CredentialSource interface {
	Get(ctx context.Context, key string) (string, error)
}
