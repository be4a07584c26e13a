package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// TokenProvider supplies OAuth tokens for tenant calendar access. The
// abstraction keeps token storage (disk files, secret stores) out of the
// calendar client.
type TokenProvider interface {
	// GetTokenForAccount retrieves an OAuth token for the tenant account.
	GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error)

	// HasTokenForAccount reports whether a token exists for the tenant
	// account without loading it.
	HasTokenForAccount(account string) bool
}

// FileTokenProvider reads tokens from per-account files on disk. This is
// the provider used by the stdio transport and the CLI.
type FileTokenProvider struct{}

// NewFileTokenProvider creates a file-based token provider.
func NewFileTokenProvider() *FileTokenProvider {
	return &FileTokenProvider{}
}

// GetTokenForAccount loads the tenant's token from disk, refreshing it
// through the token source if expired.
func (p *FileTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	ts, err := GetTokenSourceForAccount(ctx, account)
	if err != nil {
		return nil, err
	}

	token, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to get token from file: %w", err)
	}

	return token, nil
}

// HasTokenForAccount reports whether a token file exists for the account.
func (p *FileTokenProvider) HasTokenForAccount(account string) bool {
	return HasTokenForAccount(account)
}
