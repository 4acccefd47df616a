package marketplace

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

// Credential is a bearer credential for one marketplace account.
type Credential struct {
	AccountID   string
	AccessToken string
	ExpiresAt   time.Time
}

// Expired reports whether the credential's own expiry has passed. A zero
// expiry means the provider did not disclose one.
func (c Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// TokenProvider resolves bearer credentials per account. The OAuth
// token-acquisition flow behind Refresh lives outside this service.
type TokenProvider interface {
	// Resolve returns a credential for the account, or ErrNoCredential /
	// ErrTokenExpired.
	Resolve(ctx context.Context, accountID string) (Credential, error)

	// Refresh obtains a fresh credential after an expiry signal.
	Refresh(ctx context.Context, accountID string) (Credential, error)
}

// EnvTokenProvider reads static tokens from MARKETPLACE_TOKEN_<ACCOUNT>
// environment variables. It is the thin adapter used in development and in
// deployments where a sidecar rotates the variables; Refresh just re-reads.
type EnvTokenProvider struct{}

func NewEnvTokenProvider() *EnvTokenProvider {
	return &EnvTokenProvider{}
}

func (p *EnvTokenProvider) Resolve(_ context.Context, accountID string) (Credential, error) {
	token := os.Getenv(envVar(accountID))
	if token == "" {
		return Credential{}, fmt.Errorf("account %s: %w", accountID, ErrNoCredential)
	}
	return Credential{AccountID: accountID, AccessToken: token}, nil
}

func (p *EnvTokenProvider) Refresh(ctx context.Context, accountID string) (Credential, error) {
	return p.Resolve(ctx, accountID)
}

func envVar(accountID string) string {
	normalized := strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(accountID))
	return "MARKETPLACE_TOKEN_" + normalized
}
