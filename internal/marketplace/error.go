package marketplace

import "errors"

var (
	// ErrTokenExpired signals an expired credential; the caller refreshes
	// once and retries exactly once before giving up.
	ErrTokenExpired = errors.New("marketplace token expired")

	// ErrNoCredential means no credential is known for the account.
	ErrNoCredential = errors.New("no credential for account")

	// ErrUnauthorized is terminal: the credential was rejected even after
	// a refresh.
	ErrUnauthorized = errors.New("marketplace rejected credentials")

	// ErrRateLimited and ErrUnavailable are transient and retried with a
	// bounded number of attempts.
	ErrRateLimited = errors.New("marketplace rate limited")
	ErrUnavailable = errors.New("marketplace unavailable")
)

// Transient reports whether the error may resolve on retry.
func Transient(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUnavailable)
}
