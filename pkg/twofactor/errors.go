package twofactor

import "errors"

// Domain errors surfaced directly to callers. Anything not listed here is an
// unexpected failure (storage, cache, hashing) and propagates unmodified.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrAlreadyEnabled      = errors.New("two-factor authentication already configured")
	ErrNotEnabled          = errors.New("two-factor authentication is not enabled")
	ErrPasswordNotSet      = errors.New("account has no password set")
	ErrInvalidPassword     = errors.New("invalid password")
	ErrInvalidOldPassword  = errors.New("invalid old password")
	ErrSecretNotFound      = errors.New("no pending two-factor secret found")
	ErrInvalidCode         = errors.New("invalid one-time code")
	ErrInvalidRecoveryCode = errors.New("invalid recovery code")
	ErrCodeRequired        = errors.New("a one-time code or recovery code is required")
	ErrAccountLocked       = errors.New("account is locked")
	ErrTokenInvalid        = errors.New("invalid token")
)
