package totp

import "errors"

var (
	ErrFailedToGenerateSecret       = errors.New("totp: failed to generate secret")
	ErrInvalidSecret                = errors.New("totp: invalid secret")
	ErrInvalidCodeFormat            = errors.New("totp: invalid code format")
	ErrMissingSecret                = errors.New("totp: missing secret")
	ErrMissingAccountName           = errors.New("totp: missing account name")
	ErrMissingIssuer                = errors.New("totp: missing issuer")
	ErrMissingHasher                = errors.New("totp: missing recovery code hasher")
	ErrFailedToGenerateRecoveryCode = errors.New("totp: failed to generate recovery code")
)
