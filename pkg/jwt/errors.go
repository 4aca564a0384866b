package jwt

import "errors"

var (
	ErrUnsupportedAlgorithm = errors.New("jwt: unsupported signing algorithm")
	ErrMalformedToken       = errors.New("jwt: malformed token")
	ErrAlgorithmMismatch    = errors.New("jwt: algorithm mismatch")
	ErrTypeMismatch         = errors.New("jwt: unexpected token type")
	ErrMissingSignature     = errors.New("jwt: missing signature")
	ErrInvalidSignature     = errors.New("jwt: invalid signature")
	ErrTokenNotYetValid     = errors.New("jwt: token not yet valid")
	ErrTokenExpired         = errors.New("jwt: token expired")
	ErrSubjectMismatch      = errors.New("jwt: subject mismatch")
	ErrAudienceMismatch     = errors.New("jwt: audience mismatch")
	ErrIssuerMismatch       = errors.New("jwt: issuer mismatch")
	ErrInvalidClaims        = errors.New("jwt: invalid claims")
	ErrMissingSigningKey    = errors.New("jwt: missing signing key")
)
