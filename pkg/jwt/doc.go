// Package jwt implements a deliberately minimal JWT codec: three signing
// algorithms (HS256, RS256, ES256), the six registered claims the backend
// actually uses, and symmetric verification with distinct sentinel errors
// for every failure mode.
//
// The backend only verifies tokens it also issues, so completeness is traded
// for auditability. There is no JWKS handling, no algorithm negotiation, and
// no support for tokens produced by other issuers.
//
// # Signing
//
// The algorithm is selected by the key type, never by caller-supplied
// configuration, which rules out algorithm confusion by construction:
//
//	token, err := jwt.Sign(payload, jwt.HS256Key("shared-secret"),
//	    jwt.WithSubject("session"),
//	    jwt.WithExpiresIn(24*time.Hour),
//	)
//
// RS256Key wraps an *rsa.PrivateKey and ES256Key wraps a P-256
// *ecdsa.PrivateKey whose signature is serialized in the fixed-length R||S
// form required by RFC 7518.
//
// Sign fills iat with the current time, defaults nbf to iat and exp to
// iat + 30 days, and rejects claim sets where nbf > iat or exp <= iat.
//
// # Verification
//
// Verify is generic over the payload type; embed Claims to receive the
// registered claims alongside application fields:
//
//	type sessionClaims struct {
//	    jwt.Claims
//	    UserID string `json:"uid"`
//	}
//
//	claims, err := jwt.Verify[sessionClaims](token, secret, jwt.Expected{Subject: "session"})
//
// Every verification failure is a distinct sentinel (ErrMalformedToken,
// ErrAlgorithmMismatch, ErrInvalidSignature, ErrTokenExpired, ...) so callers
// can log precise causes while collapsing them to one user-facing message.
// Signature comparison is constant-time.
package jwt
