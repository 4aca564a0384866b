package jwt

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// HeaderType is the only token type this codec issues or accepts.
	HeaderType = "JWT"

	// DefaultTokenTTL is applied when no expiry override is supplied.
	DefaultTokenTTL = 30 * 24 * time.Hour
)

type signConfig struct {
	id        string
	subject   string
	issuer    string
	audience  string
	issuedAt  time.Time
	notBefore time.Time
	expiresAt time.Time
	headers   map[string]any
}

// SignOption overrides registered claims or header fields at sign time.
type SignOption func(*signConfig)

func WithID(id string) SignOption {
	return func(c *signConfig) { c.id = id }
}

func WithSubject(sub string) SignOption {
	return func(c *signConfig) { c.subject = sub }
}

func WithIssuer(iss string) SignOption {
	return func(c *signConfig) { c.issuer = iss }
}

func WithAudience(aud string) SignOption {
	return func(c *signConfig) { c.audience = aud }
}

// WithIssuedAt overrides the issued-at timestamp. Intended for tests that
// need deterministic token lifetimes.
func WithIssuedAt(t time.Time) SignOption {
	return func(c *signConfig) { c.issuedAt = t }
}

func WithNotBefore(t time.Time) SignOption {
	return func(c *signConfig) { c.notBefore = t }
}

func WithExpiresAt(t time.Time) SignOption {
	return func(c *signConfig) { c.expiresAt = t }
}

// WithExpiresIn sets the expiry relative to the issued-at timestamp.
func WithExpiresIn(ttl time.Duration) SignOption {
	return func(c *signConfig) { c.expiresAt = c.issuedAt.Add(ttl) }
}

// WithHeader adds an extra header field alongside the required alg and typ.
func WithHeader(key string, value any) SignOption {
	return func(c *signConfig) {
		if c.headers == nil {
			c.headers = make(map[string]any)
		}
		c.headers[key] = value
	}
}

// Sign serializes the payload as the token's claims segment, fills in the
// registered temporal claims, and signs the result with the supplied key.
// The payload must marshal to a JSON object; registered claims set through
// options overwrite payload fields of the same name.
func Sign(payload any, key SigningKey, opts ...SignOption) (string, error) {
	if key == nil {
		return "", ErrUnsupportedAlgorithm
	}

	cfg := &signConfig{issuedAt: time.Now()}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.notBefore.IsZero() {
		cfg.notBefore = cfg.issuedAt
	}
	if cfg.expiresAt.IsZero() {
		cfg.expiresAt = cfg.issuedAt.Add(DefaultTokenTTL)
	}
	if cfg.notBefore.After(cfg.issuedAt) {
		return "", fmt.Errorf("%w: nbf is after iat", ErrInvalidClaims)
	}
	if !cfg.expiresAt.After(cfg.issuedAt) {
		return "", fmt.Errorf("%w: exp is not after iat", ErrInvalidClaims)
	}

	body, err := claimsObject(payload, cfg)
	if err != nil {
		return "", err
	}

	// Extra headers first, then the pinned fields: alg and typ can never be
	// overridden by caller-supplied values.
	header := make(map[string]any, len(cfg.headers)+2)
	for k, v := range cfg.headers {
		header[k] = v
	}
	header["typ"] = HeaderType
	header["alg"] = key.alg()

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("jwt: failed to marshal header: %w", err)
	}
	claimsJSON, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("jwt: failed to marshal claims: %w", err)
	}

	signingInput := base64.RawURLEncoding.EncodeToString(headerJSON) +
		"." + base64.RawURLEncoding.EncodeToString(claimsJSON)

	sig, err := key.sign(signingInput)
	if err != nil {
		return "", err
	}

	return signingInput + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}

// claimsObject flattens the payload into a JSON object and overlays the
// registered claims resolved from options and defaults.
func claimsObject(payload any, cfg *signConfig) (map[string]any, error) {
	body := make(map[string]any)
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("jwt: failed to marshal payload: %w", err)
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("%w: payload must be a JSON object", ErrInvalidClaims)
		}
	}

	if cfg.id != "" {
		body["jti"] = cfg.id
	}
	if cfg.subject != "" {
		body["sub"] = cfg.subject
	}
	if cfg.issuer != "" {
		body["iss"] = cfg.issuer
	}
	if cfg.audience != "" {
		body["aud"] = cfg.audience
	}
	body["iat"] = cfg.issuedAt.Unix()
	body["nbf"] = cfg.notBefore.Unix()
	body["exp"] = cfg.expiresAt.Unix()

	return body, nil
}

// Verify validates an HS256 token against the shared secret and the expected
// claims, then decodes the payload into T. Verification of RSA and ECDSA
// signed tokens is intentionally not provided: this backend only verifies
// tokens it also issues, and those are always symmetric.
func Verify[T any](token, secret string, expected Expected) (T, error) {
	return VerifyAt[T](token, secret, expected, time.Now())
}

// VerifyAt is Verify with an explicit reference time for the temporal checks.
func VerifyAt[T any](token, secret string, expected Expected, at time.Time) (T, error) {
	var payload T

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return payload, ErrMalformedToken
	}

	headerJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return payload, ErrMalformedToken
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return payload, ErrMalformedToken
	}
	if header.Algorithm != AlgHS256 {
		return payload, ErrAlgorithmMismatch
	}
	if header.Type != HeaderType {
		return payload, ErrTypeMismatch
	}
	if parts[2] == "" {
		return payload, ErrMissingSignature
	}

	sig, err := HS256Key(secret).sign(parts[0] + "." + parts[1])
	if err != nil {
		return payload, err
	}
	expectedSig := base64.RawURLEncoding.EncodeToString(sig)
	if subtle.ConstantTimeCompare([]byte(parts[2]), []byte(expectedSig)) != 1 {
		return payload, ErrInvalidSignature
	}

	claimsJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return payload, ErrMalformedToken
	}
	var claims Claims
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return payload, ErrMalformedToken
	}

	now := at.Unix()
	if claims.NotBefore > 0 && claims.NotBefore > now {
		return payload, ErrTokenNotYetValid
	}
	if claims.ExpiresAt > 0 && claims.ExpiresAt < now {
		return payload, ErrTokenExpired
	}
	if expected.Subject != "" && expected.Subject != claims.Subject {
		return payload, ErrSubjectMismatch
	}
	if expected.Audience != "" && expected.Audience != claims.Audience {
		return payload, ErrAudienceMismatch
	}
	if expected.Issuer != "" && expected.Issuer != claims.Issuer {
		return payload, ErrIssuerMismatch
	}

	if err := json.Unmarshal(claimsJSON, &payload); err != nil {
		return payload, errors.Join(ErrInvalidClaims, err)
	}

	return payload, nil
}
