package jwt

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"errors"
	"fmt"
)

// Algorithm names as they appear in the token header.
const (
	AlgHS256 = "HS256"
	AlgRS256 = "RS256"
	AlgES256 = "ES256"
)

// SigningKey is a closed set of signing credentials. Each variant pins the
// algorithm written into the token header, so a key can never be used with
// the wrong algorithm.
type SigningKey interface {
	alg() string
	sign(signingInput string) ([]byte, error)
}

// HS256Key is a shared secret for HMAC-SHA256 signing.
type HS256Key string

func (HS256Key) alg() string { return AlgHS256 }

func (k HS256Key) sign(signingInput string) ([]byte, error) {
	if k == "" {
		return nil, ErrMissingSigningKey
	}
	mac := hmac.New(sha256.New, []byte(k))
	mac.Write([]byte(signingInput))
	return mac.Sum(nil), nil
}

// RS256Key is an RSA private key for RSASSA-PKCS1-v1_5 SHA-256 signing.
type RS256Key struct {
	Key *rsa.PrivateKey
}

func (RS256Key) alg() string { return AlgRS256 }

func (k RS256Key) sign(signingInput string) ([]byte, error) {
	if k.Key == nil {
		return nil, ErrMissingSigningKey
	}
	digest := sha256.Sum256([]byte(signingInput))
	sig, err := rsa.SignPKCS1v15(rand.Reader, k.Key, crypto.SHA256, digest[:])
	if err != nil {
		return nil, errors.Join(ErrInvalidSignature, err)
	}
	return sig, nil
}

// ES256Key is an ECDSA private key for P-256 SHA-256 signing. The signature
// is serialized as the fixed-length R||S form required by the token format
// rather than the ASN.1 encoding the crypto package produces natively.
type ES256Key struct {
	Key *ecdsa.PrivateKey
}

func (ES256Key) alg() string { return AlgES256 }

func (k ES256Key) sign(signingInput string) ([]byte, error) {
	if k.Key == nil {
		return nil, ErrMissingSigningKey
	}

	curveBits := k.Key.Curve.Params().BitSize
	if curveBits != 256 {
		return nil, fmt.Errorf("%w: ES256 requires a P-256 key, got %d-bit curve", ErrUnsupportedAlgorithm, curveBits)
	}

	digest := sha256.Sum256([]byte(signingInput))
	r, s, err := ecdsa.Sign(rand.Reader, k.Key, digest[:])
	if err != nil {
		return nil, errors.Join(ErrInvalidSignature, err)
	}

	// Both scalars are left-padded to the curve byte size (32), yielding a
	// fixed 64-byte signature.
	sig := make([]byte, 64)
	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:])
	return sig, nil
}
