package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base32"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

const (
	// Digits is the code length (RFC 6238 standard).
	Digits = 6
	// Period is the code validity window in seconds (RFC 6238 standard).
	Period = 30
	// secretEntropy is the seed size in bytes, 160 bits per RFC 4226.
	secretEntropy = 20
)

var (
	// secretRegex enforces Base32 format: uppercase A-Z, digits 2-7, optional padding.
	secretRegex = regexp.MustCompile("^[A-Z2-7]+=*$")
	codeRegex   = regexp.MustCompile(fmt.Sprintf(`^\d{%d}$`, Digits))
)

// GenerateSecret creates a new Base32-encoded TOTP seed with padding stripped.
func GenerateSecret() (string, error) {
	seed := make([]byte, secretEntropy)
	if _, err := rand.Read(seed); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecret, err)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(seed), nil
}

// Validate checks the user-supplied code against the secret. Codes from the
// previous, current, and next windows are accepted to tolerate clock drift.
func Validate(secret, code string) (bool, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return false, err
	}

	code = strings.TrimSpace(code)
	if !codeRegex.MatchString(code) {
		return false, ErrInvalidCodeFormat
	}

	counter := time.Now().Unix() / Period
	for i := int64(-1); i <= 1; i++ {
		if fmt.Sprintf("%06d", hotp(key, counter+i, Digits)) == code {
			return true, nil
		}
	}
	return false, nil
}

// GenerateCode produces the code for the current window.
func GenerateCode(secret string) (string, error) {
	return GenerateCodeAt(secret, time.Now())
}

// GenerateCodeAt produces the code for the window containing t. Useful for
// tests and for pre-computing codes.
func GenerateCodeAt(secret string, t time.Time) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", hotp(key, t.Unix()/Period, Digits)), nil
}

func decodeSecret(secret string) ([]byte, error) {
	secret = strings.TrimSpace(strings.ToUpper(secret))
	if !secretRegex.MatchString(secret) {
		return nil, ErrInvalidSecret
	}
	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(strings.TrimRight(secret, "="))
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	return key, nil
}

// hotp implements the RFC 4226 HMAC-based one-time password algorithm.
func hotp(key []byte, counter int64, digits int) int {
	// Counter is encoded big-endian into 8 bytes per RFC 4226.
	counterBytes := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		counterBytes[i] = byte(counter & 0xff)
		counter >>= 8
	}

	mac := hmac.New(sha1.New, key)
	mac.Write(counterBytes)
	sum := mac.Sum(nil)

	// Dynamic truncation: the low 4 bits of the last byte select the offset,
	// the MSB of the extracted word is cleared to keep the value positive.
	offset := sum[len(sum)-1] & 0x0f
	value := (int(sum[offset]&0x7f) << 24) |
		(int(sum[offset+1]) << 16) |
		(int(sum[offset+2]) << 8) |
		int(sum[offset+3])

	return value % int(math.Pow10(digits))
}
