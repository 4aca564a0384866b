package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// keySize is the derived key length for AES-256.
	keySize = 32

	// keyInfo provides HKDF domain separation so keys derived here can never
	// collide with keys derived from the same credential elsewhere.
	keyInfo = "authcore-secret-vault-v1"
)

// Encrypt seals the plaintext under a key derived from the credential and
// returns the result as a base64-encoded string with the random nonce
// prefixed to the ciphertext.
func Encrypt(credential []byte, plaintext string) (string, error) {
	key, err := deriveKey(credential)
	if err != nil {
		return "", err
	}
	defer clearBytes(key)

	aesGCM, err := newGCM(key)
	if err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Join(ErrEncryptionFailed, err)
	}

	ciphertext := aesGCM.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. A wrong credential fails with ErrDecryptionFailed
// rather than returning garbage: GCM authentication rejects any ciphertext
// sealed under a different key.
func Decrypt(credential []byte, ciphertext string) (string, error) {
	key, err := deriveKey(credential)
	if err != nil {
		return "", err
	}
	defer clearBytes(key)

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, ErrInvalidCiphertext, err)
	}

	aesGCM, err := newGCM(key)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}

	nonceSize := aesGCM.NonceSize()
	if len(raw) < nonceSize {
		return "", errors.Join(ErrDecryptionFailed, ErrInvalidCiphertext)
	}
	nonce, sealed := raw[:nonceSize], raw[nonceSize:]

	plaintext, err := aesGCM.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}

	return string(plaintext), nil
}

// EncryptString is Encrypt with a string credential, typically the user's
// plaintext login password at the moment of the operation.
func EncryptString(credential, plaintext string) (string, error) {
	return Encrypt([]byte(credential), plaintext)
}

// DecryptString is Decrypt with a string credential.
func DecryptString(credential, ciphertext string) (string, error) {
	return Decrypt([]byte(credential), ciphertext)
}

// deriveKey stretches the credential into a 32-byte AES key with HKDF-SHA256.
// The caller must clear the returned key once it is no longer needed.
func deriveKey(credential []byte) ([]byte, error) {
	if len(credential) == 0 {
		return nil, ErrMissingCredential
	}

	key := make([]byte, keySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, credential, nil, []byte(keyInfo)), key); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// clearBytes zeros key material to shorten its lifetime in memory.
func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
