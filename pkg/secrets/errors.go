package secrets

import "errors"

var (
	ErrMissingCredential   = errors.New("secrets: credential must not be empty")
	ErrKeyDerivationFailed = errors.New("secrets: key derivation failed")
	ErrEncryptionFailed    = errors.New("secrets: encryption failed")
	ErrDecryptionFailed    = errors.New("secrets: decryption failed")
	ErrInvalidCiphertext   = errors.New("secrets: invalid ciphertext format")
)
