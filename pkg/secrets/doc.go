// Package secrets encrypts opaque secrets, such as TOTP seeds, under a key
// derived from a user-supplied credential.
//
// The key is stretched from the credential with HKDF-SHA256 using a fixed
// domain-separation string, then used for AES-256-GCM. The random nonce is
// prefixed to the ciphertext and the whole value is base64-encoded for
// storage. Because GCM is authenticated, decrypting with the wrong
// credential always fails with ErrDecryptionFailed; call sites treat that as
// "wrong password", never as a generic failure.
//
// Secrets protected by this package exist unencrypted only transiently in
// process memory during a single operation. Derived keys are zeroed after
// use.
package secrets
