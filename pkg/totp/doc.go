// Package totp generates and validates Time-based One-Time Passwords
// (RFC 6238) and issues the single-use recovery codes that substitute for
// them when the authenticator device is unavailable.
//
// Secrets are 160-bit seeds encoded as unpadded Base32, codes are the
// standard 6 digits over 30-second windows, and validation accepts one
// window of clock drift in either direction. ProvisioningURI builds the
// otpauth:// URI consumed by Google Authenticator, 1Password and compatible
// apps.
//
// Recovery codes are 16-character uppercase hex strings. The package never
// hashes them itself: GenerateRecoveryCodes takes the application's
// password-hashing primitive so raw and stored forms stay index-correlated
// under whatever hashing policy the application uses.
//
// Encryption of seeds at rest is deliberately out of scope here; see the
// secrets package.
package totp
