// Package twofactor implements the two-factor authentication lifecycle as a
// state machine over a user record: NoTFA -> PendingSetup -> Enabled, with
// Locked as a terminal state until an external password reset.
//
// The service owns every cross-cutting security invariant:
//
//   - the TOTP seed is never stored or cached in the clear; it is encrypted
//     under a key derived from the user's login password (secrets package)
//     and exists in plaintext only transiently during a single operation,
//   - recovery codes are strictly single-use; a matched hash is removed from
//     the stored set the moment it is consumed,
//   - failed second-factor attempts increment a counter that locks the
//     account at the configured threshold and fires the reset initiator,
//   - security bookkeeping (counter increments, code consumption) is
//     committed to storage even when the operation ultimately reports a
//     domain error,
//   - reset tokens embed the user's jwt version, so every successful reset
//     invalidates all previously issued reset tokens.
//
// # Operations
//
// InitSetup returns a fresh (or still-pending) seed for QR rendering.
// ConfirmSetup validates the first code, persists the encrypted seed plus
// hashed recovery codes, and returns the raw codes exactly once. Remove
// disables TFA given a TOTP or recovery code. Login performs the
// second-factor step from a pre-auth token. ResetPassword changes the
// password while either carrying the seed across (old password known) or
// clearing TFA (recovery code only).
//
// # Collaborators
//
// Persistence, the pending-secret cache, password hashing, and lockout
// notification are constructor-injected interfaces (UserStore, Cache,
// PasswordHasher, ResetInitiator), keeping the package testable with
// in-memory fakes. Concrete adapters live in the pg, cache, and email
// packages.
package twofactor
