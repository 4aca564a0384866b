package twofactor

import (
	"context"
	"slices"

	"github.com/google/uuid"
)

// User is the slice of the account record this core reads and mutates.
type User struct {
	ID                  uuid.UUID
	Email               string
	PasswordHash        string
	TFASecret           *string  // TOTP seed, always encrypted under the login password
	TFARecoveryCodes    []string // hashed forms only; raw codes are never stored
	FailedLoginAttempts int
	Locked              bool
	JWTVersion          int
}

// TFAEnabled reports whether the user has a confirmed two-factor secret.
func (u *User) TFAEnabled() bool {
	return u.TFASecret != nil && *u.TFASecret != ""
}

// UserUpdate describes a partial mutation of a user record. Nil pointer
// fields are left untouched; the Clear flags set the corresponding nullable
// columns to null, which a pointer field cannot express.
type UserUpdate struct {
	PasswordHash          *string
	TFASecret             *string
	ClearTFASecret        bool
	TFARecoveryCodes      *[]string
	ClearTFARecoveryCodes bool
	FailedLoginAttempts   *int
	Locked                *bool
	JWTVersion            *int
}

// IsZero reports whether the update would change nothing.
func (u UserUpdate) IsZero() bool {
	return u.PasswordHash == nil &&
		u.TFASecret == nil && !u.ClearTFASecret &&
		u.TFARecoveryCodes == nil && !u.ClearTFARecoveryCodes &&
		u.FailedLoginAttempts == nil &&
		u.Locked == nil &&
		u.JWTVersion == nil
}

// Apply mutates the user in place. Store implementations that hold full
// records (in-memory fakes, caches) can delegate to it so partial-update
// semantics stay in one place.
func (u UserUpdate) Apply(user *User) {
	if u.PasswordHash != nil {
		user.PasswordHash = *u.PasswordHash
	}
	if u.ClearTFASecret {
		user.TFASecret = nil
	} else if u.TFASecret != nil {
		user.TFASecret = u.TFASecret
	}
	if u.ClearTFARecoveryCodes {
		user.TFARecoveryCodes = nil
	} else if u.TFARecoveryCodes != nil {
		user.TFARecoveryCodes = slices.Clone(*u.TFARecoveryCodes)
	}
	if u.FailedLoginAttempts != nil {
		user.FailedLoginAttempts = *u.FailedLoginAttempts
	}
	if u.Locked != nil {
		user.Locked = *u.Locked
	}
	if u.JWTVersion != nil {
		user.JWTVersion = *u.JWTVersion
	}
}

// UserStore is the persistence collaborator. Implementations must return
// ErrUserNotFound when the record is absent and must support partial updates
// without rewriting the full record.
type UserStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, id uuid.UUID, update UserUpdate) (*User, error)
}
