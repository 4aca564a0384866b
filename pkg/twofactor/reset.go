package twofactor

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"

	"github.com/dmitrymomot/authcore/pkg/jwt"
	"github.com/dmitrymomot/authcore/pkg/logger"
	"github.com/dmitrymomot/authcore/pkg/secrets"
	"github.com/dmitrymomot/authcore/pkg/totp"
)

// ResetInput is the proof accompanying a password reset on an account with
// two-factor enabled: the old password (optionally strengthened by a TOTP
// code) to keep TFA across the password change, or a recovery code alone,
// which clears TFA since the seed cannot be re-encrypted without decrypting
// it first.
type ResetInput struct {
	OldPassword string
	Factor      OneTimeFactor
}

// ResetPassword completes a password reset initiated elsewhere. The reset
// token carries the email, the hex-encoded new password, and the jwt version
// it was minted against; a version mismatch means the token was already used
// or superseded. On success the password hash, jwt version, and lockout
// state are rewritten and a fresh session token is minted.
func (s *Service) ResetPassword(ctx context.Context, resetToken string, input ResetInput) (*LoginResult, error) {
	claims, err := jwt.Verify[ResetClaims](resetToken, s.cfg.JWTSecret, jwt.Expected{Subject: SubjectPasswordReset})
	if err != nil {
		return nil, errors.Join(ErrTokenInvalid, err)
	}

	user, err := s.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		return nil, err
	}
	if claims.JWTVersion != user.JWTVersion {
		return nil, ErrTokenInvalid
	}
	if !user.TFAEnabled() {
		return nil, ErrNotEnabled
	}

	newPasswordBytes, err := hex.DecodeString(claims.Password)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	newPassword := string(newPasswordBytes)

	var (
		decrypted  string
		haveSecret bool
	)

	if input.OldPassword != "" {
		decrypted, err = secrets.DecryptString(input.OldPassword, *user.TFASecret)
		if err != nil {
			if errors.Is(err, secrets.ErrDecryptionFailed) {
				return nil, ErrInvalidOldPassword
			}
			return nil, err
		}
		haveSecret = true
	}

	update := UserUpdate{}

	switch f := input.Factor.(type) {
	case TOTPCode:
		if !haveSecret {
			return nil, ErrCodeRequired
		}
		ok, err := totp.Validate(decrypted, string(f))
		if err != nil && !errors.Is(err, totp.ErrInvalidCodeFormat) {
			return nil, fmt.Errorf("failed to validate one-time code: %w", err)
		}
		if !ok {
			return nil, ErrInvalidCode
		}
	case RecoveryCode:
		idx := s.findRecoveryCode(user.TFARecoveryCodes, string(f))
		if idx < 0 {
			return nil, ErrInvalidRecoveryCode
		}
		if haveSecret {
			remaining := slices.Delete(slices.Clone(user.TFARecoveryCodes), idx, idx+1)
			update.TFARecoveryCodes = &remaining
		} else {
			// Recovery-code-only reset: the seed was never decrypted, so it
			// cannot survive the password change. TFA starts over.
			update.ClearTFASecret = true
			update.ClearTFARecoveryCodes = true
		}
	case nil:
		if !haveSecret {
			return nil, ErrCodeRequired
		}
	default:
		return nil, ErrCodeRequired
	}

	if haveSecret {
		reencrypted, err := secrets.Encrypt(newPasswordBytes, decrypted)
		if err != nil {
			return nil, err
		}
		update.TFASecret = &reencrypted
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash new password: %w", err)
	}

	version := user.JWTVersion + 1
	attempts := 0
	locked := false
	update.PasswordHash = &hash
	update.JWTVersion = &version
	update.FailedLoginAttempts = &attempts
	update.Locked = &locked

	updated, err := s.users.Update(ctx, user.ID, update)
	if err != nil {
		return nil, fmt.Errorf("failed to persist password reset: %w", err)
	}

	token, err := s.mintSessionToken(updated)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "password reset completed",
		logger.UserID(updated.ID.String()),
		logger.Component("twofactor"),
	)

	return &LoginResult{Token: token, User: updated}, nil
}
