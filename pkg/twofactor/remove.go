package twofactor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authcore/pkg/logger"
	"github.com/dmitrymomot/authcore/pkg/secrets"
	"github.com/dmitrymomot/authcore/pkg/totp"
)

// Remove disables two-factor authentication. The caller proves possession of
// either a current TOTP code or one remaining recovery code; the password is
// the permission check at the API boundary and is only needed to decrypt the
// stored seed on the TOTP branch. On success both the secret and the
// recovery codes are cleared.
func (s *Service) Remove(ctx context.Context, userID uuid.UUID, password string, factor OneTimeFactor) (*User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.TFAEnabled() {
		return nil, ErrNotEnabled
	}
	if factor == nil {
		return nil, ErrCodeRequired
	}

	switch f := factor.(type) {
	case TOTPCode:
		secret, err := secrets.DecryptString(password, *user.TFASecret)
		if err != nil {
			if errors.Is(err, secrets.ErrDecryptionFailed) || errors.Is(err, secrets.ErrMissingCredential) {
				return nil, ErrInvalidPassword
			}
			return nil, err
		}
		ok, err := totp.Validate(secret, string(f))
		if err != nil && !errors.Is(err, totp.ErrInvalidCodeFormat) {
			return nil, fmt.Errorf("failed to validate one-time code: %w", err)
		}
		if !ok {
			return nil, ErrInvalidCode
		}
	case RecoveryCode:
		if s.findRecoveryCode(user.TFARecoveryCodes, string(f)) < 0 {
			return nil, ErrInvalidRecoveryCode
		}
	default:
		return nil, ErrCodeRequired
	}

	updated, err := s.users.Update(ctx, userID, UserUpdate{
		ClearTFASecret:        true,
		ClearTFARecoveryCodes: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to disable two-factor authentication: %w", err)
	}

	s.log.InfoContext(ctx, "two-factor authentication removed",
		logger.UserID(userID.String()),
		logger.Component("twofactor"),
	)

	return updated, nil
}
