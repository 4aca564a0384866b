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

// Login performs the second-factor step of authentication. The pre-auth
// token proves an earlier first-factor password check and carries the email
// and the hex-encoded password, which doubles as the decryption credential
// for the stored seed.
//
// Failed factor verification is not reported immediately: the failed-attempt
// counter is incremented and persisted first, the account locks once the
// counter reaches the threshold, and only then does the call fail. A
// consumed recovery code is always persisted, success or not.
func (s *Service) Login(ctx context.Context, preAuthToken string, factor OneTimeFactor) (*LoginResult, error) {
	claims, err := jwt.Verify[PreAuthClaims](preAuthToken, s.cfg.JWTSecret, jwt.Expected{Subject: SubjectTwoFactor})
	if err != nil {
		return nil, errors.Join(ErrTokenInvalid, err)
	}

	user, err := s.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		return nil, err
	}
	if user.Locked {
		return nil, ErrAccountLocked
	}
	if !user.TFAEnabled() {
		return nil, ErrNotEnabled
	}

	credential, err := hex.DecodeString(claims.Password)
	if err != nil {
		return nil, ErrInvalidPassword
	}
	secret, err := secrets.Decrypt(credential, *user.TFASecret)
	if err != nil {
		if errors.Is(err, secrets.ErrDecryptionFailed) {
			// The account password changed after the pre-auth token was
			// issued; the embedded credential no longer opens the seed.
			return nil, ErrInvalidPassword
		}
		return nil, err
	}
	if factor == nil {
		return nil, ErrCodeRequired
	}

	var verifyErr error
	update := UserUpdate{}
	dirty := false

	switch f := factor.(type) {
	case TOTPCode:
		ok, err := totp.Validate(secret, string(f))
		if err != nil && !errors.Is(err, totp.ErrInvalidCodeFormat) {
			// A seed that fails to decode is a server-side problem; it must
			// not count as a failed attempt.
			return nil, fmt.Errorf("failed to validate one-time code: %w", err)
		}
		if !ok {
			verifyErr = ErrInvalidCode
		}
	case RecoveryCode:
		if idx := s.findRecoveryCode(user.TFARecoveryCodes, string(f)); idx < 0 {
			verifyErr = ErrInvalidRecoveryCode
		} else {
			remaining := slices.Delete(slices.Clone(user.TFARecoveryCodes), idx, idx+1)
			update.TFARecoveryCodes = &remaining
			dirty = true
		}
	default:
		return nil, ErrCodeRequired
	}

	if verifyErr != nil {
		attempts := user.FailedLoginAttempts + 1
		update.FailedLoginAttempts = &attempts
		dirty = true
		if attempts >= s.cfg.LockoutThreshold {
			locked := true
			update.Locked = &locked
		}
	} else if user.FailedLoginAttempts != 0 {
		attempts := 0
		update.FailedLoginAttempts = &attempts
		dirty = true
	}

	// Security bookkeeping commits before any domain error is reported; a
	// failed login must never lose its counter increment or a consumed code.
	if dirty {
		updated, err := s.users.Update(ctx, user.ID, update)
		if err != nil {
			return nil, fmt.Errorf("failed to persist login attempt state: %w", err)
		}
		user = updated
	}

	if verifyErr != nil {
		if user.Locked {
			s.log.WarnContext(ctx, "account locked after repeated failed logins",
				logger.UserID(user.ID.String()),
				logger.Component("twofactor"),
			)
			s.initiateReset(user)
		}
		return nil, verifyErr
	}

	token, err := s.mintSessionToken(user)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "two-factor login succeeded",
		logger.UserID(user.ID.String()),
		logger.Component("twofactor"),
	)

	return &LoginResult{Token: token, User: user}, nil
}
