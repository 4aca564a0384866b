package twofactor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authcore/pkg/logger"
	"github.com/dmitrymomot/authcore/pkg/qrcode"
	"github.com/dmitrymomot/authcore/pkg/secrets"
	"github.com/dmitrymomot/authcore/pkg/totp"
)

// SetupIntent is returned by InitSetup so the caller can render the seed for
// the user's authenticator app. This is the only point the seed ever leaves
// the core unencrypted.
type SetupIntent struct {
	Secret string // plaintext Base32 seed
	URI    string // otpauth:// provisioning URI
	QRCode string // provisioning URI rendered as a PNG data URI
}

// InitSetup starts two-factor enrollment. It generates a TOTP seed, caches
// it encrypted under the supplied password with a bounded TTL, and returns
// the plaintext seed for QR rendering. Calling it again before confirmation
// returns the same pending seed, provided the password still matches.
func (s *Service) InitSetup(ctx context.Context, userID uuid.UUID, password string) (*SetupIntent, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TFAEnabled() {
		return nil, ErrAlreadyEnabled
	}
	if user.PasswordHash == "" {
		return nil, ErrPasswordNotSet
	}
	if !s.hasher.Verify(user.PasswordHash, password) {
		return nil, ErrInvalidPassword
	}

	key := pendingSecretKey(userID)
	var secret string

	encrypted, found, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read pending secret: %w", err)
	}
	if found {
		// A concurrent InitSetup with a different password lands here and
		// legitimately fails: one pending plaintext per user.
		secret, err = secrets.DecryptString(password, encrypted)
		if err != nil {
			if errors.Is(err, secrets.ErrDecryptionFailed) || errors.Is(err, secrets.ErrMissingCredential) {
				return nil, ErrInvalidPassword
			}
			return nil, err
		}
	} else {
		secret, err = totp.GenerateSecret()
		if err != nil {
			return nil, err
		}
		encrypted, err = secrets.EncryptString(password, secret)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, key, encrypted, s.cfg.PendingSecretTTL); err != nil {
			return nil, fmt.Errorf("failed to cache pending secret: %w", err)
		}
	}

	uri, err := totp.ProvisioningURI(totp.URIParams{
		Secret:      secret,
		AccountName: user.Email,
		Issuer:      s.cfg.TOTPIssuer,
	})
	if err != nil {
		return nil, err
	}
	qr, err := qrcode.DataURI(uri, 0)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "two-factor setup initiated",
		logger.UserID(userID.String()),
		logger.Component("twofactor"),
	)

	return &SetupIntent{Secret: secret, URI: uri, QRCode: qr}, nil
}

// ConfirmSetup completes enrollment: it checks the submitted code against
// the pending seed, persists the seed encrypted under the password along
// with freshly hashed recovery codes, and deletes the pending cache entry.
// The raw recovery codes are returned exactly once.
func (s *Service) ConfirmSetup(ctx context.Context, userID uuid.UUID, password, code string) ([]string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := pendingSecretKey(userID)
	encrypted, found, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read pending secret: %w", err)
	}
	if !found {
		return nil, ErrSecretNotFound
	}

	secret, err := secrets.DecryptString(password, encrypted)
	if err != nil {
		if errors.Is(err, secrets.ErrDecryptionFailed) || errors.Is(err, secrets.ErrMissingCredential) {
			return nil, ErrInvalidPassword
		}
		return nil, err
	}

	ok, err := totp.Validate(secret, code)
	if err != nil && !errors.Is(err, totp.ErrInvalidCodeFormat) {
		// A seed that fails to decode is a server-side problem, not a wrong
		// code.
		return nil, fmt.Errorf("failed to validate one-time code: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCode
	}

	codes, err := totp.GenerateRecoveryCodes(totp.RecoveryCodeCount, s.hasher.Hash)
	if err != nil {
		return nil, fmt.Errorf("failed to generate recovery codes: %w", err)
	}

	atRest, err := secrets.EncryptString(password, secret)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.Update(ctx, userID, UserUpdate{
		TFASecret:        &atRest,
		TFARecoveryCodes: &codes.Hashed,
	}); err != nil {
		return nil, fmt.Errorf("failed to persist two-factor secret: %w", err)
	}

	if err := s.cache.Delete(ctx, key); err != nil {
		// The entry expires on its own; confirmation already committed.
		s.log.WarnContext(ctx, "failed to delete pending secret",
			logger.UserID(userID.String()),
			logger.Error(err),
			logger.Component("twofactor"),
		)
	}

	s.log.InfoContext(ctx, "two-factor setup confirmed",
		logger.UserID(user.ID.String()),
		logger.Component("twofactor"),
	)

	return codes.Raw, nil
}
