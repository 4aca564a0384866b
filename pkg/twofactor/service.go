package twofactor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authcore/pkg/jwt"
	"github.com/dmitrymomot/authcore/pkg/logger"
)

// Token subjects. A token minted for one step of the flow is never accepted
// by another.
const (
	SubjectTwoFactor     = "tfa"
	SubjectPasswordReset = "password_reset"
	SubjectSession       = "session"
)

// Cache is the short-lived key/value collaborator holding pending secrets.
// A missing or expired key is reported as a miss, not an error.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ResetInitiator is the fire-and-forget trigger invoked when an account
// becomes locked, giving the user a recovery path out of the lockout.
type ResetInitiator interface {
	InitiatePasswordReset(ctx context.Context, user *User) error
}

// PreAuthClaims is the payload of the short-lived token issued by the
// first-factor password check. The password travels hex-encoded so it can
// serve as the decryption credential for the stored secret.
type PreAuthClaims struct {
	jwt.Claims
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResetClaims is the payload of a password-reset token. Password carries the
// hex-encoded new password; JWTVersion must match the user's current value,
// which invalidates every previously issued reset token after a successful
// reset.
type ResetClaims struct {
	jwt.Claims
	Email      string `json:"email"`
	Password   string `json:"password"`
	JWTVersion int    `json:"jwt_version"`
}

// SessionClaims is the payload of the session token minted after a
// successful second-factor login or password reset.
type SessionClaims struct {
	jwt.Claims
	UserID     string `json:"uid"`
	Email      string `json:"email"`
	JWTVersion int    `json:"jwt_version"`
}

// LoginResult pairs the minted session token with the updated user record.
type LoginResult struct {
	Token string
	User  *User
}

// Service orchestrates the two-factor lifecycle: setup, confirmation,
// removal, second-factor login, and password reset.
type Service struct {
	users          UserStore
	cache          Cache
	hasher         PasswordHasher
	resetInitiator ResetInitiator
	cfg            Config
	log            *slog.Logger
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithHasher overrides the default bcrypt password hasher.
func WithHasher(h PasswordHasher) Option {
	return func(s *Service) {
		if h != nil {
			s.hasher = h
		}
	}
}

// WithResetInitiator sets the lockout recovery trigger.
func WithResetInitiator(r ResetInitiator) Option {
	return func(s *Service) {
		s.resetInitiator = r
	}
}

// New creates a two-factor service. The user store, cache, and a JWT secret
// are mandatory; everything else has working defaults.
func New(users UserStore, cache Cache, cfg Config, opts ...Option) (*Service, error) {
	if users == nil {
		return nil, errors.New("twofactor: user store is required")
	}
	if cache == nil {
		return nil, errors.New("twofactor: cache is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("twofactor: JWT secret is required")
	}

	s := &Service{
		users:  users,
		cache:  cache,
		hasher: BcryptHasher{},
		cfg:    cfg.withDefaults(),
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func pendingSecretKey(userID uuid.UUID) string {
	return "tfa:pending:" + userID.String()
}

// findRecoveryCode scans the stored hashed codes for one matching the raw
// code, first match wins. Returns -1 when nothing matches.
func (s *Service) findRecoveryCode(hashed []string, raw string) int {
	for i, h := range hashed {
		if s.hasher.Verify(h, raw) {
			return i
		}
	}
	return -1
}

// mintSessionToken issues the session token returned to the caller after a
// successful login or reset.
func (s *Service) mintSessionToken(user *User) (string, error) {
	return jwt.Sign(SessionClaims{
		UserID:     user.ID.String(),
		Email:      user.Email,
		JWTVersion: user.JWTVersion,
	}, jwt.HS256Key(s.cfg.JWTSecret),
		jwt.WithSubject(SubjectSession),
		jwt.WithIssuer(s.cfg.TokenIssuer),
		jwt.WithExpiresIn(s.cfg.SessionTokenTTL),
	)
}

// initiateReset fires the lockout recovery trigger without blocking the
// login path. The operation that locked the account has already committed;
// a failing or panicking initiator only gets logged.
func (s *Service) initiateReset(user *User) {
	if s.resetInitiator == nil {
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("password reset initiator panicked",
					logger.UserID(user.ID.String()),
					slog.Any("panic", r),
					logger.Component("twofactor"),
				)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.resetInitiator.InitiatePasswordReset(ctx, user); err != nil {
			s.log.Error("failed to initiate password reset after lockout",
				logger.UserID(user.ID.String()),
				logger.Error(err),
				logger.Component("twofactor"),
			)
		}
	}()
}
