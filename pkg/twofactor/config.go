package twofactor

import (
	"time"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically
)

type Config struct {
	JWTSecret        string        `env:"TFA_JWT_SECRET,required"`                // JWTSecret signs and verifies the pre-auth, reset, and session tokens.
	TokenIssuer      string        `env:"TFA_TOKEN_ISSUER" envDefault:"authcore"` // TokenIssuer is written into the iss claim of minted session tokens.
	SessionTokenTTL  time.Duration `env:"TFA_SESSION_TOKEN_TTL" envDefault:"720h"`
	PendingSecretTTL time.Duration `env:"TFA_PENDING_SECRET_TTL" envDefault:"1h"` // PendingSecretTTL bounds how long an unconfirmed setup secret lives in the cache.
	LockoutThreshold int           `env:"TFA_LOCKOUT_THRESHOLD" envDefault:"10"`  // LockoutThreshold is the failed-attempt count at which the account locks.
	TOTPIssuer       string        `env:"TFA_TOTP_ISSUER" envDefault:"authcore"`  // TOTPIssuer is the service name shown in authenticator apps.
}

// LoadConfig reads the configuration from environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// withDefaults fills zero-valued fields for configs built in code rather
// than parsed from the environment.
func (c Config) withDefaults() Config {
	if c.TokenIssuer == "" {
		c.TokenIssuer = "authcore"
	}
	if c.SessionTokenTTL <= 0 {
		c.SessionTokenTTL = 30 * 24 * time.Hour
	}
	if c.PendingSecretTTL <= 0 {
		c.PendingSecretTTL = time.Hour
	}
	if c.LockoutThreshold <= 0 {
		c.LockoutThreshold = 10
	}
	if c.TOTPIssuer == "" {
		c.TOTPIssuer = c.TokenIssuer
	}
	return c
}
