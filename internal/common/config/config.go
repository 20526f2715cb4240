package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/perplexiplay/backend/internal/common/constants"
	commonerrors "github.com/perplexiplay/backend/internal/common/errors"
)

var (
	ErrMissingRequiredEnv = commonerrors.ErrMissingRequiredEnv
	ErrInvalidJWTSecret   = commonerrors.ErrInvalidJWTSecret
)

type AuthConfig struct {
	HTTPPort       string        `env:"AUTH_HTTP_PORT" envDefault:"8000"`
	DatabaseURL    string        `env:"DATABASE_URL"`
	DatabaseName   string        `env:"DATABASE_NAME"`
	JWTSecret      string        `env:"JWT_SECRET"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"30m"`
	BcryptCost     int           `env:"BCRYPT_COST" envDefault:"12"`
	RequestTimeout time.Duration `env:"AUTH_REQUEST_TIMEOUT" envDefault:"5s"`
	Mirror         MirrorConfig
}

type MirrorConfig struct {
	CredentialsPath string        `env:"MIRROR_CREDENTIALS_PATH"`
	Bucket          string        `env:"MIRROR_BUCKET"`
	Collection      string        `env:"MIRROR_COLLECTION" envDefault:"users"`
	Region          string        `env:"MIRROR_REGION" envDefault:"us-east-1"`
	Endpoint        string        `env:"MIRROR_ENDPOINT"`
	Timeout         time.Duration `env:"MIRROR_TIMEOUT" envDefault:"5s"`
}

// Enabled reports whether enough is configured to attempt a real mirror sink.
func (c MirrorConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.Bucket != ""
}

func LoadAuthConfig() (AuthConfig, error) {
	return parse(env.Options{})
}

// LoadAuthConfigFrom reads configuration from the given map instead of the process environment.
func LoadAuthConfigFrom(environment map[string]string) (AuthConfig, error) {
	return parse(env.Options{Environment: environment})
}

func parse(opts env.Options) (AuthConfig, error) {
	var cfg AuthConfig
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return AuthConfig{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return AuthConfig{}, err
	}

	return cfg, nil
}

func (c *AuthConfig) validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("%w: %s", ErrMissingRequiredEnv, "JWT_SECRET")
	}
	if err := validateJWTSecret(c.JWTSecret); err != nil {
		return err
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("%w: %s", ErrMissingRequiredEnv, "DATABASE_URL")
	}
	if strings.TrimSpace(c.HTTPPort) == "" {
		c.HTTPPort = constants.DefaultAuthHTTPPort
	}
	if c.AccessTokenTTL <= 0 {
		c.AccessTokenTTL = constants.DefaultAccessTokenTTL
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = constants.DefaultAuthRequestTimeout
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31: got %d", c.BcryptCost)
	}
	if c.Mirror.Collection == "" {
		c.Mirror.Collection = constants.DefaultMirrorCollection
	}
	if c.Mirror.Region == "" {
		c.Mirror.Region = constants.DefaultMirrorRegion
	}
	if c.Mirror.Timeout <= 0 {
		c.Mirror.Timeout = constants.DefaultMirrorTimeout
	}
	return nil
}

func validateJWTSecret(secret string) error {
	if len(secret) < constants.JWTSecretMinLength {
		return fmt.Errorf("%w: got %d bytes", ErrInvalidJWTSecret, len(secret))
	}
	return nil
}
