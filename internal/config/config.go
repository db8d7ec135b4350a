// Package config loads server and CLI settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every setting splitpay reads from the environment. CLI flags
// override individual fields after Load.
type Config struct {
	Addr   string `env:"SPLITPAY_ADDR" envDefault:":8080"`
	DBPath string `env:"SPLITPAY_DB_PATH" envDefault:"./data/splitpay.db"`

	JWTSecret string        `env:"SPLITPAY_JWT_SECRET"`
	TokenTTL  time.Duration `env:"SPLITPAY_TOKEN_TTL" envDefault:"24h"`

	// SignerURL is the payment signer the HTTP executor posts to. Required
	// unless Sandbox is set.
	SignerURL     string `env:"SPLITPAY_SIGNER_URL"`
	SignerToken   string `env:"SPLITPAY_SIGNER_TOKEN"`
	Sandbox       bool   `env:"SPLITPAY_SANDBOX" envDefault:"false"`
	TokenDecimals int32  `env:"SPLITPAY_TOKEN_DECIMALS" envDefault:"6"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads envFile if it exists, then parses the environment.
// Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse env config: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("SPLITPAY_JWT_SECRET is not set"))
	} else if len(c.JWTSecret) < 32 {
		errs = append(errs, errors.New("SPLITPAY_JWT_SECRET must be at least 32 bytes"))
	}
	if !c.Sandbox && c.SignerURL == "" {
		errs = append(errs, errors.New("SPLITPAY_SIGNER_URL is not set and sandbox mode is off"))
	}
	if c.TokenDecimals < 2 || c.TokenDecimals > 18 {
		errs = append(errs, fmt.Errorf("SPLITPAY_TOKEN_DECIMALS must be between 2 and 18, got %d", c.TokenDecimals))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("SPLITPAY_TOKEN_TTL must be positive"))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}
	return errors.Join(errs...)
}
