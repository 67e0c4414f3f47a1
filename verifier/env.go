package verifier

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envConfig maps the environment variables a deployment typically sets.
type envConfig struct {
	Secret     string `env:"TURNSTILE_SECRET,required,notEmpty"`
	HeaderName string `env:"TURNSTILE_HEADER_NAME"`
	VerifyURL  string `env:"TURNSTILE_VERIFY_URL"`
}

// FromEnv builds a Config from environment variables.
//
// TURNSTILE_SECRET is required; TURNSTILE_HEADER_NAME and
// TURNSTILE_VERIFY_URL override the defaults when set.
func FromEnv() (Config, error) {
	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		return Config{}, fmt.Errorf("verifier: failed to read environment: %w", err)
	}

	config := New(ec.Secret)
	if ec.HeaderName != "" {
		config = config.WithHeaderName(ec.HeaderName)
	}
	if ec.VerifyURL != "" {
		config = config.WithVerifyURL(ec.VerifyURL)
	}
	return config, nil
}
