package verifier

import "errors"

const (
	// DefaultHeaderName is the request header the middleware reads the
	// Turnstile token from unless overridden with WithHeaderName.
	DefaultHeaderName = "CF-Turnstile-Token"

	// DefaultVerifyURL is Cloudflare's Turnstile siteverify endpoint.
	DefaultVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"
)

// Cloudflare publishes fixed secret keys for testing widget integrations.
// See https://developers.cloudflare.com/turnstile/troubleshooting/testing/.
const (
	// TestSecretAlwaysPasses makes every verification succeed.
	TestSecretAlwaysPasses = "1x0000000000000000000000000000000AA"
	// TestSecretAlwaysFails makes every verification fail.
	TestSecretAlwaysFails = "2x0000000000000000000000000000000AA"
	// TestSecretTokenSpent yields the "timeout-or-duplicate" error code.
	TestSecretTokenSpent = "3x0000000000000000000000000000000AA"
)

// Config holds the settings for Turnstile verification.
//
// Config is an immutable value: the With* methods return modified copies and
// a Config can be shared freely across goroutines and middleware instances.
// The zero value is not usable; construct one with New.
type Config struct {
	secret     string
	headerName string
	verifyURL  string
}

// New creates a Config with the given Turnstile secret key and defaults for
// the token header name (DefaultHeaderName) and verification endpoint
// (DefaultVerifyURL).
func New(secret string) Config {
	return Config{
		secret:     secret,
		headerName: DefaultHeaderName,
		verifyURL:  DefaultVerifyURL,
	}
}

// WithHeaderName returns a copy of the Config that reads the token from the
// given request header instead of DefaultHeaderName.
//
// Example:
//
//	cfg := verifier.New(secret).WithHeaderName("X-Proof")
func (c Config) WithHeaderName(name string) Config {
	c.headerName = name
	return c
}

// WithVerifyURL returns a copy of the Config that verifies tokens against
// the given endpoint instead of DefaultVerifyURL. This is mainly useful for
// pointing tests at a stub server.
func (c Config) WithVerifyURL(url string) Config {
	c.verifyURL = url
	return c
}

// Secret returns the Turnstile secret key.
func (c Config) Secret() string { return c.secret }

// HeaderName returns the request header the token is read from.
func (c Config) HeaderName() string { return c.headerName }

// VerifyURL returns the verification endpoint URL.
func (c Config) VerifyURL() string { return c.verifyURL }

// Validate reports whether the Config is usable. It is called by NewClient
// and by the middleware constructors, so an invalid Config fails at wire-up
// time rather than on the first request.
func (c Config) Validate() error {
	if c.secret == "" {
		return errors.New("verifier: secret is required")
	}
	if c.headerName == "" {
		return errors.New("verifier: header name is required")
	}
	if c.verifyURL == "" {
		return errors.New("verifier: verify URL is required")
	}
	return nil
}
