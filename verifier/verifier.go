package verifier

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// TokenVerifier verifies a client-supplied Turnstile token.
//
// Verify returns (true, nil) for a valid token, (false, nil) when the
// verification service rejected the token, and a non-nil error when the
// outcome could not be determined.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (bool, error)
}

// Logger is an interface for optional diagnostic logging.
// The standard library *log.Logger and *zerolog.Logger both satisfy it.
type Logger interface {
	Printf(format string, args ...any)
}

// verifyRequest is the outbound siteverify body.
type verifyRequest struct {
	Secret   string `json:"secret"`
	Response string `json:"response"`
}

// verifyResponse is the inbound siteverify body. ErrorCodes is only
// meaningful when Success is false and may be omitted by the service.
type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes,omitempty"`
}

// Client verifies Turnstile tokens against the configured siteverify
// endpoint. It holds no per-request state and is safe for concurrent use.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     Logger
}

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for verification calls.
//
// The Client imposes no timeout or retry policy of its own; configure
// timeouts on the provided client. The default client uses a 10 second
// timeout.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger sets a logger for diagnostic output, such as the error-codes
// reported by the verification service alongside a rejection. By default
// nothing is logged.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client for the given Config.
//
// Returns an error if the Config is invalid (empty secret, header name, or
// verify URL).
func NewClient(config Config, opts ...Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client := &Client{
		config:     config,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Verify sends the token to the verification endpoint and reports whether
// the service accepted it.
//
// A rejection (success=false in the response) is returned as (false, nil);
// the error-codes the service attaches to a rejection are logged, never
// returned. A non-nil error is always a *TransportError or *ProtocolError.
//
// The call respects ctx for cancellation and deadlines; an abandoned call
// has no side effects.
func (c *Client) Verify(ctx context.Context, token string) (bool, error) {
	body, err := json.Marshal(verifyRequest{
		Secret:   c.config.Secret(),
		Response: token,
	})
	if err != nil {
		return false, &ProtocolError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.VerifyURL(), bytes.NewReader(body))
	if err != nil {
		return false, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, &TransportError{Status: resp.StatusCode}
	}

	var result verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, &ProtocolError{Err: err}
	}

	if !result.Success && len(result.ErrorCodes) > 0 && c.logger != nil {
		c.logger.Printf("verifier: verification rejected with error codes %v", result.ErrorCodes)
	}

	return result.Success, nil
}

// Config returns the Config the Client was created with.
func (c *Client) Config() Config { return c.config }
