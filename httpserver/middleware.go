package httpserver

import (
	"net/http"
	"strings"

	"github.com/rustunit/go-turnstile/verifier"
)

// Logger is an interface for optional logging in the middleware.
// This is an alias for the shared verifier.Logger interface.
type Logger = verifier.Logger

// MiddlewareConfig holds configuration for the verification middleware.
type MiddlewareConfig struct {
	verifier           verifier.TokenVerifier
	httpClient         *http.Client
	exemptPaths        map[string]bool // Exact path matches
	exemptPathPrefixes []string        // Prefix matches
	logger             Logger          // optional logger
	tokenExtractor     TokenExtractor  // custom token extraction logic (optional)
	failureHandler     FailureHandler
}

// MiddlewareOption is a functional option for configuring middleware.
type MiddlewareOption func(*MiddlewareConfig)

// TokenExtractor is a function that extracts a Turnstile token from an HTTP
// request. It returns the token string and a boolean indicating whether
// extraction succeeded.
type TokenExtractor func(r *http.Request) (string, bool)

// FailureHandler renders the response for a request the gate rejects.
// status is one of http.StatusBadRequest (token missing),
// http.StatusForbidden (token rejected) or http.StatusInternalServerError
// (verification call failed); message is the default diagnostic body.
type FailureHandler func(w http.ResponseWriter, r *http.Request, status int, message string)

// WithVerifier sets the TokenVerifier the middleware uses instead of
// constructing a verifier.Client from the Config. This is how tests inject
// deterministic verifiers.
func WithVerifier(v verifier.TokenVerifier) MiddlewareOption {
	return func(c *MiddlewareConfig) {
		c.verifier = v
	}
}

// WithHTTPClient sets the HTTP client used for verification calls.
// Callers that need a timeout policy configure it here; the middleware
// imposes none of its own. Ignored when WithVerifier is used.
func WithHTTPClient(client *http.Client) MiddlewareOption {
	return func(c *MiddlewareConfig) {
		c.httpClient = client
	}
}

// WithExemptPaths specifies HTTP paths that don't require verification.
// These paths must match exactly.
//
// Example:
//
//	WithExemptPaths("/health", "/metrics", "/favicon.ico")
func WithExemptPaths(paths ...string) MiddlewareOption {
	return func(c *MiddlewareConfig) {
		if c.exemptPaths == nil {
			c.exemptPaths = make(map[string]bool)
		}
		for _, path := range paths {
			c.exemptPaths[path] = true
		}
	}
}

// WithExemptPathPrefixes specifies HTTP path prefixes that don't require
// verification. Any path starting with these prefixes will be exempt.
//
// Example:
//
//	WithExemptPathPrefixes("/public/", "/static/", "/.well-known/")
func WithExemptPathPrefixes(prefixes ...string) MiddlewareOption {
	return func(c *MiddlewareConfig) {
		c.exemptPathPrefixes = append(c.exemptPathPrefixes, prefixes...)
	}
}

// WithMiddlewareLogger sets a logger for the middleware. Verification call
// failures are logged server-side; nothing is logged by default.
func WithMiddlewareLogger(logger Logger) MiddlewareOption {
	return func(c *MiddlewareConfig) {
		c.logger = logger
	}
}

// WithTokenExtractor sets a custom token extraction function.
// By default, the token is read from the header named by the Config.
func WithTokenExtractor(extractor TokenExtractor) MiddlewareOption {
	return func(c *MiddlewareConfig) {
		c.tokenExtractor = extractor
	}
}

// WithFailureHandler sets a custom handler for rendering gate rejections.
// By default, rejections are plain text responses. The handler must not
// change the status code semantics: 400 for a missing token, 403 for a
// rejected token, 500 for a verification failure.
func WithFailureHandler(handler FailureHandler) MiddlewareOption {
	return func(c *MiddlewareConfig) {
		if handler != nil {
			c.failureHandler = handler
		}
	}
}

// Middleware returns an HTTP middleware that gates requests on Turnstile
// verification.
//
// The middleware:
// - Extracts the token from the header named by config (default "CF-Turnstile-Token")
// - Verifies the token against the configured siteverify endpoint
// - Marks the request context as verified (accessible via VerifiedFromContext)
// - Returns 400 if the token header is missing, 403 if verification fails,
//   and 500 if the verification service cannot be reached
// - Optionally exempts specific paths from verification
//
// The returned handler holds no per-request state and is safe for
// concurrent use.
//
// Usage:
//
//	cfg := verifier.New(os.Getenv("TURNSTILE_SECRET"))
//	mux := http.NewServeMux()
//	mux.HandleFunc("/api/submit", submitHandler)
//
//	gated, err := httpserver.Middleware(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	http.ListenAndServe(":8080", gated(mux))
func Middleware(config verifier.Config, opts ...MiddlewareOption) (func(http.Handler) http.Handler, error) {
	mc := &MiddlewareConfig{
		exemptPaths:    make(map[string]bool),
		failureHandler: textFailureHandler,
	}
	for _, opt := range opts {
		opt(mc)
	}

	if mc.verifier == nil {
		var clientOpts []verifier.Option
		if mc.httpClient != nil {
			clientOpts = append(clientOpts, verifier.WithHTTPClient(mc.httpClient))
		}
		if mc.logger != nil {
			clientOpts = append(clientOpts, verifier.WithLogger(mc.logger))
		}
		client, err := verifier.NewClient(config, clientOpts...)
		if err != nil {
			return nil, err
		}
		mc.verifier = client
	} else if err := config.Validate(); err != nil {
		return nil, err
	}

	headerName := config.HeaderName()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Check if path is exempt from verification
			if isExempt(r.URL.Path, mc) {
				if mc.logger != nil {
					mc.logger.Printf("httpserver: path %s is exempt from verification", r.URL.Path)
				}
				next.ServeHTTP(w, r)
				return
			}

			token, ok := extractToken(r, headerName, mc)
			if !ok {
				mc.failureHandler(w, r, http.StatusBadRequest, "Missing Turnstile token")
				return
			}

			verified, err := mc.verifier.Verify(r.Context(), token)
			if err != nil {
				// Log the cause server-side only; the client gets a
				// generic body that leaks neither the error nor the
				// secret.
				if mc.logger != nil {
					mc.logger.Printf("httpserver: verification failed for %s %s: %v", r.Method, r.URL.Path, err)
				}
				mc.failureHandler(w, r, http.StatusInternalServerError, "Verification error")
				return
			}
			if !verified {
				mc.failureHandler(w, r, http.StatusForbidden, "Turnstile verification failed")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithVerified(r.Context())))
		})
	}, nil
}

// isExempt checks if a path is exempt from verification.
func isExempt(path string, config *MiddlewareConfig) bool {
	if config.exemptPaths[path] {
		return true
	}
	for _, prefix := range config.exemptPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// extractToken reads the Turnstile token from the request. An empty header
// value counts as missing.
func extractToken(r *http.Request, headerName string, config *MiddlewareConfig) (string, bool) {
	if config.tokenExtractor != nil {
		token, ok := config.tokenExtractor(r)
		if !ok || token == "" {
			return "", false
		}
		return token, true
	}

	token := r.Header.Get(headerName)
	if token == "" {
		return "", false
	}
	return token, true
}

// textFailureHandler is the default rejection renderer.
func textFailureHandler(w http.ResponseWriter, _ *http.Request, status int, message string) {
	http.Error(w, message, status)
}
