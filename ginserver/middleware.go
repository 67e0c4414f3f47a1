package ginserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rustunit/go-turnstile/httpserver"
	"github.com/rustunit/go-turnstile/verifier"
)

// Logger is an interface for optional logging in the middleware.
// This is an alias for the shared verifier.Logger interface.
type Logger = verifier.Logger

// verifiedKey is the gin context key for the verified marker.
const verifiedKey = "turnstile.verified"

// MiddlewareConfig holds configuration for the verification middleware.
type MiddlewareConfig struct {
	verifier       verifier.TokenVerifier
	httpClient     *http.Client
	logger         Logger
	tokenExtractor TokenExtractor
}

// MiddlewareOption is a functional option for configuring middleware.
type MiddlewareOption func(*MiddlewareConfig)

// TokenExtractor is a function that extracts a Turnstile token from a gin
// request context. It returns the token string and a boolean indicating
// whether extraction succeeded.
type TokenExtractor func(c *gin.Context) (string, bool)

// WithVerifier sets the TokenVerifier the middleware uses instead of
// constructing a verifier.Client from the Config.
func WithVerifier(v verifier.TokenVerifier) MiddlewareOption {
	return func(c *MiddlewareConfig) {
		c.verifier = v
	}
}

// WithHTTPClient sets the HTTP client used for verification calls.
// Ignored when WithVerifier is used.
func WithHTTPClient(client *http.Client) MiddlewareOption {
	return func(c *MiddlewareConfig) {
		c.httpClient = client
	}
}

// WithMiddlewareLogger sets a logger for the middleware.
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

// Middleware returns a gin middleware that gates requests on Turnstile
// verification.
//
// Status mapping matches the net/http middleware: 400 when the token header
// is missing, 403 when the verification service rejects the token, 500 when
// the verification call fails (logged server-side, generic message to the
// client). On success the marker is stored in the gin context and the
// request context, so both Verified and httpserver-style context accessors
// work downstream.
//
// Usage:
//
//	gate, err := ginserver.Middleware(verifier.New(secret))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	router.POST("/api/submit", gate, submitHandler)
func Middleware(config verifier.Config, opts ...MiddlewareOption) (gin.HandlerFunc, error) {
	mc := &MiddlewareConfig{}
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

	return func(c *gin.Context) {
		var token string
		if mc.tokenExtractor != nil {
			token, _ = mc.tokenExtractor(c)
		} else {
			token = c.GetHeader(headerName)
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "Missing Turnstile token",
			})
			return
		}

		verified, err := mc.verifier.Verify(c.Request.Context(), token)
		if err != nil {
			if mc.logger != nil {
				mc.logger.Printf("ginserver: verification failed for %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Verification error",
			})
			return
		}
		if !verified {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Turnstile verification failed",
			})
			return
		}

		c.Set(verifiedKey, true)
		c.Request = c.Request.WithContext(httpserver.WithVerified(c.Request.Context()))
		c.Next()
	}, nil
}

// Verified reports whether the request passed through the middleware and
// its token was accepted.
func Verified(c *gin.Context) bool {
	verified, ok := c.Get(verifiedKey)
	if !ok {
		return false
	}
	v, ok := verified.(bool)
	return ok && v
}

// RequireVerified returns a handler that rejects requests lacking the
// verified marker with 401 Unauthorized. Use it on routes that must only be
// reachable through the middleware; it fails closed when the gate was
// bypassed.
func RequireVerified() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Verified(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Turnstile verification required",
			})
			return
		}
		c.Next()
	}
}
