package grpcserver

import (
	"context"
	"net/http"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/rustunit/go-turnstile/verifier"
)

// Logger is an interface for optional logging in the interceptors.
// This is an alias for the shared verifier.Logger interface.
type Logger = verifier.Logger

// InterceptorConfig holds configuration for verification interceptors.
type InterceptorConfig struct {
	verifier       verifier.TokenVerifier
	httpClient     *http.Client
	exemptMethods  map[string]bool // Methods that don't require verification
	logger         Logger          // optional logger
	tokenExtractor TokenExtractor  // custom token extraction logic (optional)
}

// InterceptorOption is a functional option for configuring interceptors.
type InterceptorOption func(*InterceptorConfig)

// TokenExtractor is a function that extracts a Turnstile token from gRPC
// metadata. It returns the token string and a boolean indicating whether
// extraction succeeded.
type TokenExtractor func(md metadata.MD) (string, bool)

// WithVerifier sets the TokenVerifier the interceptor uses instead of
// constructing a verifier.Client from the Config.
func WithVerifier(v verifier.TokenVerifier) InterceptorOption {
	return func(c *InterceptorConfig) {
		c.verifier = v
	}
}

// WithHTTPClient sets the HTTP client used for verification calls.
// Ignored when WithVerifier is used.
func WithHTTPClient(client *http.Client) InterceptorOption {
	return func(c *InterceptorConfig) {
		c.httpClient = client
	}
}

// WithExemptMethods specifies gRPC methods that don't require verification.
// Method names should be in the format "/package.Service/Method".
//
// Example:
//
//	WithExemptMethods("/grpc.health.v1.Health/Check", "/grpc.health.v1.Health/Watch")
func WithExemptMethods(methods ...string) InterceptorOption {
	return func(c *InterceptorConfig) {
		if c.exemptMethods == nil {
			c.exemptMethods = make(map[string]bool)
		}
		for _, method := range methods {
			c.exemptMethods[method] = true
		}
	}
}

// WithInterceptorLogger sets a logger for the interceptor.
func WithInterceptorLogger(logger Logger) InterceptorOption {
	return func(c *InterceptorConfig) {
		c.logger = logger
	}
}

// WithTokenExtractor sets a custom token extraction function.
// By default, the token is read from the metadata key matching the Config's
// header name (metadata keys are lower-cased).
func WithTokenExtractor(extractor TokenExtractor) InterceptorOption {
	return func(c *InterceptorConfig) {
		c.tokenExtractor = extractor
	}
}

// UnaryServerInterceptor returns a gRPC unary server interceptor that gates
// requests on Turnstile verification.
//
// The interceptor:
// - Extracts the token from incoming metadata (default key: the Config's
//   header name, lower-cased, e.g. "cf-turnstile-token")
// - Verifies the token against the configured siteverify endpoint
// - Marks the request context as verified (accessible via VerifiedFromContext)
// - Returns codes.InvalidArgument when the token is missing,
//   codes.PermissionDenied when verification fails, and codes.Internal when
//   the verification service cannot be reached (cause logged server-side)
// - Optionally exempts specific methods from verification
//
// Usage:
//
//	interceptor, err := grpcserver.UnaryServerInterceptor(verifier.New(secret))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	server := grpc.NewServer(grpc.UnaryInterceptor(interceptor))
func UnaryServerInterceptor(config verifier.Config, opts ...InterceptorOption) (grpc.UnaryServerInterceptor, error) {
	ic, err := newInterceptorConfig(config, opts)
	if err != nil {
		return nil, err
	}
	metadataKey := strings.ToLower(config.HeaderName())

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if ic.exemptMethods[info.FullMethod] {
			if ic.logger != nil {
				ic.logger.Printf("grpcserver: method %s is exempt from verification", info.FullMethod)
			}
			return handler(ctx, req)
		}

		ctx, err := gate(ctx, ic, metadataKey, info.FullMethod)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}, nil
}

// StreamServerInterceptor returns a gRPC stream server interceptor that
// gates streams on Turnstile verification. The semantics match
// UnaryServerInterceptor; the verified marker is available through the
// stream context.
func StreamServerInterceptor(config verifier.Config, opts ...InterceptorOption) (grpc.StreamServerInterceptor, error) {
	ic, err := newInterceptorConfig(config, opts)
	if err != nil {
		return nil, err
	}
	metadataKey := strings.ToLower(config.HeaderName())

	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if ic.exemptMethods[info.FullMethod] {
			if ic.logger != nil {
				ic.logger.Printf("grpcserver: method %s is exempt from verification", info.FullMethod)
			}
			return handler(srv, ss)
		}

		ctx, err := gate(ss.Context(), ic, metadataKey, info.FullMethod)
		if err != nil {
			return err
		}
		return handler(srv, &verifiedStream{ServerStream: ss, ctx: ctx})
	}, nil
}

func newInterceptorConfig(config verifier.Config, opts []InterceptorOption) (*InterceptorConfig, error) {
	ic := &InterceptorConfig{
		exemptMethods: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(ic)
	}

	if ic.verifier == nil {
		var clientOpts []verifier.Option
		if ic.httpClient != nil {
			clientOpts = append(clientOpts, verifier.WithHTTPClient(ic.httpClient))
		}
		if ic.logger != nil {
			clientOpts = append(clientOpts, verifier.WithLogger(ic.logger))
		}
		client, err := verifier.NewClient(config, clientOpts...)
		if err != nil {
			return nil, err
		}
		ic.verifier = client
	} else if err := config.Validate(); err != nil {
		return nil, err
	}

	return ic, nil
}

// gate runs extraction and verification for one call and returns the marked
// context on success.
func gate(ctx context.Context, ic *InterceptorConfig, metadataKey, fullMethod string) (context.Context, error) {
	token, ok := extractToken(ctx, ic, metadataKey)
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "missing Turnstile token")
	}

	verified, err := ic.verifier.Verify(ctx, token)
	if err != nil {
		if ic.logger != nil {
			ic.logger.Printf("grpcserver: verification failed for %s: %v", fullMethod, err)
		}
		// Generic message only; the cause stays server-side.
		return nil, status.Error(codes.Internal, "verification error")
	}
	if !verified {
		return nil, status.Error(codes.PermissionDenied, "Turnstile verification failed")
	}

	return WithVerified(ctx), nil
}

func extractToken(ctx context.Context, ic *InterceptorConfig, metadataKey string) (string, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", false
	}

	if ic.tokenExtractor != nil {
		token, ok := ic.tokenExtractor(md)
		return token, ok && token != ""
	}

	values := md.Get(metadataKey)
	if len(values) == 0 || values[0] == "" {
		return "", false
	}
	return values[0], true
}

// verifiedStream overrides the stream context with the verified one.
type verifiedStream struct {
	grpc.ServerStream
	ctx context.Context
}

// Context returns the verified context.
func (s *verifiedStream) Context() context.Context { return s.ctx }
