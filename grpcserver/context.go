package grpcserver

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// verifiedKey is the context key for the verified marker.
const verifiedKey contextKey = "grpcserver.turnstile_verified"

// verifiedMarker is the value stored under verifiedKey.
type verifiedMarker struct{}

// WithVerified returns a new context marked as Turnstile-verified.
// The interceptors attach this marker after a successful verification.
func WithVerified(ctx context.Context) context.Context {
	return context.WithValue(ctx, verifiedKey, verifiedMarker{})
}

// VerifiedFromContext reports whether the call context carries the verified
// marker.
func VerifiedFromContext(ctx context.Context) bool {
	_, ok := ctx.Value(verifiedKey).(verifiedMarker)
	return ok
}

// RequireVerified returns nil if the call context carries the verified
// marker and a codes.Unauthenticated status otherwise. Handlers that must
// only run behind the interceptor call it first and fail closed:
//
//	func (s *server) Submit(ctx context.Context, req *pb.SubmitRequest) (*pb.SubmitResponse, error) {
//	    if err := grpcserver.RequireVerified(ctx); err != nil {
//	        return nil, err
//	    }
//	    // ... call was gated ...
//	}
func RequireVerified(ctx context.Context) error {
	if !VerifiedFromContext(ctx) {
		return status.Error(codes.Unauthenticated, "Turnstile verification required")
	}
	return nil
}
