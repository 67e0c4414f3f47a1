package httpserver

import (
	"context"
	"net/http"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// verifiedKey is the context key for the verified marker.
const verifiedKey contextKey = "httpserver.turnstile_verified"

// verifiedMarker is the value stored under verifiedKey. It carries no data;
// its presence is the fact being recorded.
type verifiedMarker struct{}

// WithVerified returns a new context marked as Turnstile-verified.
// The middleware attaches this marker exactly once, after a successful
// verification, for the lifetime of a single request.
func WithVerified(ctx context.Context) context.Context {
	return context.WithValue(ctx, verifiedKey, verifiedMarker{})
}

// VerifiedFromContext reports whether the request context carries the
// verified marker, i.e. whether the request passed through the middleware
// and its token was accepted.
//
// Example:
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    if !httpserver.VerifiedFromContext(r.Context()) {
//	        http.Error(w, "verification required", http.StatusUnauthorized)
//	        return
//	    }
//	    // ... request was gated ...
//	}
func VerifiedFromContext(ctx context.Context) bool {
	_, ok := ctx.Value(verifiedKey).(verifiedMarker)
	return ok
}

// MustVerifiedFromContext panics if the context does not carry the verified
// marker. This should only be used in handlers where the middleware is
// guaranteed to have run.
func MustVerifiedFromContext(ctx context.Context) {
	if !VerifiedFromContext(ctx) {
		panic("httpserver: request is not Turnstile-verified")
	}
}

// RequireVerified wraps a handler and rejects requests whose context lacks
// the verified marker with 401 Unauthorized.
//
// A missing marker means the handler was reached through a code path that
// bypassed the middleware; RequireVerified fails closed instead of assuming
// the gate was applied.
func RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !VerifiedFromContext(r.Context()) {
			http.Error(w, "Turnstile verification required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
