// Package testutil provides helpers for testing applications that use
// go-turnstile, without calling Cloudflare.
//
// VerifierFunc, StaticVerifier, and ErrVerifier plug into the middleware via
// the WithVerifier options; NewSiteverifyServer stands in for the real
// siteverify endpoint when the real verifier client should be exercised.
package testutil

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
)

// VerifierFunc adapts a function to the verifier.TokenVerifier interface.
type VerifierFunc func(ctx context.Context, token string) (bool, error)

// Verify calls the underlying function.
func (f VerifierFunc) Verify(ctx context.Context, token string) (bool, error) {
	return f(ctx, token)
}

// StaticVerifier returns a verifier that reports the given outcome for
// every token.
func StaticVerifier(verified bool) VerifierFunc {
	return func(context.Context, string) (bool, error) {
		return verified, nil
	}
}

// ErrVerifier returns a verifier that fails every verification with err.
// Use it to exercise the middleware's 500 path.
func ErrVerifier(err error) VerifierFunc {
	return func(context.Context, string) (bool, error) {
		return false, err
	}
}

// AcceptOnly returns a verifier that accepts exactly the given tokens and
// rejects everything else.
func AcceptOnly(tokens ...string) VerifierFunc {
	accepted := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		accepted[token] = true
	}
	return func(_ context.Context, token string) (bool, error) {
		return accepted[token], nil
	}
}

// SiteverifyServer is a stub Turnstile siteverify endpoint.
type SiteverifyServer struct {
	*httptest.Server

	// Accept decides whether a token verifies. Defaults to accepting
	// everything.
	Accept func(token string) bool

	// ErrorCodes is attached to rejection responses when non-empty.
	ErrorCodes []string
}

// NewSiteverifyServer starts a stub siteverify endpoint bound to IPv4
// loopback. Point a Config at it with WithVerifyURL(server.URL). The server
// is closed automatically when the test finishes.
func NewSiteverifyServer(tb testing.TB) *SiteverifyServer {
	tb.Helper()

	server := &SiteverifyServer{}

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		tb.Fatalf("failed to create IPv4 listener: %v", err)
	}

	httpServer := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Secret   string `json:"secret"`
			Response string `json:"response"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "malformed siteverify request", http.StatusBadRequest)
			return
		}

		accepted := server.Accept == nil || server.Accept(body.Response)

		response := map[string]any{"success": accepted}
		if !accepted && len(server.ErrorCodes) > 0 {
			response["error-codes"] = server.ErrorCodes
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			tb.Errorf("failed to encode siteverify response: %v", err)
		}
	}))
	httpServer.Listener = listener
	httpServer.Start()
	tb.Cleanup(httpServer.Close)

	server.Server = httpServer
	return server
}
