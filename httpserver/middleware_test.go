package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rustunit/go-turnstile/verifier"
)

// mockVerifier implements verifier.TokenVerifier for testing.
type mockVerifier struct {
	verifyFunc func(ctx context.Context, token string) (bool, error)
	calls      int
}

func (m *mockVerifier) Verify(ctx context.Context, token string) (bool, error) {
	m.calls++
	if m.verifyFunc != nil {
		return m.verifyFunc(ctx, token)
	}
	return true, nil
}

// mockLogger implements the Logger interface for testing.
type mockLogger struct {
	mu       sync.Mutex
	messages []string
}

func (m *mockLogger) Printf(format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, fmt.Sprintf(format, args...))
}

func (m *mockLogger) getMessages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := make([]string, len(m.messages))
	copy(msgs, m.messages)
	return msgs
}

func newMiddleware(t *testing.T, config verifier.Config, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	t.Helper()

	middleware, err := Middleware(config, opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return middleware
}

func TestMiddleware_Success(t *testing.T) {
	v := &mockVerifier{}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !VerifiedFromContext(r.Context()) {
			t.Error("expected verified marker in context")
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("success"))
	})

	middleware := newMiddleware(t, verifier.New("test-secret"), WithVerifier(v))
	wrapped := middleware(handler)

	req := httptest.NewRequest("POST", "/api/submit", nil)
	req.Header.Set("CF-Turnstile-Token", "valid-token")
	rr := httptest.NewRecorder()

	wrapped.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
	if rr.Body.String() != "success" {
		t.Errorf("expected body 'success', got %s", rr.Body.String())
	}
	if v.calls != 1 {
		t.Errorf("expected exactly 1 verification call, got %d", v.calls)
	}
}

func TestMiddleware_MissingToken(t *testing.T) {
	v := &mockVerifier{
		verifyFunc: func(ctx context.Context, token string) (bool, error) {
			t.Error("verifier should not be called without a token")
			return false, nil
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called when the token is missing")
	})

	middleware := newMiddleware(t, verifier.New("test-secret"), WithVerifier(v))
	wrapped := middleware(handler)

	req := httptest.NewRequest("POST", "/api/submit", nil)
	rr := httptest.NewRecorder()

	wrapped.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Missing Turnstile token") {
		t.Errorf("unexpected body: %s", rr.Body.String())
	}
}

func TestMiddleware_EmptyToken(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called for an empty token")
	})

	middleware := newMiddleware(t, verifier.New("test-secret"), WithVerifier(&mockVerifier{}))
	wrapped := middleware(handler)

	req := httptest.NewRequest("POST", "/api/submit", nil)
	req.Header.Set("CF-Turnstile-Token", "")
	rr := httptest.NewRecorder()

	wrapped.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestMiddleware_Rejected(t *testing.T) {
	v := &mockVerifier{
		verifyFunc: func(ctx context.Context, token string) (bool, error) {
			return false, nil
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called when verification fails")
	})

	middleware := newMiddleware(t, verifier.New("test-secret"), WithVerifier(v))
	wrapped := middleware(handler)

	req := httptest.NewRequest("POST", "/api/submit", nil)
	req.Header.Set("CF-Turnstile-Token", "bad-token")
	rr := httptest.NewRecorder()

	wrapped.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Turnstile verification failed") {
		t.Errorf("unexpected body: %s", rr.Body.String())
	}
}

func TestMiddleware_VerifierError(t *testing.T) {
	v := &mockVerifier{
		verifyFunc: func(ctx context.Context, token string) (bool, error) {
			return false, &verifier.TransportError{Err: errors.New("connection refused to internal-host:443 with secret test-secret")}
		},
	}
	logger := &mockLogger{}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called when verification errors")
	})

	middleware := newMiddleware(t, verifier.New("test-secret"), WithVerifier(v), WithMiddlewareLogger(logger))
	wrapped := middleware(handler)

	req := httptest.NewRequest("POST", "/api/submit", nil)
	req.Header.Set("CF-Turnstile-Token", "any-token")
	rr := httptest.NewRecorder()

	wrapped.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rr.Code)
	}

	// The client body must stay generic: no internal error detail, no secret.
	body := rr.Body.String()
	if strings.Contains(body, "test-secret") || strings.Contains(body, "connection refused") || strings.Contains(body, "internal-host") {
		t.Errorf("response body leaks internal detail: %s", body)
	}
	if !strings.Contains(body, "Verification error") {
		t.Errorf("expected generic body, got %s", body)
	}

	// The cause is still available server-side.
	messages := logger.getMessages()
	if len(messages) != 1 || !strings.Contains(messages[0], "connection refused") {
		t.Errorf("expected cause in server-side log, got %v", messages)
	}
}

func TestMiddleware_Idempotent(t *testing.T) {
	v := &mockVerifier{
		verifyFunc: func(ctx context.Context, token string) (bool, error) {
			return token == "abc", nil
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	middleware := newMiddleware(t, verifier.New("test-secret"), WithVerifier(v))
	wrapped := middleware(handler)

	// The same request must produce the same status every time; the gate
	// accumulates no state between invocations.
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("POST", "/api/submit", nil)
		req.Header.Set("CF-Turnstile-Token", "abc")
		rr := httptest.NewRecorder()
		wrapped.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("iteration %d: expected status 200, got %d", i, rr.Code)
		}
	}
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("POST", "/api/submit", nil)
		req.Header.Set("CF-Turnstile-Token", "xyz")
		rr := httptest.NewRecorder()
		wrapped.ServeHTTP(rr, req)
		if rr.Code != http.StatusForbidden {
			t.Fatalf("iteration %d: expected status 403, got %d", i, rr.Code)
		}
	}
}

func TestMiddleware_CustomHeaderName(t *testing.T) {
	v := &mockVerifier{
		verifyFunc: func(ctx context.Context, token string) (bool, error) {
			return token == "abc", nil
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	config := verifier.New("test-secret").WithHeaderName("X-Proof")
	middleware := newMiddleware(t, config, WithVerifier(v))
	wrapped := middleware(handler)

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{name: "accepted token", token: "abc", wantStatus: http.StatusOK},
		{name: "rejected token", token: "xyz", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/submit", nil)
			req.Header.Set("X-Proof", tt.token)
			rr := httptest.NewRecorder()

			wrapped.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}
}

func TestMiddleware_DefaultHeaderIgnoredWithCustomName(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	config := verifier.New("test-secret").WithHeaderName("X-Proof")
	middleware := newMiddleware(t, config, WithVerifier(&mockVerifier{}))
	wrapped := middleware(handler)

	req := httptest.NewRequest("POST", "/api/submit", nil)
	req.Header.Set("CF-Turnstile-Token", "abc") // wrong header
	rr := httptest.NewRecorder()

	wrapped.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestMiddleware_ExemptPath(t *testing.T) {
	v := &mockVerifier{
		verifyFunc: func(ctx context.Context, token string) (bool, error) {
			t.Error("verifier should not be called for exempt path")
			return false, nil
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if VerifiedFromContext(r.Context()) {
			t.Error("expected no verified marker for exempt path")
		}
		w.WriteHeader(http.StatusOK)
	})

	middleware := newMiddleware(t, verifier.New("test-secret"),
		WithVerifier(v),
		WithExemptPaths("/health", "/metrics"),
		WithExemptPathPrefixes("/public/"),
	)
	wrapped := middleware(handler)

	for _, path := range []string{"/health", "/metrics", "/public/logo.png"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest("GET", path, nil)
			rr := httptest.NewRecorder()

			wrapped.ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Errorf("expected status 200 for exempt path %s, got %d", path, rr.Code)
			}
		})
	}
}

func TestMiddleware_CustomTokenExtractor(t *testing.T) {
	v := &mockVerifier{
		verifyFunc: func(ctx context.Context, token string) (bool, error) {
			return token == "from-query", nil
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	middleware := newMiddleware(t, verifier.New("test-secret"),
		WithVerifier(v),
		WithTokenExtractor(func(r *http.Request) (string, bool) {
			token := r.URL.Query().Get("turnstile_token")
			return token, token != ""
		}),
	)
	wrapped := middleware(handler)

	req := httptest.NewRequest("POST", "/api/submit?turnstile_token=from-query", nil)
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	req = httptest.NewRequest("POST", "/api/submit", nil)
	rr = httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestMiddleware_CustomFailureHandler(t *testing.T) {
	v := &mockVerifier{
		verifyFunc: func(ctx context.Context, token string) (bool, error) {
			return false, nil
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	middleware := newMiddleware(t, verifier.New("test-secret"),
		WithVerifier(v),
		WithFailureHandler(func(w http.ResponseWriter, r *http.Request, status int, message string) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			fmt.Fprintf(w, `{"error":%q}`, message)
		}),
	)
	wrapped := middleware(handler)

	req := httptest.NewRequest("POST", "/api/submit", nil)
	req.Header.Set("CF-Turnstile-Token", "bad-token")
	rr := httptest.NewRecorder()

	wrapped.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %s", ct)
	}
}

func TestMiddleware_InvalidConfig(t *testing.T) {
	_, err := Middleware(verifier.New(""))
	if err == nil {
		t.Fatal("expected error for empty secret")
	}

	// An injected verifier does not bypass config validation: the header
	// name is still needed for extraction.
	_, err = Middleware(verifier.New("test-secret").WithHeaderName(""), WithVerifier(&mockVerifier{}))
	if err == nil {
		t.Fatal("expected error for empty header name")
	}
}
