// Package httpserver provides Cloudflare Turnstile verification middleware
// for net/http servers.
//
// The middleware reads the client-supplied token from a configurable header
// (default "CF-Turnstile-Token"), verifies it against Cloudflare's
// siteverify endpoint, and either forwards the request with a verified
// marker in its context or short-circuits with an appropriate status code:
//
//   - 400 Bad Request: the token header is missing
//   - 403 Forbidden: the verification service rejected the token
//   - 500 Internal Server Error: the verification service could not be
//     reached (the cause is logged server-side, never sent to the client)
//
// Downstream handlers assert that a request was gated with
// VerifiedFromContext or the RequireVerified wrapper, which responds with
// 401 Unauthorized when the marker is absent.
//
// # Quick Start
//
//	cfg := verifier.New(os.Getenv("TURNSTILE_SECRET"))
//
//	mux := http.NewServeMux()
//	mux.Handle("/api/submit", httpserver.RequireVerified(submitHandler))
//
//	gated, err := httpserver.Middleware(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	http.ListenAndServe(":8080", gated(mux))
//
// # Customization
//
//	gated, err := httpserver.Middleware(
//	    verifier.New(secret).WithHeaderName("X-Proof"),
//	    httpserver.WithExemptPaths("/health"),
//	    httpserver.WithMiddlewareLogger(logger),
//	    httpserver.WithHTTPClient(&http.Client{Timeout: 5 * time.Second}),
//	)
//
// The middleware holds no mutable state and is safe to share across
// concurrent requests.
package httpserver
