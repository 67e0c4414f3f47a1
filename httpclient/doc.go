// Package httpclient offers construction helpers for the HTTP client the
// verification middleware uses for siteverify calls.
//
// The middleware deliberately delegates timeout, TLS, and transport policy
// to the http.Client it is handed; this package builds such clients.
//
// # Features
//
//   - Fluent builder for http.Client
//   - TLS 1.2+ by default, with custom CA/mTLS and optional InsecureSkipVerify
//   - Custom timeouts, base transport override, and redirect disabling
//
// # Quick Start
//
//	client, err := httpclient.NewBuilder().
//	    WithTimeout(5 * time.Second).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	gate, err := httpserver.Middleware(cfg, httpserver.WithHTTPClient(client))
//
// Built clients are safe for concurrent use.
package httpclient
