// Package testutil provides shared test helpers for go-turnstile packages.
//
// It includes utilities to stub the Turnstile siteverify endpoint without
// real sockets and to spin up IPv4-only local HTTP servers (avoiding IPv6 in
// sandboxes).
//
// # Utilities
//
//   - NewLocalHTTPServer: start an httptest server bound to 127.0.0.1
//   - RoundTripFunc / StubClient: inline http.RoundTripper implementations
//   - StaticJSONResponse: canned siteverify responses
//   - RecordingSiteverify: capture the wire bodies the verifier sends
package testutil
