// Package verifier implements the Cloudflare Turnstile siteverify protocol.
//
// It provides an immutable Config value describing how tokens are verified
// (secret key, token header name, verification endpoint) and a Client that
// performs the remote verification call. The Client POSTs a JSON body with
// the secret and the client-supplied token to the verification endpoint and
// classifies the outcome:
//
//   - (true, nil): the token is valid
//   - (false, nil): the service rejected the token (a correct negative
//     result, not an error); any error-codes are logged for diagnostics
//   - (false, error): the verification call itself failed; the error is a
//     *TransportError (request could not be sent, or the endpoint answered
//     with a non-2xx status) or a *ProtocolError (the response body could
//     not be decoded)
//
// # Quick Start
//
//	cfg := verifier.New(os.Getenv("TURNSTILE_SECRET"))
//	client, err := verifier.NewClient(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ok, err := client.Verify(ctx, token)
//
// # Testing
//
// Cloudflare publishes secret keys that always produce a fixed outcome; see
// TestSecretAlwaysPasses and TestSecretAlwaysFails. A custom endpoint can be
// set with Config.WithVerifyURL to point at a stub server.
//
// Config values and Clients are safe for concurrent use.
package verifier
