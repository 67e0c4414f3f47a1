// Package grpcserver provides Cloudflare Turnstile verification
// interceptors for gRPC servers.
//
// Browser-facing gRPC gateways can forward the Turnstile token as incoming
// metadata; the interceptors verify it before the handler runs. The status
// mapping mirrors the HTTP middleware:
//
//   - codes.InvalidArgument: the token metadata is missing
//   - codes.PermissionDenied: the verification service rejected the token
//   - codes.Internal: the verification service could not be reached (the
//     cause is logged server-side, never returned to the caller)
//   - codes.Unauthenticated: RequireVerified found no marker, meaning the
//     handler was reached without the interceptor
//
// # Quick Start
//
//	interceptor, err := grpcserver.UnaryServerInterceptor(verifier.New(secret))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	server := grpc.NewServer(
//	    grpc.UnaryInterceptor(interceptor),
//	)
//
// The default metadata key is the Config's header name lower-cased
// ("cf-turnstile-token"); use WithTokenExtractor for anything else.
package grpcserver
