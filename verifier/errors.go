package verifier

import "fmt"

// TransportError indicates that the verification request never produced a
// decodable response: the request could not be built or sent, the call timed
// out, or the endpoint answered with a non-2xx status.
//
// A TransportError is distinct from a negative verification: it means the
// token's validity could not be determined at all.
type TransportError struct {
	// Status is the HTTP status code returned by the verification endpoint,
	// or 0 if the request never completed.
	Status int
	// Err is the underlying cause, or nil when Status alone describes the
	// failure.
	Err error
}

// Error returns a description of the transport failure.
func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("verifier: verification request failed: %v", e.Err)
	}
	return fmt.Sprintf("verifier: verification endpoint returned status %d", e.Status)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError indicates that the verification endpoint responded but the
// body could not be decoded as a siteverify result.
type ProtocolError struct {
	// Err is the underlying decode error.
	Err error
}

// Error returns a description of the protocol failure.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("verifier: invalid verification response: %v", e.Err)
}

// Unwrap returns the underlying decode error.
func (e *ProtocolError) Unwrap() error { return e.Err }
