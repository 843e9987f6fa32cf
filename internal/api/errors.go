package api

import "fmt"

// NetworkError wraps a transport failure or an unparsable response body.
// The panel treats both the same way: a generic, retryable failure.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: network error", e.Op)
	}
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a well-formed rejection: the server answered the envelope
// with success=false and a message meant to be shown verbatim.
type ServerError struct {
	Op      string
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: request rejected", e.Op)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// AuthError is a failed login. AttemptsLeft is -1 when the server did not
// report a remaining-attempts count.
type AuthError struct {
	Message      string
	AttemptsLeft int
	Locked       bool
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "authentication failed"
	}
	return e.Message
}
