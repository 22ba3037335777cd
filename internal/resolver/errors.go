package resolver

import "fmt"

// TransportError is a network or connection failure during a request.
// It is never fatal: callers convert it to a status surface update.
type TransportError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPError is a non-2xx response from the detection or settings endpoint.
type HTTPError struct {
	Op         string
	StatusCode int
	Status     string
}

// Error implements error.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: server returned %s", e.Op, e.Status)
}
