package gateway

import (
	"errors"
	"fmt"
)

const maxErrorBody = 512

// NetworkError is a transport-level failure: the request never reached the API or
// its response could not be read.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// RemoteError is a non-2xx response from the API
type RemoteError struct {
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	body := e.Body
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	if body == "" {
		return fmt.Sprintf("remote returned status %d", e.Status)
	}
	return fmt.Sprintf("remote returned status %d: %s", e.Status, body)
}

// Unauthorized reports whether the API rejected the credential
func (e *RemoteError) Unauthorized() bool {
	return e.Status == 401 || e.Status == 403 || e.Status == 422
}

// Error classes reported by Classify
const (
	ClassNetwork = "network"
	ClassRemote  = "remote"
	ClassOther   = "other"
)

// Classify returns the error class used for diagnostics
func Classify(err error) string {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return ClassNetwork
	}
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return ClassRemote
	}
	return ClassOther
}
