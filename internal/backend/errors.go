package backend

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors for status classification. Callers branch with errors.Is;
// the wrapped chain keeps the HTTP detail.
var (
	// ErrTransport marks network or server failures reaching the backend.
	// Cached values stay valid and polling continues.
	ErrTransport = errors.New("backend transport error")
	// ErrMutationRejected marks a cancel/retry/delete/run the backend turned
	// down. Triggers optimistic rollback, never retried automatically.
	ErrMutationRejected = errors.New("mutation rejected")
	// ErrNotFound marks a task id the backend does not know.
	ErrNotFound = errors.New("task not found")
)

type statusError struct {
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("backend request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// classify tags a raw request error with the sentinel the caller should
// branch on. op names the request for the message.
func classify(op string, err error, mutation bool) error {
	var statusErr *statusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%w: %s: %w", ErrNotFound, op, err)
		case mutation && statusErr.StatusCode >= 400 && statusErr.StatusCode < 500:
			return fmt.Errorf("%w: %s: %w", ErrMutationRejected, op, err)
		}
	}
	return fmt.Errorf("%w: %s: %w", ErrTransport, op, err)
}
