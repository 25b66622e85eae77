// Package store contains the client-side shared state: one store per
// resource plus the auth flow controller and the modal coordinator. A store
// is a mutex-guarded struct holding render state and the operations that
// mutate it; every operation issues one request through the shared API
// client and reconciles the response into local state.
package store

import (
	"sync"

	domainerrors "storefront/internal/domain/errors"
)

// tracker carries the loading/error/message triple every store exposes, and
// implements the shared call discipline: flip loading around the request,
// clear stale status, normalize the error payload into one displayable
// message.
type tracker struct {
	mu      sync.RWMutex
	loading bool
	err     string
	message string
}

// call runs one API operation. fn returns the envelope message and an error;
// both land in the tracker. The error is returned unchanged so callers can
// still inspect it.
func (t *tracker) call(fn func() (string, error)) error {
	t.mu.Lock()
	t.loading = true
	t.err = ""
	t.message = ""
	t.mu.Unlock()

	message, err := fn()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.loading = false
	if message != "" {
		t.message = message
	}
	if err != nil {
		t.err = domainerrors.Normalize(err)
	}

	return err
}

// Loading reports whether an operation is currently in flight.
func (t *tracker) Loading() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.loading
}

// Err returns the displayable message of the last failed operation.
func (t *tracker) Err() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.err
}

// Message returns the last success message from the API.
func (t *tracker) Message() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.message
}

// ClearStatus resets the error and message fields.
func (t *tracker) ClearStatus() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.err = ""
	t.message = ""
}

func (t *tracker) setMessage(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.message = message
}
