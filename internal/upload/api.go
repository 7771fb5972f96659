// Package upload pushes calendar events to a CalDAV server one at a
// time, retrying transient server errors indefinitely and setting
// aside events the server permanently rejects.
package upload

import (
	"context"
	"fmt"
)

// APIError is a non-2xx response from the calendar server.
type APIError struct {
	Status int
	Reason string
	Body   string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("upload: %d %s: %s", e.Status, e.Reason, e.Body)
	}
	return fmt.Sprintf("upload: %d %s", e.Status, e.Reason)
}

// Session is an authenticated connection able to submit events.
type Session interface {
	SubmitEvent(ctx context.Context, ev *RemoteEvent) error
}

// Service hands out sessions. Login may be called again after a
// session is invalidated, for example when the server starts
// returning quota errors.
type Service interface {
	Login(ctx context.Context) (Session, error)
}
