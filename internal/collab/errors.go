package collab

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized signals an invalid or expired token. The session controller
// reacts by purging the persisted token and returning to the landing state.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-success response from the collaborator.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("collaborator returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("collaborator returned %d", e.Status)
}

func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}
