package tracker

import (
	"errors"
	"fmt"
)

// ErrStatus matches every non-2xx response
var ErrStatus = errors.New("unexpected status")

// StatusError is returned when the server answers with a non-2xx status
type StatusError struct {
	URL  string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.URL, e.Code)
	}
	return fmt.Sprintf("%s: status %d: %s", e.URL, e.Code, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}
