package db

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an entity does not exist for the calling
// user. Handlers map it to 404; an entity owned by someone else looks
// identical to a missing one.
var ErrNotFound = errors.New("not found")

// ValidationError reports bad input: empty or over-long fields, malformed
// values, uniqueness violations. The message is safe to show to the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
