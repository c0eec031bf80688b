package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/yungbote/curriculum-backend/internal/domain/curriculum"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// FromCurriculum maps the curriculum error taxonomy onto HTTP statuses.
// Unknown errors become 500 internal_error.
func FromCurriculum(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	var pe *curriculum.PersistenceError
	if errors.As(err, &pe) {
		return New(http.StatusInternalServerError, "persistence_failure", err)
	}
	if errors.Is(err, curriculum.ErrMalformedInput) {
		return New(http.StatusBadRequest, "malformed_input", err)
	}
	return New(http.StatusInternalServerError, "internal_error", err)
}
