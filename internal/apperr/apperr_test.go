package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", Invalid("title", "must not be empty"), http.StatusUnprocessableEntity},
		{"wrapped validation", fmt.Errorf("create task: %w", Invalid("status", "bad")), http.StatusUnprocessableEntity},
		{"unauthorized", fmt.Errorf("token expired: %w", ErrUnauthorized), http.StatusUnauthorized},
		{"conflict", fmt.Errorf("email taken: %w", ErrConflict), http.StatusConflict},
		{"not found", fmt.Errorf("task 7: %w", ErrNotFound), http.StatusNotFound},
		{"internal", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: []FieldError{
		{Field: "email", Message: "invalid format"},
		{Field: "password", Message: "too short"},
	}}

	msg := err.Error()
	if !strings.Contains(msg, "email: invalid format") || !strings.Contains(msg, "password: too short") {
		t.Errorf("unexpected message: %s", msg)
	}

	if (&ValidationError{}).Error() != "validation failed" {
		t.Error("empty ValidationError should have a generic message")
	}
}
