package errorutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestToDomainError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"not found", NewNotFound("ticket", nil), CodeNotFound, http.StatusNotFound},
		{"wrapped forbidden", fmt.Errorf("transition: %w", NewForbidden("denied", nil)), CodeForbidden, http.StatusForbidden},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), CodeTimeout, http.StatusGatewayTimeout},
		{"plain error", errors.New("boom"), CodeInternal, http.StatusInternalServerError},
		{"media type", NewUnsupportedMediaType("txt only"), CodeUnsupportedMediaType, http.StatusUnsupportedMediaType},
		{"unavailable", NewServiceUnavailable("draining"), CodeServiceUnavailable, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			de := ToDomainError(tc.err)
			if de.Code != tc.code || de.HTTPStatus != tc.status {
				t.Fatalf("got code=%s status=%d, want code=%s status=%d", de.Code, de.HTTPStatus, tc.code, tc.status)
			}
		})
	}
	if ToDomainError(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}

func TestNotFoundNamesResource(t *testing.T) {
	de := ToDomainError(NewNotFound("task", map[string]any{"id": "t-1"}))
	if de.Message != "task not found" || de.Details["resource"] != "task" || de.Details["id"] != "t-1" {
		t.Fatalf("unexpected not found error %+v", de)
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NewValidationError("bad", nil))
	if !HasCode(err, CodeValidation) {
		t.Fatalf("expected VALIDATION_FAILED code")
	}
	if HasCode(errors.New("plain"), CodeValidation) {
		t.Fatalf("plain error should carry no code")
	}
}
