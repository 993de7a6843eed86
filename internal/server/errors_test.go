package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-fit/internal/pipeline"
	"github.com/jonathan/resume-fit/internal/validation"
)

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "job", Message: "description is required"}
	assert.Equal(t, "validation error: job - description is required", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		code string
	}{
		{"request error", &pipeline.RequestError{Message: "validation failed"}, http.StatusBadRequest, "invalid_request"},
		{"wrapped guardrail", fmt.Errorf("edit generation: %w", &validation.GuardrailError{Stage: "length_ratio"}), http.StatusUnprocessableEntity, "guardrail_failed"},
		{"body too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, "body_too_large"},
		{"deadline", fmt.Errorf("structure: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "timeout"},
		{"canceled", context.Canceled, http.StatusServiceUnavailable, "canceled"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
			assert.Equal(t, tt.code, errorCode(tt.err))
		})
	}
}
