package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wakti/wakti-nlp/internal/db"
	"github.com/wakti/wakti-nlp/internal/ingestion"
	"github.com/wakti/wakti-nlp/internal/schemas"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: &ErrValidation{Field: "prompt", Message: "required"}, want: http.StatusBadRequest},
		{name: "schema", err: &schemas.ValidationError{Errors: []schemas.FieldError{{Field: "prompt", Message: "required"}}}, want: http.StatusBadRequest},
		{name: "body too large", err: &http.MaxBytesError{Limit: 10}, want: http.StatusRequestEntityTooLarge},
		{name: "session not found", err: fmt.Errorf("lookup: %w", db.ErrSessionNotFound), want: http.StatusNotFound},
		{name: "feature not in session", err: db.ErrFeatureNotInSession, want: http.StatusUnprocessableEntity},
		{name: "feature without wizard", err: db.ErrFeatureNoWizard, want: http.StatusUnprocessableEntity},
		{name: "wizard disabled", err: ErrWizardDisabled, want: http.StatusServiceUnavailable},
		{name: "invalid url", err: &ingestion.LoadError{Message: "invalid URL", Cause: ingestion.ErrInvalidURL}, want: http.StatusBadRequest},
		{name: "upstream failed", err: fmt.Errorf("%w: boom", ingestion.ErrHTTPRequestFailed), want: http.StatusBadGateway},
		{name: "unparsable upstream", err: &ingestion.LoadError{Message: "failed to parse json"}, want: http.StatusUnprocessableEntity},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrValidation_Error(t *testing.T) {
	err := &ErrValidation{Field: "format", Message: "must be json"}
	assert.Equal(t, "validation error: format - must be json", err.Error())
}
