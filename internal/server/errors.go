// Package server provides the HTTP API for result classification, intent
// detection, feature analysis and feature wizard sessions.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/wakti/wakti-nlp/internal/db"
	"github.com/wakti/wakti-nlp/internal/ingestion"
	"github.com/wakti/wakti-nlp/internal/schemas"
)

// ErrWizardDisabled is returned when no session store or token signer is configured.
var ErrWizardDisabled = errors.New("wizard sessions are not enabled on this server")

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		schemaErr     *schemas.ValidationError
		fieldErrs     validator.ValidationErrors
		tooLarge      *http.MaxBytesError
		loadErr       *ingestion.LoadError
	)

	switch {
	case errors.As(err, &validationErr), errors.As(err, &schemaErr), errors.As(err, &fieldErrs):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, db.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, db.ErrFeatureNotInSession), errors.Is(err, db.ErrFeatureNoWizard):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrWizardDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, ingestion.ErrInvalidURL):
		return http.StatusBadRequest
	case errors.Is(err, ingestion.ErrHTTPRequestFailed):
		return http.StatusBadGateway
	case errors.As(err, &loadErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
