package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wakti/wakti-nlp/internal/schemas"
	"github.com/wakti/wakti-nlp/internal/types"
)

type classifyRequest struct {
	Snippets []types.SearchSnippet `json:"snippets" validate:"max=200"`
}

type batchClassifyRequest struct {
	Batches [][]types.SearchSnippet `json:"batches" validate:"required,min=1,max=20,dive,max=200"`
}

type classifyURLRequest struct {
	URL    string `json:"url" validate:"required,http_url,max=4000"`
	Engine string `json:"engine,omitempty" validate:"omitempty,oneof=duckduckgo bing google searxng"`
}

type promptRequest struct {
	Prompt string `json:"prompt" validate:"required,max=4000"`
}

type wizardConfigRequest struct {
	Feature types.FeatureType `json:"feature" validate:"required"`
	Config  map[string]any    `json:"config" validate:"max=50"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeRequest reads the body, checks it against the named JSON schema,
// decodes it into dest and runs the struct validation tags.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, schema schemas.Name, dest any) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, &ErrValidation{Field: "body", Message: "failed to read request body"}
	}
	if !json.Valid(body) {
		return nil, &ErrValidation{Field: "body", Message: "invalid JSON"}
	}

	if err := schemas.Validate(schema, body); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return nil, &ErrValidation{Field: "body", Message: fmt.Sprintf("invalid request: %v", err)}
	}

	if err := s.validate.Struct(dest); err != nil {
		return nil, err
	}

	return body, nil
}
