package schemas

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []Name{
		BatchClassifyRequest,
		ClassifyRequest,
		ClassifyURLRequest,
		PromptRequest,
		Snippet,
		SnippetList,
		WizardConfigRequest,
	}, Names())
}

func TestEmbeddedSchemas_Compile(t *testing.T) {
	for _, name := range Names() {
		t.Run(string(name), func(t *testing.T) {
			src, err := Source(name)
			require.NoError(t, err)

			var v any
			require.NoError(t, json.Unmarshal([]byte(src), &v), "schema should be valid JSON")

			_, err = gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
			assert.NoError(t, err, "schema should compile")
		})
	}
}

func TestSource_Unknown(t *testing.T) {
	_, err := Source("nope")
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidate_ClassifyRequest(t *testing.T) {
	assert.NoError(t, Validate(ClassifyRequest, []byte(`{"snippets": [{"title": "A", "url": "https://a.com"}]}`)))
	assert.NoError(t, Validate(ClassifyRequest, []byte(`{"snippets": []}`)))

	err := Validate(ClassifyRequest, []byte(`{"snippets": [{"title": 3}]}`))
	require.Error(t, err)
	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	assert.Equal(t, "snippets.0.title", validationErr.Errors[0].Field)

	err = Validate(ClassifyRequest, []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snippets")
}

func TestValidate_ClassifyURLRequest(t *testing.T) {
	assert.NoError(t, Validate(ClassifyURLRequest, []byte(`{"url": "https://html.duckduckgo.com/html/?q=derby"}`)))
	assert.NoError(t, Validate(ClassifyURLRequest, []byte(`{"url": "https://www.bing.com/search?q=derby", "engine": "bing"}`)))
	assert.Error(t, Validate(ClassifyURLRequest, []byte(`{"url": "https://a.com", "engine": "altavista"}`)))
	assert.Error(t, Validate(ClassifyURLRequest, []byte(`{"engine": "bing"}`)))
}

func TestValidate_PromptRequest(t *testing.T) {
	assert.NoError(t, Validate(PromptRequest, []byte(`{"prompt": "add login"}`)))
	assert.Error(t, Validate(PromptRequest, []byte(`{"prompt": ""}`)))
	assert.Error(t, Validate(PromptRequest, []byte(`{"prompt": "x", "extra": 1}`)))
}

func TestValidate_WizardConfigRequest(t *testing.T) {
	assert.NoError(t, Validate(WizardConfigRequest, []byte(`{"feature": "booking", "config": {"hours": "9-5"}}`)))
	assert.Error(t, Validate(WizardConfigRequest, []byte(`{"feature": "spaceship", "config": {}}`)))
	assert.Error(t, Validate(WizardConfigRequest, []byte(`{"feature": "booking", "config": []}`)))
}

func TestValidate_SnippetList(t *testing.T) {
	assert.NoError(t, Validate(SnippetList, []byte(`[{"title": "A"}]`)))
	assert.NoError(t, Validate(SnippetList, []byte(`{"results": [{"title": "A"}]}`)))
	assert.NoError(t, Validate(SnippetList, []byte(`{"organic_results": [{"link": "https://a.com"}]}`)))
	assert.Error(t, Validate(SnippetList, []byte(`{"data": []}`)))
	assert.Error(t, Validate(SnippetList, []byte(`"just a string"`)))
}

func TestValidate_MalformedDocument(t *testing.T) {
	err := Validate(PromptRequest, []byte(`{ invalid json }`))
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snippets.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"title": "A"}]`), 0o600))

	assert.NoError(t, ValidateFile(SnippetList, path))

	err := ValidateFile(SnippetList, filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateJSONString_Valid(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string"}
		}
	}`

	assert.NoError(t, ValidateJSONString(schemaContent, `{"name": "test"}`))
}

func TestValidateJSONString_Invalid(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string"}
		}
	}`

	err := ValidateJSONString(schemaContent, `{"age": 30}`)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Greater(t, len(validationErr.Errors), 0)
	assert.Equal(t, "(root)", validationErr.Errors[0].Field)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "name", Message: "is required"},
			{Field: "age", Message: "must be a number"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "validation failed")
	assert.Contains(t, errorMsg, "1. name: is required")
	assert.Contains(t, errorMsg, "2. age: must be a number")
}
