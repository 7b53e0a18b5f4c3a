package intent

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wakti/wakti-nlp/internal/types"
)

// CatalogError is returned when a catalog file cannot be read or compiled.
type CatalogError struct {
	Message string
	Cause   error
}

func (e *CatalogError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("intent catalog: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("intent catalog: %s", e.Message)
}

func (e *CatalogError) Unwrap() error {
	return e.Cause
}

type catalogFile struct {
	Intents []patternEntry `yaml:"intents"`
}

type patternEntry struct {
	Type                      string   `yaml:"type"`
	Keywords                  []string `yaml:"keywords"`
	Patterns                  []string `yaml:"patterns"`
	MinConfidenceForQuestions float64  `yaml:"min_confidence_for_questions"`
	QuestionTemplates         []string `yaml:"question_templates"`
}

// LoadCatalog parses a YAML intent catalog. Regexes are compiled
// case-insensitively; entry order becomes tie-break order.
//
//	intents:
//	  - type: authentication
//	    keywords: [login, sign in]
//	    patterns: ['\buser\s+login\b']
//	    min_confidence_for_questions: 0.6
//	    question_templates: [auth-providers]
func LoadCatalog(r io.Reader) (Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return Catalog{}, &CatalogError{Message: "failed to decode yaml", Cause: err}
	}
	if len(file.Intents) == 0 {
		return Catalog{}, &CatalogError{Message: "no intents defined"}
	}

	seen := make(map[string]bool, len(file.Intents))
	patterns := make([]Pattern, 0, len(file.Intents))
	for i, entry := range file.Intents {
		name := strings.TrimSpace(entry.Type)
		if name == "" {
			return Catalog{}, &CatalogError{Message: fmt.Sprintf("intent %d has no type", i)}
		}
		if seen[name] {
			return Catalog{}, &CatalogError{Message: fmt.Sprintf("duplicate intent %q", name)}
		}
		seen[name] = true

		if entry.MinConfidenceForQuestions < 0 || entry.MinConfidenceForQuestions > 1 {
			return Catalog{}, &CatalogError{
				Message: fmt.Sprintf("intent %q: min_confidence_for_questions must be within [0,1]", name),
			}
		}

		compiled := make([]*regexp.Regexp, 0, len(entry.Patterns))
		for _, expr := range entry.Patterns {
			re, err := regexp.Compile(`(?i)` + expr)
			if err != nil {
				return Catalog{}, &CatalogError{Message: fmt.Sprintf("intent %q: invalid pattern %q", name, expr), Cause: err}
			}
			compiled = append(compiled, re)
		}

		patterns = append(patterns, Pattern{
			Type:                      types.IntentType(name),
			Keywords:                  entry.Keywords,
			Patterns:                  compiled,
			MinConfidenceForQuestions: entry.MinConfidenceForQuestions,
			QuestionTemplates:         entry.QuestionTemplates,
		})
	}

	return NewCatalog(patterns), nil
}

// LoadCatalogFile reads a YAML catalog from path.
func LoadCatalogFile(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, &CatalogError{Message: "failed to open catalog file", Cause: err}
	}
	defer func() { _ = f.Close() }()

	return LoadCatalog(f)
}
