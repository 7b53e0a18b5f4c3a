package features

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wakti/wakti-nlp/internal/types"
)

// CatalogError is returned when a feature catalog cannot be read or compiled.
type CatalogError struct {
	Message string
	Cause   error
}

func (e *CatalogError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("feature catalog: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("feature catalog: %s", e.Message)
}

func (e *CatalogError) Unwrap() error {
	return e.Cause
}

type catalogFile struct {
	Businesses []businessEntry `yaml:"businesses"`
	Features   []featureEntry  `yaml:"features"`
}

type businessEntry struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
}

type featureEntry struct {
	Type           string   `yaml:"type"`
	Priority       int      `yaml:"priority"`
	RequiresWizard bool     `yaml:"requires_wizard"`
	WizardType     string   `yaml:"wizard_type"`
	Patterns       []string `yaml:"patterns"`
}

// LoadCatalog parses a YAML feature catalog. Regexes are compiled
// case-insensitively and every feature needs at least one pattern and a
// positive priority.
func LoadCatalog(r io.Reader) (Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return Catalog{}, &CatalogError{Message: "failed to decode yaml", Cause: err}
	}
	if len(file.Features) == 0 {
		return Catalog{}, &CatalogError{Message: "no features defined"}
	}

	businesses := make([]BusinessPattern, 0, len(file.Businesses))
	for i, b := range file.Businesses {
		name := strings.TrimSpace(b.Name)
		if name == "" {
			return Catalog{}, &CatalogError{Message: fmt.Sprintf("business %d has no name", i)}
		}
		re, err := compile(b.Pattern)
		if err != nil {
			return Catalog{}, &CatalogError{Message: fmt.Sprintf("business %q: invalid pattern %q", name, b.Pattern), Cause: err}
		}
		businesses = append(businesses, BusinessPattern{Name: name, Pattern: re})
	}

	seen := make(map[string]bool, len(file.Features))
	features := make([]FeaturePattern, 0, len(file.Features))
	for i, f := range file.Features {
		name := strings.TrimSpace(f.Type)
		switch {
		case name == "":
			return Catalog{}, &CatalogError{Message: fmt.Sprintf("feature %d has no type", i)}
		case seen[name]:
			return Catalog{}, &CatalogError{Message: fmt.Sprintf("duplicate feature %q", name)}
		case f.Priority <= 0:
			return Catalog{}, &CatalogError{Message: fmt.Sprintf("feature %q: priority must be positive", name)}
		case len(f.Patterns) == 0:
			return Catalog{}, &CatalogError{Message: fmt.Sprintf("feature %q has no patterns", name)}
		}
		seen[name] = true

		compiled := make([]*regexp.Regexp, 0, len(f.Patterns))
		for _, expr := range f.Patterns {
			re, err := compile(expr)
			if err != nil {
				return Catalog{}, &CatalogError{Message: fmt.Sprintf("feature %q: invalid pattern %q", name, expr), Cause: err}
			}
			compiled = append(compiled, re)
		}

		features = append(features, FeaturePattern{
			Type:           types.FeatureType(name),
			Patterns:       compiled,
			Priority:       f.Priority,
			RequiresWizard: f.RequiresWizard,
			WizardType:     f.WizardType,
		})
	}

	return NewCatalog(businesses, features), nil
}

// LoadCatalogFile reads a YAML feature catalog from path.
func LoadCatalogFile(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, &CatalogError{Message: "failed to open catalog file", Cause: err}
	}
	defer func() { _ = f.Close() }()

	return LoadCatalog(f)
}

func compile(expr string) (*regexp.Regexp, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, errors.New("empty pattern")
	}
	return regexp.Compile(`(?i)` + expr)
}
