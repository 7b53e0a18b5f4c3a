// Package rendering renders classification results as HTML and Markdown tables.
package rendering

import (
	"errors"
	"fmt"
	"io/fs"
)

// builtinTemplate names the embedded table template in errors.
const builtinTemplate = "built-in"

// TemplateError reports a table template that could not be read, parsed or executed.
type TemplateError struct {
	Template string // file path, or "built-in"
	Op       string // read, parse or execute
	Err      error
}

func (e *TemplateError) Error() string {
	if e.Op == "read" && errors.Is(e.Err, fs.ErrNotExist) {
		return fmt.Sprintf("table template %s: not found", e.Template)
	}
	return fmt.Sprintf("table template %s: %s failed: %v", e.Template, e.Op, e.Err)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}

// KindError is returned for a result whose kind has no table layout.
type KindError struct {
	Kind string
}

func (e *KindError) Error() string {
	return fmt.Sprintf("no table layout for result kind %q", e.Kind)
}
