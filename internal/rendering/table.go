package rendering

import (
	"embed"
	"html/template"
	"os"
	"strings"

	"github.com/wakti/wakti-nlp/internal/results"
	"github.com/wakti/wakti-nlp/internal/types"
)

//go:embed templates/table.html.tmpl
var templateFS embed.FS

const defaultTemplate = "templates/table.html.tmpl"

// TableData is the data passed to a table template
type TableData struct {
	Kind    types.ResultKind
	Columns []string
	Rows    [][]string
}

// NewTableData flattens a classification result into header and cell strings.
func NewTableData(result types.ClassifyResult) TableData {
	data := TableData{
		Kind:    result.Kind,
		Columns: results.Columns(result.Kind),
	}

	if result.Kind == types.ResultKindMatches {
		data.Rows = make([][]string, 0, len(result.Rows))
		for _, r := range result.Rows {
			data.Rows = append(data.Rows, []string{r.Winner, r.Loser, r.Score, r.Highlights, r.SourceHost})
		}
		return data
	}

	data.Rows = make([][]string, 0, len(result.GenericRows))
	for _, r := range result.GenericRows {
		data.Rows = append(data.Rows, []string{r.Title, r.Source})
	}
	return data
}

// HTMLTable renders result with the built-in HTML template.
func HTMLTable(result types.ClassifyResult) (string, error) {
	tmpl, err := template.ParseFS(templateFS, defaultTemplate)
	if err != nil {
		return "", &TemplateError{Template: builtinTemplate, Op: "parse", Err: err}
	}
	return execute(tmpl, builtinTemplate, result)
}

// HTMLTableWithTemplate renders result with the html/template at templatePath.
func HTMLTableWithTemplate(result types.ClassifyResult, templatePath string) (string, error) {
	tmpl, err := parseTemplate(templatePath)
	if err != nil {
		return "", err
	}
	return execute(tmpl, templatePath, result)
}

func execute(tmpl *template.Template, name string, result types.ClassifyResult) (string, error) {
	if result.Kind != types.ResultKindMatches && result.Kind != types.ResultKindGeneric {
		return "", &KindError{Kind: string(result.Kind)}
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, NewTableData(result)); err != nil {
		return "", &TemplateError{Template: name, Op: "execute", Err: err}
	}
	return out.String(), nil
}

// parseTemplate reads and parses a table template file
func parseTemplate(templatePath string) (*template.Template, error) {
	content, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, &TemplateError{Template: templatePath, Op: "read", Err: err}
	}

	tmpl, err := template.New("table").Parse(string(content))
	if err != nil {
		return nil, &TemplateError{Template: templatePath, Op: "parse", Err: err}
	}
	return tmpl, nil
}

// MarkdownTable renders result as a GitHub-flavoured Markdown table.
func MarkdownTable(result types.ClassifyResult) string {
	data := NewTableData(result)

	var b strings.Builder
	writeMarkdownRow(&b, data.Columns)

	sep := make([]string, len(data.Columns))
	for i := range sep {
		sep[i] = "---"
	}
	writeMarkdownRow(&b, sep)

	for _, row := range data.Rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = EscapeMarkdown(c)
		}
		writeMarkdownRow(&b, cells)
	}

	return b.String()
}

func writeMarkdownRow(b *strings.Builder, cells []string) {
	b.WriteString("| ")
	b.WriteString(strings.Join(cells, " | "))
	b.WriteString(" |\n")
}
