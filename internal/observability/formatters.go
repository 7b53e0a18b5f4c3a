// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/wakti/wakti-nlp/internal/features"
	"github.com/wakti/wakti-nlp/internal/rendering"
	"github.com/wakti/wakti-nlp/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// maxCellWidth caps a single table column
	maxCellWidth = 40
)

// Printer handles formatted terminal output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", fit(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", fit(line, inner))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// fit truncates s to width display cells and pads it on the right.
func fit(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "..."), width)
}

// PrintIntent outputs a detected intent.
func (p *Printer) PrintIntent(intent types.DetectedIntent) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Type:        %s\n", intent.Type))
	sb.WriteString(fmt.Sprintf("Confidence:  %.2f\n", intent.Confidence))
	sb.WriteString(fmt.Sprintf("Ask first:   %s\n", yesNo(intent.ShouldAskQuestions)))

	if len(intent.Keywords) > 0 {
		sb.WriteString(fmt.Sprintf("Keywords:    %s\n", strings.Join(intent.Keywords, ", ")))
	}
	if len(intent.QuestionTemplates) > 0 {
		sb.WriteString("Questions:\n")
		for _, q := range intent.QuestionTemplates {
			sb.WriteString(fmt.Sprintf("  • %s\n", q))
		}
	}

	p.printBox("DETECTED INTENT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintIntents outputs every intent above the multi-intent threshold.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintIntents(intents []types.DetectedIntent) {
	if len(intents) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %s │\n", fit("NO INTENTS ABOVE THRESHOLD", boxWidth-4))
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	for i, intent := range intents {
		sb.WriteString(fmt.Sprintf("#%d  %-14s %.2f", i+1, intent.Type, intent.Confidence))
		if intent.ShouldAskQuestions {
			sb.WriteString("  (ask)")
		}
		sb.WriteString("\n")
	}

	p.printBox("DETECTED INTENTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAnalysis outputs an analyzed request with its features in build order.
func (p *Printer) PrintAnalysis(req types.AnalyzedRequest) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Business:  %s\n", req.BusinessType))
	sb.WriteString(fmt.Sprintf("Features:  %d\n", len(req.Features)))
	sb.WriteString("\n")

	for _, f := range req.Features {
		sb.WriteString(fmt.Sprintf("%2d. %s", f.Priority, features.Label(f.Type)))
		if f.RequiresWizard {
			sb.WriteString(fmt.Sprintf(" [%s]", f.WizardType))
		}
		sb.WriteString("\n")

		keywords := f.Keywords
		extra := 0
		if len(keywords) > maxItemsToShow {
			extra = len(keywords) - maxItemsToShow
			keywords = keywords[:maxItemsToShow]
		}
		sb.WriteString(fmt.Sprintf("    matched: %s", strings.Join(keywords, ", ")))
		if extra > 0 {
			sb.WriteString(fmt.Sprintf(" ... and %d more", extra))
		}
		sb.WriteString("\n")
	}

	p.printBox("REQUEST ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTable outputs a classification result as an aligned text table.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintTable(result types.ClassifyResult) {
	data := rendering.NewTableData(result)

	widths := make([]int, len(data.Columns))
	for i, c := range data.Columns {
		widths[i] = runewidth.StringWidth(c)
	}
	for _, row := range data.Rows {
		for i, cell := range row {
			widths[i] = min(max(widths[i], runewidth.StringWidth(cell)), maxCellWidth)
		}
	}

	writeRow := func(cells []string) {
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = fit(c, widths[i])
		}
		fmt.Fprintln(p.out, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	writeRow(data.Columns)
	rules := make([]string, len(widths))
	for i, w := range widths {
		rules[i] = strings.Repeat("─", w)
	}
	fmt.Fprintln(p.out, strings.Join(rules, "  "))
	for _, row := range data.Rows {
		writeRow(row)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
