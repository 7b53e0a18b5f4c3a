package results

import (
	"net/url"
	"strings"

	"github.com/wakti/wakti-nlp/internal/types"
)

// MatchColumns and GenericColumns are the table headers for each result kind.
var (
	MatchColumns   = []string{"Winner", "Loser", "Score", "Highlights", "Source"}
	GenericColumns = []string{"Title", "Source"}
)

// Columns returns the table headers for kind.
func Columns(kind types.ResultKind) []string {
	if kind == types.ResultKindMatches {
		return MatchColumns
	}
	return GenericColumns
}

// ParsedSnippet is a match row together with how its winner was decided.
type ParsedSnippet struct {
	Row          types.MatchRow
	DecidedBy    Decision
	ScoreInTitle bool
}

// Classify parses every snippet and returns the rows that look like match results.
// When none do, it returns a generic title/source row for every snippet instead.
// Order is preserved in both cases.
func Classify(snippets []types.SearchSnippet) types.ClassifyResult {
	rows := make([]types.MatchRow, 0, len(snippets))
	for _, s := range snippets {
		if parsed, ok := ParseSnippet(s); ok {
			rows = append(rows, parsed.Row)
		}
	}

	if len(rows) > 0 {
		return types.ClassifyResult{Kind: types.ResultKindMatches, Rows: rows}
	}

	generic := make([]types.GenericRow, 0, len(snippets))
	for _, s := range snippets {
		title := CleanText(s.Title)
		if title == "" {
			title = Placeholder
		}
		generic = append(generic, types.GenericRow{
			Title:  title,
			Source: SourceHost(s.URL),
		})
	}

	return types.ClassifyResult{Kind: types.ResultKindGeneric, GenericRows: generic}
}

// ParseSnippet extracts a match row from a single snippet.
// It reports false when the snippet lacks a score or two team names.
func ParseSnippet(s types.SearchSnippet) (ParsedSnippet, bool) {
	title := CleanText(s.Title)
	content := CleanText(s.Content)

	score, ok := findScore(title, content)
	if !ok {
		return ParsedSnippet{}, false
	}

	teamA, teamB, ok := findTeams(title, content)
	if !ok {
		return ParsedSnippet{}, false
	}

	winner, loser, how := assignSides(teamA, teamB, score, title)

	// Highlights come from the content so a score headline is not repeated;
	// the title stands in only when there is no content.
	source := content
	if source == "" {
		source = title
	}

	return ParsedSnippet{
		Row: types.MatchRow{
			Winner:     winner,
			Loser:      loser,
			Score:      score.String(),
			Highlights: buildHighlights(source),
			SourceHost: SourceHost(s.URL),
		},
		DecidedBy:    how,
		ScoreInTitle: score.inTitle,
	}, true
}

// SourceHost returns the hostname of rawURL without a leading "www.",
// or an empty string when rawURL is empty or unparsable.
func SourceHost(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
