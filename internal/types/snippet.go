// Package types provides type definitions for structured data shared by the wakti-nlp packages.
//
//nolint:revive // types is a standard Go package name pattern
package types

// SearchSnippet is a single search-engine result item. All fields are optional.
type SearchSnippet struct {
	Title   string `json:"title,omitempty"`
	URL     string `json:"url,omitempty"`
	Content string `json:"content,omitempty"`
}

// ResultKind tells which row set a ClassifyResult carries.
type ResultKind string

const (
	// ResultKindMatches means at least one snippet parsed as a sports match.
	ResultKindMatches ResultKind = "matches"
	// ResultKindGeneric means no snippet parsed and every snippet is listed by title.
	ResultKindGeneric ResultKind = "generic"
)

// MatchRow is a snippet that parsed as a sports match outcome.
type MatchRow struct {
	Winner     string `json:"winner"`
	Loser      string `json:"loser"`
	Score      string `json:"score"` // "A-B" in the order the score appeared in the text
	Highlights string `json:"highlights"`
	SourceHost string `json:"source_host"`
}

// GenericRow is the fallback rendering of a snippet.
type GenericRow struct {
	Title  string `json:"title"`
	Source string `json:"source"`
}

// ClassifyResult is the output of result classification.
// Exactly one of Rows or GenericRows is populated, selected by Kind.
type ClassifyResult struct {
	Kind        ResultKind   `json:"kind"`
	Rows        []MatchRow   `json:"rows,omitempty"`
	GenericRows []GenericRow `json:"generic_rows,omitempty"`
}

// Len returns the number of rows in the populated row set.
func (r ClassifyResult) Len() int {
	if r.Kind == ResultKindMatches {
		return len(r.Rows)
	}
	return len(r.GenericRows)
}
