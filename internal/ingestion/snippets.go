package ingestion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/wakti/wakti-nlp/internal/types"
)

// rawSnippet accepts the field names used by the common search APIs.
type rawSnippet struct {
	Title       string `json:"title"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Link        string `json:"link"`
	Href        string `json:"href"`
	Content     string `json:"content"`
	Snippet     string `json:"snippet"`
	Description string `json:"description"`
	Body        string `json:"body"`
}

func (r rawSnippet) snippet() types.SearchSnippet {
	return types.SearchSnippet{
		Title:   firstNonEmpty(r.Title, r.Name),
		URL:     firstNonEmpty(r.URL, r.Link, r.Href),
		Content: firstNonEmpty(r.Content, r.Snippet, r.Description, r.Body),
	}
}

type resultsEnvelope struct {
	Results        []rawSnippet `json:"results"`
	OrganicResults []rawSnippet `json:"organic_results"`
	Items          []rawSnippet `json:"items"`
}

// DecodeSnippets reads a JSON array of snippets, or an object holding them
// under "results", "organic_results" or "items".
func DecodeSnippets(r io.Reader) ([]types.SearchSnippet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read snippets: %w", err)
	}
	return decodeSnippetBytes(data)
}

func decodeSnippetBytes(data []byte) ([]types.SearchSnippet, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrUnsupportedFormat)
	}

	var raw []rawSnippet
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("failed to decode snippet array: %w", err)
		}
	case '{':
		var env resultsEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("failed to decode results object: %w", err)
		}
		switch {
		case env.Results != nil:
			raw = env.Results
		case env.OrganicResults != nil:
			raw = env.OrganicResults
		default:
			raw = env.Items
		}
	default:
		return nil, fmt.Errorf("%w: expected a JSON array or object", ErrUnsupportedFormat)
	}

	snippets := make([]types.SearchSnippet, 0, len(raw))
	for _, r := range raw {
		snippets = append(snippets, r.snippet())
	}
	return snippets, nil
}

func looksLikeJSON(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{')
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
