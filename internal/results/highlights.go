package results

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

const (
	// MaxHighlightLength is the highlight length, in characters, before the ellipsis.
	MaxHighlightLength = 140
	// Placeholder is rendered for empty highlights and titles.
	Placeholder = "—"

	ellipsis          = "…"
	highlightSentence = 2
)

var emphasisStripper = strings.NewReplacer("*", "", "_", "", "~", "", "`", "")

// buildHighlights returns the first sentences of text, stripped of markdown
// emphasis and truncated to MaxHighlightLength characters.
func buildHighlights(text string) string {
	sentences := splitSentences(text)
	if len(sentences) > highlightSentence {
		sentences = sentences[:highlightSentence]
	}

	joined := emphasisStripper.Replace(strings.Join(sentences, " "))
	joined = strings.TrimSpace(whitespaceRe.ReplaceAllString(joined, " "))
	if joined == "" {
		return Placeholder
	}

	return truncate(joined, MaxHighlightLength)
}

// splitSentences cuts text after '.', '!' or '?' when followed by whitespace or the end.
func splitSentences(text string) []string {
	runes := []rune(text)
	sentences := make([]string, 0, 2)
	start := 0

	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}

	if start < len(runes) {
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			sentences = append(sentences, s)
		}
	}

	return sentences
}

// truncate cuts text to limit grapheme clusters and appends an ellipsis.
func truncate(text string, limit int) string {
	if uniseg.GraphemeClusterCount(text) <= limit {
		return text
	}

	var sb strings.Builder
	g := uniseg.NewGraphemes(text)
	for n := 0; n < limit && g.Next(); n++ {
		sb.WriteString(g.Str())
	}

	return strings.TrimRightFunc(sb.String(), unicode.IsSpace) + ellipsis
}
