package rendering

import "strings"

// EscapeMarkdown escapes text for use inside a Markdown table cell.
// Pipes, backslashes and emphasis characters are escaped and line breaks
// become spaces.
func EscapeMarkdown(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) * 2)

	for _, r := range text {
		switch r {
		case '\\', '|', '*', '_', '`', '~', '[', ']', '<', '>':
			result.WriteByte('\\')
			result.WriteRune(r)
		case '\r':
		case '\n':
			result.WriteByte(' ')
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}
