// Package results turns raw web-search snippets into sports match rows,
// falling back to a plain title/source listing when nothing parses.
package results

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// boilerplatePhrases are removed from snippet text before parsing.
var boilerplatePhrases = []string{
	"accept all cookies",
	"accept cookies",
	"we use cookies",
	"this site uses cookies",
	"this website uses cookies",
	"cookie policy",
	"cookie settings",
	"manage cookies",
	"manage consent",
	"consent preferences",
	"privacy policy",
	"terms of use",
	"advertisement",
	"sponsored content",
	"sponsored",
	"sign up for our newsletter",
	"subscribe to our newsletter",
	"skip to main content",
	"skip to content",
	"all rights reserved",
}

var (
	boilerplateRe = compilePhrases(boilerplatePhrases)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	lineBreaks    = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")
)

// compilePhrases builds one case-insensitive alternation, longest phrase first
// so that "accept all cookies" wins over "accept cookies".
func compilePhrases(phrases []string) *regexp.Regexp {
	sorted := append([]string(nil), phrases...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	quoted := make([]string, 0, len(sorted))
	for _, p := range sorted {
		quoted = append(quoted, regexp.QuoteMeta(p))
	}
	return regexp.MustCompile(`(?i)` + strings.Join(quoted, "|"))
}

// CleanText normalizes snippet text into a single line: NFC-normalized,
// boilerplate removed, whitespace collapsed.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	text = norm.NFC.String(text)
	text = lineBreaks.Replace(text)
	text = boilerplateRe.ReplaceAllString(text, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}
