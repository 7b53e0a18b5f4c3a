package results

import (
	"regexp"
	"strings"
	"unicode"
)

// separatorRe finds the "vs / v / @ / over / beat / defeat / def." phrase between two sides.
var separatorRe = regexp.MustCompile(`(?i)(?:^|\s)(?:vs\.?|v\.?|@|over|beats|beat|defeats|defeat|def\.)(?:\s|$)`)

// scoreMark stands in for a score once it has been cut out of the text.
const scoreMark = " # "

// clauseBreakRe marks where a team name cannot continue: punctuation, a
// sentence end, a spaced dash, or a removed score.
var clauseBreakRe = regexp.MustCompile(`[,;:|!?#]|\.\s|\.$|\s[-–—]\s`)

var (
	parentheticalRe = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)
	teamNoiseRe     = regexp.MustCompile(`(?i)\b(full recap|recap|game recap|match report|report|highlights?|live updates|live blog|live score|live|final score|final|results?|score|preview|watch|video|breaking|exclusive|just in|espn|bbc sport|sky sports|reuters|ap news|yahoo sports|cbs sports|nbc sports|fox sports|the athletic)\b`)
	leadingArticle  = regexp.MustCompile(`(?i)^the\s+`)
)

const teamTrimSet = " \t-–—:|,;.'&"

// maxTeamWords bounds how far a side reaches away from the separator.
const maxTeamWords = 5

// teamStopWords end a side when met while walking away from the separator.
var teamStopWords = map[string]bool{
	"a": true, "after": true, "amid": true, "an": true, "and": true, "are": true,
	"as": true, "at": true, "before": true, "but": true, "by": true, "despite": true,
	"during": true, "for": true, "from": true, "had": true, "has": true, "have": true,
	"in": true, "into": true, "is": true, "on": true, "the": true, "then": true,
	"to": true, "was": true, "were": true, "when": true, "while": true, "with": true,
}

// findTeams looks for a separator in the title first, then the content.
// Scores and bracketed asides are cut out beforehand so a score sitting
// between the teams ends a side instead of becoming one.
func findTeams(title, content string) (teamA, teamB string, ok bool) {
	for _, text := range []string{title, content} {
		text = parentheticalRe.ReplaceAllString(text, " ")
		text = scoreRe.ReplaceAllString(text, scoreMark)

		for _, loc := range separatorRe.FindAllStringIndex(text, -1) {
			a := cleanTeam(sideBefore(text[:loc[0]]))
			b := cleanTeam(sideAfter(text[loc[1]:]))
			if a != "" && b != "" {
				return a, b, true
			}
		}
	}
	return "", "", false
}

// sideBefore returns the words that end right before the separator.
// A score directly in front of the separator ("Warriors 120-110 over Suns") is skipped.
func sideBefore(text string) string {
	text = strings.TrimRight(text, scoreMark)
	if breaks := clauseBreakRe.FindAllStringIndex(text, -1); len(breaks) > 0 {
		text = text[breaks[len(breaks)-1][1]:]
	}

	words := strings.Fields(text)
	start := len(words)
	for start > 0 && len(words)-start < maxTeamWords && isTeamWord(words[start-1]) {
		start--
	}
	return strings.Join(words[start:], " ")
}

// sideAfter returns the words that start right after the separator.
func sideAfter(text string) string {
	if loc := clauseBreakRe.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
	}

	words := strings.Fields(leadingArticle.ReplaceAllString(strings.TrimSpace(text), ""))
	end := 0
	for end < len(words) && end < maxTeamWords && isTeamWord(words[end]) {
		end++
	}
	return strings.Join(words[:end], " ")
}

func isTeamWord(word string) bool {
	return !teamStopWords[strings.ToLower(word)] && !isNumeric(word)
}

func isNumeric(s string) bool {
	s = strings.Trim(s, teamTrimSet)
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// cleanTeam strips bracketed asides, recap and outlet words, shouted tags and stray punctuation.
// A name left with nothing but digits is rejected.
func cleanTeam(name string) string {
	name = parentheticalRe.ReplaceAllString(name, " ")
	name = teamNoiseRe.ReplaceAllString(name, " ")
	name = whitespaceRe.ReplaceAllString(name, " ")
	name = strings.Trim(name, teamTrimSet)
	name = leadingArticle.ReplaceAllString(name, "")
	name = dropShoutedTag(name)
	name = strings.Trim(name, teamTrimSet)
	if isNumeric(name) {
		return ""
	}
	return name
}

// dropShoutedTag removes a leading all-caps word such as "EXCLUSIVE" when the
// rest of the name is not shouted too. Short acronyms like "PSG" are kept.
func dropShoutedTag(name string) string {
	words := strings.Fields(name)
	if len(words) < 2 || !isShouted(words[0]) || isShouted(words[1]) {
		return name
	}
	return strings.Join(words[1:], " ")
}

func isShouted(word string) bool {
	letters := 0
	for _, r := range word {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters >= 4
}
