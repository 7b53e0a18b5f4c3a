package results

import (
	"regexp"
	"strconv"
)

// scoreRe matches "102-98", "2 – 1", "3x0" and "1:1".
var scoreRe = regexp.MustCompile(`(\d+)\s*[-–x:]\s*(\d+)`)

// matchScore is a score found in snippet text.
type matchScore struct {
	a, b    string
	inTitle bool
}

// String renders the score as "A-B".
func (s matchScore) String() string {
	return s.a + "-" + s.b
}

// findScore looks for a score in the title first, then in the content.
func findScore(title, content string) (matchScore, bool) {
	if m := scoreRe.FindStringSubmatch(title); m != nil {
		return matchScore{a: m[1], b: m[2], inTitle: true}, true
	}
	if m := scoreRe.FindStringSubmatch(content); m != nil {
		return matchScore{a: m[1], b: m[2]}, true
	}
	return matchScore{}, false
}

// victoryCueRe matches wording that names the first team as the winner.
var victoryCueRe = regexp.MustCompile(`(?i)def\.|\b(defeats|beats|beat|over)\b`)

// Decision records how the winner of a row was chosen.
type Decision string

const (
	// DecidedByScore means the higher score picked the winner.
	DecidedByScore Decision = "score"
	// DecidedByCue means the score was level or unreadable and the title wording picked the winner.
	DecidedByCue Decision = "cue"
	// DecidedByOrder means neither score nor wording decided; source order was kept.
	DecidedByOrder Decision = "order"
)

// assignSides returns winner and loser for teams A and B.
func assignSides(teamA, teamB string, s matchScore, title string) (winner, loser string, how Decision) {
	a, errA := strconv.Atoi(s.a)
	b, errB := strconv.Atoi(s.b)
	if errA == nil && errB == nil && a != b {
		if a > b {
			return teamA, teamB, DecidedByScore
		}
		return teamB, teamA, DecidedByScore
	}

	if victoryCueRe.MatchString(title) {
		return teamA, teamB, DecidedByCue
	}
	return teamA, teamB, DecidedByOrder
}
