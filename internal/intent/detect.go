package intent

import (
	"sort"
	"strings"

	"github.com/wakti/wakti-nlp/internal/types"
)

// Scoring weights and thresholds, in hundredths so threshold comparisons are exact.
const (
	keywordWeight      = 15
	patternWeight      = 25
	maxScore           = 100
	multipleMinScore   = 30
	simpleConfidence   = 1.0
	hundredthsPerPoint = 100.0
)

// Detector scores prompts against an intent catalog. It holds no mutable
// state and is safe for concurrent use.
type Detector struct {
	catalog Catalog
}

// NewDetector returns a detector over catalog.
func NewDetector(catalog Catalog) *Detector {
	return &Detector{catalog: catalog}
}

// Catalog returns the catalog the detector scores against.
func (d *Detector) Catalog() Catalog {
	return d.catalog
}

// categoryScore is the result of scoring one catalog entry.
type categoryScore struct {
	pattern  Pattern
	score    int
	keywords []string
}

func (c categoryScore) confidence() float64 {
	return float64(c.score) / hundredthsPerPoint
}

func (c categoryScore) intent() types.DetectedIntent {
	conf := c.confidence()
	return types.DetectedIntent{
		Type:               c.pattern.Type,
		Confidence:         conf,
		Keywords:           c.keywords,
		ShouldAskQuestions: conf >= c.pattern.MinConfidenceForQuestions,
		QuestionTemplates:  append([]string{}, c.pattern.QuestionTemplates...),
	}
}

// Detect returns the best-scoring intent for prompt. When nothing in the
// catalog matches, the request is "simple" and needs no questions.
func (d *Detector) Detect(prompt string) types.DetectedIntent {
	scores := d.score(prompt, 1)
	if len(scores) == 0 {
		return types.DetectedIntent{
			Type:              types.IntentSimple,
			Confidence:        simpleConfidence,
			Keywords:          []string{},
			QuestionTemplates: []string{},
		}
	}
	return scores[0].intent()
}

// DetectMultiple returns every intent scoring at least 0.3, best first.
// Each result is checked against its own question threshold.
func (d *Detector) DetectMultiple(prompt string) []types.DetectedIntent {
	scores := d.score(prompt, multipleMinScore)
	out := make([]types.DetectedIntent, 0, len(scores))
	for _, s := range scores {
		out = append(out, s.intent())
	}
	return out
}

// score returns the categories scoring at least minScore hundredths,
// stably sorted by descending score so catalog order breaks ties.
func (d *Detector) score(prompt string, minScore int) []categoryScore {
	lower := strings.ToLower(prompt)
	scores := make([]categoryScore, 0, d.catalog.Len())

	for _, p := range d.catalog.patterns {
		matched := make([]string, 0, len(p.Keywords))
		for _, kw := range p.Keywords {
			if strings.Contains(lower, kw) {
				matched = append(matched, kw)
			}
		}

		patternHits := 0
		for _, re := range p.Patterns {
			if re.MatchString(prompt) {
				patternHits++
			}
		}

		score := min(keywordWeight*len(matched)+patternWeight*patternHits, maxScore)
		if score < minScore || score == 0 {
			continue
		}
		scores = append(scores, categoryScore{pattern: p, score: score, keywords: matched})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	return scores
}
