package features

import (
	"sort"
	"strings"

	"github.com/wakti/wakti-nlp/internal/types"
)

// Analyzer detects the business type and features of a build request.
// It keeps no state between calls and is safe for concurrent use.
type Analyzer struct {
	catalog Catalog
}

// NewAnalyzer returns an analyzer over catalog.
func NewAnalyzer(catalog Catalog) *Analyzer {
	return &Analyzer{catalog: catalog}
}

// Catalog returns the catalog the analyzer scans with.
func (a *Analyzer) Catalog() Catalog {
	return a.catalog
}

// Analyze returns the business type and the detected features of prompt,
// sorted by ascending priority. The cursor starts at zero.
func (a *Analyzer) Analyze(prompt string) types.AnalyzedRequest {
	req := types.AnalyzedRequest{
		OriginalPrompt: prompt,
		BusinessType:   a.businessType(prompt),
		Features:       []types.DetectedFeature{},
	}

	for _, fp := range a.catalog.features {
		var keywords []string
		for _, re := range fp.Patterns {
			for _, m := range re.FindAllString(prompt, -1) {
				keywords = append(keywords, strings.ToLower(m))
			}
		}
		if len(keywords) == 0 {
			continue
		}

		req.Features = append(req.Features, types.DetectedFeature{
			Type:           fp.Type,
			Keywords:       keywords,
			Priority:       fp.Priority,
			RequiresWizard: fp.RequiresWizard,
			WizardType:     fp.WizardType,
		})
		if fp.RequiresWizard {
			req.HasWizardFeatures = true
		}
	}

	sort.SliceStable(req.Features, func(i, j int) bool {
		return req.Features[i].Priority < req.Features[j].Priority
	})

	return req
}

func (a *Analyzer) businessType(prompt string) string {
	for _, b := range a.catalog.businesses {
		if b.Pattern.MatchString(prompt) {
			return b.Name
		}
	}
	return types.DefaultBusinessType
}

// NextWizardFeature returns the first feature at or after the request cursor
// that needs a wizard and is not in completed, with its index in Features.
// ok is false when every remaining wizard feature is done.
func NextWizardFeature(req types.AnalyzedRequest, completed []types.FeatureType) (feature types.DetectedFeature, index int, ok bool) {
	done := make(map[types.FeatureType]bool, len(completed))
	for _, ft := range completed {
		done[ft] = true
	}

	for i := max(req.CurrentFeatureIndex, 0); i < len(req.Features); i++ {
		f := req.Features[i]
		if f.RequiresWizard && !done[f.Type] {
			return f, i, true
		}
	}

	return types.DetectedFeature{}, -1, false
}

// NonWizardFeatures returns the features that are built without a wizard,
// in build order.
func NonWizardFeatures(req types.AnalyzedRequest) []types.DetectedFeature {
	out := make([]types.DetectedFeature, 0, len(req.Features))
	for _, f := range req.Features {
		if !f.RequiresWizard {
			out = append(out, f)
		}
	}
	return out
}

// WizardFeatures returns the features that need a wizard, in build order.
func WizardFeatures(req types.AnalyzedRequest) []types.DetectedFeature {
	out := make([]types.DetectedFeature, 0, len(req.Features))
	for _, f := range req.Features {
		if f.RequiresWizard {
			out = append(out, f)
		}
	}
	return out
}
