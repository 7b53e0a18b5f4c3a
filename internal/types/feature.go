package types

// FeatureType is a buildable website feature recognised by the feature analyzer.
type FeatureType string

// Feature categories, in build order.
const (
	FeatureLanding   FeatureType = "landing"
	FeatureBooking   FeatureType = "booking"
	FeatureProducts  FeatureType = "products"
	FeatureCart      FeatureType = "cart"
	FeatureCheckout  FeatureType = "checkout"
	FeatureAuth      FeatureType = "auth"
	FeatureAccount   FeatureType = "account"
	FeatureMedia     FeatureType = "media"
	FeatureContact   FeatureType = "contact"
	FeatureBilingual FeatureType = "bilingual"
)

// DefaultBusinessType is used when no business pattern matched.
const DefaultBusinessType = "business"

// DetectedFeature is one feature found in a build request.
type DetectedFeature struct {
	Type           FeatureType `json:"type"`
	Keywords       []string    `json:"keywords"`
	Priority       int         `json:"priority"` // lower builds first
	RequiresWizard bool        `json:"requires_wizard"`
	WizardType     string      `json:"wizard_type,omitempty"`
}

// AnalyzedRequest is a build request broken down into ordered features.
// CurrentFeatureIndex is a cursor into Features that the caller advances
// as wizard-requiring features are configured.
type AnalyzedRequest struct {
	OriginalPrompt      string            `json:"original_prompt"`
	BusinessType        string            `json:"business_type"`
	Features            []DetectedFeature `json:"features"`
	CurrentFeatureIndex int               `json:"current_feature_index"`
	HasWizardFeatures   bool              `json:"has_wizard_features"`
}

// HasFeature reports whether the request contains a feature of type ft.
func (r *AnalyzedRequest) HasFeature(ft FeatureType) bool {
	for _, f := range r.Features {
		if f.Type == ft {
			return true
		}
	}
	return false
}

// Feature returns the detected feature of type ft.
func (r *AnalyzedRequest) Feature(ft FeatureType) (DetectedFeature, bool) {
	for _, f := range r.Features {
		if f.Type == ft {
			return f, true
		}
	}
	return DetectedFeature{}, false
}
