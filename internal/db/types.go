package db

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/wakti/wakti-nlp/internal/features"
	"github.com/wakti/wakti-nlp/internal/types"
)

// Session statuses.
const (
	StatusInProgress = "in_progress"
	StatusComplete   = "complete"
)

// WizardSession is an analyzed request being configured one wizard feature
// at a time. Request.CurrentFeatureIndex is the persisted cursor.
type WizardSession struct {
	ID                uuid.UUID             `json:"id"`
	UserID            uuid.UUID             `json:"user_id"`
	Request           types.AnalyzedRequest `json:"request"`
	CompletedFeatures []types.FeatureType   `json:"completed_features"`
	Configs           features.Configs      `json:"configs"`
	Status            string                `json:"status"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// NewWizardSession starts a session for req. The cursor is moved to the
// first wizard feature, and a request without any is complete immediately.
func NewWizardSession(userID uuid.UUID, req types.AnalyzedRequest) *WizardSession {
	s := &WizardSession{
		ID:                uuid.New(),
		UserID:            userID,
		Request:           req,
		CompletedFeatures: []types.FeatureType{},
		Configs:           features.Configs{},
		Status:            StatusInProgress,
	}
	s.Request.CurrentFeatureIndex = 0
	s.advance()
	return s
}

// NextFeature returns the wizard feature awaiting configuration.
func (s *WizardSession) NextFeature() (types.DetectedFeature, bool) {
	f, _, ok := features.NextWizardFeature(s.Request, s.CompletedFeatures)
	return f, ok
}

// ApplyConfig records config for feature and moves the cursor to the next
// unconfigured wizard feature. Reconfiguring a completed feature replaces
// its config without moving the cursor backwards.
func (s *WizardSession) ApplyConfig(feature types.FeatureType, config map[string]any) error {
	detected, ok := s.Request.Feature(feature)
	if !ok {
		return ErrFeatureNotInSession
	}
	if !detected.RequiresWizard {
		return ErrFeatureNoWizard
	}

	if config == nil {
		config = map[string]any{}
	}
	if s.Configs == nil {
		s.Configs = features.Configs{}
	}
	s.Configs[feature] = config

	if !slices.Contains(s.CompletedFeatures, feature) {
		s.CompletedFeatures = append(s.CompletedFeatures, feature)
	}
	s.advance()
	return nil
}

func (s *WizardSession) advance() {
	_, index, ok := features.NextWizardFeature(s.Request, s.CompletedFeatures)
	if ok {
		s.Request.CurrentFeatureIndex = index
		s.Status = StatusInProgress
		return
	}

	// The earliest unconfigured wizard feature may sit before the cursor.
	first := s.Request
	first.CurrentFeatureIndex = 0
	if _, index, ok := features.NextWizardFeature(first, s.CompletedFeatures); ok {
		s.Request.CurrentFeatureIndex = index
		s.Status = StatusInProgress
		return
	}

	s.Request.CurrentFeatureIndex = len(s.Request.Features)
	s.Status = StatusComplete
}
