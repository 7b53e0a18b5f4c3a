package db

import "errors"

// Wizard session error sentinels.
var (
	ErrSessionNotFound     = errors.New("wizard session not found")
	ErrFeatureNotInSession = errors.New("feature is not part of this wizard session")
	ErrFeatureNoWizard     = errors.New("feature does not require a wizard")
)
