package types

// IntentType is a request category recognised by the intent detector.
type IntentType string

// Intent categories, in default catalog order.
const (
	IntentAuthentication IntentType = "authentication"
	IntentDashboard      IntentType = "dashboard"
	IntentForms          IntentType = "forms"
	IntentAdmin          IntentType = "admin"
	IntentNotifications  IntentType = "notifications"
	IntentDatabase       IntentType = "database"
	IntentAPI            IntentType = "api"
	IntentUI             IntentType = "ui"

	// IntentSimple is returned when no category matched at all.
	IntentSimple IntentType = "simple"
)

// DetectedIntent is the outcome of classifying a free-text request.
type DetectedIntent struct {
	Type               IntentType `json:"type"`
	Confidence         float64    `json:"confidence"`
	Keywords           []string   `json:"keywords"`
	ShouldAskQuestions bool       `json:"should_ask_questions"`
	QuestionTemplates  []string   `json:"question_templates"`
}
