// Package intent classifies free-text build requests into intent categories
// using a keyword and regex catalog.
package intent

import (
	"regexp"
	"strings"

	"github.com/wakti/wakti-nlp/internal/types"
)

// Pattern is one intent category of a catalog.
type Pattern struct {
	Type     types.IntentType
	Keywords []string
	Patterns []*regexp.Regexp
	// MinConfidenceForQuestions is the confidence at which the clarifying-question
	// wizard is offered when this category wins.
	MinConfidenceForQuestions float64
	QuestionTemplates         []string
}

// Catalog is an ordered, read-only list of intent patterns.
// Catalog order breaks ties between equally scored categories.
type Catalog struct {
	patterns []Pattern
}

// NewCatalog builds a catalog from patterns. Keywords are lower-cased and
// de-duplicated; the slices are copied so later changes to the input have no effect.
func NewCatalog(patterns []Pattern) Catalog {
	copied := make([]Pattern, 0, len(patterns))
	for _, p := range patterns {
		copied = append(copied, Pattern{
			Type:                      p.Type,
			Keywords:                  normalizeKeywords(p.Keywords),
			Patterns:                  append([]*regexp.Regexp(nil), p.Patterns...),
			MinConfidenceForQuestions: p.MinConfidenceForQuestions,
			QuestionTemplates:         append([]string(nil), p.QuestionTemplates...),
		})
	}
	return Catalog{patterns: copied}
}

// Len returns the number of categories.
func (c Catalog) Len() int {
	return len(c.patterns)
}

// Patterns returns a copy of the catalog entries in order.
func (c Catalog) Patterns() []Pattern {
	return append([]Pattern(nil), c.patterns...)
}

// Lookup returns the entry for t.
func (c Catalog) Lookup(t types.IntentType) (Pattern, bool) {
	for _, p := range c.patterns {
		if p.Type == t {
			return p, true
		}
	}
	return Pattern{}, false
}

func normalizeKeywords(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}

func mustCompileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(`(?i)`+e))
	}
	return out
}

var defaultCatalog = NewCatalog([]Pattern{
	{
		Type: types.IntentAuthentication,
		Keywords: []string{
			"auth", "authentication", "login", "log in", "sign in", "signin", "sign up", "signup",
			"register", "password", "logout", "oauth", "session",
		},
		Patterns: mustCompileAll(
			`\b(add|create|build|implement|set ?up)\b.*\b(auth\w*|login|log ?in|sign ?in|sign ?up|registration)\b`,
			`\buser\s+(auth\w*|accounts?|login|registration)\b`,
			`\b(protected|private)\s+(routes?|pages?)\b`,
		),
		MinConfidenceForQuestions: 0.6,
		QuestionTemplates:         []string{"auth-providers", "auth-user-fields", "auth-redirects"},
	},
	{
		Type:     types.IntentDashboard,
		Keywords: []string{"dashboard", "analytics", "chart", "graph", "metrics", "stats", "statistics", "kpi", "report"},
		Patterns: mustCompileAll(
			`\b(dashboard|analytics)\s+(page|view|screen)\b`,
			`\b(show|display|visuali[sz]e)\b.*\b(charts?|graphs?|metrics|stats)\b`,
		),
		MinConfidenceForQuestions: 0.5,
		QuestionTemplates:         []string{"dashboard-metrics", "dashboard-layout"},
	},
	{
		Type:     types.IntentForms,
		Keywords: []string{"form", "input", "field", "submit", "validation", "checkbox", "dropdown", "survey", "questionnaire"},
		Patterns: mustCompileAll(
			`\b(contact|login|signup|sign-up|registration|feedback|booking)\s+forms?\b`,
			`\bform\s+(validation|fields?|submission)\b`,
		),
		MinConfidenceForQuestions: 0.5,
		QuestionTemplates:         []string{"form-fields", "form-submission"},
	},
	{
		Type: types.IntentAdmin,
		Keywords: []string{
			"admin", "administrator", "manage users", "user management", "roles", "permissions",
			"moderation", "back office", "cms",
		},
		Patterns: mustCompileAll(
			`\badmin\s+(panel|dashboard|page|area|portal)\b`,
			`\b(manage|moderate)\s+(users|content|orders|posts)\b`,
		),
		MinConfidenceForQuestions: 0.5,
		QuestionTemplates:         []string{"admin-entities", "admin-permissions"},
	},
	{
		Type:     types.IntentNotifications,
		Keywords: []string{"notification", "notify", "alert", "reminder", "push", "email", "sms", "toast"},
		Patterns: mustCompileAll(
			`\b(send|push|email|sms)\s+(notifications?|alerts?|reminders?)\b`,
			`\bnotif(y|ications?)\s+(users?|me|customers?)\b`,
		),
		MinConfidenceForQuestions: 0.5,
		QuestionTemplates:         []string{"notification-channels", "notification-triggers"},
	},
	{
		Type: types.IntentDatabase,
		Keywords: []string{
			"database", "table", "schema", "sql", "supabase", "postgres", "store data", "save data",
			"persist", "migration",
		},
		Patterns: mustCompileAll(
			`\b(create|add)\s+(a\s+)?(new\s+)?(database\s+)?tables?\b`,
			`\b(store|save|persist)\s+\w+\s+(in|to)\s+(the\s+)?(database|db)\b`,
		),
		MinConfidenceForQuestions: 0.6,
	},
	{
		Type:     types.IntentAPI,
		Keywords: []string{"api", "endpoint", "rest", "graphql", "webhook", "integration", "fetch", "http"},
		Patterns: mustCompileAll(
			`\b(rest|graphql)\s+api\b`,
			`\b(call|fetch from|integrate with|connect to)\s+(an?\s+)?(external\s+)?(api|service)\b`,
			`\bwebhooks?\b`,
		),
		MinConfidenceForQuestions: 0.6,
	},
	{
		Type: types.IntentUI,
		Keywords: []string{
			"button", "style", "styling", "layout", "theme", "font", "color", "colour", "css",
			"design", "responsive", "animation", "dark mode", "navbar", "header", "footer",
		},
		Patterns: mustCompileAll(
			`\b(redesign|restyle)\b`,
			`\b(responsive|mobile[- ]friendly)\s+(design|layout)\b`,
			`\b(dark|light)\s+mode\b`,
		),
		MinConfidenceForQuestions: 0.2,
	},
})

// DefaultCatalog returns the built-in intent catalog.
func DefaultCatalog() Catalog {
	return defaultCatalog
}
