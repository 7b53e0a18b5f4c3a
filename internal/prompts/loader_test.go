package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get(WizardFile, "brief-header")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.BusinessType}}")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(WizardFile, "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestWizard_LabelsForEveryFeature(t *testing.T) {
	ClearCache()

	for _, feature := range []string{
		"landing", "booking", "products", "cart", "checkout",
		"auth", "account", "media", "contact", "bilingual",
	} {
		assert.NotPanics(t, func() {
			assert.NotEmpty(t, Wizard("label-"+feature))
		}, feature)
	}
}

func TestFormat(t *testing.T) {
	result := Format(Wizard("brief-feature-line"), map[string]string{
		"Position": "1",
		"Label":    "Booking system",
		"Priority": "2",
	})
	assert.Equal(t, "1. Booking system (priority 2)", result)
}

func TestFormat_EmptyData(t *testing.T) {
	template := "Hello {{.Name}}"

	result := Format(template, map[string]string{})
	assert.Equal(t, template, result) // Placeholder remains
}

func TestList_Sorted(t *testing.T) {
	ClearCache()

	keys, err := List(WizardFile)
	require.NoError(t, err)
	assert.Contains(t, keys, "summary-marker")
	assert.True(t, sortedStrings(keys))
}

func TestCaching(t *testing.T) {
	ClearCache()

	first, err := Get(WizardFile, "summary-marker")
	require.NoError(t, err)

	second, err := Get(WizardFile, "summary-marker")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, " "))
}

func sortedStrings(s []string) bool {
	for i := 1; i < len(s); i++ {
		if s[i-1] > s[i] {
			return false
		}
	}
	return true
}
