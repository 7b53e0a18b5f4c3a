package features

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/wakti/wakti-nlp/internal/prompts"
	"github.com/wakti/wakti-nlp/internal/types"
)

// Configs holds the answers collected by each feature's wizard.
type Configs map[types.FeatureType]map[string]any

// Label returns the display name of a feature.
func Label(ft types.FeatureType) string {
	if label, err := prompts.Get(prompts.WizardFile, "label-"+string(ft)); err == nil {
		return label
	}
	return string(ft)
}

// StructuredPrompt renders the build brief for req: the original request,
// the features in build order and every supplied wizard configuration.
func StructuredPrompt(req types.AnalyzedRequest, configs Configs) string {
	var b strings.Builder

	b.WriteString(prompts.Format(prompts.Wizard("brief-header"), map[string]string{
		"BusinessType": req.BusinessType,
		"Prompt":       strings.TrimSpace(req.OriginalPrompt),
	}))
	b.WriteString("\n\n")

	if len(req.Features) == 0 {
		b.WriteString(prompts.Wizard("brief-empty"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(prompts.Wizard("brief-features-header"))
	b.WriteString("\n")
	for i, f := range req.Features {
		b.WriteString(prompts.Format(prompts.Wizard("brief-feature-line"), map[string]string{
			"Position": strconv.Itoa(i + 1),
			"Label":    Label(f.Type),
			"Priority": strconv.Itoa(f.Priority),
		}))
		b.WriteString("\n")
	}

	for _, f := range WizardFeatures(req) {
		b.WriteString("\n")
		data := map[string]string{"Label": Label(f.Type)}

		cfg := configs[f.Type]
		if len(cfg) == 0 {
			b.WriteString(prompts.Format(prompts.Wizard("brief-unconfigured"), data))
			b.WriteString("\n")
			continue
		}

		b.WriteString(prompts.Format(prompts.Wizard("brief-config-header"), data))
		b.WriteString("\n")

		keys := make([]string, 0, len(cfg))
		for k := range cfg {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			b.WriteString(prompts.Format(prompts.Wizard("brief-config-line"), map[string]string{
				"Key":   k,
				"Value": formatValue(cfg[k]),
			}))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(prompts.Wizard("brief-footer"))
	b.WriteString("\n")

	return b.String()
}

// Summary renders a bullet list of the detected features, marking the ones
// that still need setup.
func Summary(req types.AnalyzedRequest) string {
	data := map[string]string{"BusinessType": req.BusinessType}
	if len(req.Features) == 0 {
		return prompts.Format(prompts.Wizard("summary-empty"), data)
	}

	lines := make([]string, 0, len(req.Features)+1)
	lines = append(lines, prompts.Format(prompts.Wizard("summary-header"), data))

	marker := prompts.Wizard("summary-marker")
	for _, f := range req.Features {
		m := ""
		if f.RequiresWizard {
			m = marker
		}
		lines = append(lines, prompts.Format(prompts.Wizard("summary-line"), map[string]string{
			"Label":  Label(f.Type),
			"Marker": m,
		}))
	}

	return strings.Join(lines, "\n")
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "yes"
		}
		return "no"
	case []string:
		return strings.Join(val, ", ")
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, formatValue(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(val)
	}
}
