package fhir

import (
	"strconv"

	"github.com/clinical-prefill-engine/internal/domain"
)

// getString reads a string field, returning "" when absent or mistyped.
func getString(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// getMap reads a nested object field.
func getMap(m map[string]any, key string) (map[string]any, bool) {
	nested, ok := m[key].(map[string]any)
	return nested, ok
}

// getSlice reads an array field, returning nil when absent or mistyped.
func getSlice(m map[string]any, key string) []any {
	if s, ok := m[key].([]any); ok {
		return s
	}
	return nil
}

// toFloat accepts the numeric encodings JSON decoding can produce.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// parseCodeable reads a CodeableConcept field: the display name prefers the
// explicit human-readable text over the first coding's display, and the
// primary code is the first coding entry.
func parseCodeable(m map[string]any, key string) (string, *domain.Coding) {
	concept, ok := getMap(m, key)
	if !ok {
		return "", nil
	}

	name := getString(concept, "text")

	var code *domain.Coding
	for _, entry := range getSlice(concept, "coding") {
		c, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		code = &domain.Coding{
			System:  getString(c, "system"),
			Code:    getString(c, "code"),
			Display: getString(c, "display"),
		}
		break
	}

	if name == "" && code != nil {
		name = code.Display
	}

	return name, code
}

// dateSpec is one step in a declared date-resolution order.
type dateSpec struct {
	field  string
	period bool
}

func dateField(field string) dateSpec   { return dateSpec{field: field} }
func periodStart(field string) dateSpec { return dateSpec{field: field, period: true} }

// resolveDate walks the declared field order and returns the first date
// found. Period fields contribute their start.
func resolveDate(m map[string]any, specs ...dateSpec) string {
	for _, spec := range specs {
		if spec.period {
			if period, ok := getMap(m, spec.field); ok {
				if start := getString(period, "start"); start != "" {
					return start
				}
			}
			continue
		}
		if v := getString(m, spec.field); v != "" {
			return v
		}
	}
	return ""
}
