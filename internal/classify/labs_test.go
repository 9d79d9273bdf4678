package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinical-prefill-engine/internal/domain"
)

func labObservation(display, loincCode string, value any, unit, date, status string) domain.RecordInput {
	resource := map[string]any{
		"resourceType":      "Observation",
		"status":            status,
		"effectiveDateTime": date,
		"code": map[string]any{
			"text": display,
		},
	}
	if loincCode != "" {
		resource["code"].(map[string]any)["coding"] = []any{
			map[string]any{"system": "http://loinc.org", "code": loincCode, "display": display},
		}
	}
	if value != nil {
		resource["valueQuantity"] = map[string]any{"value": value, "unit": unit}
	}
	return domain.RecordInput{DisplayName: display, Resource: resource}
}

func TestExtractPSACodedMatch(t *testing.T) {
	extractor := NewLabExtractor(quietLogger())

	entry := extractor.ExtractPSA([]domain.RecordInput{
		labObservation("Prostate specific Ag", "2857-1", 4.2, "ng/mL", "2025-01-15", "final"),
	})

	require.True(t, entry.IsKnown())
	assert.Equal(t, domain.ConfidenceHigh, entry.Confidence)
	assert.Equal(t, 4.2, entry.Value.Value)
	assert.Equal(t, "ng/mL", entry.Value.Unit)
	assert.Equal(t, "2025-01-15", entry.Value.Date)
	require.Len(t, entry.Sources, 1)
	assert.Equal(t, domain.MatchByCode, entry.Sources[0].MatchMethod)
	assert.Equal(t, "http://loinc.org|2857-1", entry.Sources[0].MatchedCode)
}

func TestExtractHbA1cKeywordFallback(t *testing.T) {
	extractor := NewLabExtractor(quietLogger())

	entry := extractor.ExtractHbA1c([]domain.RecordInput{
		labObservation("Hemoglobin A1c", "", 6.8, "%", "2024-12-10", "final"),
	})

	require.True(t, entry.IsKnown())
	assert.Equal(t, domain.ConfidenceMedium, entry.Confidence)
	assert.Equal(t, 6.8, entry.Value.Value)
	require.Len(t, entry.Sources, 1)
	assert.Equal(t, domain.MatchByText, entry.Sources[0].MatchMethod)
	assert.Empty(t, entry.Sources[0].MatchedCode)
}

func TestExtractCodedMatchWithoutValueFallsThrough(t *testing.T) {
	extractor := NewLabExtractor(quietLogger())

	// The coded record has no value; the keyword record does. The match
	// without a usable value is treated as no match at all.
	entry := extractor.ExtractPSA([]domain.RecordInput{
		labObservation("Prostate specific Ag", "2857-1", nil, "", "2025-02-01", "final"),
		labObservation("PSA total", "", 3.1, "ng/mL", "2024-06-20", "final"),
	})

	require.True(t, entry.IsKnown())
	assert.Equal(t, domain.ConfidenceMedium, entry.Confidence)
	assert.Equal(t, 3.1, entry.Value.Value)
}

func TestExtractSkipsRetractedResults(t *testing.T) {
	extractor := NewLabExtractor(quietLogger())

	tests := []struct {
		name   string
		status string
	}{
		{"entered in error", "entered-in-error"},
		{"cancelled", "cancelled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := extractor.ExtractPSA([]domain.RecordInput{
				labObservation("Prostate specific Ag", "2857-1", 9.9, "ng/mL", "2025-01-15", tt.status),
			})
			assert.False(t, entry.IsKnown())
			assert.Equal(t, domain.ConfidenceNone, entry.Confidence)
		})
	}
}

func TestExtractNoMatchReturnsEmptyEntry(t *testing.T) {
	extractor := NewLabExtractor(quietLogger())

	entry := extractor.ExtractUrinalysis([]domain.RecordInput{
		labObservation("Serum creatinine", "2160-0", 1.1, "mg/dL", "2025-03-01", "final"),
		{DisplayName: "display only, no payload"},
	})

	assert.False(t, entry.IsKnown())
	assert.Nil(t, entry.Value)
	assert.Empty(t, entry.Sources)
	require.NoError(t, entry.Validate())
}

func TestExtractUrinalysisByKeyword(t *testing.T) {
	extractor := NewLabExtractor(quietLogger())

	entry := extractor.ExtractUrinalysis([]domain.RecordInput{
		labObservation("UA with micro", "", 1.015, "", "2025-04-11", "final"),
	})

	require.True(t, entry.IsKnown())
	assert.Equal(t, domain.ConfidenceMedium, entry.Confidence)
	assert.Equal(t, "2025-04-11", entry.Value.Date)
}
