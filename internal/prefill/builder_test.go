package prefill

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinical-prefill-engine/internal/domain"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestBuilder() *Builder {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewBuilder(logger).WithClock(func() time.Time { return fixedNow })
}

// referenceRecords is the worked scenario: a 68-year-old on tamsulosin,
// finasteride, lisinopril, and metformin, with coded PSA and HbA1c results,
// coded BPH/diabetes/hypertension diagnoses, and a TURP in history.
func referenceRecords() *domain.ClinicalRecordsInput {
	return &domain.ClinicalRecordsInput{
		Medications: []domain.RecordInput{
			{
				DisplayName: "tamsulosin 0.4 mg oral capsule",
				Resource: map[string]any{
					"resourceType": "MedicationRequest",
					"status":       "active",
					"medicationCodeableConcept": map[string]any{
						"text": "tamsulosin 0.4 mg oral capsule",
						"coding": []any{
							map[string]any{"system": "http://www.nlm.nih.gov/research/umls/rxnorm", "code": "863671"},
						},
					},
				},
			},
			{DisplayName: "finasteride 5 mg oral tablet"},
			{DisplayName: "lisinopril 10 mg tablet"},
			{DisplayName: "metformin 500 mg tablet"},
		},
		LabResults: []domain.RecordInput{
			{
				DisplayName: "Prostate specific Ag",
				Resource: map[string]any{
					"resourceType":      "Observation",
					"status":            "final",
					"effectiveDateTime": "2025-01-15",
					"code": map[string]any{
						"coding": []any{
							map[string]any{"system": "http://loinc.org", "code": "2857-1", "display": "Prostate specific Ag"},
						},
					},
					"valueQuantity": map[string]any{"value": 4.2, "unit": "ng/mL"},
				},
			},
			{
				DisplayName: "Hemoglobin A1c",
				Resource: map[string]any{
					"resourceType":      "Observation",
					"status":            "final",
					"effectiveDateTime": "2024-12-10",
					"code": map[string]any{
						"coding": []any{
							map[string]any{"system": "http://loinc.org", "code": "4548-4", "display": "Hemoglobin A1c"},
						},
					},
					"valueQuantity": map[string]any{"value": 6.8, "unit": "%"},
				},
			},
		},
		Conditions: []domain.RecordInput{
			{
				DisplayName: "Benign prostatic hyperplasia",
				Resource: map[string]any{
					"resourceType": "Condition",
					"code": map[string]any{
						"text": "Benign prostatic hyperplasia",
						"coding": []any{
							map[string]any{"system": "http://snomed.info/sct", "code": "266569009"},
						},
					},
				},
			},
			{
				DisplayName: "Type 2 diabetes mellitus",
				Resource: map[string]any{
					"resourceType": "Condition",
					"code": map[string]any{
						"text": "Type 2 diabetes mellitus",
						"coding": []any{
							map[string]any{"system": "http://snomed.info/sct", "code": "44054006"},
						},
					},
				},
			},
			{DisplayName: "Hypertension"},
		},
		Procedures: []domain.RecordInput{
			{
				DisplayName: "Transurethral resection of prostate",
				Resource: map[string]any{
					"resourceType":      "Procedure",
					"performedDateTime": "2021-05-10",
					"code": map[string]any{
						"text": "Transurethral resection of prostate",
						"coding": []any{
							map[string]any{"system": "http://www.ama-assn.org/go/cpt", "code": "52601"},
						},
					},
				},
			},
			{DisplayName: "Appendectomy"},
		},
	}
}

func referenceDemographics() *domain.Demographics {
	age := 68
	return &domain.Demographics{Age: &age, BiologicalSex: "male"}
}

func TestBuildReferencePatient(t *testing.T) {
	builder := newTestBuilder()

	p := builder.Build(referenceRecords(), referenceDemographics())
	require.NotNil(t, p)
	assert.NotEmpty(t, p.SessionID)
	assert.Equal(t, "2025-06-01T12:00:00Z", p.GeneratedAt)

	// Demographics come straight from the device health API.
	require.True(t, p.Demographics.Age.IsKnown())
	assert.Equal(t, 68, *p.Demographics.Age.Value)
	assert.Equal(t, domain.ConfidenceHigh, p.Demographics.Age.Confidence)
	assert.Equal(t, domain.SourceDirectAPI, p.Demographics.Age.Sources[0].Type)
	require.True(t, p.Demographics.BiologicalSex.IsKnown())
	assert.Equal(t, "male", *p.Demographics.BiologicalSex.Value)
	assert.False(t, p.Demographics.FullName.IsKnown())
	assert.False(t, p.Demographics.Ethnicity.IsKnown())
	assert.False(t, p.Demographics.Race.IsKnown())

	// Medications: tamsulosin and finasteride recognized, lisinopril and
	// metformin dropped as off-dictionary.
	require.True(t, p.Medications.AlphaBlockers.IsKnown())
	require.Len(t, *p.Medications.AlphaBlockers.Value, 1)
	assert.Equal(t, "tamsulosin", (*p.Medications.AlphaBlockers.Value)[0].Name)
	assert.Equal(t, domain.ConfidenceMedium, p.Medications.AlphaBlockers.Confidence, "dictionary matching is name-based")
	require.True(t, p.Medications.FiveARIs.IsKnown())
	assert.Equal(t, "finasteride", (*p.Medications.FiveARIs.Value)[0].Name)
	assert.False(t, p.Medications.Anticholinergics.IsKnown())
	assert.False(t, p.Medications.Beta3Agonists.IsKnown())
	assert.False(t, p.Medications.OtherBPHDrugs.IsKnown())

	// Labs: both coded LOINC matches, urinalysis absent.
	require.True(t, p.Labs.PSA.IsKnown())
	assert.Equal(t, domain.ConfidenceHigh, p.Labs.PSA.Confidence)
	assert.Equal(t, 4.2, p.Labs.PSA.Value.Value)
	assert.Equal(t, "http://loinc.org|2857-1", p.Labs.PSA.Sources[0].MatchedCode)
	require.True(t, p.Labs.HbA1c.IsKnown())
	assert.Equal(t, 6.8, p.Labs.HbA1c.Value.Value)
	assert.False(t, p.Labs.Urinalysis.IsKnown())

	// Conditions: coded BPH and diabetes are high, text-matched hypertension
	// keeps its group at medium.
	assert.Equal(t, domain.ConfidenceHigh, p.Conditions.BPH.Confidence)
	assert.Equal(t, domain.ConfidenceHigh, p.Conditions.Metabolic.Confidence)
	assert.Equal(t, domain.ConfidenceMedium, p.Conditions.Cardiovascular.Confidence)
	assert.False(t, p.Conditions.Other.IsKnown())

	// Surgical history: coded TURP is high, appendectomy lands in other.
	require.True(t, p.SurgicalHistory.BPHProcedures.IsKnown())
	assert.Equal(t, domain.ConfidenceHigh, p.SurgicalHistory.BPHProcedures.Confidence)
	assert.Equal(t, "2021-05-10", (*p.SurgicalHistory.BPHProcedures.Value)[0].Date)
	require.True(t, p.SurgicalHistory.OtherProcedures.IsKnown())
	assert.Equal(t, "Appendectomy", (*p.SurgicalHistory.OtherProcedures.Value)[0].Name)

	// The always-asked fields stay missing regardless of record richness.
	missing := p.MissingFields()
	assert.Contains(t, missing, domain.FieldFullName)
	assert.Contains(t, missing, domain.FieldUpcomingSurgery)
	assert.Contains(t, missing, domain.FieldUrinalysis)
	assert.NotContains(t, missing, domain.FieldPSA)
	assert.NotContains(t, missing, domain.FieldMedications)
}

func TestBuildWithoutRecords(t *testing.T) {
	builder := newTestBuilder()

	for _, records := range []*domain.ClinicalRecordsInput{nil, {}} {
		p := builder.Build(records, nil)
		require.NotNil(t, p)

		assert.False(t, p.Demographics.Age.IsKnown())
		assert.False(t, p.Medications.AlphaBlockers.IsKnown())
		assert.False(t, p.Labs.PSA.IsKnown())
		assert.False(t, p.Conditions.BPH.IsKnown())
		assert.False(t, p.SurgicalHistory.BPHProcedures.IsKnown())
		assert.Empty(t, p.KnownFields())

		// Every conditional field joins the always-asked set.
		assert.Len(t, p.MissingFields(), 13)
	}
}

func TestBuildDerivesAgeFromDateOfBirth(t *testing.T) {
	builder := newTestBuilder()

	tests := []struct {
		name string
		dob  string
		age  int
	}{
		{"birthday passed this year", "1957-01-20", 68},
		{"birthday still ahead", "1957-11-05", 67},
		{"RFC3339 timestamp", "1957-01-20T00:00:00Z", 68},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := builder.Build(nil, &domain.Demographics{DateOfBirth: tt.dob})
			require.True(t, p.Demographics.Age.IsKnown())
			assert.Equal(t, tt.age, *p.Demographics.Age.Value)
			assert.Equal(t, domain.ConfidenceHigh, p.Demographics.Age.Confidence)
		})
	}

	t.Run("unparseable date of birth", func(t *testing.T) {
		p := builder.Build(nil, &domain.Demographics{DateOfBirth: "January 1957"})
		assert.False(t, p.Demographics.Age.IsKnown())
	})

	t.Run("explicit age wins over date of birth", func(t *testing.T) {
		age := 70
		p := builder.Build(nil, &domain.Demographics{Age: &age, DateOfBirth: "1957-01-20"})
		assert.Equal(t, 70, *p.Demographics.Age.Value)
	})
}

func TestBuildIdempotentUpToSession(t *testing.T) {
	builder := newTestBuilder()

	first := builder.Build(referenceRecords(), referenceDemographics())
	second := builder.Build(referenceRecords(), referenceDemographics())

	assert.NotEqual(t, first.SessionID, second.SessionID)

	// Session identity is the only thing allowed to differ between builds of
	// the same inputs.
	first.SessionID, second.SessionID = "", ""
	first.GeneratedAt, second.GeneratedAt = "", ""
	assert.Equal(t, first, second)
}

func TestBuildEntriesSatisfyInvariants(t *testing.T) {
	builder := newTestBuilder()
	p := builder.Build(referenceRecords(), referenceDemographics())

	require.NoError(t, p.Demographics.Age.Validate())
	require.NoError(t, p.Demographics.FullName.Validate())
	require.NoError(t, p.Medications.AlphaBlockers.Validate())
	require.NoError(t, p.Medications.Anticholinergics.Validate())
	require.NoError(t, p.Labs.PSA.Validate())
	require.NoError(t, p.Labs.Urinalysis.Validate())
	require.NoError(t, p.Conditions.Cardiovascular.Validate())
	require.NoError(t, p.SurgicalHistory.OtherProcedures.Validate())
}
