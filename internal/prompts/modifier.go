// Package prompts renders the medical-history prefill into guidance text for
// the external conversational consumer. Rendering is pure formatting: a fixed
// template, a bullet list of known fields, and a bullet list of fields the
// conversation still needs to collect.
package prompts

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/clinical-prefill-engine/internal/domain"
)

// StudyMetadata identifies the study the onboarding conversation belongs to.
type StudyMetadata struct {
	StudyName string
	Condition string
}

// fieldDescriptions maps each askable field to the phrasing used in the
// "still to collect" list.
var fieldDescriptions = map[domain.FieldKey]string{
	domain.FieldFullName:             "the participant's full name",
	domain.FieldEthnicity:            "ethnicity",
	domain.FieldRace:                 "race",
	domain.FieldClinicalMeasurements: "recent clinical measurements (prostate volume, post-void residual)",
	domain.FieldUpcomingSurgery:      "any scheduled or upcoming surgery",
	domain.FieldAge:                  "age",
	domain.FieldBiologicalSex:        "biological sex",
	domain.FieldMedications:          "current medications",
	domain.FieldSurgicalHistory:      "prior surgical history",
	domain.FieldPSA:                  "most recent PSA result",
	domain.FieldHbA1c:                "most recent HbA1c result",
	domain.FieldUrinalysis:           "most recent urinalysis result",
	domain.FieldConditions:           "diagnosed medical conditions",
}

// Modifier turns a prefill aggregate into conversation-steering guidance.
type Modifier struct {
	logger *logrus.Logger
}

// NewModifier creates a prompt modifier.
func NewModifier(logger *logrus.Logger) *Modifier {
	return &Modifier{logger: logger}
}

// Render produces the guidance text handed verbatim to the chat consumer.
func (m *Modifier) Render(p *domain.MedicalHistoryPrefill, meta StudyMetadata) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are collecting medical-history intake for the %s study (%s).\n",
		meta.StudyName, meta.Condition)
	b.WriteString("Some answers were prefilled from the participant's structured health records. ")
	b.WriteString("Do not re-ask them; acknowledge them briefly and move on.\n\n")

	b.WriteString("Already known from health records:\n")
	known := p.KnownFields()
	if len(known) == 0 {
		b.WriteString("- Nothing could be prefilled from health records.\n")
	} else {
		for _, f := range known {
			fmt.Fprintf(&b, "- %s: %s\n", f.Label, summarizeValues(f.Values))
		}
	}

	b.WriteString("\nStill to collect:\n")
	for _, field := range p.MissingFields() {
		description, ok := fieldDescriptions[field]
		if !ok {
			description = string(field)
		}
		fmt.Fprintf(&b, "- %s\n", description)
	}

	guidance := b.String()
	m.logger.WithFields(logrus.Fields{
		"known_count":   len(known),
		"guidance_size": len(guidance),
	}).Debug("Rendered prefill guidance")

	return guidance
}

// summarizeValues keeps acknowledgements brief: lists of more than two items
// are truncated to the first two plus a count.
func summarizeValues(values []string) string {
	if len(values) <= 2 {
		return strings.Join(values, ", ")
	}
	return fmt.Sprintf("%s, %s, and %d more", values[0], values[1], len(values)-2)
}
