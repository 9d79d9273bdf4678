package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldKey identifies one askable field of the onboarding conversation.
type FieldKey string

const (
	FieldFullName             FieldKey = "full_name"
	FieldEthnicity            FieldKey = "ethnicity"
	FieldRace                 FieldKey = "race"
	FieldClinicalMeasurements FieldKey = "clinical_measurements"
	FieldUpcomingSurgery      FieldKey = "upcoming_surgery"
	FieldAge                  FieldKey = "age"
	FieldBiologicalSex        FieldKey = "biological_sex"
	FieldMedications          FieldKey = "medications"
	FieldSurgicalHistory      FieldKey = "surgical_history"
	FieldPSA                  FieldKey = "psa"
	FieldHbA1c                FieldKey = "hba1c"
	FieldUrinalysis           FieldKey = "urinalysis"
	FieldConditions           FieldKey = "conditions"
)

// alwaysMissingFields are never derivable from structured records and are
// asked in every conversation regardless of prefill state.
var alwaysMissingFields = []FieldKey{
	FieldFullName,
	FieldEthnicity,
	FieldRace,
	FieldClinicalMeasurements,
	FieldUpcomingSurgery,
}

// DemographicsPrefill holds the demographic entries of the aggregate.
type DemographicsPrefill struct {
	Age           PrefillEntry[int]    `json:"age"`
	BiologicalSex PrefillEntry[string] `json:"biological_sex"`
	FullName      PrefillEntry[string] `json:"full_name"`
	Ethnicity     PrefillEntry[string] `json:"ethnicity"`
	Race          PrefillEntry[string] `json:"race"`
}

// MedicationGroups buckets classified medications by drug class.
type MedicationGroups struct {
	AlphaBlockers    PrefillEntry[[]ClassifiedMedication] `json:"alpha_blockers"`
	FiveARIs         PrefillEntry[[]ClassifiedMedication] `json:"five_alpha_reductase_inhibitors"`
	Anticholinergics PrefillEntry[[]ClassifiedMedication] `json:"anticholinergics"`
	Beta3Agonists    PrefillEntry[[]ClassifiedMedication] `json:"beta3_agonists"`
	OtherBPHDrugs    PrefillEntry[[]ClassifiedMedication] `json:"other_bph_drugs"`
}

// SurgicalHistoryPrefill splits procedures into BPH-related and other.
type SurgicalHistoryPrefill struct {
	BPHProcedures   PrefillEntry[[]MappedProcedure] `json:"bph_procedures"`
	OtherProcedures PrefillEntry[[]MappedProcedure] `json:"other_procedures"`
}

// LabPanelPrefill carries the three target analytes.
type LabPanelPrefill struct {
	PSA        PrefillEntry[LabValue] `json:"psa"`
	HbA1c      PrefillEntry[LabValue] `json:"hba1c"`
	Urinalysis PrefillEntry[LabValue] `json:"urinalysis"`
}

// ConditionGroupsPrefill buckets mapped conditions by category.
type ConditionGroupsPrefill struct {
	Metabolic      PrefillEntry[[]MappedCondition] `json:"metabolic"`
	Cardiovascular PrefillEntry[[]MappedCondition] `json:"cardiovascular"`
	BPH            PrefillEntry[[]MappedCondition] `json:"bph"`
	Other          PrefillEntry[[]MappedCondition] `json:"other"`
}

// MedicalHistoryPrefill is the aggregate root: everything the engine could
// derive for one onboarding session, with per-field provenance. It is built
// fresh per session, consumed once, and discarded.
//
// SessionID and GeneratedAt exist for log correlation only and are excluded
// from structural-equality comparisons.
type MedicalHistoryPrefill struct {
	SessionID   string `json:"session_id,omitempty"`
	GeneratedAt string `json:"generated_at,omitempty"`

	Demographics    DemographicsPrefill    `json:"demographics"`
	Medications     MedicationGroups       `json:"medications"`
	SurgicalHistory SurgicalHistoryPrefill `json:"surgical_history"`
	Labs            LabPanelPrefill        `json:"labs"`
	Conditions      ConditionGroupsPrefill `json:"conditions"`

	// Populated later by the conversation, never by this engine.
	ClinicalMeasurements PrefillEntry[string] `json:"clinical_measurements"`
	UpcomingSurgery      PrefillEntry[string] `json:"upcoming_surgery"`
}

// KnownField is one prefilled field with display-ready values, used by the
// prompt modifier to acknowledge what is already known.
type KnownField struct {
	Key    FieldKey
	Label  string
	Values []string
}

// MissingFields returns, in fixed order, the fields the conversation still
// needs to ask: the always-asked set first, then every derivable field whose
// entry or group confidence is none.
func (p *MedicalHistoryPrefill) MissingFields() []FieldKey {
	missing := make([]FieldKey, 0, len(alwaysMissingFields)+8)
	missing = append(missing, alwaysMissingFields...)

	if !p.Demographics.Age.IsKnown() {
		missing = append(missing, FieldAge)
	}
	if !p.Demographics.BiologicalSex.IsKnown() {
		missing = append(missing, FieldBiologicalSex)
	}
	if !p.anyMedicationGroupKnown() {
		missing = append(missing, FieldMedications)
	}
	if !p.SurgicalHistory.BPHProcedures.IsKnown() && !p.SurgicalHistory.OtherProcedures.IsKnown() {
		missing = append(missing, FieldSurgicalHistory)
	}
	if !p.Labs.PSA.IsKnown() {
		missing = append(missing, FieldPSA)
	}
	if !p.Labs.HbA1c.IsKnown() {
		missing = append(missing, FieldHbA1c)
	}
	if !p.Labs.Urinalysis.IsKnown() {
		missing = append(missing, FieldUrinalysis)
	}
	if !p.anyConditionGroupKnown() {
		missing = append(missing, FieldConditions)
	}

	return missing
}

// KnownFields returns, in fixed order, the fields with confidence above none
// together with display-ready values.
func (p *MedicalHistoryPrefill) KnownFields() []KnownField {
	known := make([]KnownField, 0, 8)

	if p.Demographics.Age.IsKnown() {
		known = append(known, KnownField{
			Key:    FieldAge,
			Label:  "Age",
			Values: []string{strconv.Itoa(*p.Demographics.Age.Value)},
		})
	}
	if p.Demographics.BiologicalSex.IsKnown() {
		known = append(known, KnownField{
			Key:    FieldBiologicalSex,
			Label:  "Biological sex",
			Values: []string{*p.Demographics.BiologicalSex.Value},
		})
	}
	if meds := p.medicationNames(); len(meds) > 0 {
		known = append(known, KnownField{Key: FieldMedications, Label: "Current medications", Values: meds})
	}
	if procs := p.procedureNames(); len(procs) > 0 {
		known = append(known, KnownField{Key: FieldSurgicalHistory, Label: "Prior procedures", Values: procs})
	}
	if p.Labs.PSA.IsKnown() {
		known = append(known, KnownField{Key: FieldPSA, Label: "PSA", Values: []string{formatLabValue(*p.Labs.PSA.Value)}})
	}
	if p.Labs.HbA1c.IsKnown() {
		known = append(known, KnownField{Key: FieldHbA1c, Label: "HbA1c", Values: []string{formatLabValue(*p.Labs.HbA1c.Value)}})
	}
	if p.Labs.Urinalysis.IsKnown() {
		known = append(known, KnownField{Key: FieldUrinalysis, Label: "Urinalysis", Values: []string{formatLabValue(*p.Labs.Urinalysis.Value)}})
	}
	if conds := p.conditionNames(); len(conds) > 0 {
		known = append(known, KnownField{Key: FieldConditions, Label: "Diagnosed conditions", Values: conds})
	}

	return known
}

// KnownFieldsSummary renders one human-readable line per known field.
func (p *MedicalHistoryPrefill) KnownFieldsSummary() []string {
	fields := p.KnownFields()
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		lines = append(lines, fmt.Sprintf("%s: %s", f.Label, strings.Join(f.Values, ", ")))
	}
	return lines
}

// IsFullyPrefilled reports whether every medication group and every condition
// group carries data. Note: several always-asked fields are unconditionally
// missing, so this predicate can never mean "no further questions are needed";
// it only describes record coverage.
func (p *MedicalHistoryPrefill) IsFullyPrefilled() bool {
	medGroups := []PrefillEntry[[]ClassifiedMedication]{
		p.Medications.AlphaBlockers,
		p.Medications.FiveARIs,
		p.Medications.Anticholinergics,
		p.Medications.Beta3Agonists,
		p.Medications.OtherBPHDrugs,
	}
	for _, g := range medGroups {
		if !g.IsKnown() {
			return false
		}
	}

	condGroups := []PrefillEntry[[]MappedCondition]{
		p.Conditions.Metabolic,
		p.Conditions.Cardiovascular,
		p.Conditions.BPH,
		p.Conditions.Other,
	}
	for _, g := range condGroups {
		if !g.IsKnown() {
			return false
		}
	}

	return true
}

func (p *MedicalHistoryPrefill) anyMedicationGroupKnown() bool {
	return p.Medications.AlphaBlockers.IsKnown() ||
		p.Medications.FiveARIs.IsKnown() ||
		p.Medications.Anticholinergics.IsKnown() ||
		p.Medications.Beta3Agonists.IsKnown() ||
		p.Medications.OtherBPHDrugs.IsKnown()
}

func (p *MedicalHistoryPrefill) anyConditionGroupKnown() bool {
	return p.Conditions.Metabolic.IsKnown() ||
		p.Conditions.Cardiovascular.IsKnown() ||
		p.Conditions.BPH.IsKnown() ||
		p.Conditions.Other.IsKnown()
}

func (p *MedicalHistoryPrefill) medicationNames() []string {
	names := make([]string, 0, 4)
	for _, g := range []PrefillEntry[[]ClassifiedMedication]{
		p.Medications.AlphaBlockers,
		p.Medications.FiveARIs,
		p.Medications.Anticholinergics,
		p.Medications.Beta3Agonists,
		p.Medications.OtherBPHDrugs,
	} {
		if g.Value == nil {
			continue
		}
		for _, m := range *g.Value {
			names = append(names, m.Name)
		}
	}
	return names
}

func (p *MedicalHistoryPrefill) procedureNames() []string {
	names := make([]string, 0, 2)
	for _, g := range []PrefillEntry[[]MappedProcedure]{
		p.SurgicalHistory.BPHProcedures,
		p.SurgicalHistory.OtherProcedures,
	} {
		if g.Value == nil {
			continue
		}
		for _, proc := range *g.Value {
			names = append(names, proc.Name)
		}
	}
	return names
}

func (p *MedicalHistoryPrefill) conditionNames() []string {
	names := make([]string, 0, 4)
	for _, g := range []PrefillEntry[[]MappedCondition]{
		p.Conditions.BPH,
		p.Conditions.Metabolic,
		p.Conditions.Cardiovascular,
		p.Conditions.Other,
	} {
		if g.Value == nil {
			continue
		}
		for _, c := range *g.Value {
			names = append(names, c.Name)
		}
	}
	return names
}

func formatLabValue(v LabValue) string {
	s := strconv.FormatFloat(v.Value, 'f', -1, 64)
	if v.Unit != "" {
		s += " " + v.Unit
	}
	if v.Date != "" {
		s += fmt.Sprintf(" (%s)", v.Date)
	}
	return s
}
