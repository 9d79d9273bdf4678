// Package prefill orchestrates the classifiers into the confidence-annotated
// medical-history aggregate consumed by the conversational onboarding flow.
package prefill

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/clinical-prefill-engine/internal/classify"
	"github.com/clinical-prefill-engine/internal/domain"
)

// Builder merges classifier outputs and externally supplied demographics into
// one MedicalHistoryPrefill. Building is a pure function of its two inputs;
// an absent clinical-records input yields an aggregate where every group is
// the empty entry, never an error.
type Builder struct {
	logger *logrus.Logger
	now    func() time.Time

	medications *classify.MedicationClassifier
	conditions  *classify.ConditionMapper
	procedures  *classify.ProcedureMapper
	labs        *classify.LabExtractor
}

// NewBuilder creates a prefill builder.
func NewBuilder(logger *logrus.Logger) *Builder {
	return &Builder{
		logger:      logger,
		now:         time.Now,
		medications: classify.NewMedicationClassifier(logger),
		conditions:  classify.NewConditionMapper(logger),
		procedures:  classify.NewProcedureMapper(logger),
		labs:        classify.NewLabExtractor(logger),
	}
}

// WithClock overrides the time source used for age derivation and the
// generated-at stamp. Tests inject a fixed clock to keep builds
// byte-identical.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build produces the aggregate for one onboarding session. Both inputs may
// be nil.
func (b *Builder) Build(records *domain.ClinicalRecordsInput, demo *domain.Demographics) *domain.MedicalHistoryPrefill {
	sessionID := uuid.NewString()
	log := b.logger.WithField("session_id", sessionID)
	log.WithFields(logrus.Fields{
		"has_records":      !records.IsEmpty(),
		"has_demographics": demo != nil,
	}).Info("Building medical-history prefill")

	p := &domain.MedicalHistoryPrefill{
		SessionID:            sessionID,
		GeneratedAt:          b.now().UTC().Format(time.RFC3339),
		Demographics:         b.buildDemographics(demo),
		ClinicalMeasurements: domain.EmptyEntry[string](),
		UpcomingSurgery:      domain.EmptyEntry[string](),
	}

	if records.IsEmpty() {
		p.Medications = emptyMedicationGroups()
		p.SurgicalHistory = domain.SurgicalHistoryPrefill{
			BPHProcedures:   domain.EmptyEntry[[]domain.MappedProcedure](),
			OtherProcedures: domain.EmptyEntry[[]domain.MappedProcedure](),
		}
		p.Labs = domain.LabPanelPrefill{
			PSA:        domain.EmptyEntry[domain.LabValue](),
			HbA1c:      domain.EmptyEntry[domain.LabValue](),
			Urinalysis: domain.EmptyEntry[domain.LabValue](),
		}
		p.Conditions = emptyConditionGroups()
		log.Info("No clinical records available, prefill limited to demographics")
		return p
	}

	classified := b.medications.Classify(records.Medications)
	medGroups := classify.GroupByClass(classified)
	p.Medications = domain.MedicationGroups{
		AlphaBlockers:    listEntry(medGroups[domain.ClassAlphaBlocker], medicationSource),
		FiveARIs:         listEntry(medGroups[domain.ClassFiveARI], medicationSource),
		Anticholinergics: listEntry(medGroups[domain.ClassAnticholinergic], medicationSource),
		Beta3Agonists:    listEntry(medGroups[domain.ClassBeta3Agonist], medicationSource),
		OtherBPHDrugs:    listEntry(medGroups[domain.ClassOtherBPHDrug], medicationSource),
	}

	bphProcs, otherProcs := classify.GroupProcedures(b.procedures.Map(records.Procedures))
	p.SurgicalHistory = domain.SurgicalHistoryPrefill{
		BPHProcedures:   listEntry(bphProcs, procedureSource),
		OtherProcedures: listEntry(otherProcs, procedureSource),
	}

	p.Labs = domain.LabPanelPrefill{
		PSA:        b.labs.ExtractPSA(records.LabResults),
		HbA1c:      b.labs.ExtractHbA1c(records.LabResults),
		Urinalysis: b.labs.ExtractUrinalysis(records.LabResults),
	}

	condGroups := classify.GroupConditions(b.conditions.Map(records.Conditions))
	p.Conditions = domain.ConditionGroupsPrefill{
		Metabolic:      listEntry(condGroups[domain.CategoryMetabolic], conditionSource),
		Cardiovascular: listEntry(condGroups[domain.CategoryCardiovascular], conditionSource),
		BPH:            listEntry(condGroups[domain.CategoryBPH], conditionSource),
		Other:          listEntry(condGroups[domain.CategoryOther], conditionSource),
	}

	log.WithFields(logrus.Fields{
		"known_fields":   len(p.KnownFields()),
		"missing_fields": len(p.MissingFields()),
	}).Info("Medical-history prefill completed")

	return p
}

// buildDemographics marks each externally measured fact high confidence when
// present. Age falls back to derivation from date of birth. Full name,
// ethnicity, and race are never supplied by the health-data reader, so their
// entries start empty.
func (b *Builder) buildDemographics(demo *domain.Demographics) domain.DemographicsPrefill {
	d := domain.DemographicsPrefill{
		Age:           domain.EmptyEntry[int](),
		BiologicalSex: domain.EmptyEntry[string](),
		FullName:      domain.EmptyEntry[string](),
		Ethnicity:     domain.EmptyEntry[string](),
		Race:          domain.EmptyEntry[string](),
	}
	if demo == nil {
		return d
	}

	directAPI := domain.PrefillSource{
		Type:        domain.SourceDirectAPI,
		MatchMethod: domain.MatchDirectAPI,
	}

	switch {
	case demo.Age != nil:
		d.Age = domain.NewEntry(*demo.Age, domain.ConfidenceHigh, directAPI)
	case demo.DateOfBirth != "":
		if age, ok := deriveAge(demo.DateOfBirth, b.now()); ok {
			d.Age = domain.NewEntry(age, domain.ConfidenceHigh, directAPI)
		}
	}

	if demo.BiologicalSex != "" {
		d.BiologicalSex = domain.NewEntry(demo.BiologicalSex, domain.ConfidenceHigh, directAPI)
	}

	return d
}

// deriveAge computes whole years between the date of birth and now.
func deriveAge(dateOfBirth string, now time.Time) (int, bool) {
	dob, err := time.Parse("2006-01-02", dateOfBirth)
	if err != nil {
		if dob, err = time.Parse(time.RFC3339, dateOfBirth); err != nil {
			return 0, false
		}
	}

	age := now.Year() - dob.Year()
	if now.YearDay() < dob.YearDay() {
		age--
	}
	if age < 0 {
		return 0, false
	}
	return age, true
}

// listEntry applies the per-group confidence policy: empty list → none, any
// code-matched member → high, only text-matched members → medium.
func listEntry[T any](items []T, sourceOf func(T) domain.PrefillSource) domain.PrefillEntry[[]T] {
	if len(items) == 0 {
		return domain.EmptyEntry[[]T]()
	}

	confidence := domain.ConfidenceMedium
	sources := make([]domain.PrefillSource, 0, len(items))
	for _, item := range items {
		source := sourceOf(item)
		sources = append(sources, source)
		if source.MatchMethod == domain.MatchByCode {
			confidence = domain.ConfidenceHigh
		}
	}

	return domain.NewEntry(items, confidence, sources...)
}

func medicationSource(m domain.ClassifiedMedication) domain.PrefillSource { return m.Source }
func conditionSource(c domain.MappedCondition) domain.PrefillSource       { return c.Source }
func procedureSource(p domain.MappedProcedure) domain.PrefillSource       { return p.Source }

func emptyMedicationGroups() domain.MedicationGroups {
	return domain.MedicationGroups{
		AlphaBlockers:    domain.EmptyEntry[[]domain.ClassifiedMedication](),
		FiveARIs:         domain.EmptyEntry[[]domain.ClassifiedMedication](),
		Anticholinergics: domain.EmptyEntry[[]domain.ClassifiedMedication](),
		Beta3Agonists:    domain.EmptyEntry[[]domain.ClassifiedMedication](),
		OtherBPHDrugs:    domain.EmptyEntry[[]domain.ClassifiedMedication](),
	}
}

func emptyConditionGroups() domain.ConditionGroupsPrefill {
	return domain.ConditionGroupsPrefill{
		Metabolic:      domain.EmptyEntry[[]domain.MappedCondition](),
		Cardiovascular: domain.EmptyEntry[[]domain.MappedCondition](),
		BPH:            domain.EmptyEntry[[]domain.MappedCondition](),
		Other:          domain.EmptyEntry[[]domain.MappedCondition](),
	}
}
