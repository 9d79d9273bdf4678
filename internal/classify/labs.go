package classify

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/clinical-prefill-engine/internal/domain"
	"github.com/clinical-prefill-engine/internal/fhir"
	"github.com/clinical-prefill-engine/internal/vocab"
)

// LabExtractor pulls the three target analyte values out of raw lab records.
// Each analyte follows the two-pass policy: the single authoritative LOINC
// code first, keyword fallback second. A coded or text match whose record
// carries no usable numeric value is treated as no match — scanning
// continues rather than producing an entry with confidence but no value.
type LabExtractor struct {
	logger *logrus.Logger
	parser *fhir.Parser
}

// NewLabExtractor creates a lab extractor.
func NewLabExtractor(logger *logrus.Logger) *LabExtractor {
	return &LabExtractor{
		logger: logger,
		parser: fhir.NewParser(logger),
	}
}

// ExtractPSA returns the PSA entry, or the empty entry when no record matches.
func (e *LabExtractor) ExtractPSA(inputs []domain.RecordInput) domain.PrefillEntry[domain.LabValue] {
	return e.extract(vocab.AnalytePSA, inputs)
}

// ExtractHbA1c returns the HbA1c entry, or the empty entry when no record matches.
func (e *LabExtractor) ExtractHbA1c(inputs []domain.RecordInput) domain.PrefillEntry[domain.LabValue] {
	return e.extract(vocab.AnalyteHbA1c, inputs)
}

// ExtractUrinalysis returns the urinalysis entry, or the empty entry when no
// record matches.
func (e *LabExtractor) ExtractUrinalysis(inputs []domain.RecordInput) domain.PrefillEntry[domain.LabValue] {
	return e.extract(vocab.AnalyteUrinalysis, inputs)
}

type labCandidate struct {
	observation domain.Observation
	displayName string
}

func (e *LabExtractor) extract(analyte vocab.LabAnalyte, inputs []domain.RecordInput) domain.PrefillEntry[domain.LabValue] {
	candidates := e.parseCandidates(inputs)

	entry, ok := firstMatch(
		func() (domain.PrefillEntry[domain.LabValue], bool) { return e.matchByCode(analyte, candidates) },
		func() (domain.PrefillEntry[domain.LabValue], bool) { return e.matchByKeyword(analyte, candidates) },
	)
	if !ok {
		e.logger.WithField("analyte", string(analyte)).Debug("No usable lab record for analyte")
		return domain.EmptyEntry[domain.LabValue]()
	}
	return entry
}

func (e *LabExtractor) parseCandidates(inputs []domain.RecordInput) []labCandidate {
	candidates := make([]labCandidate, 0, len(inputs))
	for _, input := range inputs {
		if input.Resource == nil {
			continue
		}
		r, ok := e.parser.Parse(input.Resource)
		if !ok {
			continue
		}
		obs, ok := r.(domain.Observation)
		if !ok {
			continue
		}
		// Retracted results are never usable.
		if obs.Status == "entered-in-error" || obs.Status == "cancelled" {
			continue
		}

		display := input.DisplayName
		if display == "" {
			display = obs.Name
		}
		candidates = append(candidates, labCandidate{observation: obs, displayName: display})
	}
	return candidates
}

// matchByCode scans for the analyte's authoritative code; first match with a
// usable value wins.
func (e *LabExtractor) matchByCode(analyte vocab.LabAnalyte, candidates []labCandidate) (domain.PrefillEntry[domain.LabValue], bool) {
	target := vocab.LabCodes[analyte]
	for _, c := range candidates {
		obs := c.observation
		if obs.Code == nil || obs.Code.Code != target.Code {
			continue
		}
		if !obs.HasUsableValue() {
			continue
		}
		return domain.NewEntry(labValue(obs), domain.ConfidenceHigh, domain.PrefillSource{
			Type:        domain.SourceClinicalRecord,
			DisplayName: c.displayName,
			MatchMethod: domain.MatchByCode,
			MatchedCode: target.Token(),
		}), true
	}
	return domain.PrefillEntry[domain.LabValue]{}, false
}

// matchByKeyword scans display names for the analyte's keyword list.
func (e *LabExtractor) matchByKeyword(analyte vocab.LabAnalyte, candidates []labCandidate) (domain.PrefillEntry[domain.LabValue], bool) {
	for _, c := range candidates {
		if !matchesAnyKeyword(c.displayName, vocab.LabKeywords[analyte]) {
			continue
		}
		if !c.observation.HasUsableValue() {
			continue
		}
		return domain.NewEntry(labValue(c.observation), domain.ConfidenceMedium, domain.PrefillSource{
			Type:        domain.SourceClinicalRecord,
			DisplayName: c.displayName,
			MatchMethod: domain.MatchByText,
		}), true
	}
	return domain.PrefillEntry[domain.LabValue]{}, false
}

func matchesAnyKeyword(text string, keywords []string) bool {
	lowered := strings.ToLower(text)
	for _, keyword := range keywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

func labValue(obs domain.Observation) domain.LabValue {
	return domain.LabValue{
		Value:          *obs.Value,
		Unit:           obs.Unit,
		Date:           obs.EffectiveDate,
		ReferenceRange: obs.ReferenceRange,
	}
}
