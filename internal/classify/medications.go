package classify

import (
	"github.com/sirupsen/logrus"

	"github.com/clinical-prefill-engine/internal/domain"
	"github.com/clinical-prefill-engine/internal/fhir"
	"github.com/clinical-prefill-engine/internal/vocab"
)

// MedicationClassifier resolves raw medication records against the drug
// dictionary. Classification is name-based: any coded concept on the record
// is retained for provenance but the dictionary is keyed by generic and
// brand names, so the match method is always text.
type MedicationClassifier struct {
	logger *logrus.Logger
	parser *fhir.Parser
}

// NewMedicationClassifier creates a medication classifier.
func NewMedicationClassifier(logger *logrus.Logger) *MedicationClassifier {
	return &MedicationClassifier{
		logger: logger,
		parser: fhir.NewParser(logger),
	}
}

// Classify resolves each input against the drug dictionary. Medications the
// dictionary does not know are omitted entirely, so grouped output only ever
// contains recognized target drugs.
func (c *MedicationClassifier) Classify(inputs []domain.RecordInput) []domain.ClassifiedMedication {
	var classified []domain.ClassifiedMedication

	for _, input := range inputs {
		name := input.DisplayName
		if input.Resource != nil {
			if r, ok := c.parser.Parse(input.Resource); ok {
				if med, ok := r.(domain.Medication); ok && med.Name != "" {
					name = med.Name
				}
			}
		}
		if name == "" {
			continue
		}

		entry, ok := firstMatch(
			func() (vocab.DrugEntry, bool) { return vocab.LookupDrug(name) },
			func() (vocab.DrugEntry, bool) { return vocab.MatchDrugInText(name) },
		)
		if !ok {
			c.logger.WithField("display_name", name).Debug("Medication not in target dictionary, omitting")
			continue
		}

		display := input.DisplayName
		if display == "" {
			display = name
		}

		classified = append(classified, domain.ClassifiedMedication{
			Name:  entry.Generic,
			Class: entry.Class,
			Source: domain.PrefillSource{
				Type:        domain.SourceClinicalRecord,
				DisplayName: display,
				MatchMethod: domain.MatchByText,
			},
		})
	}

	c.logger.WithFields(logrus.Fields{
		"input_count":      len(inputs),
		"classified_count": len(classified),
	}).Debug("Medication classification completed")

	return classified
}

// GroupByClass partitions classified medications into the five fixed
// drug-class buckets.
func GroupByClass(meds []domain.ClassifiedMedication) map[domain.DrugClass][]domain.ClassifiedMedication {
	groups := make(map[domain.DrugClass][]domain.ClassifiedMedication)
	for _, m := range meds {
		groups[m.Class] = append(groups[m.Class], m)
	}
	return groups
}
