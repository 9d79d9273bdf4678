package classify

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/clinical-prefill-engine/internal/domain"
	"github.com/clinical-prefill-engine/internal/fhir"
	"github.com/clinical-prefill-engine/internal/vocab"
)

// ProcedureMapper resolves raw procedure records against the BPH procedure
// vocabulary: CPT single-code match first, keyword fallback when no coded
// match satisfied the target category. Non-matching procedures are retained
// with the target flag unset.
type ProcedureMapper struct {
	logger *logrus.Logger
	parser *fhir.Parser
}

// NewProcedureMapper creates a procedure mapper.
func NewProcedureMapper(logger *logrus.Logger) *ProcedureMapper {
	return &ProcedureMapper{
		logger: logger,
		parser: fhir.NewParser(logger),
	}
}

type parsedProcedure struct {
	name string
	date string
	code *domain.Coding
}

// Map classifies each input as a BPH procedure or other.
func (m *ProcedureMapper) Map(inputs []domain.RecordInput) []domain.MappedProcedure {
	parsed := make([]parsedProcedure, 0, len(inputs))
	for _, input := range inputs {
		pp := parsedProcedure{name: input.DisplayName}
		if input.Resource != nil {
			if r, ok := m.parser.Parse(input.Resource); ok {
				if proc, ok := r.(domain.Procedure); ok {
					pp.date = proc.PerformedDate
					pp.code = proc.Code
					if pp.name == "" {
						pp.name = proc.Name
					}
				}
			}
		}
		parsed = append(parsed, pp)
	}

	var mapped []domain.MappedProcedure
	consumed := make(map[int]bool)
	targetSatisfied := false

	// Pass 1: CPT coded match.
	for i, pp := range parsed {
		if pp.code == nil {
			continue
		}
		if _, ok := vocab.ProcedureCodes[pp.code.Code]; !ok {
			continue
		}
		mapped = append(mapped, domain.MappedProcedure{
			Name:           pp.name,
			Date:           pp.date,
			IsBPHProcedure: true,
			Source: domain.PrefillSource{
				Type:        domain.SourceClinicalRecord,
				DisplayName: pp.name,
				MatchMethod: domain.MatchByCode,
				MatchedCode: pp.code.Token(),
			},
		})
		targetSatisfied = true
		consumed[i] = true
	}

	// Pass 2: keyword fallback, only when the coded pass found nothing.
	if !targetSatisfied {
		for i, pp := range parsed {
			if consumed[i] || !matchesProcedureKeyword(pp.name) {
				continue
			}
			mapped = append(mapped, domain.MappedProcedure{
				Name:           pp.name,
				Date:           pp.date,
				IsBPHProcedure: true,
				Source: domain.PrefillSource{
					Type:        domain.SourceClinicalRecord,
					DisplayName: pp.name,
					MatchMethod: domain.MatchByText,
				},
			})
			consumed[i] = true
		}
	}

	// Remaining procedures are kept as non-target history.
	for i, pp := range parsed {
		if consumed[i] || pp.name == "" {
			continue
		}
		mapped = append(mapped, domain.MappedProcedure{
			Name:           pp.name,
			Date:           pp.date,
			IsBPHProcedure: false,
			Source: domain.PrefillSource{
				Type:        domain.SourceClinicalRecord,
				DisplayName: pp.name,
				MatchMethod: domain.MatchByText,
			},
		})
	}

	m.logger.WithFields(logrus.Fields{
		"input_count":  len(inputs),
		"mapped_count": len(mapped),
	}).Debug("Procedure mapping completed")

	return mapped
}

func matchesProcedureKeyword(name string) bool {
	lowered := strings.ToLower(name)
	for _, keyword := range vocab.ProcedureKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

// GroupProcedures splits mapped procedures into BPH-related and other.
func GroupProcedures(procedures []domain.MappedProcedure) (bph, other []domain.MappedProcedure) {
	for _, p := range procedures {
		if p.IsBPHProcedure {
			bph = append(bph, p)
		} else {
			other = append(other, p)
		}
	}
	return bph, other
}
