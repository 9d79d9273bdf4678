package classify

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/clinical-prefill-engine/internal/domain"
	"github.com/clinical-prefill-engine/internal/fhir"
	"github.com/clinical-prefill-engine/internal/vocab"
)

// targetConditionCategories is the fixed pass order for condition matching.
var targetConditionCategories = []domain.ConditionCategory{
	domain.CategoryBPH,
	domain.CategoryMetabolic,
	domain.CategoryCardiovascular,
}

// ConditionMapper maps raw condition records to the target categories using
// the two-pass policy: SNOMED single-code match first, then keyword and
// ICD-10 prefix matching for categories the coded pass left unsatisfied.
type ConditionMapper struct {
	logger *logrus.Logger
	parser *fhir.Parser
}

// NewConditionMapper creates a condition mapper.
func NewConditionMapper(logger *logrus.Logger) *ConditionMapper {
	return &ConditionMapper{
		logger: logger,
		parser: fhir.NewParser(logger),
	}
}

type parsedCondition struct {
	condition domain.Condition
	name      string
}

// Map classifies each input. One input may satisfy more than one category
// when its text legitimately matches several keyword sets; inputs matching
// no target category are kept in the "other" bucket.
func (m *ConditionMapper) Map(inputs []domain.RecordInput) []domain.MappedCondition {
	parsed := m.parseInputs(inputs)

	var mapped []domain.MappedCondition
	satisfied := make(map[domain.ConditionCategory]bool)
	consumed := make(map[int]bool)

	// Pass 1: authoritative coded match.
	for i, pc := range parsed {
		code := pc.condition.Code
		if code == nil {
			continue
		}
		category, ok := vocab.ConditionCodes[code.Code]
		if !ok {
			continue
		}
		mapped = append(mapped, domain.MappedCondition{
			Name:     pc.name,
			Category: category,
			Source: domain.PrefillSource{
				Type:        domain.SourceClinicalRecord,
				DisplayName: pc.name,
				MatchMethod: domain.MatchByCode,
				MatchedCode: code.Token(),
			},
		})
		satisfied[category] = true
		consumed[i] = true
	}

	// Pass 2: keyword and ICD-10 prefix fallback, per unsatisfied category.
	// One record may legitimately match several keyword sets, so a match here
	// keeps the record in play for later categories and only excludes it from
	// the final "other" sweep.
	textMatched := make(map[int]bool)
	for _, category := range targetConditionCategories {
		if satisfied[category] {
			continue
		}
		for i, pc := range parsed {
			if consumed[i] {
				continue
			}
			if !m.textMatches(pc, category) {
				continue
			}
			mapped = append(mapped, domain.MappedCondition{
				Name:     pc.name,
				Category: category,
				Source: domain.PrefillSource{
					Type:        domain.SourceClinicalRecord,
					DisplayName: pc.name,
					MatchMethod: domain.MatchByText,
				},
			})
			textMatched[i] = true
		}
	}

	// Everything left over is retained as "other".
	for i, pc := range parsed {
		if consumed[i] || textMatched[i] || pc.name == "" {
			continue
		}
		mapped = append(mapped, domain.MappedCondition{
			Name:     pc.name,
			Category: domain.CategoryOther,
			Source: domain.PrefillSource{
				Type:        domain.SourceClinicalRecord,
				DisplayName: pc.name,
				MatchMethod: domain.MatchByText,
			},
		})
	}

	m.logger.WithFields(logrus.Fields{
		"input_count":  len(inputs),
		"mapped_count": len(mapped),
	}).Debug("Condition mapping completed")

	return mapped
}

func (m *ConditionMapper) parseInputs(inputs []domain.RecordInput) []parsedCondition {
	parsed := make([]parsedCondition, 0, len(inputs))
	for _, input := range inputs {
		pc := parsedCondition{name: input.DisplayName}
		if input.Resource != nil {
			if r, ok := m.parser.Parse(input.Resource); ok {
				if cond, ok := r.(domain.Condition); ok {
					pc.condition = cond
					if pc.name == "" {
						pc.name = cond.Name
					}
				}
			}
		}
		parsed = append(parsed, pc)
	}
	return parsed
}

// textMatches tests the display name against the category's keyword list and
// the record's code against the ICD-10 prefix table.
func (m *ConditionMapper) textMatches(pc parsedCondition, category domain.ConditionCategory) bool {
	lowered := strings.ToLower(pc.name)
	for _, keyword := range vocab.ConditionKeywords[category] {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}

	if code := pc.condition.Code; code != nil {
		for _, prefix := range vocab.ConditionCodePrefixes {
			if prefix.Category == category && strings.HasPrefix(code.Code, prefix.Prefix) {
				return true
			}
		}
	}

	return false
}

// GroupConditions partitions mapped conditions into the four fixed buckets.
func GroupConditions(conditions []domain.MappedCondition) map[domain.ConditionCategory][]domain.MappedCondition {
	groups := make(map[domain.ConditionCategory][]domain.MappedCondition)
	for _, c := range conditions {
		groups[c.Category] = append(groups[c.Category], c)
	}
	return groups
}
