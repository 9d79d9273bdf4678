// Package fhir converts raw clinical-record payloads into the four canonical
// resource shapes. The source platform surfaces records in two schema
// generations (DSTU2 and R4); both converge here so that classifiers never
// see which generation produced their input.
//
// Parsing never errors on partial data: a missing optional field yields an
// absent value in the canonical shape, and a record without a recognizable
// resource kind is dropped.
package fhir

import (
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/clinical-prefill-engine/internal/domain"
)

// Parser normalizes raw structured payloads into canonical resources.
type Parser struct {
	logger *logrus.Logger
}

// NewParser creates a resource parser.
func NewParser(logger *logrus.Logger) *Parser {
	return &Parser{logger: logger}
}

// ParseAll parses a payload that may be a single resource or a bundle,
// returning every recognized canonical resource. Bundle entries with an
// unrecognized contained resource are silently dropped.
func (p *Parser) ParseAll(payload map[string]any) []domain.Resource {
	if payload == nil {
		return nil
	}

	if getString(payload, "resourceType") == "Bundle" {
		var resources []domain.Resource
		for _, entry := range getSlice(payload, "entry") {
			entryMap, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			resource, ok := getMap(entryMap, "resource")
			if !ok {
				continue
			}
			if r, ok := p.Parse(resource); ok {
				resources = append(resources, r)
			}
		}
		return resources
	}

	if r, ok := p.Parse(payload); ok {
		return []domain.Resource{r}
	}
	return nil
}

// Parse dispatches on the resource-kind discriminant and returns the
// canonical shape, or false when the kind is missing or unrecognized.
func (p *Parser) Parse(payload map[string]any) (domain.Resource, bool) {
	if payload == nil {
		return nil, false
	}

	switch kind := getString(payload, "resourceType"); kind {
	case "MedicationRequest", "MedicationOrder", "MedicationStatement":
		return p.parseMedication(payload), true
	case "Observation":
		return p.parseObservation(payload), true
	case "Condition":
		return p.parseCondition(payload), true
	case "Procedure":
		return p.parseProcedure(payload), true
	default:
		p.logger.WithField("resource_type", kind).Debug("Dropping unrecognized resource kind")
		return nil, false
	}
}

// parseMedication covers the three medication-request spellings used across
// schema generations: MedicationRequest (R4), MedicationOrder (DSTU2), and
// MedicationStatement (both).
func (p *Parser) parseMedication(payload map[string]any) domain.Medication {
	name, code := parseCodeable(payload, "medicationCodeableConcept")
	if name == "" && code == nil {
		// MedicationStatement in some exports nests the concept under "medication".
		name, code = parseCodeable(payload, "medication")
	}

	return domain.Medication{
		Name:   name,
		Code:   code,
		Status: getString(payload, "status"),
		AuthoredOn: resolveDate(payload,
			dateField("authoredOn"),
			dateField("dateWritten"),
			dateField("effectiveDateTime"),
			periodStart("effectivePeriod"),
			dateField("dateAsserted"),
		),
	}
}

func (p *Parser) parseObservation(payload map[string]any) domain.Observation {
	name, code := parseCodeable(payload, "code")

	obs := domain.Observation{
		Name:   name,
		Code:   code,
		Status: getString(payload, "status"),
		EffectiveDate: resolveDate(payload,
			dateField("effectiveDateTime"),
			periodStart("effectivePeriod"),
			dateField("issued"),
		),
	}

	if quantity, ok := getMap(payload, "valueQuantity"); ok {
		if v, ok := toFloat(quantity["value"]); ok {
			obs.Value = &v
		}
		obs.Unit = getString(quantity, "unit")
		if obs.Unit == "" {
			obs.Unit = getString(quantity, "code")
		}
	} else if raw := getString(payload, "valueString"); raw != "" {
		if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			obs.Value = &v
		} else {
			obs.ValueText = raw
		}
	}

	if ranges := getSlice(payload, "referenceRange"); len(ranges) > 0 {
		if first, ok := ranges[0].(map[string]any); ok {
			obs.ReferenceRange = getString(first, "text")
		}
	}

	return obs
}

func (p *Parser) parseCondition(payload map[string]any) domain.Condition {
	name, code := parseCodeable(payload, "code")

	return domain.Condition{
		Name:           name,
		Code:           code,
		ClinicalStatus: parseClinicalStatus(payload),
		OnsetDate: resolveDate(payload,
			dateField("onsetDateTime"),
			periodStart("onsetPeriod"),
			dateField("recordedDate"),
			dateField("dateRecorded"),
		),
	}
}

func (p *Parser) parseProcedure(payload map[string]any) domain.Procedure {
	name, code := parseCodeable(payload, "code")

	return domain.Procedure{
		Name:   name,
		Code:   code,
		Status: getString(payload, "status"),
		PerformedDate: resolveDate(payload,
			dateField("performedDateTime"),
			periodStart("performedPeriod"),
			dateField("recordedDate"),
		),
	}
}

// parseClinicalStatus tolerates both generations: R4 encodes the status as a
// CodeableConcept, DSTU2 as a bare string.
func parseClinicalStatus(payload map[string]any) string {
	if s := getString(payload, "clinicalStatus"); s != "" {
		return s
	}
	if concept, ok := getMap(payload, "clinicalStatus"); ok {
		for _, coding := range getSlice(concept, "coding") {
			if c, ok := coding.(map[string]any); ok {
				if code := getString(c, "code"); code != "" {
					return code
				}
			}
		}
		return getString(concept, "text")
	}
	return ""
}
