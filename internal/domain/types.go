// Package domain contains core business entities and types for clinical-record
// prefill: canonical resource shapes, confidence-annotated entries, and the
// medical-history aggregate consumed by the conversational onboarding flow.
//
// Confidence semantics follow a strict provenance policy: a value matched via a
// coded medical vocabulary (LOINC, SNOMED CT, CPT) or read directly from the
// device health API is high confidence; a value recovered from free-text
// keyword matching is medium; an absent value is none.
package domain

import "errors"

// Confidence represents how trustworthy a prefilled field is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceNone   Confidence = "none"
)

// MatchMethod records how a source record was matched to a field.
type MatchMethod string

const (
	MatchByCode    MatchMethod = "code"       // authoritative coded-vocabulary match
	MatchByText    MatchMethod = "text"       // free-text keyword/dictionary match
	MatchDirectAPI MatchMethod = "direct_api" // read directly from the device health API
)

// SourceType identifies the origin category of a prefill source.
type SourceType string

const (
	SourceClinicalRecord SourceType = "clinical_record"
	SourceDirectAPI      SourceType = "direct_api"
)

// DrugClass is the fixed taxonomy of BPH-relevant medication classes.
type DrugClass string

const (
	ClassAlphaBlocker    DrugClass = "alpha_blocker"
	ClassFiveARI         DrugClass = "five_alpha_reductase_inhibitor"
	ClassAnticholinergic DrugClass = "anticholinergic"
	ClassBeta3Agonist    DrugClass = "beta3_agonist"
	ClassOtherBPHDrug    DrugClass = "other_bph_drug"
	ClassUnrelated       DrugClass = "unrelated"
)

// ConditionCategory buckets mapped conditions for the medical-history summary.
type ConditionCategory string

const (
	CategoryMetabolic      ConditionCategory = "metabolic"
	CategoryCardiovascular ConditionCategory = "cardiovascular"
	CategoryBPH            ConditionCategory = "bph"
	CategoryOther          ConditionCategory = "other"
)

// Validation errors for prefill data integrity.
var (
	ErrInvalidConfidence  = errors.New("invalid confidence level")
	ErrInvalidMatchMethod = errors.New("invalid match method")
	ErrEntryInvariant     = errors.New("prefill entry violates confidence invariant")
)

// IsValid reports whether the confidence level is one of the four defined levels.
func (c Confidence) IsValid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow, ConfidenceNone:
		return true
	default:
		return false
	}
}

// String returns the string representation of the confidence level.
func (c Confidence) String() string {
	return string(c)
}

// AtLeast reports whether c is at or above the given level. Ordering is
// high > medium > low > none.
func (c Confidence) AtLeast(other Confidence) bool {
	return c.rank() >= other.rank()
}

func (c Confidence) rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// IsValid reports whether the match method is defined.
func (m MatchMethod) IsValid() bool {
	switch m {
	case MatchByCode, MatchByText, MatchDirectAPI:
		return true
	default:
		return false
	}
}

// Authoritative reports whether the match method is strong enough to carry
// high confidence on its own.
func (m MatchMethod) Authoritative() bool {
	return m == MatchByCode || m == MatchDirectAPI
}

// IsValid reports whether the drug class belongs to the fixed taxonomy.
func (d DrugClass) IsValid() bool {
	switch d {
	case ClassAlphaBlocker, ClassFiveARI, ClassAnticholinergic, ClassBeta3Agonist, ClassOtherBPHDrug, ClassUnrelated:
		return true
	default:
		return false
	}
}

// IsValid reports whether the condition category is defined.
func (c ConditionCategory) IsValid() bool {
	switch c {
	case CategoryMetabolic, CategoryCardiovascular, CategoryBPH, CategoryOther:
		return true
	default:
		return false
	}
}
