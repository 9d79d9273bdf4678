package domain

import "fmt"

// ResourceKind discriminates the four canonical resource variants.
type ResourceKind string

const (
	KindMedication  ResourceKind = "medication"
	KindObservation ResourceKind = "observation"
	KindCondition   ResourceKind = "condition"
	KindProcedure   ResourceKind = "procedure"
)

// Coding is a single coded-vocabulary reference carried by a canonical resource.
type Coding struct {
	System  string `json:"system,omitempty"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
}

// Token formats the coding as "<system>|<code>", the shape recorded in
// PrefillSource.MatchedCode.
func (c Coding) Token() string {
	return fmt.Sprintf("%s|%s", c.System, c.Code)
}

// Resource is the tagged union produced by the resource parser. The two
// upstream schema generations converge on these four shapes, so classifiers
// never see which generation produced their input.
type Resource interface {
	Kind() ResourceKind
}

// Medication is the canonical shape for the three medication-request
// spellings used across schema generations.
type Medication struct {
	Name       string  `json:"name,omitempty"`
	Code       *Coding `json:"code,omitempty"`
	Status     string  `json:"status,omitempty"`
	AuthoredOn string  `json:"authored_on,omitempty"`
}

// Observation is the canonical shape for lab results and measurements.
// Value holds the numeric value when one was present or parseable; ValueText
// keeps the literal text of a string-coded value that did not parse.
type Observation struct {
	Name           string   `json:"name,omitempty"`
	Code           *Coding  `json:"code,omitempty"`
	Value          *float64 `json:"value,omitempty"`
	ValueText      string   `json:"value_text,omitempty"`
	Unit           string   `json:"unit,omitempty"`
	EffectiveDate  string   `json:"effective_date,omitempty"`
	Status         string   `json:"status,omitempty"`
	ReferenceRange string   `json:"reference_range,omitempty"`
}

// Condition is the canonical shape for diagnosis records.
type Condition struct {
	Name           string  `json:"name,omitempty"`
	Code           *Coding `json:"code,omitempty"`
	ClinicalStatus string  `json:"clinical_status,omitempty"`
	OnsetDate      string  `json:"onset_date,omitempty"`
}

// Procedure is the canonical shape for surgical/procedure records.
type Procedure struct {
	Name          string  `json:"name,omitempty"`
	Code          *Coding `json:"code,omitempty"`
	Status        string  `json:"status,omitempty"`
	PerformedDate string  `json:"performed_date,omitempty"`
}

func (Medication) Kind() ResourceKind  { return KindMedication }
func (Observation) Kind() ResourceKind { return KindObservation }
func (Condition) Kind() ResourceKind   { return KindCondition }
func (Procedure) Kind() ResourceKind   { return KindProcedure }

// HasUsableValue reports whether the observation carries a numeric value that
// a lab entry can be built from.
func (o Observation) HasUsableValue() bool {
	return o.Value != nil
}
