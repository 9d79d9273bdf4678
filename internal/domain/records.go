package domain

// RecordInput is one raw clinical record as handed over by the caller: the
// human-readable display name shown in the source platform plus, when
// available, the raw structured payload behind it. The payload is untrusted
// and may be partial; absence is fully supported.
type RecordInput struct {
	DisplayName string         `json:"display_name"`
	Resource    map[string]any `json:"resource,omitempty"`
}

// ClinicalRecordsInput maps the four fixed record categories to their raw
// inputs. The whole structure may be absent — the source platform's
// clinical-records feature can be unavailable and return nothing.
type ClinicalRecordsInput struct {
	Medications []RecordInput `json:"medications,omitempty"`
	LabResults  []RecordInput `json:"lab_results,omitempty"`
	Conditions  []RecordInput `json:"conditions,omitempty"`
	Procedures  []RecordInput `json:"procedures,omitempty"`
}

// IsEmpty reports whether no category carries any record.
func (c *ClinicalRecordsInput) IsEmpty() bool {
	if c == nil {
		return true
	}
	return len(c.Medications) == 0 && len(c.LabResults) == 0 &&
		len(c.Conditions) == 0 && len(c.Procedures) == 0
}

// Demographics holds the directly-measured facts supplied by the on-device
// health-data reader. The engine never queries that reader itself.
type Demographics struct {
	Age           *int   `json:"age,omitempty"`
	DateOfBirth   string `json:"date_of_birth,omitempty"`
	BiologicalSex string `json:"biological_sex,omitempty"`
}

// ClassifiedMedication is a medication recognized against the drug
// dictionary. Name carries the dictionary's generic name; the original
// record text is preserved on the source.
type ClassifiedMedication struct {
	Name   string        `json:"name"`
	Class  DrugClass     `json:"class"`
	Source PrefillSource `json:"source"`
}

// MappedCondition is a condition matched to one of the target categories.
type MappedCondition struct {
	Name     string            `json:"name"`
	Category ConditionCategory `json:"category"`
	Source   PrefillSource     `json:"source"`
}

// MappedProcedure is a procedure record with its BPH relevance resolved.
type MappedProcedure struct {
	Name           string        `json:"name"`
	Date           string        `json:"date,omitempty"`
	IsBPHProcedure bool          `json:"is_bph_procedure"`
	Source         PrefillSource `json:"source"`
}

// LabValue is the extracted value of one target analyte.
type LabValue struct {
	Value          float64 `json:"value"`
	Unit           string  `json:"unit,omitempty"`
	Date           string  `json:"date,omitempty"`
	ReferenceRange string  `json:"reference_range,omitempty"`
}
