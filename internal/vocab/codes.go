// Package vocab holds the static medical-vocabulary tables used by the
// classifiers: coded-terminology identifiers for the target analytes,
// conditions, and procedures, the drug dictionary, and the free-text keyword
// lists used when coded matching fails.
//
// All tables are built once at process start and never mutated afterwards, so
// concurrent readers need no synchronization.
package vocab

import "github.com/clinical-prefill-engine/internal/domain"

// Code system URIs as they appear in source-platform clinical records.
const (
	SystemLOINC  = "http://loinc.org"
	SystemSNOMED = "http://snomed.info/sct"
	SystemCPT    = "http://www.ama-assn.org/go/cpt"
	SystemRxNorm = "http://www.nlm.nih.gov/research/umls/rxnorm"
)

// LabAnalyte identifies one of the three target lab analytes.
type LabAnalyte string

const (
	AnalytePSA        LabAnalyte = "psa"
	AnalyteHbA1c      LabAnalyte = "hba1c"
	AnalyteUrinalysis LabAnalyte = "urinalysis"
)

// LabCodes maps each target analyte to its single authoritative LOINC code.
var LabCodes = map[LabAnalyte]domain.Coding{
	AnalytePSA:        {System: SystemLOINC, Code: "2857-1", Display: "Prostate specific Ag [Mass/volume] in Serum or Plasma"},
	AnalyteHbA1c:      {System: SystemLOINC, Code: "4548-4", Display: "Hemoglobin A1c/Hemoglobin.total in Blood"},
	AnalyteUrinalysis: {System: SystemLOINC, Code: "24357-6", Display: "Urinalysis complete panel - Urine"},
}

// LabKeywords holds the case-insensitive substrings tried when no coded
// match is found for an analyte.
var LabKeywords = map[LabAnalyte][]string{
	AnalytePSA:        {"psa", "prostate specific antigen", "prostate-specific antigen"},
	AnalyteHbA1c:      {"hba1c", "a1c", "hemoglobin a1c", "glycated hemoglobin", "glycohemoglobin"},
	AnalyteUrinalysis: {"urinalysis", "urine analysis", "ua w/ micro", "ua with micro"},
}

// ConditionCodes maps SNOMED CT concept codes to the target categories.
var ConditionCodes = map[string]domain.ConditionCategory{
	"266569009": domain.CategoryBPH,            // benign prostatic hyperplasia
	"44054006":  domain.CategoryMetabolic,      // type 2 diabetes mellitus
	"714628002": domain.CategoryMetabolic,      // prediabetes
	"59621000":  domain.CategoryCardiovascular, // essential hypertension
}

// ConditionCodePrefix matches ICD-10 codes by prefix; this table is distinct
// from the single-code SNOMED table and is only consulted in the text pass.
type ConditionCodePrefix struct {
	Prefix   string
	Category domain.ConditionCategory
}

// ConditionCodePrefixes lists the ICD-10 prefixes accepted for each category.
var ConditionCodePrefixes = []ConditionCodePrefix{
	{Prefix: "N40", Category: domain.CategoryBPH},
	{Prefix: "E11", Category: domain.CategoryMetabolic},
	{Prefix: "I10", Category: domain.CategoryCardiovascular},
}

// ConditionKeywords holds the case-insensitive substrings tried per category
// when no coded match was found.
var ConditionKeywords = map[domain.ConditionCategory][]string{
	domain.CategoryBPH: {
		"benign prostatic", "bph", "enlarged prostate", "prostate enlargement",
		"prostatic hyperplasia", "prostatic hypertrophy", "lower urinary tract symptoms", "luts",
	},
	domain.CategoryMetabolic: {
		"type 2 diabetes", "diabetes mellitus", "prediabetes", "diabetes",
	},
	domain.CategoryCardiovascular: {
		"hypertension", "high blood pressure",
	},
}

// ProcedureCodes is the set of CPT codes identifying BPH surgical procedures.
var ProcedureCodes = map[string]string{
	"52601": "Transurethral resection of prostate",
	"52648": "Laser vaporization of prostate",
	"52649": "Laser enucleation of prostate",
	"52441": "Prostatic urethral lift",
	"53854": "Water vapor thermal therapy of prostate",
	"55821": "Simple prostatectomy",
}

// ProcedureKeywords holds the case-insensitive substrings identifying a BPH
// procedure from its display text.
var ProcedureKeywords = []string{
	"turp", "transurethral resection", "prostatectomy", "urolift",
	"prostatic urethral lift", "rezum", "greenlight", "photoselective vaporization",
	"holep", "laser enucleation", "aquablation", "prostate",
}
