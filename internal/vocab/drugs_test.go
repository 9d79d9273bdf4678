package vocab

import (
	"testing"

	"github.com/clinical-prefill-engine/internal/domain"
)

func TestLookupDrug(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		generic string
		class   domain.DrugClass
		found   bool
	}{
		{"generic lowercase", "tamsulosin", "tamsulosin", domain.ClassAlphaBlocker, true},
		{"generic uppercase", "TAMSULOSIN", "tamsulosin", domain.ClassAlphaBlocker, true},
		{"brand name", "Flomax", "tamsulosin", domain.ClassAlphaBlocker, true},
		{"brand lowercase", "flomax", "tamsulosin", domain.ClassAlphaBlocker, true},
		{"padded", "  finasteride  ", "finasteride", domain.ClassFiveARI, true},
		{"combination product", "Jalyn", "dutasteride-tamsulosin", domain.ClassOtherBPHDrug, true},
		{"beta-3 agonist", "mirabegron", "mirabegron", domain.ClassBeta3Agonist, true},
		{"unrelated drug", "lisinopril", "", "", false},
		{"embedded name is not exact", "tamsulosin 0.4 mg", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, ok := LookupDrug(tt.query)
			if ok != tt.found {
				t.Fatalf("LookupDrug(%q) found=%t, expected %t", tt.query, ok, tt.found)
			}
			if !tt.found {
				return
			}
			if entry.Generic != tt.generic {
				t.Errorf("Expected generic %q, got %q", tt.generic, entry.Generic)
			}
			if entry.Class != tt.class {
				t.Errorf("Expected class %s, got %s", tt.class, entry.Class)
			}
		})
	}
}

func TestMatchDrugInText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		generic string
		found   bool
	}{
		{"dosage string", "tamsulosin 0.4 mg oral capsule", "tamsulosin", true},
		{"brand in text", "FLOMAX 0.4MG CAPSULE", "tamsulosin", true},
		{"qualified brand", "oxybutynin chloride ER 10 mg", "oxybutynin", true},
		{"no dictionary drug", "atorvastatin 20 mg tablet", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, ok := MatchDrugInText(tt.text)
			if ok != tt.found {
				t.Fatalf("MatchDrugInText(%q) found=%t, expected %t", tt.text, ok, tt.found)
			}
			if tt.found && entry.Generic != tt.generic {
				t.Errorf("Expected generic %q, got %q", tt.generic, entry.Generic)
			}
		})
	}
}

func TestMatchDrugInTextLongestNameWins(t *testing.T) {
	// "dutasteride-tamsulosin" contains "tamsulosin"; the combination entry
	// must win over its substring.
	entry, ok := MatchDrugInText("dutasteride-tamsulosin 0.5-0.4 mg capsule")
	if !ok {
		t.Fatal("Expected combination product to match")
	}
	if entry.Generic != "dutasteride-tamsulosin" {
		t.Errorf("Expected dutasteride-tamsulosin, got %s", entry.Generic)
	}
	if entry.Class != domain.ClassOtherBPHDrug {
		t.Errorf("Expected other_bph_drug class, got %s", entry.Class)
	}
}

func TestDrugDictionaryClassesValid(t *testing.T) {
	for _, e := range drugEntries {
		if !e.Class.IsValid() {
			t.Errorf("Entry %s carries invalid class %s", e.Generic, e.Class)
		}
		if e.Class == domain.ClassUnrelated {
			t.Errorf("Entry %s must not be in the dictionary as unrelated", e.Generic)
		}
	}
}
