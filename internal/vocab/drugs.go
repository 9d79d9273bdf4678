package vocab

import (
	"sort"
	"strings"

	"github.com/clinical-prefill-engine/internal/domain"
)

// DrugEntry describes one target medication: its generic name, known brand
// names, and the drug class it belongs to.
type DrugEntry struct {
	Generic string
	Brands  []string
	Class   domain.DrugClass
}

// drugEntries is the authoritative list the dictionary is flattened from.
var drugEntries = []DrugEntry{
	// Alpha-blockers
	{Generic: "tamsulosin", Brands: []string{"Flomax"}, Class: domain.ClassAlphaBlocker},
	{Generic: "alfuzosin", Brands: []string{"Uroxatral"}, Class: domain.ClassAlphaBlocker},
	{Generic: "silodosin", Brands: []string{"Rapaflo"}, Class: domain.ClassAlphaBlocker},
	{Generic: "doxazosin", Brands: []string{"Cardura"}, Class: domain.ClassAlphaBlocker},
	{Generic: "terazosin", Brands: []string{"Hytrin"}, Class: domain.ClassAlphaBlocker},

	// 5-alpha-reductase inhibitors
	{Generic: "finasteride", Brands: []string{"Proscar", "Propecia"}, Class: domain.ClassFiveARI},
	{Generic: "dutasteride", Brands: []string{"Avodart"}, Class: domain.ClassFiveARI},

	// Anticholinergics
	{Generic: "oxybutynin", Brands: []string{"Ditropan", "Oxytrol"}, Class: domain.ClassAnticholinergic},
	{Generic: "tolterodine", Brands: []string{"Detrol"}, Class: domain.ClassAnticholinergic},
	{Generic: "solifenacin", Brands: []string{"Vesicare"}, Class: domain.ClassAnticholinergic},
	{Generic: "fesoterodine", Brands: []string{"Toviaz"}, Class: domain.ClassAnticholinergic},
	{Generic: "trospium", Brands: []string{"Sanctura"}, Class: domain.ClassAnticholinergic},
	{Generic: "darifenacin", Brands: []string{"Enablex"}, Class: domain.ClassAnticholinergic},

	// Beta-3 agonists
	{Generic: "mirabegron", Brands: []string{"Myrbetriq"}, Class: domain.ClassBeta3Agonist},
	{Generic: "vibegron", Brands: []string{"Gemtesa"}, Class: domain.ClassBeta3Agonist},

	// Other BPH-relevant drugs
	{Generic: "tadalafil", Brands: []string{"Cialis"}, Class: domain.ClassOtherBPHDrug},
	{Generic: "dutasteride-tamsulosin", Brands: []string{"Jalyn"}, Class: domain.ClassOtherBPHDrug},
	{Generic: "desmopressin", Brands: []string{"DDAVP", "Noctiva"}, Class: domain.ClassOtherBPHDrug},
}

// drugIndex maps every lowercased generic and brand name to its entry.
var drugIndex map[string]DrugEntry

// drugNames holds the dictionary keys ordered longest-first so that substring
// scans prefer the most specific name ("dutasteride-tamsulosin" before
// "tamsulosin") and stay deterministic.
var drugNames []string

func init() {
	drugIndex = make(map[string]DrugEntry, len(drugEntries)*2)
	for _, e := range drugEntries {
		drugIndex[strings.ToLower(e.Generic)] = e
		for _, b := range e.Brands {
			drugIndex[strings.ToLower(b)] = e
		}
	}

	drugNames = make([]string, 0, len(drugIndex))
	for name := range drugIndex {
		drugNames = append(drugNames, name)
	}
	sort.Slice(drugNames, func(i, j int) bool {
		if len(drugNames[i]) != len(drugNames[j]) {
			return len(drugNames[i]) > len(drugNames[j])
		}
		return drugNames[i] < drugNames[j]
	})
}

// LookupDrug returns the dictionary entry for an exact (case-insensitive)
// generic or brand name.
func LookupDrug(name string) (DrugEntry, bool) {
	e, ok := drugIndex[strings.ToLower(strings.TrimSpace(name))]
	return e, ok
}

// MatchDrugInText scans the display text for any dictionary name, matching
// records like "tamsulosin 0.4 mg oral capsule". Longer names win over their
// substrings.
func MatchDrugInText(text string) (DrugEntry, bool) {
	lowered := strings.ToLower(text)
	for _, name := range drugNames {
		if strings.Contains(lowered, name) {
			return drugIndex[name], true
		}
	}
	return DrugEntry{}, false
}
