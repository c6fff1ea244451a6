package risk

import (
	"sort"

	"github.com/carewise/riskserve/pkg/corpus"
)

// MissingSymptoms returns the disease symptoms absent from the patient set,
// ordered by descending weight so the highest-information gaps come first.
// Equal weights fall back to ascending symptom ID to keep the order total.
// The result is empty when the patient already covers the full symptom set.
func MissingSymptoms(d corpus.Disease, weights map[string]float64, patient PatientSet) []string {
	var missing []string
	for _, s := range d.Symptoms {
		if !patient.Has(s.ID) {
			missing = append(missing, s.ID)
		}
	}

	sort.Slice(missing, func(i, j int) bool {
		wi, wj := weights[missing[i]], weights[missing[j]]
		if wi != wj {
			return wi > wj
		}
		return missing[i] < missing[j]
	})
	return missing
}
