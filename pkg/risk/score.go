package risk

import (
	"github.com/carewise/riskserve/pkg/corpus"
)

// PatientSet is a patient's resolved symptom ID set. Duplicate IDs collapse,
// so scoring is invariant to ordering and repetition in the source list.
type PatientSet map[string]struct{}

// NewPatientSet builds a PatientSet from a raw ID list.
func NewPatientSet(ids []string) PatientSet {
	set := make(PatientSet, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}
	return set
}

// Has reports whether the set contains the given symptom ID.
func (p PatientSet) Has(id string) bool {
	_, ok := p[id]
	return ok
}

// Score computes the normalized match score for one disease:
//
//	R = Σ w(symptoms in both sets) / Σ w(all disease symptoms)
//
// The result is in [0,1]: 0 when nothing overlaps, 1 when the patient covers
// the disease's full symptom set. The denominator is non-zero because a
// validated corpus never contains a symptomless disease.
func Score(d corpus.Disease, weights map[string]float64, patient PatientSet) float64 {
	var matched, total float64
	for _, s := range d.Symptoms {
		w := weights[s.ID]
		total += w
		if patient.Has(s.ID) {
			matched += w
		}
	}
	if total == 0 {
		return 0
	}
	return matched / total
}
