package risk

import (
	"sort"
	"sync"

	"github.com/carewise/riskserve/pkg/corpus"
)

// DefaultTopN bounds the ranked output when the caller passes no limit.
const DefaultTopN = 10

// parallelThreshold is the corpus size above which per-disease scoring fans
// out across workers. Small corpora are cheaper to score on one goroutine.
const parallelThreshold = 256

// Confidence labels derived from the raw score, presentation-only.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// RiskResult is one ranked disease candidate. Matched is ordered by ascending
// symptom ID; Missing is ordered by descending weight (ties by ascending ID).
type RiskResult struct {
	DiseaseID   string
	DiseaseName string
	Score       float64
	Confidence  string
	Matched     []string
	Missing     []string
}

// ConfidenceLabel maps a score onto a coarse presentation label.
func ConfidenceLabel(score float64) string {
	switch {
	case score >= 0.8:
		return ConfidenceHigh
	case score >= 0.6:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Rank scores every disease in the corpus against the patient set and returns
// the ranked top-N results. Diseases with zero score carry no diagnostic
// signal and are excluded. Ordering is descending by score with ties broken
// by ascending disease ID, so equal inputs always produce identical output.
func Rank(c *corpus.Corpus, weights map[string]float64, patient PatientSet, topN int) []RiskResult {
	if topN <= 0 {
		topN = DefaultTopN
	}

	diseases := c.Diseases()
	scores := make([]float64, len(diseases))

	if len(diseases) >= parallelThreshold {
		scoreParallel(diseases, weights, patient, scores)
	} else {
		for i, d := range diseases {
			scores[i] = Score(d, weights, patient)
		}
	}

	results := make([]RiskResult, 0, topN)
	for i, d := range diseases {
		if scores[i] <= 0 {
			continue
		}
		results = append(results, RiskResult{
			DiseaseID:   d.ID,
			DiseaseName: d.Name,
			Score:       scores[i],
			Confidence:  ConfidenceLabel(scores[i]),
			Matched:     matchedSymptoms(d, patient),
			Missing:     MissingSymptoms(d, weights, patient),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DiseaseID < results[j].DiseaseID
	})

	if len(results) > topN {
		results = results[:topN]
	}
	return results
}

// scoreParallel fans scoring out across workers. Each worker owns a disjoint
// index range of the output slice, so the merge is stable by construction.
func scoreParallel(diseases []corpus.Disease, weights map[string]float64, patient PatientSet, scores []float64) {
	workers := 4
	chunk := (len(diseases) + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		if lo >= len(diseases) {
			break
		}
		hi := lo + chunk
		if hi > len(diseases) {
			hi = len(diseases)
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				scores[i] = Score(diseases[i], weights, patient)
			}
		}(lo, hi)
	}
	wg.Wait()
}

// matchedSymptoms returns the intersection of the disease's symptom set and
// the patient set, ordered by ascending symptom ID.
func matchedSymptoms(d corpus.Disease, patient PatientSet) []string {
	var matched []string
	for _, s := range d.Symptoms {
		if patient.Has(s.ID) {
			matched = append(matched, s.ID)
		}
	}
	sort.Strings(matched)
	return matched
}
