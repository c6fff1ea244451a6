// Package risk is the core, scoring every candidate disease against a
// patient's symptom set and ranking the results deterministically.
package risk

import (
	"math"

	"github.com/carewise/riskserve/pkg/corpus"
)

// Inverse disease frequency constants. Laplace smoothing keeps the ratio
// finite for symptoms present in every disease; the bias keeps every weight
// strictly positive.
const (
	smoothingAlpha = 1.0
	smoothingBeta  = 1.0
	positiveBias   = 1.0
)

// ComputeWeights derives the per-symptom weight table for a corpus:
//
//	w_j = ln((N + α) / (n_j + β)) + γ
//
// where N is the disease count and n_j the number of diseases containing
// symptom j. Rare symptoms carry strictly higher weight than common ones.
func ComputeWeights(c *corpus.Corpus) (map[string]float64, error) {
	n := c.DiseaseCount()
	if n == 0 {
		return nil, corpus.ErrEmptyCorpus
	}

	weights := make(map[string]float64, c.SymptomCount())
	for _, id := range c.SymptomIDs() {
		nj := c.DiseaseFrequency(id)
		weights[id] = math.Log((float64(n)+smoothingAlpha)/(float64(nj)+smoothingBeta)) + positiveBias
	}
	return weights, nil
}
