package risk

import (
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/carewise/riskserve/pkg/corpus"
)

// Snapshot pairs a corpus with its derived weight table. Both are immutable;
// a reload produces a fresh snapshot rather than touching a live one.
type Snapshot struct {
	Corpus  *corpus.Corpus
	Weights map[string]float64
}

// Engine serves risk assessments against an atomically swappable snapshot.
// Queries in flight during a Reload keep the snapshot they started with and
// never observe a partially updated weight table.
type Engine struct {
	snap atomic.Pointer[Snapshot]
}

// NewEngine builds an engine over the given corpus. Weight computation
// failures are fatal here: an engine without an active snapshot never serves.
func NewEngine(c *corpus.Corpus) (*Engine, error) {
	weights, err := ComputeWeights(c)
	if err != nil {
		return nil, err
	}

	e := &Engine{}
	e.snap.Store(&Snapshot{Corpus: c, Weights: weights})
	return e, nil
}

// Snapshot returns the engine's current corpus+weights pair.
func (e *Engine) Snapshot() *Snapshot {
	return e.snap.Load()
}

// Reload swaps in a new corpus. The weight table is recomputed before the
// swap; on failure the previous snapshot stays active.
func (e *Engine) Reload(c *corpus.Corpus) error {
	weights, err := ComputeWeights(c)
	if err != nil {
		return err
	}

	e.snap.Store(&Snapshot{Corpus: c, Weights: weights})
	log.Debugf("Corpus reloaded: %d diseases, %d symptoms", c.DiseaseCount(), c.SymptomCount())
	return nil
}

// Assess ranks all diseases in the snapshot against the given patient symptom
// IDs. Unknown IDs and an empty set are not errors: they simply contribute no
// signal, so the ranked list may come back empty.
func (s *Snapshot) Assess(symptomIDs []string, topN int) []RiskResult {
	patient := NewPatientSet(symptomIDs)
	unknown := 0
	for id := range patient {
		if !s.Corpus.HasSymptom(id) {
			unknown++
		}
	}
	if unknown > 0 {
		log.Debugf("Patient set contains %d symptom IDs unknown to the corpus", unknown)
	}

	return Rank(s.Corpus, s.Weights, patient, topN)
}

// Assess ranks against the current snapshot. Callers that also resolve
// disease or symptom records afterwards (question generation, name lookups)
// must take Snapshot() once and drive every stage from it, or a concurrent
// reload can split the query across two corpora.
func (e *Engine) Assess(symptomIDs []string, topN int) []RiskResult {
	return e.snap.Load().Assess(symptomIDs, topN)
}

// Stats returns basic counters about the active snapshot.
func (e *Engine) Stats() map[string]int {
	snap := e.snap.Load()
	return map[string]int{
		"diseases": snap.Corpus.DiseaseCount(),
		"symptoms": snap.Corpus.SymptomCount(),
		"weights":  len(snap.Weights),
	}
}
