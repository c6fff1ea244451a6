package risk

import (
	"fmt"
	"math"
	"testing"

	"github.com/carewise/riskserve/pkg/corpus"
)

// the two-disease corpus from the engine's reference scenario:
// D1 {fever, cough}, D2 {fever, rash}
func exampleCorpus(t *testing.T) (*corpus.Corpus, map[string]float64) {
	t.Helper()
	c, err := corpus.New([]corpus.Disease{
		{
			ID:   "D1",
			Name: "Disease One",
			Symptoms: []corpus.Symptom{
				{ID: "fever", Name: "fever"},
				{ID: "cough", Name: "cough"},
			},
		},
		{
			ID:   "D2",
			Name: "Disease Two",
			Symptoms: []corpus.Symptom{
				{ID: "fever", Name: "fever"},
				{ID: "rash", Name: "rash"},
			},
		},
	})
	if err != nil {
		t.Fatalf("corpus.New failed: %v", err)
	}
	weights, err := ComputeWeights(c)
	if err != nil {
		t.Fatalf("ComputeWeights failed: %v", err)
	}
	return c, weights
}

func TestScoreBounds(t *testing.T) {
	c, weights := exampleCorpus(t)
	d1, _ := c.Disease("D1")

	testCases := []struct {
		name    string
		patient []string
		want    float64
	}{
		{"disjoint set scores zero", []string{"rash"}, 0},
		{"full coverage scores one", []string{"fever", "cough"}, 1},
		{"superset still scores one", []string{"fever", "cough", "rash", "unknown"}, 1},
		{"empty set scores zero", nil, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(d1, weights, NewPatientSet(tc.patient))
			if math.Abs(got-tc.want) > 1e-12 {
				t.Errorf("Score = %v, want %v", got, tc.want)
			}
		})
	}
}

// partial overlap: R = w_fever / (w_fever + w_cough)
func TestScorePartialOverlap(t *testing.T) {
	c, weights := exampleCorpus(t)
	d1, _ := c.Disease("D1")

	got := Score(d1, weights, NewPatientSet([]string{"fever"}))
	want := weights["fever"] / (weights["fever"] + weights["cough"])
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Score = %v, want %v", got, want)
	}
	if got <= 0 || got >= 1 {
		t.Errorf("partial overlap must land strictly inside (0,1), got %v", got)
	}
}

// duplicate ids in the raw list collapse before scoring
func TestScoreSetSemantics(t *testing.T) {
	c, weights := exampleCorpus(t)
	d1, _ := c.Disease("D1")

	once := Score(d1, weights, NewPatientSet([]string{"fever"}))
	repeated := Score(d1, weights, NewPatientSet([]string{"fever", "fever", "fever"}))
	if once != repeated {
		t.Errorf("duplicates changed the score: %v vs %v", once, repeated)
	}
}

// adding a disease symptom to the patient set never lowers its score
func TestScoreMonotone(t *testing.T) {
	c, weights := exampleCorpus(t)
	d1, _ := c.Disease("D1")

	base := Score(d1, weights, NewPatientSet([]string{"fever"}))
	grown := Score(d1, weights, NewPatientSet([]string{"fever", "cough"}))
	if grown < base {
		t.Errorf("score decreased after adding a matching symptom: %v -> %v", base, grown)
	}
}

func TestRankTieBreak(t *testing.T) {
	c, weights := exampleCorpus(t)

	// fever is shared, so D1 and D2 tie exactly; the smaller ID wins
	results := Rank(c, weights, NewPatientSet([]string{"fever"}), 0)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Score != results[1].Score {
		t.Fatalf("expected a tie, got %v vs %v", results[0].Score, results[1].Score)
	}
	if results[0].DiseaseID != "D1" || results[1].DiseaseID != "D2" {
		t.Errorf("tie not broken by ascending ID: %s, %s", results[0].DiseaseID, results[1].DiseaseID)
	}

	if results[0].Missing[0] != "cough" {
		t.Errorf("D1 missing = %v, want [cough]", results[0].Missing)
	}
	if results[1].Missing[0] != "rash" {
		t.Errorf("D2 missing = %v, want [rash]", results[1].Missing)
	}
}

func TestRankExcludesZeroScores(t *testing.T) {
	c, weights := exampleCorpus(t)

	results := Rank(c, weights, NewPatientSet([]string{"cough"}), 0)
	if len(results) != 1 || results[0].DiseaseID != "D1" {
		t.Fatalf("expected only D1, got %+v", results)
	}

	results = Rank(c, weights, NewPatientSet(nil), 0)
	if len(results) != 0 {
		t.Errorf("empty patient set must rank nothing, got %d results", len(results))
	}
}

func TestRankTopNBound(t *testing.T) {
	diseases := make([]corpus.Disease, 30)
	for i := range diseases {
		diseases[i] = corpus.Disease{
			ID:   fmt.Sprintf("dis_%02d", i),
			Name: fmt.Sprintf("disease %d", i),
			Symptoms: []corpus.Symptom{
				{ID: "shared", Name: "shared symptom"},
				{ID: fmt.Sprintf("own_%02d", i), Name: "own symptom"},
			},
		}
	}
	c, err := corpus.New(diseases)
	if err != nil {
		t.Fatalf("corpus.New failed: %v", err)
	}
	weights, err := ComputeWeights(c)
	if err != nil {
		t.Fatalf("ComputeWeights failed: %v", err)
	}

	patient := NewPatientSet([]string{"shared"})

	if got := len(Rank(c, weights, patient, 7)); got != 7 {
		t.Errorf("topN=7 returned %d results", got)
	}
	// default bound applies when no limit is passed
	if got := len(Rank(c, weights, patient, 0)); got != DefaultTopN {
		t.Errorf("default topN returned %d results", got)
	}
}

// the parallel path must agree with sequential scoring, in order
func TestRankParallelDeterministic(t *testing.T) {
	n := parallelThreshold * 2
	diseases := make([]corpus.Disease, n)
	for i := range diseases {
		diseases[i] = corpus.Disease{
			ID:   fmt.Sprintf("dis_%04d", i),
			Name: fmt.Sprintf("disease %d", i),
			Symptoms: []corpus.Symptom{
				{ID: "shared", Name: "shared symptom"},
				{ID: fmt.Sprintf("own_%04d", i), Name: "own symptom"},
			},
		}
	}
	c, err := corpus.New(diseases)
	if err != nil {
		t.Fatalf("corpus.New failed: %v", err)
	}
	weights, err := ComputeWeights(c)
	if err != nil {
		t.Fatalf("ComputeWeights failed: %v", err)
	}

	patient := NewPatientSet([]string{"shared", "own_0100"})

	first := Rank(c, weights, patient, 20)
	for run := 0; run < 5; run++ {
		again := Rank(c, weights, patient, 20)
		for i := range first {
			if first[i].DiseaseID != again[i].DiseaseID || first[i].Score != again[i].Score {
				t.Fatalf("run %d: rank order diverged at %d: %s vs %s", run, i, first[i].DiseaseID, again[i].DiseaseID)
			}
		}
	}
	if first[0].DiseaseID != "dis_0100" {
		t.Errorf("disease with the extra matched symptom should rank first, got %s", first[0].DiseaseID)
	}
}

func TestMissingSymptomsWeightOrder(t *testing.T) {
	c, err := corpus.New([]corpus.Disease{
		{
			ID:   "d1",
			Name: "one",
			Symptoms: []corpus.Symptom{
				{ID: "common", Name: "common"},
				{ID: "rare", Name: "rare"},
				{ID: "matched", Name: "matched"},
			},
		},
		{
			ID:       "d2",
			Name:     "two",
			Symptoms: []corpus.Symptom{{ID: "common", Name: "common"}},
		},
	})
	if err != nil {
		t.Fatalf("corpus.New failed: %v", err)
	}
	weights, err := ComputeWeights(c)
	if err != nil {
		t.Fatalf("ComputeWeights failed: %v", err)
	}

	d1, _ := c.Disease("d1")
	missing := MissingSymptoms(d1, weights, NewPatientSet([]string{"matched"}))

	// rare (1 disease) outweighs common (2 diseases)
	if len(missing) != 2 || missing[0] != "rare" || missing[1] != "common" {
		t.Errorf("missing = %v, want [rare common]", missing)
	}

	full := MissingSymptoms(d1, weights, NewPatientSet([]string{"common", "rare", "matched"}))
	if len(full) != 0 {
		t.Errorf("fully covered disease must have no missing symptoms, got %v", full)
	}
}

func TestConfidenceLabel(t *testing.T) {
	testCases := []struct {
		score float64
		want  string
	}{
		{1.0, ConfidenceHigh},
		{0.8, ConfidenceHigh},
		{0.79, ConfidenceMedium},
		{0.6, ConfidenceMedium},
		{0.59, ConfidenceLow},
		{0.0, ConfidenceLow},
	}
	for _, tc := range testCases {
		if got := ConfidenceLabel(tc.score); got != tc.want {
			t.Errorf("ConfidenceLabel(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}
