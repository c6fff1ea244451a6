package risk

import (
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/carewise/riskserve/pkg/corpus"
)

func mustEngine(t *testing.T, diseases []corpus.Disease) *Engine {
	t.Helper()
	c, err := corpus.New(diseases)
	if err != nil {
		t.Fatalf("corpus.New failed: %v", err)
	}
	e, err := NewEngine(c)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return e
}

func twoDiseases() []corpus.Disease {
	return []corpus.Disease{
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
	}
}

// a lone disease fully covered by the patient: score 1.0, nothing missing
func TestAssessSingleDiseaseBoundary(t *testing.T) {
	e := mustEngine(t, []corpus.Disease{{
		ID:   "only",
		Name: "Only Disease",
		Symptoms: []corpus.Symptom{
			{ID: "s1", Name: "one"},
			{ID: "s2", Name: "two"},
		},
	}})

	results := e.Assess([]string{"s1", "s2"}, 0)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.Score != 1.0 {
		t.Errorf("Score = %v, want 1.0", r.Score)
	}
	if r.Confidence != ConfidenceHigh {
		t.Errorf("Confidence = %s, want %s", r.Confidence, ConfidenceHigh)
	}
	if len(r.Missing) != 0 {
		t.Errorf("Missing = %v, want empty", r.Missing)
	}
}

func TestAssessDegradesGracefully(t *testing.T) {
	e := mustEngine(t, twoDiseases())

	testCases := []struct {
		name    string
		patient []string
	}{
		{"empty patient set", nil},
		{"only unknown ids", []string{"sym_nope", "sym_nothing"}},
		{"blank ids", []string{"", ""}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			results := e.Assess(tc.patient, 0)
			if len(results) != 0 {
				t.Errorf("expected empty ranked list, got %d results", len(results))
			}
		})
	}
}

// unknown ids alongside real ones contribute nothing but break nothing
func TestAssessIgnoresUnknownIDs(t *testing.T) {
	e := mustEngine(t, twoDiseases())

	clean := e.Assess([]string{"fever"}, 0)
	noisy := e.Assess([]string{"fever", "sym_unheard_of"}, 0)
	if !reflect.DeepEqual(clean, noisy) {
		t.Errorf("unknown ids changed the ranking:\nclean: %+v\nnoisy: %+v", clean, noisy)
	}
}

// the same query against an unchanged snapshot yields identical output
func TestAssessIdempotent(t *testing.T) {
	e := mustEngine(t, twoDiseases())

	first := e.Assess([]string{"fever", "cough"}, 0)
	for i := 0; i < 10; i++ {
		again := e.Assess([]string{"fever", "cough"}, 0)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d: output diverged:\nfirst: %+v\nagain: %+v", i, first, again)
		}
		if fmt.Sprintf("%v", first) != fmt.Sprintf("%v", again) {
			t.Fatalf("run %d: rendered output diverged", i)
		}
	}
}

// Engine.Assess is a convenience over Snapshot.Assess; both must agree
func TestSnapshotAssessMatchesEngine(t *testing.T) {
	e := mustEngine(t, twoDiseases())

	want := e.Assess([]string{"fever", "cough"}, 0)
	got := e.Snapshot().Assess([]string{"fever", "cough"}, 0)
	if !reflect.DeepEqual(want, got) {
		t.Errorf("snapshot assess diverged from engine assess:\nengine:   %+v\nsnapshot: %+v", want, got)
	}
}

// a held snapshot keeps answering from its own corpus after a reload
func TestSnapshotAssessSurvivesReload(t *testing.T) {
	e := mustEngine(t, twoDiseases())
	snap := e.Snapshot()

	want := snap.Assess([]string{"fever"}, 0)

	replacement, err := corpus.New([]corpus.Disease{{
		ID:       "D3",
		Name:     "Disease Three",
		Symptoms: []corpus.Symptom{{ID: "ache", Name: "ache"}},
	}})
	if err != nil {
		t.Fatalf("corpus.New failed: %v", err)
	}
	if err := e.Reload(replacement); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	got := snap.Assess([]string{"fever"}, 0)
	if !reflect.DeepEqual(want, got) {
		t.Errorf("held snapshot changed after reload:\nbefore: %+v\nafter:  %+v", want, got)
	}
}

func TestReloadSwapsSnapshot(t *testing.T) {
	e := mustEngine(t, twoDiseases())

	replacement, err := corpus.New([]corpus.Disease{{
		ID:       "D3",
		Name:     "Disease Three",
		Symptoms: []corpus.Symptom{{ID: "ache", Name: "ache"}},
	}})
	if err != nil {
		t.Fatalf("corpus.New failed: %v", err)
	}
	if err := e.Reload(replacement); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	if results := e.Assess([]string{"fever"}, 0); len(results) != 0 {
		t.Errorf("old corpus still visible after reload: %+v", results)
	}
	results := e.Assess([]string{"ache"}, 0)
	if len(results) != 1 || results[0].DiseaseID != "D3" {
		t.Errorf("new corpus not active after reload: %+v", results)
	}
}

// queries racing a reload must always see a complete corpus+weights pair
func TestReloadConcurrentAssess(t *testing.T) {
	e := mustEngine(t, twoDiseases())

	replacement, err := corpus.New(twoDiseases()[:1])
	if err != nil {
		t.Fatalf("corpus.New failed: %v", err)
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				results := e.Assess([]string{"fever"}, 0)
				// both snapshots rank D1 first for a fever-only patient
				if len(results) == 0 || results[0].DiseaseID != "D1" {
					t.Errorf("inconsistent snapshot observed: %+v", results)
					return
				}
			}
		}()
	}

	original := e.Snapshot().Corpus
	for i := 0; i < 200; i++ {
		if i%2 == 0 {
			if err := e.Reload(replacement); err != nil {
				t.Errorf("Reload failed: %v", err)
			}
		} else {
			if err := e.Reload(original); err != nil {
				t.Errorf("Reload failed: %v", err)
			}
		}
	}
	close(stop)
	wg.Wait()
}

func TestStats(t *testing.T) {
	e := mustEngine(t, twoDiseases())
	stats := e.Stats()
	if stats["diseases"] != 2 || stats["symptoms"] != 3 || stats["weights"] != 3 {
		t.Errorf("unexpected stats: %v", stats)
	}
}
