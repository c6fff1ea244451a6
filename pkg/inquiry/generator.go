// Package inquiry turns the missing symptoms of top-ranked diseases into
// ordered follow-up questions for the active inquiry loop.
package inquiry

import (
	"fmt"

	"github.com/carewise/riskserve/pkg/corpus"
	"github.com/carewise/riskserve/pkg/risk"
)

// DefaultMaxQuestions bounds the generated question list so a single round
// of inquiry never overwhelms the user.
const DefaultMaxQuestions = 5

// Question is one follow-up prompt targeting a symptom the patient has not
// reported yet, attributed to the highest-ranked disease that needs it.
type Question struct {
	Text            string
	SourceDiseaseID string
	TargetSymptomID string
}

// Template maps a (disease, symptom) pair onto question text. Callers supply
// their own phrasing; DefaultTemplate is used when nil.
type Template func(d corpus.Disease, s corpus.Symptom) string

// DefaultTemplate phrases a plain confirmation question for the symptom.
func DefaultTemplate(_ corpus.Disease, s corpus.Symptom) string {
	return fmt.Sprintf("Have you also experienced %s?", s.Name)
}

// Generate walks the ranked results in order and emits one question per
// distinct missing symptom, capped at max (DefaultMaxQuestions when max <= 0).
// A symptom missing from several top diseases yields a single question
// attributed to the highest-ranked of them. Diseases already fully covered by
// the patient contribute nothing. The output is byte-identical for identical
// inputs: ordering derives only from the ranked list and each disease's
// weight-ordered missing list.
func Generate(c *corpus.Corpus, results []risk.RiskResult, tmpl Template, max int) []Question {
	if max <= 0 {
		max = DefaultMaxQuestions
	}
	if tmpl == nil {
		tmpl = DefaultTemplate
	}

	questions := make([]Question, 0, max)
	asked := make(map[string]bool)

	for _, r := range results {
		d, ok := c.Disease(r.DiseaseID)
		if !ok {
			continue
		}
		for _, symptomID := range r.Missing {
			if asked[symptomID] {
				continue
			}
			s, ok := c.Symptom(symptomID)
			if !ok {
				continue
			}
			asked[symptomID] = true
			questions = append(questions, Question{
				Text:            tmpl(d, s),
				SourceDiseaseID: d.ID,
				TargetSymptomID: s.ID,
			})
			if len(questions) >= max {
				return questions
			}
		}
	}
	return questions
}
