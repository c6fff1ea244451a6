// Package cli handles cmd line input and assessments for DBG and testing various features
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/carewise/riskserve/internal/logger"
	"github.com/carewise/riskserve/internal/utils"
	"github.com/carewise/riskserve/pkg/inquiry"
	"github.com/carewise/riskserve/pkg/risk"
)

// out renders assessment results without timestamps or level badges.
var out = logger.Default("")

// InputHandler processes patient symptom sets from stdin, printing ranked
// risks and follow-up questions. Tokens are symptom IDs; unknown tokens are
// resolved against symptom names via prefix lookup unless disabled.
type InputHandler struct {
	engine       *risk.Engine
	topN         int
	maxQuestions int
	requestCount int
	noResolve    bool
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(engine *risk.Engine, topN, maxQuestions int, noResolve bool) *InputHandler {
	return &InputHandler{
		engine:       engine,
		topN:         topN,
		maxQuestions: maxQuestions,
		noResolve:    noResolve,
	}
}

// Start begins the interface loop.
// It continuously prompts for input, reads a line from stdin,
// and passes the trimmed input to handleInput() for processing.
// Loop terminates if an error occurs while reading from stdin
func (h *InputHandler) Start() error {
	log.Print("RiskServe CLI")
	reader := bufio.NewReader(os.Stdin)
	log.Print("enter symptom IDs or names, comma separated, and press Enter (Ctrl+C to exit):")

	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		h.handleInput(line)
	}
}

// handleInput processes a single symptom list into an assessment.
// It resolves name tokens onto IDs, asks the engine for the ranked risks and
// prints them with the generated follow-up questions.
func (h *InputHandler) handleInput(line string) {
	h.requestCount++

	tokens := utils.SplitSymptomList(line)
	if len(tokens) == 0 {
		log.Errorf("No symptoms in input: %s", line)
		return
	}

	snap := h.engine.Snapshot()
	ids := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if snap.Corpus.HasSymptom(token) {
			ids = append(ids, token)
			continue
		}
		if !h.noResolve {
			if matches := snap.Corpus.ResolvePrefix(token, 1); len(matches) > 0 {
				log.Debugf("Resolved '%s' to symptom %s (%s)", token, matches[0].ID, matches[0].Name)
				ids = append(ids, matches[0].ID)
				continue
			}
		}
		if !utils.ValidSymptomID(token) {
			log.Warnf("Ignoring invalid token: '%s'", token)
			continue
		}
		// Unknown IDs carry no signal but are not an error.
		ids = append(ids, token)
	}

	// Rank and generate off the snapshot resolution ran against, so a reload
	// mid-request cannot split the query across two corpora.
	start := time.Now()
	results := snap.Assess(ids, h.topN)
	questions := inquiry.Generate(snap.Corpus, results, nil, h.maxQuestions)
	elapsed := time.Since(start)

	log.Debugf("Took [ %v ] for %d symptoms", elapsed, len(ids))

	if len(results) == 0 {
		log.Warnf("No diseases matched symptoms: %s", strings.Join(ids, ", "))
		return
	}

	out.Printf("Found %d candidate diseases:", len(results))
	for i, r := range results {
		clName := fmt.Sprintf("\033[38;5;75m%s\033[0m", r.DiseaseName)
		out.Printf("%2d. %-40s %8s  [%s]", i+1, clName, utils.FormatPercent(r.Score), r.Confidence)
		if len(r.Missing) > 0 {
			out.Printf("    missing: %s", strings.Join(r.Missing, ", "))
		}
	}

	if len(questions) > 0 {
		out.Printf("Follow-up questions:")
		for i, q := range questions {
			out.Printf("%2d. %s", i+1, q.Text)
		}
	}
}
