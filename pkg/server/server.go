package server

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/carewise/riskserve/pkg/config"
	"github.com/carewise/riskserve/pkg/corpus"
	"github.com/carewise/riskserve/pkg/inquiry"
	"github.com/carewise/riskserve/pkg/risk"
)

// rawRequest is the decoded envelope used for dispatch. Fields overlap across
// request types; the populated ones decide which handler runs. Questions and
// Prefix are pointers so an absent field stays distinguishable from an
// explicit zero value.
type rawRequest struct {
	ID           string   `msgpack:"id"`
	Symptoms     []string `msgpack:"s,omitempty"`
	TopN         int      `msgpack:"n,omitempty"`
	Questions    *int     `msgpack:"q,omitempty"`
	Prefix       *string  `msgpack:"p,omitempty"`
	Limit        int      `msgpack:"l,omitempty"`
	Action       string   `msgpack:"action,omitempty"`
	ConfTopN     *int     `msgpack:"top_n,omitempty"`
	ConfMaxQuest *int     `msgpack:"max_questions,omitempty"`
}

// Server handles the IPC for risk assessments
type Server struct {
	engine     *risk.Engine
	cfg        *config.Config
	configPath string
	corpusPath string
	decoder    *msgpack.Decoder
	writer     *bufio.Writer
	encoder    *msgpack.Encoder
}

// NewServer creates a new assessment server using stdin/stdout for IPC
func NewServer(engine *risk.Engine, cfg *config.Config, configPath, corpusPath string) *Server {
	return newServer(engine, cfg, configPath, corpusPath, os.Stdin, os.Stdout)
}

func newServer(engine *risk.Engine, cfg *config.Config, configPath, corpusPath string, r io.Reader, w io.Writer) *Server {
	bw := bufio.NewWriter(w)
	return &Server{
		engine:     engine,
		cfg:        cfg,
		configPath: configPath,
		corpusPath: corpusPath,
		decoder:    msgpack.NewDecoder(bufio.NewReader(r)),
		writer:     bw,
		encoder:    msgpack.NewEncoder(bw),
	}
}

// Start begins listening for IPC requests
func (s *Server) Start() error {
	log.Debug("Starting Server.")

	// Signal that the server is ready
	s.send(map[string]string{"status": "ready"})

	for {
		var req rawRequest
		if err := s.decoder.Decode(&req); err != nil {
			if err == io.EOF {
				return nil
			}
			log.Errorf("Decoding request from stdin: %v", err)
			return err
		}
		s.handleRequest(req)
	}
}

// handleRequest dispatches a decoded request to its handler
func (s *Server) handleRequest(req rawRequest) {
	switch {
	case req.Action != "":
		s.handleCorpus(req)
	case req.Prefix != nil:
		s.handleResolve(req)
	case req.ID != "":
		// An empty symptom list is still a valid assessment; it just
		// carries no signal and ranks nothing.
		s.handleAssess(req)
	default:
		s.sendError(req.ID, "Request matches no known operation", 400)
	}
}

// handleAssess processes an assessment request. It validates the symptom
// list, ranks the corpus against it, generates follow-up questions and sends
// the combined response. Unknown symptom IDs degrade to zero signal rather
// than failing the request.
func (s *Server) handleAssess(req rawRequest) {
	if len(req.Symptoms) > s.cfg.Server.MaxSymptoms {
		s.sendError(req.ID, fmt.Sprintf("Symptom list exceeds maximum of %d entries", s.cfg.Server.MaxSymptoms), 400)
		log.Debug("Symptom list too long in request")
		return
	}

	topN := req.TopN
	if topN < 1 {
		topN = s.cfg.Engine.TopN
	}
	if topN > s.cfg.Server.MaxLimit {
		topN = s.cfg.Server.MaxLimit
	}
	// An absent q falls back to the configured default; an explicit q <= 0
	// requests a risks-only response.
	maxQuestions := s.cfg.Engine.MaxQuestions
	if req.Questions != nil {
		maxQuestions = *req.Questions
	}

	// One snapshot per query: ranking and question generation must read the
	// same corpus even if a reload lands mid-request.
	start := time.Now()
	snap := s.engine.Snapshot()
	results := snap.Assess(req.Symptoms, topN)
	var questions []inquiry.Question
	if maxQuestions > 0 {
		questions = inquiry.Generate(snap.Corpus, results, nil, maxQuestions)
	}
	elapsed := time.Since(start)

	risks := make([]RiskEntry, len(results))
	for i, r := range results {
		risks[i] = RiskEntry{
			DiseaseID:   r.DiseaseID,
			DiseaseName: r.DiseaseName,
			Score:       r.Score,
			Confidence:  r.Confidence,
			Matched:     r.Matched,
			Missing:     r.Missing,
		}
	}
	qs := make([]QuestionEntry, len(questions))
	for i, q := range questions {
		qs[i] = QuestionEntry{
			Text:      q.Text,
			DiseaseID: q.SourceDiseaseID,
			SymptomID: q.TargetSymptomID,
		}
	}

	s.send(AssessResponse{
		ID:        req.ID,
		Risks:     risks,
		Questions: qs,
		Count:     len(risks),
		TimeTaken: elapsed.Microseconds(),
	})
}

// handleResolve maps a symptom name prefix onto corpus symptom IDs.
func (s *Server) handleResolve(req rawRequest) {
	prefix := *req.Prefix
	if prefix == "" {
		s.sendError(req.ID, "Resolve prefix must not be empty", 400)
		return
	}

	limit := req.Limit
	if limit < 1 {
		limit = 10
	}
	if limit > s.cfg.Server.MaxLimit {
		limit = s.cfg.Server.MaxLimit
	}

	matches := s.engine.Snapshot().Corpus.ResolvePrefix(prefix, limit)
	entries := make([]SymptomEntry, len(matches))
	for i, m := range matches {
		entries[i] = SymptomEntry{SymptomID: m.ID, Name: m.Name}
	}

	s.send(ResolveResponse{
		ID:       req.ID,
		Symptoms: entries,
		Count:    len(entries),
	})
}

// handleCorpus processes corpus management and config update actions.
func (s *Server) handleCorpus(req rawRequest) {
	switch req.Action {
	case "get_info":
		stats := s.engine.Stats()
		s.send(CorpusResponse{
			ID:       req.ID,
			Status:   "ok",
			Diseases: stats["diseases"],
			Symptoms: stats["symptoms"],
		})
	case "reload":
		c, err := corpus.LoadFile(s.corpusPath)
		if err != nil {
			log.Errorf("Corpus reload failed: %v", err)
			s.send(CorpusResponse{ID: req.ID, Status: "error", Error: err.Error()})
			return
		}
		if err := s.engine.Reload(c); err != nil {
			log.Errorf("Corpus reload failed: %v", err)
			s.send(CorpusResponse{ID: req.ID, Status: "error", Error: err.Error()})
			return
		}
		s.send(CorpusResponse{
			ID:       req.ID,
			Status:   "ok",
			Diseases: c.DiseaseCount(),
			Symptoms: c.SymptomCount(),
		})
	case "set_limits":
		if err := s.cfg.Update(s.configPath, req.ConfTopN, req.ConfMaxQuest); err != nil {
			log.Errorf("Config update failed: %v", err)
			s.send(CorpusResponse{ID: req.ID, Status: "error", Error: err.Error()})
			return
		}
		s.send(CorpusResponse{ID: req.ID, Status: "ok"})
	default:
		s.sendError(req.ID, fmt.Sprintf("Unknown action: %s", req.Action), 400)
	}
}

// send encodes the response as msgpack and flushes it to the client.
func (s *Server) send(response interface{}) {
	if err := s.encoder.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
		return
	}
	if err := s.writer.Flush(); err != nil {
		log.Errorf("Flushing response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.send(AssessError{
		ID:    id,
		Error: message,
		Code:  code,
	})
}
