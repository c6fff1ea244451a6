/*
Package server implements msgpack IPC for disease risk assessment services.

The server package provides a minimal interface for risk ranking and active
inquiry using msgpack serialization over stdin/stdout.

The protocol uses binary msgpack encoding and supports assessment requests,
symptom name resolution, corpus management ops, and config updates.
Messages are processed synchronously with timing info included in responses.

# IPC

The server operates on a request response model where clients send structured
messages via stdin and receive responses through stdout.
Each message contains an ID field and other fields based on the operation type.

Assessment requests use mainly this structure:

	{"id": "req_001", "s": ["sym_fever", "sym_cough"], "n": 10, "q": 5}

The server responds with diseases ranked by match score, plus the follow-up
questions derived from their missing symptoms:

	{"id": "req_001", "risks": [{"d": "dis_flu", "dn": "Influenza", "r": 0.41, "c": "low", "m": ["sym_chills"]}], "qs": [...], "c": 1, "t": 215}

Resolve requests map a typed symptom name prefix onto corpus symptom IDs:

	{"id": "res_001", "p": "head", "l": 5}

Corpus management enables runtime reload of the disease database:

	{"id": "db_001", "action": "reload"}
	{"id": "db_002", "action": "get_info"}

Response structures include status information and error details when an op
fails. Scores are raw floats in [0,1]; the confidence label is a
presentation-only transform of the score.

config messages allow adjustment of ranking parameters without restart.
*/
package server

// AssessRequest - risk assessment request.
// A nil Questions uses the configured default; an explicit 0 disables
// question generation for a risks-only response.
type AssessRequest struct {
	ID        string   `msgpack:"id"`
	Symptoms  []string `msgpack:"s"`
	TopN      int      `msgpack:"n,omitempty"`
	Questions *int     `msgpack:"q,omitempty"`
}

// RiskEntry - one ranked disease in an assessment response
type RiskEntry struct {
	DiseaseID   string   `msgpack:"d"`
	DiseaseName string   `msgpack:"dn"`
	Score       float64  `msgpack:"r"`
	Confidence  string   `msgpack:"c"`
	Matched     []string `msgpack:"ms,omitempty"`
	Missing     []string `msgpack:"m,omitempty"`
}

// QuestionEntry - one follow-up question in an assessment response
type QuestionEntry struct {
	Text      string `msgpack:"t"`
	DiseaseID string `msgpack:"d"`
	SymptomID string `msgpack:"s"`
}

// AssessResponse - assessment response
type AssessResponse struct {
	ID        string          `msgpack:"id"`
	Risks     []RiskEntry     `msgpack:"risks"`
	Questions []QuestionEntry `msgpack:"qs"`
	Count     int             `msgpack:"c"`
	TimeTaken int64           `msgpack:"t"`
}

// ResolveRequest - symptom name prefix resolution request
type ResolveRequest struct {
	ID     string `msgpack:"id"`
	Prefix string `msgpack:"p"`
	Limit  int    `msgpack:"l,omitempty"`
}

// SymptomEntry - one resolved symptom
type SymptomEntry struct {
	SymptomID string `msgpack:"s"`
	Name      string `msgpack:"n"`
}

// ResolveResponse - resolution response
type ResolveResponse struct {
	ID       string         `msgpack:"id"`
	Symptoms []SymptomEntry `msgpack:"ss"`
	Count    int            `msgpack:"c"`
}

// CORPUS MESSAGES - runtime corpus management (other configs via TOML)

// CorpusRequest - corpus management request
type CorpusRequest struct {
	ID           string `msgpack:"id"`
	Action       string `msgpack:"action"` // "get_info", "reload", "set_limits"
	TopN         *int   `msgpack:"top_n,omitempty"`
	MaxQuestions *int   `msgpack:"max_questions,omitempty"`
}

// CorpusResponse - corpus operation response
type CorpusResponse struct {
	ID       string `msgpack:"id"`
	Status   string `msgpack:"status"`
	Error    string `msgpack:"error,omitempty"`
	Diseases int    `msgpack:"diseases,omitempty"`
	Symptoms int    `msgpack:"symptoms,omitempty"`
}

// AssessError holds basic error information for failed requests
type AssessError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
