package corpus

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// databaseFile mirrors the disease database JSON layout:
//
//	{"diseases": [{"disease_id": ..., "disease_name": ...,
//	               "symptom_list": [{"symptom_id": ..., "symptom_name": ...}],
//	               "description": ...}]}
type databaseFile struct {
	Diseases []Disease `json:"diseases"`
}

// Parse reads a JSON disease database from r and builds a validated corpus.
func Parse(r io.Reader) (*Corpus, error) {
	var db databaseFile
	dec := json.NewDecoder(r)
	if err := dec.Decode(&db); err != nil {
		return nil, fmt.Errorf("failed to decode disease database: %w", err)
	}
	return New(db.Diseases)
}

// Load reads a JSON disease database file and builds a validated corpus.
func Load(path string) (*Corpus, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open disease database %s: %w", path, err)
	}
	defer file.Close()

	c, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load disease database %s: %w", path, err)
	}

	log.Debugf("Loaded corpus from %s: %d diseases, %d symptoms", path, c.DiseaseCount(), c.SymptomCount())
	return c, nil
}

// LoadFile loads a corpus from either a JSON database (.json) or a compiled
// binary snapshot (.bin), detected by extension.
func LoadFile(path string) (*Corpus, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bin":
		return ReadCompiled(path)
	case ".json":
		return Load(path)
	default:
		return nil, fmt.Errorf("unsupported corpus file %s (expected .json or .bin)", path)
	}
}
