// Package corpus holds the immutable disease/symptom reference data the risk
// engine ranks against, plus the derived reverse index used for weighting.
package corpus

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tchap/go-patricia/v2/patricia"
)

var (
	// ErrEmptyCorpus is returned when a corpus source contains zero diseases.
	ErrEmptyCorpus = errors.New("corpus contains no diseases")
	// ErrNoSymptoms is returned when a disease record has an empty symptom list.
	ErrNoSymptoms = errors.New("disease has no symptoms")
)

// Symptom is a single symptom entry. Identity is the ID; names are
// display-only and not guaranteed unique across the corpus.
type Symptom struct {
	ID   string `json:"symptom_id" msgpack:"id"`
	Name string `json:"symptom_name" msgpack:"n"`
}

// Disease is one disease record from the database. The symptom list is
// deduplicated by ID at load time, so it behaves as a set.
type Disease struct {
	ID          string    `json:"disease_id" msgpack:"id"`
	Name        string    `json:"disease_name" msgpack:"n"`
	Symptoms    []Symptom `json:"symptom_list" msgpack:"s"`
	Description string    `json:"description" msgpack:"d,omitempty"`
}

// HasSymptom reports whether the disease's symptom set contains the given ID.
func (d *Disease) HasSymptom(id string) bool {
	for _, s := range d.Symptoms {
		if s.ID == id {
			return true
		}
	}
	return false
}

// Corpus is the validated, read-only disease index. All lookups are safe for
// concurrent use once New returns.
type Corpus struct {
	diseases    []Disease
	byID        map[string]int
	symptoms    map[string]Symptom
	diseaseFreq map[string]int
	nameTrie    *patricia.Trie
}

// New validates the given disease records and builds the corpus index.
// It rejects an empty record list, missing or duplicate disease IDs, empty
// symptom lists and symptoms without an ID. No partial corpus is ever
// returned: the first violation aborts the build.
func New(diseases []Disease) (*Corpus, error) {
	if len(diseases) == 0 {
		return nil, ErrEmptyCorpus
	}

	c := &Corpus{
		diseases:    make([]Disease, 0, len(diseases)),
		byID:        make(map[string]int, len(diseases)),
		symptoms:    make(map[string]Symptom),
		diseaseFreq: make(map[string]int),
		nameTrie:    patricia.NewTrie(),
	}

	for _, d := range diseases {
		if d.ID == "" {
			return nil, fmt.Errorf("disease %q: missing disease_id", d.Name)
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("duplicate disease_id %q", d.ID)
		}
		if len(d.Symptoms) == 0 {
			return nil, fmt.Errorf("disease %q: %w", d.ID, ErrNoSymptoms)
		}

		// Collapse duplicate symptom entries so the list is a set.
		seen := make(map[string]bool, len(d.Symptoms))
		unique := make([]Symptom, 0, len(d.Symptoms))
		for _, s := range d.Symptoms {
			if s.ID == "" {
				return nil, fmt.Errorf("disease %q: symptom %q has no symptom_id", d.ID, s.Name)
			}
			if seen[s.ID] {
				continue
			}
			seen[s.ID] = true
			unique = append(unique, s)
		}
		d.Symptoms = unique

		c.byID[d.ID] = len(c.diseases)
		c.diseases = append(c.diseases, d)

		for _, s := range unique {
			c.diseaseFreq[s.ID]++
			if _, known := c.symptoms[s.ID]; !known {
				c.symptoms[s.ID] = s
				c.indexName(s)
			}
		}
	}

	// Keep disease iteration order independent of the source ordering.
	sort.Slice(c.diseases, func(i, j int) bool {
		return c.diseases[i].ID < c.diseases[j].ID
	})
	for i, d := range c.diseases {
		c.byID[d.ID] = i
	}

	return c, nil
}

// indexName inserts a symptom into the name trie. Names are not unique, so
// each trie item is a sorted ID list.
func (c *Corpus) indexName(s Symptom) {
	key := patricia.Prefix(strings.ToLower(s.Name))
	if item := c.nameTrie.Get(key); item != nil {
		ids := item.([]string)
		ids = append(ids, s.ID)
		sort.Strings(ids)
		c.nameTrie.Set(key, ids)
		return
	}
	c.nameTrie.Insert(key, []string{s.ID})
}

// DiseaseCount returns the number of diseases in the corpus.
func (c *Corpus) DiseaseCount() int {
	return len(c.diseases)
}

// SymptomCount returns the number of distinct symptoms across all diseases.
func (c *Corpus) SymptomCount() int {
	return len(c.symptoms)
}

// Diseases returns all diseases ordered by ascending disease ID.
// Callers must not mutate the returned slice.
func (c *Corpus) Diseases() []Disease {
	return c.diseases
}

// Disease looks up a disease by ID.
func (c *Corpus) Disease(id string) (Disease, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Disease{}, false
	}
	return c.diseases[i], true
}

// Symptom looks up a symptom by ID.
func (c *Corpus) Symptom(id string) (Symptom, bool) {
	s, ok := c.symptoms[id]
	return s, ok
}

// HasSymptom reports whether any disease in the corpus carries the symptom.
func (c *Corpus) HasSymptom(id string) bool {
	_, ok := c.symptoms[id]
	return ok
}

// DiseaseFrequency returns how many diseases contain the given symptom.
func (c *Corpus) DiseaseFrequency(symptomID string) int {
	return c.diseaseFreq[symptomID]
}

// SymptomIDs returns all distinct symptom IDs in ascending order.
func (c *Corpus) SymptomIDs() []string {
	ids := make([]string, 0, len(c.symptoms))
	for id := range c.symptoms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ResolvePrefix returns symptoms whose lowercased name starts with the given
// prefix, ordered by ascending symptom ID and capped at limit. Used by the
// CLI and the resolve IPC action to map typed names onto IDs.
func (c *Corpus) ResolvePrefix(prefix string, limit int) []Symptom {
	if limit <= 0 {
		limit = 10
	}

	var ids []string
	_ = c.nameTrie.VisitSubtree(patricia.Prefix(strings.ToLower(prefix)), func(p patricia.Prefix, item patricia.Item) error {
		ids = append(ids, item.([]string)...)
		return nil
	})
	sort.Strings(ids)

	matches := make([]Symptom, 0, limit)
	prev := ""
	for _, id := range ids {
		if id == prev {
			continue
		}
		prev = id
		matches = append(matches, c.symptoms[id])
		if len(matches) >= limit {
			break
		}
	}
	return matches
}
