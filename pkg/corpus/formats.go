package corpus

import (
	"bufio"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// compiledVersion is bumped whenever the compiled snapshot layout changes.
const compiledVersion = 1

// maxCompiledDiseases is a sanity bound on the snapshot header. Databases
// larger than this are almost certainly corrupt files.
const maxCompiledDiseases = 1_000_000

// compiledFile is the msgpack layout of a compiled corpus snapshot.
type compiledFile struct {
	Version  int       `msgpack:"v"`
	Diseases []Disease `msgpack:"d"`
}

// WriteCompiled serializes the corpus to a compiled binary snapshot. The
// snapshot carries the raw disease records; the index is rebuilt on read so
// validation always runs against the current rules.
func WriteCompiled(c *Corpus, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(compiledFile{Version: compiledVersion, Diseases: c.Diseases()}); err != nil {
		return fmt.Errorf("failed to encode snapshot %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}

	log.Debugf("Wrote compiled corpus %s: %d diseases", path, c.DiseaseCount())
	return nil
}

// ReadCompiled loads a compiled binary snapshot and rebuilds the corpus
// index from it. Malformed snapshots fail here, never at query time.
func ReadCompiled(path string) (*Corpus, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot %s: %w", path, err)
	}
	defer file.Close()

	var cf compiledFile
	dec := msgpack.NewDecoder(bufio.NewReader(file))
	if err := dec.Decode(&cf); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", path, err)
	}

	if cf.Version != compiledVersion {
		return nil, fmt.Errorf("snapshot %s has unsupported version %d (expected %d)", path, cf.Version, compiledVersion)
	}
	if len(cf.Diseases) > maxCompiledDiseases {
		return nil, fmt.Errorf("suspicious disease count in %s: %d (too large)", path, len(cf.Diseases))
	}

	c, err := New(cf.Diseases)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s failed validation: %w", path, err)
	}

	log.Debugf("Read compiled corpus %s: %d diseases, %d symptoms", path, c.DiseaseCount(), c.SymptomCount())
	return c, nil
}
