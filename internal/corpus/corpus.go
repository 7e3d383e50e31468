// Package corpus loads the overridable correction corpus — the
// confusion-pair set C6 falls back to — from a YAML file, so
// deployments can tune the post-processor for a different OCR engine
// without a rebuild. The file carries no BiDi control list; the set of
// controls the script classifier strips is fixed in that package.
package corpus

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hebrewscanner/reconstruct/internal/maskedlm"
)

// Document is the on-disk shape of a corpus override file.
type Document struct {
	ConfusionPairs []PairEntry `yaml:"confusionPairs"`
}

// PairEntry is one confusion pair as written in YAML: two single-rune
// strings rather than a Go [2]rune, since YAML has no rune type.
type PairEntry struct {
	A string `yaml:"a"`
	B string `yaml:"b"`
}

// Load reads a corpus file at path and returns its confusion pairs. A
// missing file is not an error: callers get maskedlm.DefaultConfusionPairs
// back so the post-processor keeps working unconfigured.
func Load(path string) ([]maskedlm.ConfusionPair, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return maskedlm.DefaultConfusionPairs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read corpus file: %w", err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse corpus file %s: %w", path, err)
	}
	if len(doc.ConfusionPairs) == 0 {
		return maskedlm.DefaultConfusionPairs, nil
	}

	pairs := make([]maskedlm.ConfusionPair, 0, len(doc.ConfusionPairs))
	for _, e := range doc.ConfusionPairs {
		ra := []rune(e.A)
		rb := []rune(e.B)
		if len(ra) != 1 || len(rb) != 1 {
			return nil, fmt.Errorf("corpus file %s: confusion pair %q/%q must each be a single rune", path, e.A, e.B)
		}
		pairs = append(pairs, maskedlm.ConfusionPair{ra[0], rb[0]})
	}
	return pairs, nil
}
