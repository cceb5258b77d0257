package chess

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/park285/cheese-heuristic-bot/internal/chess/heuristic"
)

// LoadWeights reads a YAML weight override. Keys absent from the file keep
// their default values; unknown keys are rejected.
func LoadWeights(path string) (heuristic.Weights, error) {
	if strings.TrimSpace(path) == "" {
		return heuristic.DefaultWeights(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return heuristic.Weights{}, fmt.Errorf("read weights %q: %w", path, err)
	}
	return ParseWeights(raw)
}

func ParseWeights(raw []byte) (heuristic.Weights, error) {
	w := heuristic.DefaultWeights()
	if len(bytes.TrimSpace(raw)) == 0 {
		return w, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&w); err != nil {
		return heuristic.Weights{}, fmt.Errorf("parse weights: %w", err)
	}
	if err := w.Validate(); err != nil {
		return heuristic.Weights{}, err
	}
	return w, nil
}
