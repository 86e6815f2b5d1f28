package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"LevelBias/internal/services/prediction"
)

// FileWeightStore keeps per-instrument base-weight overrides in a YAML file.
// Instruments without an entry fall back to the built-in catalog weights.
// All access is serialized; weight changes are rare and the file is small.
type FileWeightStore struct {
	mu   sync.Mutex
	path string
	data map[string]map[string]float64
}

// NewFileWeightStore loads the weight file at path, creating an empty store
// if the file does not exist yet.
func NewFileWeightStore(path string) (*FileWeightStore, error) {
	s := &FileWeightStore{path: path, data: make(map[string]map[string]float64)}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read weight file: %w", err)
	}
	if err := yaml.Unmarshal(b, &s.data); err != nil {
		return nil, fmt.Errorf("parse weight file: %w", err)
	}
	if s.data == nil {
		s.data = make(map[string]map[string]float64)
	}
	return s, nil
}

// Weights returns the stored weight map for instrument, or the catalog
// defaults when no override has been saved. The returned map is a copy.
func (s *FileWeightStore) Weights(instrument string) (map[string]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.data[instrument]; ok {
		out := make(map[string]float64, len(w))
		for k, v := range w {
			out[k] = v
		}
		return out, nil
	}
	return prediction.DefaultWeights(instrument), nil
}

// SetWeights replaces the stored map for instrument and persists the file.
func (s *FileWeightStore) SetWeights(instrument string, weights map[string]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make(map[string]float64, len(weights))
	for k, v := range weights {
		cp[k] = v
	}
	s.data[instrument] = cp
	return s.flush()
}

// flush writes the file atomically via a temp file rename.
// Caller must hold mu.
func (s *FileWeightStore) flush() error {
	b, err := yaml.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("marshal weights: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create weight dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".weights-*.yaml")
	if err != nil {
		return fmt.Errorf("temp weight file: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write weights: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close weight file: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}
