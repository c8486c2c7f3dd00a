// Package eigen implements appearance-subspace face classification: a PCA
// basis learned from the sample corpus, per-sample projected coordinates and
// nearest-neighbor matching by Euclidean distance in the projected space.
package eigen

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var (
	// ErrNoSamples means the training corpus is empty.
	ErrNoSamples = errors.New("no training samples")

	// ErrNoModel means no trained model file exists yet.
	ErrNoModel = errors.New("no trained model")

	// ErrIncompatibleModel means the stored model was trained at a different
	// patch size than the one configured now.
	ErrIncompatibleModel = errors.New("incompatible model")
)

// Model is a trained projection model. All fields are read-only after
// training, so a loaded model is safe for concurrent prediction.
type Model struct {
	Width  int // patch width the model was trained at
	Height int // patch height the model was trained at

	Mean   []float64   // per-pixel mean of the training corpus, length Width*Height
	Basis  [][]float64 // principal component rows, each length Width*Height
	Coords [][]float64 // projected training samples, parallel to Labels
	Labels []int       // subject ID per training sample

	TrainedAt time.Time
}

// Components returns the number of retained principal components.
func (m *Model) Components() int {
	return len(m.Basis)
}

// SampleCount returns the number of training samples the model holds.
func (m *Model) SampleCount() int {
	return len(m.Labels)
}

// SubjectCount returns the number of distinct subjects in the model.
func (m *Model) SubjectCount() int {
	seen := make(map[int]struct{}, len(m.Labels))
	for _, label := range m.Labels {
		seen[label] = struct{}{}
	}
	return len(seen)
}

// Save writes the model next to its final path and renames it into place, so
// readers observe either the previous model or the new one, never a partial
// file.
func (m *Model) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".model-*.gob")
	if err != nil {
		return fmt.Errorf("failed to create temp model file: %w", err)
	}
	tmpName := tmp.Name()

	if err := gob.NewEncoder(tmp).Encode(m); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to encode model: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync model file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close model file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace model file: %w", err)
	}
	return nil
}

// Load reads a model from disk. A missing file reports ErrNoModel; a model
// trained at a different patch size than width x height reports
// ErrIncompatibleModel. Pass zero dimensions to skip the size check.
func Load(path string, width, height int) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoModel
		}
		return nil, fmt.Errorf("failed to open model file: %w", err)
	}
	defer f.Close()

	var m Model
	if err := gob.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode model file: %w", err)
	}

	if width > 0 && height > 0 && (m.Width != width || m.Height != height) {
		return nil, fmt.Errorf("%w: trained at %dx%d, configured %dx%d",
			ErrIncompatibleModel, m.Width, m.Height, width, height)
	}
	return &m, nil
}
