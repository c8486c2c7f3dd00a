package eigen

import (
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Prediction is the nearest training sample for a probe.
type Prediction struct {
	Label  int     // subject ID of the nearest sample
	Score  float64 // Euclidean dissimilarity, lower = more similar
	Sample int     // index of the nearest sample in the model
}

// Predict projects the probe into the subspace and scans every stored sample
// for the minimum Euclidean distance. The scan is exact; the approximate
// index never participates in this decision.
func (m *Model) Predict(patch *image.Gray) (Prediction, error) {
	coords, err := m.Project(patch)
	if err != nil {
		return Prediction{}, err
	}

	best := Prediction{Sample: -1, Score: math.MaxFloat64}
	for i, sample := range m.Coords {
		d := EuclideanDistance(coords, sample)
		if d < best.Score {
			best = Prediction{Label: m.Labels[i], Score: d, Sample: i}
		}
	}
	if best.Sample < 0 {
		return Prediction{}, ErrNoSamples
	}
	return best, nil
}

// Project returns the subspace coordinates of a probe patch.
func (m *Model) Project(patch *image.Gray) ([]float64, error) {
	b := patch.Bounds()
	if b.Dx() != m.Width || b.Dy() != m.Height {
		return nil, fmt.Errorf("probe is %dx%d, model trained at %dx%d", b.Dx(), b.Dy(), m.Width, m.Height)
	}

	vec := flatten(patch, m.Width, m.Height)
	floats.Sub(vec, m.Mean)
	return project(m.Basis, vec), nil
}

// EuclideanDistance computes the L2 distance between two coordinate vectors.
// Mismatched lengths report maximum distance.
func EuclideanDistance(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.MaxFloat64
	}

	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// project computes the subspace coordinates of an already centered vector.
func project(basis [][]float64, centered []float64) []float64 {
	coords := make([]float64, len(basis))
	for k, component := range basis {
		coords[k] = floats.Dot(component, centered)
	}
	return coords
}

// flatten converts a patch to a row vector of pixel intensities (0-255).
func flatten(patch *image.Gray, width, height int) []float64 {
	b := patch.Bounds()
	vec := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			vec[y*width+x] = float64(patch.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
		}
	}
	return vec
}
