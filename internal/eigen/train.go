package eigen

import (
	"errors"
	"fmt"
	"image"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LabeledPatch is one training input: a canonical grayscale patch and the
// subject it belongs to.
type LabeledPatch struct {
	Label int
	Patch *image.Gray
}

// Train learns a projection model from the corpus. Each patch is flattened to
// a vector of pixel intensities, the corpus is centered on its mean and the
// principal components come from a thin SVD of the centered sample matrix.
// Components with negligible singular values are dropped, so a single-sample
// corpus legitimately yields a zero-component model.
func Train(patches []LabeledPatch, width, height int) (*Model, error) {
	if len(patches) == 0 {
		return nil, ErrNoSamples
	}

	n := len(patches)
	d := width * height

	rows := make([][]float64, n)
	labels := make([]int, n)
	for i, p := range patches {
		b := p.Patch.Bounds()
		if b.Dx() != width || b.Dy() != height {
			return nil, fmt.Errorf("sample %d is %dx%d, expected %dx%d", i, b.Dx(), b.Dy(), width, height)
		}
		rows[i] = flatten(p.Patch, width, height)
		labels[i] = p.Label
	}

	mean := make([]float64, d)
	for _, row := range rows {
		floats.Add(mean, row)
	}
	floats.Scale(1/float64(n), mean)
	for _, row := range rows {
		floats.Sub(row, mean)
	}

	backing := make([]float64, 0, n*d)
	for _, row := range rows {
		backing = append(backing, row...)
	}
	data := mat.NewDense(n, d, backing)

	var svd mat.SVD
	if ok := svd.Factorize(data, mat.SVDThin); !ok {
		return nil, errors.New("failed to factorize sample matrix")
	}

	var v mat.Dense
	svd.VTo(&v)
	sigma := svd.Values(nil)

	// Singular values arrive sorted descending; cut once they fall below a
	// small fraction of the largest one.
	var tol float64
	if len(sigma) > 0 {
		tol = sigma[0] * 1e-9
	}
	var basis [][]float64
	for k, s := range sigma {
		if s <= tol {
			break
		}
		component := make([]float64, d)
		mat.Col(component, k, &v)
		basis = append(basis, component)
	}

	m := &Model{
		Width:     width,
		Height:    height,
		Mean:      mean,
		Basis:     basis,
		Labels:    labels,
		TrainedAt: time.Now(),
	}
	m.Coords = make([][]float64, n)
	for i := range rows {
		m.Coords[i] = project(basis, rows[i])
	}
	return m, nil
}
