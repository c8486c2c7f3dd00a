package eigen

import (
	"errors"
	"math"
	"sync"

	"github.com/coder/hnsw"
)

// hnswMaxNeighbors is the HNSW M parameter controlling graph connectivity.
const hnswMaxNeighbors = 16

// Neighbor is one gallery sample returned by a nearest-sample query.
type Neighbor struct {
	Label    int     // subject ID of the sample
	Sample   int     // index into the model's stored samples
	Distance float64 // Euclidean distance in the projected space
}

// Index is an approximate nearest-neighbor view over a model's projected
// samples, for exploratory queries (which gallery faces look closest to a
// probe). Recognition decisions use Model.Predict's exact scan instead.
type Index struct {
	graph  *hnsw.Graph[int]
	labels []int
	mu     sync.RWMutex
}

func NewIndex() *Index {
	return &Index{}
}

// Build replaces the index contents with the model's projected samples.
// A nil or empty model clears the index.
func (ix *Index) Build(m *Model) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if m == nil || len(m.Coords) == 0 {
		ix.graph = nil
		ix.labels = nil
		return
	}

	g := hnsw.NewGraph[int]()
	g.M = hnswMaxNeighbors
	g.Ml = 1.0 / float64(hnswMaxNeighbors) // Standard HNSW formula
	g.Distance = hnsw.EuclideanDistance

	for i, coords := range m.Coords {
		vec := make([]float32, len(coords))
		for j, c := range coords {
			vec[j] = float32(c)
		}
		g.Add(hnsw.MakeNode(i, vec))
	}

	ix.graph = g
	ix.labels = append([]int(nil), m.Labels...)
}

// Search finds the k nearest stored samples to the projected query.
func (ix *Index) Search(coords []float64, k int) ([]Neighbor, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.graph == nil {
		return nil, errors.New("index not initialized")
	}

	query := make([]float32, len(coords))
	for i, c := range coords {
		query[i] = float32(c)
	}

	nodes := ix.graph.Search(query, k)
	neighbors := make([]Neighbor, 0, len(nodes))
	for _, n := range nodes {
		neighbors = append(neighbors, Neighbor{
			Label:    ix.labels[n.Key],
			Sample:   n.Key,
			Distance: euclideanDistance32(query, n.Value),
		})
	}
	return neighbors, nil
}

// Count returns the number of indexed samples.
func (ix *Index) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.labels)
}

// euclideanDistance32 computes the L2 distance between two float32 vectors.
func euclideanDistance32(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
