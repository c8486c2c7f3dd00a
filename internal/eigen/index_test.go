package eigen

import (
	"testing"
)

func TestIndex_BuildAndSearch(t *testing.T) {
	m := trainedTestModel(t)

	ix := NewIndex()
	ix.Build(m)

	if ix.Count() != m.SampleCount() {
		t.Errorf("expected %d indexed samples, got %d", m.SampleCount(), ix.Count())
	}

	coords, err := m.Project(verticalFace(0))
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	neighbors, err := ix.Search(coords, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(neighbors) != 2 {
		t.Fatalf("expected 2 neighbors, got %d", len(neighbors))
	}

	// The probe is training sample 0, so it must come back first with a
	// near-zero distance (float32 rounding applies inside the index).
	if neighbors[0].Sample != 0 {
		t.Errorf("expected nearest neighbor to be sample 0, got %d", neighbors[0].Sample)
	}
	if neighbors[0].Label != 1 {
		t.Errorf("expected nearest label 1, got %d", neighbors[0].Label)
	}
	if neighbors[0].Distance > 1.0 {
		t.Errorf("expected near-zero distance for own sample, got %f", neighbors[0].Distance)
	}

	for _, n := range neighbors {
		if n.Label != m.Labels[n.Sample] {
			t.Errorf("neighbor label %d disagrees with model label %d for sample %d",
				n.Label, m.Labels[n.Sample], n.Sample)
		}
	}
}

func TestIndex_NeighborsOrderedByDistance(t *testing.T) {
	m := trainedTestModel(t)
	ix := NewIndex()
	ix.Build(m)

	coords, err := m.Project(verticalFace(2))
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}

	neighbors, err := ix.Search(coords, 4)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for i := 1; i < len(neighbors); i++ {
		if neighbors[i].Distance < neighbors[i-1].Distance {
			t.Errorf("neighbors out of order: %f before %f", neighbors[i-1].Distance, neighbors[i].Distance)
		}
	}
}

func TestIndex_SearchUnbuilt(t *testing.T) {
	ix := NewIndex()

	if _, err := ix.Search([]float64{1, 2, 3}, 1); err == nil {
		t.Fatal("expected error for unbuilt index")
	}
}

func TestIndex_BuildNilClearsIndex(t *testing.T) {
	m := trainedTestModel(t)
	ix := NewIndex()
	ix.Build(m)
	if ix.Count() == 0 {
		t.Fatal("expected populated index")
	}

	ix.Build(nil)

	if ix.Count() != 0 {
		t.Errorf("expected cleared index, got %d samples", ix.Count())
	}
	if _, err := ix.Search([]float64{0}, 1); err == nil {
		t.Error("expected error after clearing the index")
	}
}
