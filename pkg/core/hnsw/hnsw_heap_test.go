package hnsw

import (
	"testing"

	"github.com/sanonone/kektorindex/pkg/core/types"
)

func TestMinHeapCorrectness(t *testing.T) {
	candidates := []types.Candidate{
		{Slot: 1, Score: 0.5},
		{Slot: 2, Score: 0.2},
		{Slot: 3, Score: 0.8},
		{Slot: 4, Score: 0.2}, // punteggio duplicato
	}

	h := new(minHeap)
	for _, c := range candidates {
		h.push(c)
	}

	// Il meno simile deve stare in cima
	if got := h.peek().Score; got != 0.2 {
		t.Fatalf("peek: got %f, want 0.2", got)
	}
	expectedOrder := []float64{0.2, 0.2, 0.5, 0.8}
	for i, want := range expectedOrder {
		if c := h.pop(); c.Score != want {
			t.Errorf("MinHeap pop %d: got score %f, want %f", i, c.Score, want)
		}
	}
}

func TestMaxHeapCorrectness(t *testing.T) {
	candidates := []types.Candidate{
		{Slot: 1, Score: 0.5},
		{Slot: 2, Score: 0.8},
		{Slot: 3, Score: -0.2},
		{Slot: 4, Score: 0.8},
	}

	h := new(maxHeap)
	for _, c := range candidates {
		h.push(c)
	}

	expectedOrder := []float64{0.8, 0.8, 0.5, -0.2}
	for i, want := range expectedOrder {
		if c := h.pop(); c.Score != want {
			t.Errorf("MaxHeap pop %d: got score %f, want %f", i, c.Score, want)
		}
	}
	if h.Len() != 0 {
		t.Errorf("heap should be empty, has %d items", h.Len())
	}
}
