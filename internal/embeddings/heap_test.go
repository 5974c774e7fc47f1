package embeddings

import "testing"

func TestTopKHeapKeepsHighestSimilarities(t *testing.T) {
	h := newTopKHeap(2)
	h.offer(candidate{index: 0, similarity: 0.1})
	h.offer(candidate{index: 1, similarity: 0.9})
	h.offer(candidate{index: 2, similarity: 0.5})

	sorted := h.sorted()
	if len(sorted) != 2 {
		t.Fatalf("got %d items, want 2", len(sorted))
	}
	if sorted[0].index != 1 || sorted[1].index != 2 {
		t.Errorf("sorted = %+v, want [index=1 (0.9), index=2 (0.5)]", sorted)
	}
}

func TestTopKHeapZeroCapacityKeepsNothing(t *testing.T) {
	h := newTopKHeap(0)
	h.offer(candidate{index: 0, similarity: 1.0})
	if len(h.sorted()) != 0 {
		t.Error("a zero-capacity heap should never retain candidates")
	}
}

func TestTopKHeapTieBreaksByLowerIndex(t *testing.T) {
	h := newTopKHeap(1)
	h.offer(candidate{index: 5, similarity: 0.5})
	h.offer(candidate{index: 2, similarity: 0.5})

	sorted := h.sorted()
	if len(sorted) != 1 || sorted[0].index != 2 {
		t.Errorf("sorted = %+v, want the lower index (2) to survive the tie", sorted)
	}
}

func TestTopKHeapNegativeKClampsToZero(t *testing.T) {
	h := newTopKHeap(-3)
	h.offer(candidate{index: 0, similarity: 1.0})
	if len(h.sorted()) != 0 {
		t.Error("negative k should behave like k=0")
	}
}
