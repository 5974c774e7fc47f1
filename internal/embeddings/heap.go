package embeddings

import "sort"

// candidate is one (vocabulary index, cosine similarity) pair under
// consideration for a top-K result.
type candidate struct {
	index      int
	similarity float64
}

// less orders candidates so the heap's root is the "worst" one to evict:
// lowest similarity first, and among equal similarities the one with the
// higher index (so the lower index wins ties and survives eviction).
func less(a, b candidate) bool {
	if a.similarity != b.similarity {
		return a.similarity < b.similarity
	}
	return a.index > b.index
}

// topKHeap is a fixed-capacity binary min-heap (by the eviction-worst
// ordering in less) used to find the k highest-similarity candidates in
// O(V log k) instead of sorting the full vocabulary.
type topKHeap struct {
	k     int
	items []candidate
}

func newTopKHeap(k int) *topKHeap {
	if k < 0 {
		k = 0
	}
	return &topKHeap{k: k, items: make([]candidate, 0, k)}
}

func (h *topKHeap) offer(c candidate) {
	if h.k == 0 {
		return
	}
	if len(h.items) < h.k {
		h.items = append(h.items, c)
		h.up(len(h.items) - 1)
		return
	}
	if len(h.items) == 0 || !less(h.items[0], c) {
		return
	}
	h.items[0] = c
	h.down(0)
}

func (h *topKHeap) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !less(h.items[i], h.items[parent]) {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *topKHeap) down(i int) {
	n := len(h.items)
	for {
		left, right := 2*i+1, 2*i+2
		smallest := i
		if left < n && less(h.items[left], h.items[smallest]) {
			smallest = left
		}
		if right < n && less(h.items[right], h.items[smallest]) {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}

// sorted returns the heap's contents ordered best-first: highest
// similarity first, ties broken by lower vocabulary index.
func (h *topKHeap) sorted() []candidate {
	out := append([]candidate(nil), h.items...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].similarity != out[j].similarity {
			return out[i].similarity > out[j].similarity
		}
		return out[i].index < out[j].index
	})
	return out
}
