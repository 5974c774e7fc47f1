// Package embeddings loads GloVe-style binary word vectors and serves
// cosine-similarity top-K lookups for the query engine's semantic
// expansion stage (spec component G).
package embeddings

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"
)

// Dim is the engine's fixed embedding dimensionality. If a loaded file's
// header declares a different dimension, semantic expansion is disabled
// rather than failing the process (spec.md §4.G).
const Dim = 50

// Store holds L2-normalized word vectors and the word-to-index vocabulary.
type Store struct {
	vocab   map[string]int
	words   []string // index -> word, for reverse lookup and tie-breaking
	vectors [][]float64
	dim     int
	enabled bool
}

// Enabled reports whether semantic expansion is available. It is false
// when no embeddings file was loaded or its dimension did not match Dim.
func (s *Store) Enabled() bool {
	return s != nil && s.enabled
}

// Load reads the binary embeddings file (header numWords:u32, dim:u32,
// then numWords*dim float32 values, little-endian) and the word->index
// vocabulary, L2-normalizing every vector. If the file's dim does not
// equal Dim, the returned Store has Enabled()==false rather than an error,
// matching spec.md §4.G's "not fatal" degradation.
func Load(binPath string, vocab map[string]int) (*Store, error) {
	f, err := os.Open(binPath)
	if err != nil {
		return nil, fmt.Errorf("embeddings: opening %s: %w", binPath, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var numWords, dim uint32
	if err := binary.Read(r, binary.LittleEndian, &numWords); err != nil {
		return nil, fmt.Errorf("embeddings: reading header of %s: %w", binPath, err)
	}
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return nil, fmt.Errorf("embeddings: reading header of %s: %w", binPath, err)
	}

	words := make([]string, numWords)
	for word, idx := range vocab {
		if idx < 0 || uint32(idx) >= numWords {
			continue
		}
		words[idx] = word
	}

	vectors := make([][]float64, numWords)
	raw := make([]float32, dim)
	rawBytes := make([]byte, int(dim)*4)
	for i := uint32(0); i < numWords; i++ {
		if _, err := readFull(r, rawBytes); err != nil {
			return nil, fmt.Errorf("embeddings: reading vector %d of %s: %w", i, binPath, err)
		}
		for j := uint32(0); j < dim; j++ {
			bits := binary.LittleEndian.Uint32(rawBytes[j*4 : j*4+4])
			raw[j] = math.Float32frombits(bits)
		}
		vec := make([]float64, dim)
		for j, v := range raw {
			vec[j] = float64(v)
		}
		normalize(vec)
		vectors[i] = vec
	}

	store := &Store{
		vocab:   vocab,
		words:   words,
		vectors: vectors,
		dim:     int(dim),
		enabled: int(dim) == Dim,
	}
	return store, nil
}

func readFull(r *bufio.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// normalize scales v in place to unit L2 norm, guarding against a
// zero-vector division by leaving it unchanged (its similarity to anything
// is then always zero, which is the correct degenerate behavior).
func normalize(v []float64) {
	norm := floats.Norm(v, 2)
	if norm == 0 {
		return
	}
	floats.Scale(1/norm, v)
}

// Match is one (word, similarity) result from FindSimilar.
type Match struct {
	Word       string
	Similarity float64
}

// FindSimilar computes cosine similarity between word's vector and every
// vector in the store (reducing to a dot product since vectors are
// L2-normalized), returning the k highest via a bounded min-heap for
// O(V log k) (spec.md §4.G). Ties are broken by lower vocabulary index.
// Returns (nil, false) if word is unknown or the store is disabled.
func (s *Store) FindSimilar(word string, k int) ([]Match, bool) {
	if !s.Enabled() {
		return nil, false
	}
	idx, ok := s.vocab[word]
	if !ok || idx < 0 || idx >= len(s.vectors) {
		return nil, false
	}
	target := s.vectors[idx]

	h := newTopKHeap(k)
	for i, v := range s.vectors {
		if i == idx || v == nil {
			continue
		}
		sim := floats.Dot(target, v)
		h.offer(candidate{index: i, similarity: sim})
	}

	results := h.sorted()
	matches := make([]Match, 0, len(results))
	for _, c := range results {
		matches = append(matches, Match{Word: s.words[c.index], Similarity: c.similarity})
	}
	return matches, true
}

// Vector returns the normalized vector for word, if known.
func (s *Store) Vector(word string) ([]float64, bool) {
	idx, ok := s.vocab[word]
	if !ok {
		return nil, false
	}
	return s.vectors[idx], true
}
