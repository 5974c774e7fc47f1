package barrel

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/scisearch/engine/internal/invertedindex"
)

// BuildResult summarizes one offline barrel-partitioning and write pass.
type BuildResult struct {
	LookupTable map[int32]int // lemma-ID -> barrel-ID
	PerBarrel   map[int]int   // barrel-ID -> lemma count written
}

// Build classifies every lemma in inv by document frequency (spec
// component E) and writes the resulting .bin/.idx pairs into dir (spec
// component F's Build operation). Write order within a barrel need not be
// lemma-ID order; this implementation preserves inv.Order for
// reproducibility.
func Build(inv *invertedindex.Index, dir string, thresholds Thresholds) (*BuildResult, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("barrel: creating %s: %w", dir, err)
	}

	byBarrel := make(map[int][]int32, Count)
	lookup := make(map[int32]int, len(inv.Order))

	for _, lemmaID := range inv.Order {
		list := inv.Lists[lemmaID]
		barrelID := thresholds.Classify(lemmaID, list.DF())
		byBarrel[barrelID] = append(byBarrel[barrelID], lemmaID)
		lookup[lemmaID] = barrelID
	}

	result := &BuildResult{LookupTable: lookup, PerBarrel: make(map[int]int, Count)}
	logger := slog.Default().With("component", "barrel-builder")

	for barrelID := 0; barrelID < Count; barrelID++ {
		lemmaIDs := byBarrel[barrelID]
		binPath := filepath.Join(dir, fmt.Sprintf("barrel_%d.bin", barrelID))
		idxPath := filepath.Join(dir, fmt.Sprintf("barrel_%d.idx", barrelID))
		if err := WriteBarrel(binPath, idxPath, inv.Lists, lemmaIDs); err != nil {
			return nil, fmt.Errorf("barrel: writing barrel %d: %w", barrelID, err)
		}
		result.PerBarrel[barrelID] = len(lemmaIDs)
		logger.Info("barrel written",
			"barrel_id", barrelID,
			"tier", Tier(barrelID, thresholds),
			"lemmas", len(lemmaIDs),
		)
	}

	return result, nil
}

// SaveLookupTable persists the lemma-ID -> barrel-ID map as JSON to path
// (barrel_lookup.json in spec.md §6's on-disk layout).
func SaveLookupTable(lookup map[int32]int, path string) error {
	return saveLookupJSON(lookup, path)
}
