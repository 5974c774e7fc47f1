package barrel

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/scisearch/engine/internal/invertedindex"
	bcerrors "github.com/scisearch/engine/pkg/errors"
)

// barrelFile owns one barrel's offset map and its (lazily opened, then
// held-open) .bin read handle.
type barrelFile struct {
	binPath string
	offsets map[int32]idxEntry // nil means the .idx was absent: treat as empty
	handle  *os.File
}

func (b *barrelFile) openHandle() error {
	if b.offsets == nil {
		return nil
	}
	f, err := os.Open(b.binPath)
	if err != nil {
		return fmt.Errorf("barrel: opening %s: %w", b.binPath, err)
	}
	b.handle = f
	return nil
}

func (b *barrelFile) read(lemmaID int32) ([]byte, bool, error) {
	if b.offsets == nil || b.handle == nil {
		return nil, false, nil
	}
	entry, ok := b.offsets[lemmaID]
	if !ok {
		return nil, false, nil
	}
	buf := make([]byte, entry.Length)
	if _, err := b.handle.ReadAt(buf, entry.Offset); err != nil {
		return nil, true, fmt.Errorf("barrel: reading lemma %d at offset %d: %w", lemmaID, entry.Offset, err)
	}
	return buf, true, nil
}

// Index is the in-memory routing table mapping lemma-ID to barrel-ID and
// each barrel-ID to its held-open .bin handle and offset map. It is the
// single-process adaptation of the teacher's shard.Router idiom (own a map
// of ID -> owned resource, dispatch by ID, RWMutex-guarded) repurposed for
// barrel partitioning rather than multi-machine document sharding.
type Index struct {
	mu sync.RWMutex

	thresholds Thresholds
	lookup     map[int32]int // lemma-ID -> primary barrel-ID
	barrels    map[int]*barrelFile
	delta      *barrelFile

	logger *slog.Logger
}

// Open loads every primary barrel's .idx (and the delta barrel's .idx) from
// dir, and keeps their .bin files open for the process lifetime. Missing
// files are tolerated per spec.md §4.F failure semantics; a load error on
// an existing-but-corrupt .idx is fatal since it would otherwise silently
// under-serve every lemma routed to that barrel.
func Open(dir string, deltaBaseName string, thresholds Thresholds) (*Index, error) {
	idx := &Index{
		thresholds: thresholds,
		lookup:     make(map[int32]int),
		barrels:    make(map[int]*barrelFile, Count),
		logger:     slog.Default().With("component", "barrel-index"),
	}

	for id := 0; id < Count; id++ {
		binPath := filepath.Join(dir, fmt.Sprintf("barrel_%d.bin", id))
		idxPath := filepath.Join(dir, fmt.Sprintf("barrel_%d.idx", id))
		bf, err := loadBarrelFile(binPath, idxPath)
		if err != nil {
			idx.closeAll()
			return nil, fmt.Errorf("barrel: loading barrel %d: %w", id, err)
		}
		idx.barrels[id] = bf
		for lemmaID := range bf.offsets {
			idx.lookup[lemmaID] = id
		}
	}

	deltaBin := filepath.Join(dir, deltaBaseName+".bin")
	deltaIdx := filepath.Join(dir, deltaBaseName+".idx")
	delta, err := loadBarrelFile(deltaBin, deltaIdx)
	if err != nil {
		idx.closeAll()
		return nil, fmt.Errorf("barrel: loading delta barrel: %w", err)
	}
	idx.delta = delta

	idx.logger.Info("barrel index ready",
		"lemmas", len(idx.lookup),
		"delta_entries", len(delta.offsets),
	)
	return idx, nil
}

func loadBarrelFile(binPath, idxPath string) (*barrelFile, error) {
	offsets, err := ReadIdx(idxPath)
	if err != nil {
		return nil, err
	}
	bf := &barrelFile{binPath: binPath, offsets: offsets}
	if err := bf.openHandle(); err != nil {
		return nil, err
	}
	return bf, nil
}

func (idx *Index) closeAll() {
	for _, bf := range idx.barrels {
		if bf.handle != nil {
			bf.handle.Close()
		}
	}
	if idx.delta != nil && idx.delta.handle != nil {
		idx.delta.handle.Close()
	}
}

// Close releases every held-open .bin file handle.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.closeAll()
	return nil
}

// Lookup serves a posting-list lookup for lemmaID (spec.md §4.F "Serve"):
// it consults the in-memory lookup map for the primary barrel, reads and
// decodes that barrel's block, then unions in the delta barrel's block for
// the same lemma, skipping document-IDs already present in the primary
// list and incrementing df by the count of new, non-duplicate delta
// postings. A missing primary barrel entry with a delta entry present
// still returns the delta-only result. Lookup never panics on corrupt
// input: a decode failure on one side degrades to treating only that side
// as unavailable, wrapped in bcerrors.ErrCodecCorrupt for the caller to log
// and count.
func (idx *Index) Lookup(lemmaID int32) (*Block, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	primaryID, hasPrimary := idx.lookup[lemmaID]

	var primary *Block
	var primaryErr error
	if hasPrimary {
		bf := idx.barrels[primaryID]
		raw, found, err := bf.read(lemmaID)
		switch {
		case err != nil:
			primaryErr = fmt.Errorf("%w: %v", bcerrors.ErrCodecCorrupt, err)
		case found:
			block, decErr := DecodeBlock(raw)
			if decErr != nil {
				primaryErr = fmt.Errorf("%w: %v", bcerrors.ErrCodecCorrupt, decErr)
			} else {
				primary = block
			}
		}
	}

	deltaRaw, deltaFound, deltaErr := idx.delta.read(lemmaID)
	var delta *Block
	if deltaErr == nil && deltaFound {
		block, decErr := DecodeBlock(deltaRaw)
		if decErr == nil {
			delta = block
		}
	}

	merged := mergeBlocks(lemmaID, primary, delta)
	if merged == nil {
		if primaryErr != nil {
			return nil, primaryErr
		}
		return nil, nil
	}
	return merged, nil
}

// mergeBlocks implements the delta-merge rule of spec.md §4.F step 4: union
// postings from primary and delta, deduping by document-ID, with delta
// contributing only postings not already present in primary. The merge is
// idempotent across repeated reads — re-merging the same primary/delta pair
// always yields the same result (spec.md §9 design note).
func mergeBlocks(lemmaID int32, primary, delta *Block) *Block {
	if primary == nil && delta == nil {
		return nil
	}
	if delta == nil {
		return primary
	}
	if primary == nil {
		return delta
	}

	seen := make(map[string]struct{}, len(primary.Postings))
	postings := make([]invertedindex.Posting, 0, len(primary.Postings)+len(delta.Postings))
	for _, p := range primary.Postings {
		seen[p.DocID] = struct{}{}
		postings = append(postings, p)
	}
	newFromDelta := 0
	for _, p := range delta.Postings {
		if _, dup := seen[p.DocID]; dup {
			continue
		}
		seen[p.DocID] = struct{}{}
		postings = append(postings, p)
		newFromDelta++
	}

	return &Block{
		LemmaID:  lemmaID,
		DF:       primary.DF + int32(newFromDelta),
		Postings: postings,
	}
}

// BarrelForLemma returns which primary barrel-ID owns lemmaID, if known.
func (idx *Index) BarrelForLemma(lemmaID int32) (int, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	id, ok := idx.lookup[lemmaID]
	return id, ok
}

// Thresholds returns the classification thresholds the Index was built
// with.
func (idx *Index) Thresholds() Thresholds {
	return idx.thresholds
}

// RefreshDelta atomically swaps in a freshly reloaded delta barrel offset
// map and handle, published after the incremental indexer appends a new
// block (spec.md §5: "publishing an immutable snapshot pointer
// atomically"). The old handle is closed after the swap so in-flight reads
// against it still complete safely.
func (idx *Index) RefreshDelta(binPath, idxPath string) error {
	fresh, err := loadBarrelFile(binPath, idxPath)
	if err != nil {
		return fmt.Errorf("barrel: refreshing delta: %w", err)
	}

	idx.mu.Lock()
	old := idx.delta
	idx.delta = fresh
	idx.mu.Unlock()

	if old != nil && old.handle != nil {
		old.handle.Close()
	}
	return nil
}
