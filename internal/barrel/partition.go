// Package barrel implements the frequency-partitioned barrel system: the
// classification of lemmas into hot/warm/cold partitions (spec component
// E), the binary .bin/.idx codec (component F), and the in-memory offset
// index that serves O(1) posting-list lookups with delta-barrel merging.
package barrel

// Count is the number of primary barrels. Barrel IDs 0-9 are primary;
// DeltaBarrelID (conceptually barrel 10) holds incrementally added
// documents and is served alongside whichever primary barrel a lemma maps
// to.
const Count = 10

// DeltaBarrelID identifies the delta ("new-docs") barrel maintained by the
// incremental indexer. It is not one of the Count primary barrels.
const DeltaBarrelID = 10

// Thresholds holds the document-frequency boundaries and modulus counts
// used to classify lemmas into barrels (spec.md §3, confirmed against
// original_source/backend/cpp/barrels.cpp). Both comparisons are strict:
// df == HotDF is warm, not hot; df == WarmDF is cold, not warm.
type Thresholds struct {
	HotDF        int // df > HotDF -> barrel 0 ("hot")
	WarmDF       int // WarmDF < df <= HotDF -> warm barrels
	WarmBarrels  int // number of warm barrels (1..WarmBarrels)
	ColdBarrels  int // number of cold barrels (WarmBarrels+1..WarmBarrels+ColdBarrels)
}

// DefaultThresholds are the spec.md constants: hot above 10000, warm above
// 1000 up to and including 10000, 6 warm barrels, 3 cold barrels.
var DefaultThresholds = Thresholds{
	HotDF:       10000,
	WarmDF:      1000,
	WarmBarrels: 6,
	ColdBarrels: 3,
}

// Classify returns the primary barrel-ID for a lemma given its document
// frequency, per spec.md §3/§4.E:
//   - df > HotDF               -> barrel 0
//   - WarmDF < df <= HotDF     -> barrel 1 + (lemmaID mod WarmBarrels)
//   - df <= WarmDF             -> barrel (1+WarmBarrels) + (lemmaID mod ColdBarrels)
func (t Thresholds) Classify(lemmaID int32, df int) int {
	switch {
	case df > t.HotDF:
		return 0
	case df > t.WarmDF:
		return 1 + int(mod(lemmaID, int32(t.WarmBarrels)))
	default:
		return 1 + t.WarmBarrels + int(mod(lemmaID, int32(t.ColdBarrels)))
	}
}

// mod returns a non-negative modulus for a non-negative lemmaID (lemma IDs
// are always >= 0 by construction, but this guards against misuse).
func mod(a, n int32) int32 {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

// Tier reports which frequency class a barrel-ID belongs to, used for
// metrics labeling (pkg/metrics barrel_lookups_total).
func Tier(barrelID int, t Thresholds) string {
	switch {
	case barrelID == DeltaBarrelID:
		return "delta"
	case barrelID == 0:
		return "hot"
	case barrelID <= t.WarmBarrels:
		return "warm"
	default:
		return "cold"
	}
}
