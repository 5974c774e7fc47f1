package query

import "testing"

func TestIDFDecreasesWithDocumentFrequency(t *testing.T) {
	n := 1000
	rare := IDF(n, 1)
	common := IDF(n, 500)
	if rare <= common {
		t.Errorf("IDF(rare)=%v should exceed IDF(common)=%v", rare, common)
	}
}

func TestScoreMonotonicWithTermFrequency(t *testing.T) {
	p := DefaultBM25Params
	low := Score(1, 10, 1000, 100, 120, p)
	high := Score(10, 10, 1000, 100, 120, p)
	if high <= low {
		t.Errorf("Score should increase with tf: Score(tf=1)=%v, Score(tf=10)=%v", low, high)
	}
}

func TestScoreSaturatesWithTermFrequency(t *testing.T) {
	p := DefaultBM25Params
	high := Score(100, 10, 1000, 100, 120, p)
	veryHigh := Score(10000, 10, 1000, 100, 120, p)
	// BM25's tf term saturates; a 100x increase in raw tf should not
	// produce anywhere near a 100x increase in score.
	if veryHigh > high*2 {
		t.Errorf("BM25 score did not saturate: Score(tf=100)=%v, Score(tf=10000)=%v", high, veryHigh)
	}
}

func TestScorePenalizesLongerDocuments(t *testing.T) {
	p := DefaultBM25Params
	short := Score(5, 10, 1000, 50, 100, p)
	long := Score(5, 10, 1000, 500, 100, p)
	if long >= short {
		t.Errorf("a document 10x longer than average should score lower for the same tf: short=%v, long=%v", short, long)
	}
}

func TestScoreDegradedIncreasesWithTF(t *testing.T) {
	low := ScoreDegraded(1, 10, 1000)
	high := ScoreDegraded(10, 10, 1000)
	if high <= low {
		t.Errorf("ScoreDegraded should increase with tf: low=%v, high=%v", low, high)
	}
}

func TestScoreZeroDenominatorGuard(t *testing.T) {
	p := BM25Params{K1: 0, B: 0}
	got := Score(0, 10, 1000, 100, 100, p)
	if got != 0 {
		t.Errorf("Score with zero tf and k1=0 should hit the zero-denominator guard and return 0, got %v", got)
	}
}
