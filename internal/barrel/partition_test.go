package barrel

import "testing"

func TestClassifyHot(t *testing.T) {
	if b := DefaultThresholds.Classify(5, 10001); b != 0 {
		t.Errorf("df above HotDF classified as barrel %d, want 0", b)
	}
	if b := DefaultThresholds.Classify(5, 10000); b == 0 {
		t.Error("df == HotDF must not classify as hot")
	}
}

func TestClassifyWarmDistributesByLemmaModulus(t *testing.T) {
	th := DefaultThresholds
	for lemmaID := int32(0); lemmaID < int32(th.WarmBarrels); lemmaID++ {
		b := th.Classify(lemmaID, 5000) // WarmDF < 5000 <= HotDF
		want := 1 + int(lemmaID)
		if b != want {
			t.Errorf("Classify(lemma=%d, df=5000) = %d, want %d", lemmaID, b, want)
		}
	}
}

func TestClassifyColdDistributesByLemmaModulus(t *testing.T) {
	th := DefaultThresholds
	for lemmaID := int32(0); lemmaID < int32(th.ColdBarrels); lemmaID++ {
		b := th.Classify(lemmaID, th.WarmDF) // df == WarmDF -> cold
		want := 1 + th.WarmBarrels + int(lemmaID)
		if b != want {
			t.Errorf("Classify(lemma=%d, df=WarmDF) = %d, want %d", lemmaID, b, want)
		}
	}
}

func TestClassifyBoundaryIsStrict(t *testing.T) {
	th := DefaultThresholds
	// df == WarmDF must land in cold, not warm.
	b := th.Classify(0, th.WarmDF)
	if b == 1 {
		t.Error("df == WarmDF incorrectly classified as warm barrel 1")
	}
}

func TestTierLabels(t *testing.T) {
	th := DefaultThresholds
	if got := Tier(DeltaBarrelID, th); got != "delta" {
		t.Errorf("Tier(delta) = %q, want delta", got)
	}
	if got := Tier(0, th); got != "hot" {
		t.Errorf("Tier(0) = %q, want hot", got)
	}
	if got := Tier(1, th); got != "warm" {
		t.Errorf("Tier(1) = %q, want warm", got)
	}
	if got := Tier(1+th.WarmBarrels, th); got != "cold" {
		t.Errorf("Tier(first cold) = %q, want cold", got)
	}
}
