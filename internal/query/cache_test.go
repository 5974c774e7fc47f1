package query

import "testing"

func TestBuildKeyIgnoresWordOrder(t *testing.T) {
	c := &Cache{}
	a := c.buildKey("covid vaccine", ModeAND, false)
	b := c.buildKey("vaccine covid", ModeAND, false)
	if a != b {
		t.Errorf("buildKey should be order-independent: %q != %q", a, b)
	}
}

func TestBuildKeyDistinguishesMode(t *testing.T) {
	c := &Cache{}
	a := c.buildKey("covid vaccine", ModeAND, false)
	b := c.buildKey("covid vaccine", ModeOR, false)
	if a == b {
		t.Error("buildKey should differ between AND and OR mode for the same terms")
	}
}

func TestBuildKeyDistinguishesSemanticFlag(t *testing.T) {
	c := &Cache{}
	a := c.buildKey("covid vaccine", ModeAND, false)
	b := c.buildKey("covid vaccine", ModeAND, true)
	if a == b {
		t.Error("buildKey should differ between semantic on/off")
	}
}

func TestBuildKeyHonorsExplicitOperatorOverCallerMode(t *testing.T) {
	c := &Cache{}
	// "covid OR vaccine" has an explicit operator, so it should key the same
	// regardless of the caller-supplied mode, per normalizeForCache.
	a := c.buildKey("covid OR vaccine", ModeAND, false)
	b := c.buildKey("covid OR vaccine", ModeOR, false)
	if a != b {
		t.Error("an explicit operator in the query text should override the caller's mode for cache-key purposes")
	}
}

func TestNormalizeForCacheSeparatesExcludedWords(t *testing.T) {
	a := normalizeForCache("covid NOT vaccine", ModeAND)
	b := normalizeForCache("covid", ModeAND)
	if a == b {
		t.Error("a query with a NOT clause should normalize differently from one without")
	}
}
