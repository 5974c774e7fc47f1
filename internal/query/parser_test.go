package query

import "testing"

func TestParseDefaultsToAND(t *testing.T) {
	plan := Parse("covid vaccine")
	if plan.Mode != ModeAND {
		t.Errorf("Mode = %v, want AND when no operator present", plan.Mode)
	}
	if plan.RawQuery != "covid vaccine" {
		t.Errorf("RawQuery = %q, want unchanged text", plan.RawQuery)
	}
}

func TestParseExplicitOR(t *testing.T) {
	plan := Parse("covid OR vaccine")
	if plan.Mode != ModeOR {
		t.Errorf("Mode = %v, want OR", plan.Mode)
	}
	if plan.RawQuery != "covid vaccine" {
		t.Errorf("RawQuery = %q, operator should be stripped", plan.RawQuery)
	}
}

func TestParseNotExtractsExclusions(t *testing.T) {
	plan := Parse("covid NOT vaccine")
	if len(plan.ExcludeWords) != 1 || plan.ExcludeWords[0] != "vaccine" {
		t.Fatalf("ExcludeWords = %v, want [vaccine]", plan.ExcludeWords)
	}
	if plan.RawQuery != "covid" {
		t.Errorf("RawQuery = %q, want covid", plan.RawQuery)
	}
}

func TestParseEmptyQuery(t *testing.T) {
	plan := Parse("   ")
	if plan.RawQuery != "   " {
		t.Errorf("RawQuery for blank input changed unexpectedly: %q", plan.RawQuery)
	}
	if plan.Mode != ModeAND {
		t.Errorf("Mode = %v, want default AND", plan.Mode)
	}
}

func TestParseCaseInsensitiveOperators(t *testing.T) {
	plan := Parse("covid and vaccine or mask")
	if plan.Mode != ModeOR {
		t.Errorf("Mode = %v, want OR (last operator wins)", plan.Mode)
	}
}
