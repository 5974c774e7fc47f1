package query

import "strings"

// Plan is a parsed query: the raw text alongside the explicit AND/OR mode
// and any NOT-prefixed exclusion terms a caller typed. Exclusion is an
// ambient convenience on top of spec.md's literal mode semantics — it
// narrows the candidate set before AND/OR filtering runs, it does not
// replace it.
type Plan struct {
	RawQuery     string
	Mode         Mode
	ExcludeWords []string
}

// Parse extracts an explicit AND/OR/NOT grammar from free text, defaulting
// to AND mode when no operator is present. Operator tokens are stripped
// before the remaining text is handed to the tokenizer/lemma resolver, so
// "covid AND vaccine" and "covid vaccine" resolve to the same term set.
func Parse(q string) Plan {
	plan := Plan{RawQuery: q, Mode: ModeAND}
	if strings.TrimSpace(q) == "" {
		return plan
	}

	words := strings.Fields(q)
	kept := make([]string, 0, len(words))
	excludeNext := false
	for _, w := range words {
		switch strings.ToUpper(w) {
		case "AND":
			plan.Mode = ModeAND
			continue
		case "OR":
			plan.Mode = ModeOR
			continue
		case "NOT":
			excludeNext = true
			continue
		}
		if excludeNext {
			plan.ExcludeWords = append(plan.ExcludeWords, strings.ToLower(w))
			excludeNext = false
			continue
		}
		kept = append(kept, w)
	}
	plan.RawQuery = strings.Join(kept, " ")
	return plan
}
