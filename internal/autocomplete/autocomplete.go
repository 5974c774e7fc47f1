// Package autocomplete implements prefix-bucket completion (spec
// component H): 2-char and 3-char single-word buckets, plus a separate
// n-gram bucket for multi-word prefixes, each truncated to a configured
// size and ordered by document frequency descending.
package autocomplete

import (
	"sort"
	"strings"
)

// Entry is one completion candidate: a phrase (single word or multi-word
// n-gram) and its corpus document frequency.
type Entry struct {
	Phrase string
	DF     int
}

// Store holds the 2-char and 3-char single-word prefix buckets and the
// n-gram bucket for multi-word prefixes.
type Store struct {
	twoChar   map[string][]Entry
	threeChar map[string][]Entry
	ngram     map[string][]Entry

	twoCharLimit   int
	threeCharLimit int
	ngramLimit     int
}

// NewStore returns an empty Store with the given bucket size limits.
func NewStore(twoCharLimit, threeCharLimit, ngramLimit int) *Store {
	return &Store{
		twoChar:        make(map[string][]Entry),
		threeChar:      make(map[string][]Entry),
		ngram:          make(map[string][]Entry),
		twoCharLimit:   twoCharLimit,
		threeCharLimit: threeCharLimit,
		ngramLimit:     ngramLimit,
	}
}

// AddWord inserts a single surface word with its document frequency into
// the 2-char and (if long enough) 3-char buckets.
func (s *Store) AddWord(word string, df int) {
	word = strings.ToLower(word)
	if len(word) >= 2 {
		insertSorted(s.twoChar, word[:2], Entry{Phrase: word, DF: df}, s.twoCharLimit)
	}
	if len(word) >= 3 {
		insertSorted(s.threeChar, word[:3], Entry{Phrase: word, DF: df}, s.threeCharLimit)
	}
}

// AddNgram inserts a multi-word phrase (bigram or trigram) into the n-gram
// bucket keyed by the phrase's first word (see ngramKey).
func (s *Store) AddNgram(phrase string, df int) {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	if phrase == "" {
		return
	}
	key := ngramKey(phrase)
	insertSorted(s.ngram, key, Entry{Phrase: phrase, DF: df}, s.ngramLimit)
}

// ngramKey buckets n-grams by their first word, which is enough to narrow
// the candidate set for the filter-and-scan lookup below.
func ngramKey(phrase string) string {
	if i := strings.IndexByte(phrase, ' '); i >= 0 {
		return phrase[:i]
	}
	return phrase
}

func insertSorted(buckets map[string][]Entry, key string, e Entry, limit int) {
	list := buckets[key]
	for i, existing := range list {
		if existing.Phrase == e.Phrase {
			if e.DF > existing.DF {
				list[i] = e
				resort(list)
			}
			buckets[key] = list
			return
		}
	}
	list = append(list, e)
	resort(list)
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	buckets[key] = list
}

func resort(list []Entry) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].DF > list[j].DF
	})
}

// Suggest returns up to maxItems completions for prefix p, per spec.md
// §4.H: for multi-word prefixes (containing a space) consult only the
// n-gram bucket; for single-word prefixes consult the 3-char bucket first
// (if len(p)>=3), then top up from the 2-char bucket (if len(p)>=2),
// deduplicating by phrase and preserving df-descending order.
func (s *Store) Suggest(prefix string, maxItems int) []Entry {
	prefix = strings.ToLower(prefix)
	if maxItems <= 0 {
		maxItems = 5
	}

	if strings.Contains(prefix, " ") {
		return filterPrefix(s.ngram[ngramKey(prefix)], prefix, maxItems, nil)
	}

	seen := make(map[string]struct{})
	var out []Entry

	if len(prefix) >= 3 {
		out = filterPrefix(s.threeChar[prefix[:3]], prefix, maxItems, seen)
	}
	if len(out) < maxItems && len(prefix) >= 2 {
		remaining := maxItems - len(out)
		out = append(out, filterPrefix(s.twoChar[prefix[:2]], prefix, remaining, seen)...)
	}
	return out
}

func filterPrefix(bucket []Entry, prefix string, max int, seen map[string]struct{}) []Entry {
	out := make([]Entry, 0, max)
	for _, e := range bucket {
		if len(out) >= max {
			break
		}
		if !strings.HasPrefix(e.Phrase, prefix) {
			continue
		}
		if seen != nil {
			if _, dup := seen[e.Phrase]; dup {
				continue
			}
			seen[e.Phrase] = struct{}{}
		}
		out = append(out, e)
	}
	return out
}
