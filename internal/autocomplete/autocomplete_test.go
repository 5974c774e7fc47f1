package autocomplete

import "testing"

func TestAddWordPopulatesTwoAndThreeCharBuckets(t *testing.T) {
	s := NewStore(50, 50, 50)
	s.AddWord("vaccine", 10)

	if got := s.Suggest("va", 5); len(got) != 1 || got[0].Phrase != "vaccine" {
		t.Errorf("Suggest(va) = %+v, want [vaccine]", got)
	}
	if got := s.Suggest("vac", 5); len(got) != 1 || got[0].Phrase != "vaccine" {
		t.Errorf("Suggest(vac) = %+v, want [vaccine]", got)
	}
}

func TestAddWordSkipsShortWordsForTheirBucket(t *testing.T) {
	s := NewStore(50, 50, 50)
	s.AddWord("a", 5) // len 1: skipped by both buckets
	s.AddWord("ab", 5) // len 2: only the 2-char bucket

	if got := s.Suggest("a", 5); len(got) != 0 {
		t.Errorf("single-char prefix should not be looked up, got %+v", got)
	}
	if got := s.Suggest("ab", 5); len(got) != 1 {
		t.Errorf("Suggest(ab) = %+v, want [ab]", got)
	}
}

func TestSuggestOrdersByDFDescending(t *testing.T) {
	s := NewStore(50, 50, 50)
	s.AddWord("cat", 1)
	s.AddWord("car", 100)
	s.AddWord("cap", 50)

	got := s.Suggest("ca", 10)
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
	if got[0].Phrase != "car" || got[1].Phrase != "cap" || got[2].Phrase != "cat" {
		t.Errorf("order = %+v, want [car cap cat] (DF descending)", got)
	}
}

func TestBucketTruncatesAtLimit(t *testing.T) {
	s := NewStore(2, 50, 50)
	s.AddWord("aaa", 1)
	s.AddWord("aab", 2)
	s.AddWord("aac", 3)

	got := s.twoChar["aa"]
	if len(got) != 2 {
		t.Fatalf("2-char bucket has %d entries, want capped at limit 2", len(got))
	}
	if got[0].Phrase != "aac" || got[1].Phrase != "aab" {
		t.Errorf("bucket kept the wrong top-2 entries: %+v", got)
	}
}

func TestThreeCharPreferredThenToppedUpFromTwoChar(t *testing.T) {
	s := NewStore(50, 50, 50)
	s.AddWord("cart", 10)  // 3-char key "car"
	s.AddWord("cargo", 20) // 3-char key "car" too
	s.AddWord("cast", 5)   // only reachable via the 2-char "ca" bucket for a "car" prefix

	got := s.Suggest("car", 10)
	if len(got) != 2 {
		t.Fatalf("got %d entries for a 3-char prefix, want 2 (cart, cargo)", len(got))
	}
	for _, e := range got {
		if e.Phrase == "cast" {
			t.Errorf("Suggest(car) should not include %q", e.Phrase)
		}
	}
}

func TestSuggestDedupesAcrossBuckets(t *testing.T) {
	s := NewStore(50, 50, 50)
	s.AddWord("cat", 5)

	got := s.Suggest("ca", 10)
	seen := map[string]int{}
	for _, e := range got {
		seen[e.Phrase]++
	}
	for phrase, count := range seen {
		if count > 1 {
			t.Errorf("phrase %q appeared %d times, want at most once", phrase, count)
		}
	}
}

func TestAddNgramKeyedByFirstWord(t *testing.T) {
	s := NewStore(50, 50, 50)
	s.AddNgram("machine learning", 30)
	s.AddNgram("machine vision", 10)

	got := s.Suggest("machine l", 10)
	if len(got) != 1 || got[0].Phrase != "machine learning" {
		t.Errorf("Suggest(machine l) = %+v, want [machine learning]", got)
	}
}

func TestSuggestDefaultsMaxItemsWhenNonPositive(t *testing.T) {
	s := NewStore(50, 50, 50)
	for _, w := range []string{"cat", "car", "cap", "can", "cab", "cad"} {
		s.AddWord(w, 1)
	}
	got := s.Suggest("ca", 0)
	if len(got) != 5 {
		t.Errorf("got %d entries with maxItems<=0, want default of 5", len(got))
	}
}

func TestAddWordUpdatesDFOnRepeatedInsert(t *testing.T) {
	s := NewStore(50, 50, 50)
	s.AddWord("vaccine", 5)
	s.AddWord("vaccine", 50)

	got := s.Suggest("va", 5)
	if len(got) != 1 || got[0].DF != 50 {
		t.Errorf("Suggest(va) = %+v, want a single entry with DF=50", got)
	}
}
