package lexicon

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// textDoc is the JSON-on-disk shape of the textual lexicon representation
// (lexicon.json): parallel arrays of words and their lemma assignments,
// matching the layout original_source/backend/py/lexicon.py writes.
type textDoc struct {
	Words         []string         `json:"words"`
	WordToLemmaID []int32          `json:"wordToLemmaID"`
	LemmaNames    []string         `json:"lemmaNames"`
}

// SaveText writes the textual (compat) lexicon representation to path.
func SaveText(l *Lexicon, path string) error {
	l.mu.RLock()
	doc := textDoc{
		Words:         append([]string(nil), l.words...),
		WordToLemmaID: append([]int32(nil), l.wordToLemma...),
		LemmaNames:    append([]string(nil), l.lemmaNames...),
	}
	l.mu.RUnlock()

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("lexicon: marshaling text representation: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("lexicon: writing %s: %w", path, err)
	}
	return nil
}

// LoadText reads the textual lexicon representation from path.
func LoadText(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lexicon: reading %s: %w", path, err)
	}
	var doc textDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("lexicon: parsing %s: %w", path, err)
	}
	lemmas := make([]string, len(doc.Words))
	for i, lid := range doc.WordToLemmaID {
		if int(lid) >= len(doc.LemmaNames) {
			return nil, fmt.Errorf("lexicon: word %d references out-of-range lemma %d", i, lid)
		}
		lemmas[i] = doc.LemmaNames[lid]
	}
	return LoadSeed(doc.Words, lemmas)
}

// SaveBinary writes the fast binary lexicon representation (spec.md §4.B):
// header numWords:u32, then numWords records of (wordLen:u16, wordBytes),
// then numWords of lemma-ID:i32 positionally aligned with the word section.
// Word-ID equals 0-based position in the file.
func SaveBinary(l *Lexicon, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("lexicon: creating %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	l.mu.RLock()
	words := append([]string(nil), l.words...)
	lemmaOf := append([]int32(nil), l.wordToLemma...)
	l.mu.RUnlock()

	if err := binary.Write(w, binary.LittleEndian, uint32(len(words))); err != nil {
		return fmt.Errorf("lexicon: writing header: %w", err)
	}
	for _, word := range words {
		if len(word) > 0xFFFF {
			return fmt.Errorf("lexicon: word %q exceeds max encodable length", word)
		}
		if err := binary.Write(w, binary.LittleEndian, uint16(len(word))); err != nil {
			return fmt.Errorf("lexicon: writing word length: %w", err)
		}
		if _, err := w.WriteString(word); err != nil {
			return fmt.Errorf("lexicon: writing word bytes: %w", err)
		}
	}
	for _, lemmaID := range lemmaOf {
		if err := binary.Write(w, binary.LittleEndian, lemmaID); err != nil {
			return fmt.Errorf("lexicon: writing lemma id: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("lexicon: flushing %s: %w", path, err)
	}
	return f.Sync()
}

// LoadBinary reads the fast binary lexicon representation. Lemma names are
// reconstructed as "lemma#<id>" placeholders since the binary format does
// not carry canonical lemma text (only IDs); callers that need lemma text
// should prefer LoadText or cross-reference the forward index.
func LoadBinary(path string) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lexicon: opening %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)

	var numWords uint32
	if err := binary.Read(r, binary.LittleEndian, &numWords); err != nil {
		return nil, fmt.Errorf("lexicon: reading header of %s: %w", path, err)
	}

	words := make([]string, numWords)
	for i := range words {
		var wordLen uint16
		if err := binary.Read(r, binary.LittleEndian, &wordLen); err != nil {
			return nil, fmt.Errorf("lexicon: reading word length %d: %w", i, err)
		}
		buf := make([]byte, wordLen)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("lexicon: reading word bytes %d: %w", i, err)
		}
		words[i] = string(buf)
	}

	lemmaIDs := make([]int32, numWords)
	for i := range lemmaIDs {
		if err := binary.Read(r, binary.LittleEndian, &lemmaIDs[i]); err != nil {
			return nil, fmt.Errorf("lexicon: reading lemma id %d: %w", i, err)
		}
	}

	maxLemma := int32(-1)
	for _, id := range lemmaIDs {
		if id > maxLemma {
			maxLemma = id
		}
	}
	lemmaNames := make([]string, maxLemma+1)
	for i := range lemmaNames {
		lemmaNames[i] = fmt.Sprintf("lemma#%d", i)
	}

	l := New()
	for i, word := range words {
		l.extendLocked(word, lemmaNames[lemmaIDs[i]])
	}
	return l, nil
}
