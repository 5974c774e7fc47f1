// Command indexer runs the offline build pipeline: it reads the raw JSON
// document corpus, builds the lexicon, forward index, inverted index,
// partitions postings into barrels, and derives the autocomplete buckets,
// writing every artifact cmd/searcher's loadIndexes expects at startup.
//
// Exit codes follow spec.md §6: 0 on success, non-zero on any fatal IO or
// parse error, with a human-readable message on stderr — the same
// try/catch-to-exit-code-1 shape as original_source/backend/cpp/barrels_binary.cpp.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/scisearch/engine/internal/autocomplete"
	"github.com/scisearch/engine/internal/barrel"
	"github.com/scisearch/engine/internal/forwardindex"
	"github.com/scisearch/engine/internal/invertedindex"
	"github.com/scisearch/engine/internal/lexicon"
	"github.com/scisearch/engine/internal/tokenizer"
	"github.com/scisearch/engine/pkg/config"
	"github.com/scisearch/engine/pkg/logger"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "indexer: %v\n", err)
		os.Exit(1)
	}
	slog.Info("offline build pipeline completed")
}

// jsonDoc mirrors the CORD-19-style shape original_source/backend/py's
// extract_text_from_file reads: metadata.title (or a top-level title),
// abstract as a list of {text}, and body_text as a list of {text}.
type jsonDoc struct {
	PaperID  string `json:"paper_id"`
	Title    string `json:"title"`
	Metadata struct {
		Title string `json:"title"`
	} `json:"metadata"`
	Abstract []struct {
		Text string `json:"text"`
	} `json:"abstract"`
	BodyText []struct {
		Text string `json:"text"`
	} `json:"body_text"`
}

func run(cfg *config.Config) error {
	p := cfg.Paths
	base := filepath.Join(p.DataDir, p.IndexesDir)
	if err := os.MkdirAll(base, 0o755); err != nil {
		return fmt.Errorf("creating indexes dir %s: %w", base, err)
	}
	if err := os.MkdirAll(filepath.Join(base, filepath.Dir(p.LexiconBinaryFile)), 0o755); err != nil {
		return fmt.Errorf("creating embeddings dir: %w", err)
	}

	corpusDir, err := findJSONDataDir(p.DataDir, p.JSONData)
	if err != nil {
		return err
	}
	files, err := jsonFilesIn(corpusDir)
	if err != nil {
		return err
	}
	slog.Info("found source documents", "dir", corpusDir, "count", len(files))

	lex := lexicon.New()
	resolver := tokenizer.NewResolver(lex)
	builder := forwardindex.NewBuilder(resolver, cfg.Indexing.MaxBodyTerms)
	fwd := &forwardindex.Index{}

	docFrequency := make(map[string]int) // surface word -> document frequency, for autocomplete
	bigramFrequency := make(map[string]int)
	trigramFrequency := make(map[string]int)

	for _, path := range files {
		doc, err := readJSONDoc(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		record, _, err := builder.Build(doc)
		if err != nil {
			return fmt.Errorf("building forward index entry for %s: %w", path, err)
		}
		fwd.Add(record)
		if record == nil {
			continue
		}
		tallyWordAndNgramDF(doc.Title, docFrequency, bigramFrequency, trigramFrequency)
	}

	slog.Info("forward index built",
		"documents", fwd.DocumentCount(),
		"lexicon_words", lex.Size(),
		"lexicon_lemmas", lex.LemmaCount(),
	)

	if err := forwardindex.Save(fwd, filepath.Join(base, p.ForwardIndexFile)); err != nil {
		return fmt.Errorf("saving forward index: %w", err)
	}
	if err := lexicon.SaveText(lex, filepath.Join(base, p.LexiconFile)); err != nil {
		return fmt.Errorf("saving text lexicon: %w", err)
	}
	if err := lexicon.SaveBinary(lex, filepath.Join(base, p.LexiconBinaryFile)); err != nil {
		return fmt.Errorf("saving binary lexicon: %w", err)
	}

	inv := invertedindex.Build(fwd)
	if err := invertedindex.Save(inv, filepath.Join(base, p.InvertedIndexFile)); err != nil {
		return fmt.Errorf("saving inverted index: %w", err)
	}
	slog.Info("inverted index built", "lemmas", inv.LemmaCount())

	thresholds := barrel.Thresholds{
		HotDF:       cfg.Indexing.HotDFThreshold,
		WarmDF:      cfg.Indexing.WarmDFThreshold,
		WarmBarrels: cfg.Indexing.WarmBarrelCount,
		ColdBarrels: cfg.Indexing.ColdBarrelCount,
	}
	result, err := barrel.Build(inv, filepath.Join(base, p.BarrelsBinaryDir), thresholds)
	if err != nil {
		return fmt.Errorf("building barrels: %w", err)
	}
	if err := barrel.SaveLookupTable(result.LookupTable, filepath.Join(base, p.BarrelLookup)); err != nil {
		return fmt.Errorf("saving barrel lookup table: %w", err)
	}
	slog.Info("barrels written", "per_barrel", result.PerBarrel)

	acStore := autocomplete.NewStore(cfg.Autocomplete.TwoCharBucket, cfg.Autocomplete.ThreeCharBucket, cfg.Autocomplete.BigramBucket)
	for word, df := range docFrequency {
		acStore.AddWord(word, df)
	}
	for phrase, df := range bigramFrequency {
		acStore.AddNgram(phrase, df)
	}
	for phrase, df := range trigramFrequency {
		acStore.AddNgram(phrase, df)
	}
	if err := acStore.SavePrefixBuckets(filepath.Join(base, p.AutocompleteFile)); err != nil {
		return fmt.Errorf("saving autocomplete prefix buckets: %w", err)
	}
	if err := acStore.SaveNgramBuckets(filepath.Join(base, p.NgramAutocomplete)); err != nil {
		return fmt.Errorf("saving autocomplete n-gram buckets: %w", err)
	}
	slog.Info("autocomplete buckets built", "words", len(docFrequency), "bigrams", len(bigramFrequency), "trigrams", len(trigramFrequency))

	return nil
}

// findJSONDataDir walks dataRoot looking for a directory named jsonDataName,
// mirroring original_source/backend/py/lexicon.py's os.walk search for the
// pmc-json folder rather than requiring a fixed path.
func findJSONDataDir(dataRoot, jsonDataName string) (string, error) {
	var found string
	err := filepath.WalkDir(dataRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if found != "" {
			return filepath.SkipAll
		}
		if d.IsDir() && d.Name() == jsonDataName {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("searching for %s under %s: %w", jsonDataName, dataRoot, err)
	}
	if found == "" {
		return "", fmt.Errorf("could not find %s folder under %s", jsonDataName, dataRoot)
	}
	return found, nil
}

func jsonFilesIn(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

func readJSONDoc(path string) (forwardindex.RawDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return forwardindex.RawDocument{}, err
	}
	var doc jsonDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return forwardindex.RawDocument{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	title := doc.Metadata.Title
	if title == "" {
		title = doc.Title
	}
	var abstract strings.Builder
	for _, a := range doc.Abstract {
		abstract.WriteString(a.Text)
		abstract.WriteString(" ")
	}
	var body strings.Builder
	for _, b := range doc.BodyText {
		body.WriteString(b.Text)
		body.WriteString(" ")
	}

	docID := docIDFromPath(doc.PaperID, path)
	return forwardindex.RawDocument{
		DocID:    docID,
		Title:    title,
		Abstract: abstract.String(),
		Body:     body.String(),
	}, nil
}

// docIDFromPath derives a document-ID from the JSON's paper_id field,
// falling back to the file's base name; both are truncated to the
// on-disk document-ID limit (spec.md §9, docid.MaxLen bytes).
func docIDFromPath(paperID, path string) string {
	id := paperID
	if id == "" {
		id = strings.TrimSuffix(filepath.Base(path), ".json")
	}
	const maxLen = 19
	if len(id) > maxLen {
		id = id[:maxLen]
	}
	return id
}

// tallyWordAndNgramDF folds a title's words and adjacent-word bigrams and
// trigrams into per-phrase document-frequency counters, the input the
// autocomplete buckets are ranked by.
func tallyWordAndNgramDF(title string, words, bigrams, trigrams map[string]int) {
	tokens := tokenizer.Split(title)
	surface := make([]string, len(tokens))
	for i, t := range tokens {
		surface[i] = t.Word
		words[t.Word]++
	}
	for i := 0; i+1 < len(surface); i++ {
		bigrams[surface[i]+" "+surface[i+1]]++
	}
	for i := 0; i+2 < len(surface); i++ {
		trigrams[surface[i]+" "+surface[i+1]+" "+surface[i+2]]++
	}
}
