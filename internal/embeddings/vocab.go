package embeddings

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadVocab reads the word -> index vocabulary map from vocab.json.
func LoadVocab(path string) (map[string]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("embeddings: reading vocab %s: %w", path, err)
	}
	var vocab map[string]int
	if err := json.Unmarshal(data, &vocab); err != nil {
		return nil, fmt.Errorf("embeddings: parsing vocab %s: %w", path, err)
	}
	return vocab, nil
}
