package barrel

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// saveLookupJSON writes the lemma-ID -> barrel-ID lookup table as a JSON
// object keyed by lemma-ID string, matching the on-disk shape of
// barrel_lookup.json in spec.md §6.
func saveLookupJSON(lookup map[int32]int, path string) error {
	out := make(map[string]int, len(lookup))
	for lemmaID, barrelID := range lookup {
		out[strconv.FormatInt(int64(lemmaID), 10)] = barrelID
	}
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("barrel: marshaling lookup table: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("barrel: writing %s: %w", path, err)
	}
	return nil
}

// LoadLookupTable reads a lemma-ID -> barrel-ID lookup table from path.
func LoadLookupTable(path string) (map[int32]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("barrel: reading %s: %w", path, err)
	}
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("barrel: parsing %s: %w", path, err)
	}
	out := make(map[int32]int, len(raw))
	for k, v := range raw {
		id, err := strconv.ParseInt(k, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("barrel: invalid lemma-ID key %q in %s: %w", k, path, err)
		}
		out[int32(id)] = v
	}
	return out, nil
}
