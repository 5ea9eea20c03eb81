package core

import (
	"encoding/json"
	"fmt"
	"os"
)

// Metadata holds the evaluation statistics recorded when the model was
// trained (accuracy, precision, recall, f1_score, confusion_matrix,
// classification_report). All keys are optional.
type Metadata map[string]any

// Value returns the stat for key, or "N/A" when it was not recorded.
func (m Metadata) Value(key string) any {
	if v, ok := m[key]; ok {
		return v
	}
	return "N/A"
}

// LoadMetadata reads the metadata JSON file. A missing file is reported via
// the underlying os error so callers can treat it as non-fatal; a malformed
// file is always an error.
func LoadMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var metadata Metadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("invalid model metadata: %w", err)
	}
	return metadata, nil
}
