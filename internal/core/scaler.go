package core

import (
	"encoding/json"
	"fmt"
	"os"
)

// StandardScaler applies the per-feature (x - mean) / scale transform fitted
// at training time. The parameters are exported alongside the model as a
// JSON side-file.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func LoadScaler(path string) (*StandardScaler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scaler StandardScaler
	if err := json.Unmarshal(data, &scaler); err != nil {
		return nil, fmt.Errorf("invalid scaler parameters: %w", err)
	}

	if len(scaler.Mean) == 0 || len(scaler.Mean) != len(scaler.Scale) {
		return nil, fmt.Errorf("scaler mean/scale length mismatch: %d vs %d", len(scaler.Mean), len(scaler.Scale))
	}
	for i, s := range scaler.Scale {
		if s == 0 {
			return nil, fmt.Errorf("scaler has zero scale for feature %d", i)
		}
	}

	return &scaler, nil
}

func (s *StandardScaler) Transform(features []float64) ([]float32, error) {
	if len(features) != len(s.Mean) {
		return nil, fmt.Errorf("scaler expects %d features, got %d", len(s.Mean), len(features))
	}

	scaled := make([]float32, len(features))
	for i, v := range features {
		scaled[i] = float32((v - s.Mean[i]) / s.Scale[i])
	}
	return scaled, nil
}
