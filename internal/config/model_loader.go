package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/utakatalp/league-predictor/internal/league"
)

// ModelConfig tunes the hybrid predictor.
type ModelConfig struct {
	Alpha    float64 `yaml:"alpha"`
	MaxGoals int     `yaml:"max_goals"`
	TopN     int     `yaml:"top_n"`
}

func DefaultModel() ModelConfig {
	return ModelConfig{
		Alpha:    league.DefaultAlpha,
		MaxGoals: league.DefaultMaxGoals,
		TopN:     league.DefaultTopN,
	}
}

// LoadModel reads the YAML model file. An empty path returns the defaults;
// keys missing from the file keep their default values.
func LoadModel(path string) (ModelConfig, error) {
	model := DefaultModel()
	if path == "" {
		return model, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ModelConfig{}, fmt.Errorf("read model config: %w", err)
	}
	if err := yaml.Unmarshal(data, &model); err != nil {
		return ModelConfig{}, fmt.Errorf("parse model config: %w", err)
	}
	if model.Alpha < 0 || model.Alpha > 1 {
		return ModelConfig{}, fmt.Errorf("model config: alpha %.2f outside [0,1]", model.Alpha)
	}
	if model.MaxGoals < 1 {
		return ModelConfig{}, fmt.Errorf("model config: max_goals must be at least 1, got %d", model.MaxGoals)
	}
	if model.TopN < 1 {
		return ModelConfig{}, fmt.Errorf("model config: top_n must be at least 1, got %d", model.TopN)
	}
	return model, nil
}

// Batch builds the batch predictor described by the model config.
func (m ModelConfig) Batch(workers int) *league.Batch {
	return &league.Batch{
		Predictor: league.NewPredictor(m.Alpha, m.MaxGoals),
		Workers:   workers,
		TopN:      m.TopN,
	}
}
