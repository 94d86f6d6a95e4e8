package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"
)

// ModelVersion is bumped whenever the persisted layout changes.
const ModelVersion = 1

// ErrNoModel is returned when a model file does not exist.
var ErrNoModel = errors.New("classifier model not found")

// Model is a trained multinomial logistic regression over tf-idf features.
type Model struct {
	Version    int         `json:"version"`
	Classes    []string    `json:"classes"`
	Vectorizer *Vectorizer `json:"vectorizer"`
	Weights    [][]float64 `json:"weights"`
	Bias       []float64   `json:"bias"`
	TrainedAt  time.Time   `json:"trained_at"`
	Examples   int         `json:"examples"`
}

// Probabilities returns the per-class probability of text, aligned with Classes.
func (m *Model) Probabilities(text string) []float64 {
	return m.probabilities(m.Vectorizer.transform(text))
}

func (m *Model) probabilities(x []feature) []float64 {
	scores := make([]float64, len(m.Classes))
	for c := range m.Classes {
		s := m.Bias[c]
		w := m.Weights[c]
		for _, f := range x {
			s += w[f.index] * f.value
		}
		scores[c] = s
	}
	return softmax(scores)
}

// Predict returns the most probable class. ok is false for an empty model.
func (m *Model) Predict(text string) (string, float64, bool) {
	if m == nil || len(m.Classes) == 0 || m.Vectorizer == nil {
		return "", 0, false
	}
	probs := m.Probabilities(text)
	best := 0
	for i := range probs {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return m.Classes[best], probs[best], true
}

// Save writes the model as JSON, replacing path atomically.
func (m *Model) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace model: %w", err)
	}
	return nil
}

// LoadModel reads a model written by Save.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoModel
		}
		return nil, fmt.Errorf("read model: %w", err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if m.Version != ModelVersion {
		return nil, fmt.Errorf("unsupported model version %d", m.Version)
	}
	if m.Vectorizer == nil || len(m.Weights) != len(m.Classes) || len(m.Bias) != len(m.Classes) {
		return nil, errors.New("corrupt model: class dimensions do not match")
	}
	for _, w := range m.Weights {
		if len(w) != m.Vectorizer.Size() {
			return nil, errors.New("corrupt model: feature dimensions do not match")
		}
	}
	return &m, nil
}

func softmax(scores []float64) []float64 {
	maxScore := math.Inf(-1)
	for _, s := range scores {
		maxScore = math.Max(maxScore, s)
	}
	out := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		out[i] = math.Exp(s - maxScore)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
