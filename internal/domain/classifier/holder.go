package classifier

import (
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Holder serves predictions from a model that can be swapped at runtime.
// It predicts nothing until a model is loaded.
type Holder struct {
	path  string
	model atomic.Pointer[Model]
	log   zerolog.Logger
}

func NewHolder(path string, log zerolog.Logger) *Holder {
	return &Holder{path: path, log: log.With().Str("component", "intent-classifier").Logger()}
}

// Predict implements report.Predictor.
func (h *Holder) Predict(text string) (string, float64, bool) {
	m := h.model.Load()
	if m == nil {
		return "", 0, false
	}
	return m.Predict(text)
}

// Set installs m as the active model.
func (h *Holder) Set(m *Model) {
	h.model.Store(m)
}

// Model returns the active model, or nil.
func (h *Holder) Model() *Model {
	return h.model.Load()
}

// Reload reads the model file again. A missing file leaves the holder
// empty and is reported as loaded=false without an error; a corrupt file
// keeps the previous model.
func (h *Holder) Reload() (loaded bool, err error) {
	if h.path == "" {
		return false, nil
	}
	m, err := LoadModel(h.path)
	if errors.Is(err, ErrNoModel) {
		h.model.Store(nil)
		h.log.Warn().Str("path", h.path).Msg("no classifier model on disk; rules only")
		return false, nil
	}
	if err != nil {
		h.log.Error().Err(err).Str("path", h.path).Msg("load classifier model")
		return false, err
	}
	h.model.Store(m)
	h.log.Info().
		Str("path", h.path).
		Strs("classes", m.Classes).
		Int("examples", m.Examples).
		Msg("classifier model loaded")
	return true, nil
}
