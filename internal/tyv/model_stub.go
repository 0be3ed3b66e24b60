//go:build notyv

package tyv

import (
	"vocabbie/internal/config"
	"vocabbie/internal/session"
)

// Model is the notyv stand-in: recall-tyv is refused by every
// constructor, keeping the rest of the server buildable without the
// onnxruntime_go cgo dependency.
type Model struct{}

func NewModel(cfg config.TyvConfig, broadLen, narrowLen int) (*Model, error) {
	return nil, ErrNotCompiled
}

func (m *Model) Estimate(history []session.HistoryItem) (uint64, error) {
	return 0, ErrNotCompiled
}

func (m *Model) Close() error { return nil }
