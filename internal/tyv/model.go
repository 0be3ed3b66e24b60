//go:build !notyv

package tyv

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"vocabbie/internal/config"
	"vocabbie/internal/session"
)

// tyvScale matches the original scoring tool's calibration constant
// (§4.1); the model's raw output is a fraction of this.
const tyvScale = 45000.0

var (
	envMu          sync.Mutex
	envInitialized bool
)

// Model wraps a loaded ONNX network that maps a learner's broad/narrow
// recall responses onto a vocabulary size estimate (§4.1).
type Model struct {
	session            *ort.DynamicAdvancedSession
	broadLen, narrowLen int
}

// NewModel loads the ONNX model referenced by cfg.ModelPath. Returns
// ErrDisabled if the model is turned off in configuration.
func NewModel(cfg config.TyvConfig, broadLen, narrowLen int) (*Model, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	envMu.Lock()
	if !envInitialized {
		if err := ort.InitializeEnvironment(); err != nil {
			envMu.Unlock()
			return nil, fmt.Errorf("tyv: initialize onnxruntime: %w", err)
		}
		envInitialized = true
	}
	envMu.Unlock()

	sess, err := ort.NewDynamicAdvancedSession(
		cfg.ModelPath,
		[]string{"broad", "narrow"},
		[]string{"output"},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("tyv: load model %s: %w", cfg.ModelPath, err)
	}

	return &Model{session: sess, broadLen: broadLen, narrowLen: narrowLen}, nil
}

// Close releases the underlying ONNX session.
func (m *Model) Close() error {
	return m.session.Destroy()
}

// Estimate builds the broad/narrow evidence vectors (+1 recalled, -1
// not recalled, 0 unseen) from history and runs inference, scaling
// the result by tyvScale (§4.1).
func (m *Model) Estimate(history []session.HistoryItem) (uint64, error) {
	broad := make([]float32, m.broadLen)
	narrow := make([]float32, m.narrowLen)

	for _, h := range history {
		v := float32(-1.0)
		if h.Correct {
			v = 1.0
		}
		pos := int(h.ID)
		switch {
		case pos < m.broadLen:
			broad[pos] = v
		case pos-m.broadLen < m.narrowLen:
			narrow[pos-m.broadLen] = v
		}
	}

	broadTensor, err := ort.NewTensor(ort.NewShape(1, int64(m.broadLen)), broad)
	if err != nil {
		return 0, fmt.Errorf("tyv: broad tensor: %w", err)
	}
	defer broadTensor.Destroy()

	narrowTensor, err := ort.NewTensor(ort.NewShape(1, int64(m.narrowLen)), narrow)
	if err != nil {
		return 0, fmt.Errorf("tyv: narrow tensor: %w", err)
	}
	defer narrowTensor.Destroy()

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		return 0, fmt.Errorf("tyv: output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	if err := m.session.Run(
		[]ort.Value{broadTensor, narrowTensor},
		[]ort.Value{outputTensor},
	); err != nil {
		return 0, fmt.Errorf("tyv: run inference: %w", err)
	}

	raw := outputTensor.GetData()[0]
	return uint64(float64(raw) * tyvScale), nil
}
