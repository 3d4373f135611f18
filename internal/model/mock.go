package model

import (
	"fmt"
)

// defaultClasses matches the catalog the reference model was exported with.
var defaultClasses = []string{"Early Blight", "Late Blight", "Healthy"}

// MockEngine is an Engine implementation for tests and local development.
// It returns a fixed probability vector without requiring the ONNX shared
// library or a model artifact.
type MockEngine struct {
	// Meta is the metadata reported to callers; exported so tests can shrink
	// the input resolution.
	Meta Metadata
	// Output is the probability vector returned for every classification.
	Output []float32
	// ShouldError makes Classify fail with ErrorMessage.
	ShouldError bool
	// ErrorMessage overrides the default mock error text.
	ErrorMessage string
	// CallCount tracks how many times Classify was invoked.
	CallCount int
}

// NewMock creates a MockEngine over the default three-class catalog with
// "Healthy" as the dominant prediction.
func NewMock() *MockEngine {
	return NewMockWithOutput(defaultClasses, []float32{0.1, 0.2, 0.7})
}

// NewMockWithOutput creates a MockEngine returning the given vector for the
// given class catalog.
func NewMockWithOutput(classes []string, output []float32) *MockEngine {
	return &MockEngine{
		Meta: Metadata{
			InputShape:  []int64{1, 256, 256, 3},
			OutputShape: []int64{1, int64(len(classes))},
			Classes:     classes,
			ImageSize:   256,
		},
		Output: output,
	}
}

func (m *MockEngine) Classify(input []float32) ([]float32, error) {
	m.CallCount++

	if m.ShouldError {
		if m.ErrorMessage != "" {
			return nil, fmt.Errorf("%s", m.ErrorMessage)
		}
		return nil, fmt.Errorf("mock inference error")
	}

	if len(input) != m.Meta.InputSize() {
		return nil, fmt.Errorf("input has %d values, model expects %d", len(input), m.Meta.InputSize())
	}

	probs := make([]float32, len(m.Output))
	copy(probs, m.Output)
	return probs, nil
}

func (m *MockEngine) Metadata() Metadata {
	return m.Meta
}

func (m *MockEngine) Ready() bool {
	return true
}

func (m *MockEngine) Close() error {
	return nil
}

// SetError configures the mock to fail subsequent Classify calls.
func (m *MockEngine) SetError(msg string) {
	m.ShouldError = true
	m.ErrorMessage = msg
}

// ClearError clears a configured error.
func (m *MockEngine) ClearError() {
	m.ShouldError = false
	m.ErrorMessage = ""
}

var _ Engine = (*MockEngine)(nil)
