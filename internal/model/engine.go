package model

import (
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNXEngine wraps an ONNX runtime session with preallocated input/output
// tensors. The tensors are reused across calls, so Classify serializes behind
// a mutex: one inference in flight at a time. That is the safe default until
// the runtime's concurrency guarantees are confirmed for shared tensors.
type ONNXEngine struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	meta         Metadata
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

// NewONNXEngine loads the model described by metadataPath. The primary
// artifact is tried first; if it is absent on disk, the fallback weights
// artifact is used instead. Both missing is an unrecoverable startup failure.
// Artifact resolution happens before the runtime is initialized so a missing
// model never leaks an ONNX environment.
func NewONNXEngine(modelPath, fallbackPath, metadataPath string) (*ONNXEngine, error) {
	meta, err := LoadMetadata(metadataPath)
	if err != nil {
		return nil, err
	}

	artifact, err := resolveArtifact(modelPath, fallbackPath)
	if err != nil {
		return nil, err
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(meta.InputShape...))
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(meta.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(artifact,
		[]string{"input"}, []string{"output"},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create ONNX session from %s: %w", artifact, err)
	}

	return &ONNXEngine{
		session:      session,
		meta:         meta,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

func resolveArtifact(primary, fallback string) (string, error) {
	if _, err := os.Stat(primary); err == nil {
		return primary, nil
	}
	if fallback == "" {
		return "", fmt.Errorf("model artifact %s not found and no fallback configured", primary)
	}
	if _, err := os.Stat(fallback); err != nil {
		return "", fmt.Errorf("no model artifact available: neither %s nor fallback %s exists", primary, fallback)
	}
	return fallback, nil
}

// Classify runs one inference. The returned slice is a copy; the underlying
// output tensor is reused by the next call.
func (e *ONNXEngine) Classify(input []float32) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return nil, ErrUnavailable
	}

	if len(input) != e.meta.InputSize() {
		return nil, fmt.Errorf("input has %d values, model expects %d", len(input), e.meta.InputSize())
	}

	copy(e.inputTensor.GetData(), input)

	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	out := e.outputTensor.GetData()
	probs := make([]float32, len(out))
	copy(probs, out)
	return probs, nil
}

func (e *ONNXEngine) Metadata() Metadata {
	return e.meta
}

func (e *ONNXEngine) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session != nil
}

// Close destroys the session, the tensors, and the runtime environment.
func (e *ONNXEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.inputTensor != nil {
		e.inputTensor.Destroy()
		e.inputTensor = nil
	}
	if e.outputTensor != nil {
		e.outputTensor.Destroy()
		e.outputTensor = nil
	}
	if e.session != nil {
		e.session.Destroy()
		e.session = nil
	}
	return ort.DestroyEnvironment()
}

var _ Engine = (*ONNXEngine)(nil)
