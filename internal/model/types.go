package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrUnavailable is returned when classification is requested before a model
// has been loaded. The facade surfaces it as a 503.
var ErrUnavailable = errors.New("model not loaded")

// Metadata is the architecture descriptor shipped alongside the model
// artifact: tensor shapes, the ordered class catalog, and the input
// resolution. The class order is fixed at export time and must match the
// model's output layer.
type Metadata struct {
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	Classes     []string `json:"classes"`
	ImageSize   int      `json:"image_size"`
}

// LoadMetadata reads and validates a metadata descriptor from disk.
func LoadMetadata(path string) (Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read model metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse model metadata: %w", err)
	}

	if err := meta.Validate(); err != nil {
		return Metadata{}, err
	}
	return meta, nil
}

// Validate checks internal consistency. A class catalog that disagrees with
// the model's output dimension is a startup failure, not something to paper
// over at request time.
func (m Metadata) Validate() error {
	if len(m.Classes) == 0 {
		return fmt.Errorf("model metadata declares no classes")
	}
	if m.ImageSize <= 0 {
		return fmt.Errorf("model metadata has invalid image_size %d", m.ImageSize)
	}
	if len(m.InputShape) == 0 || len(m.OutputShape) == 0 {
		return fmt.Errorf("model metadata is missing tensor shapes")
	}
	classDim := m.OutputShape[len(m.OutputShape)-1]
	if classDim != int64(len(m.Classes)) {
		return fmt.Errorf("model output dimension %d does not match %d declared classes", classDim, len(m.Classes))
	}
	return nil
}

// InputSize returns the flattened input tensor length.
func (m Metadata) InputSize() int {
	size := 1
	for _, dim := range m.InputShape {
		size *= int(dim)
	}
	return size
}

// OutputSize returns the flattened output tensor length.
func (m Metadata) OutputSize() int {
	size := 1
	for _, dim := range m.OutputShape {
		size *= int(dim)
	}
	return size
}
