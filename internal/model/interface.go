package model

// Engine is the classification contract the HTTP facade depends on.
// The abstraction keeps the ONNX runtime out of handler tests: the mock
// implementation stands in wherever a real session would be loaded.
type Engine interface {
	// Classify runs one inference over a flattened, normalized input tensor
	// and returns the softmax probability vector, one entry per class.
	Classify(input []float32) ([]float32, error)

	// Metadata returns the immutable descriptor established at load time.
	Metadata() Metadata

	// Ready reports whether a model has been loaded and can serve requests.
	Ready() bool

	// Close releases any resources held by the engine.
	Close() error
}
