package classify

import (
	"fmt"
	"math"
)

// Prediction is the interpreted result of one inference.
type Prediction struct {
	// Disease is the class name with the highest probability.
	Disease string `json:"disease"`
	// Confidence is the top probability as a percentage, rounded to two
	// decimal places for display.
	Confidence float64 `json:"confidence"`
	// Breakdown carries the raw, unrounded probability per class.
	Breakdown map[string]float32 `json:"all_predictions"`
}

// Interpret maps a softmax vector onto the class catalog. The argmax is
// stable: when two entries tie, the lower index wins.
func Interpret(probs []float32, classes []string) (Prediction, error) {
	if len(classes) == 0 {
		return Prediction{}, fmt.Errorf("class catalog is empty")
	}
	if len(probs) != len(classes) {
		return Prediction{}, fmt.Errorf("probability vector has %d entries for %d classes", len(probs), len(classes))
	}

	maxIdx := 0
	maxVal := probs[0]
	breakdown := make(map[string]float32, len(classes))
	for i, p := range probs {
		breakdown[classes[i]] = p
		if p > maxVal {
			maxVal = p
			maxIdx = i
		}
	}

	return Prediction{
		Disease:    classes[maxIdx],
		Confidence: roundConfidence(maxVal),
		Breakdown:  breakdown,
	}, nil
}

// roundConfidence converts a probability to a percentage with two decimals.
func roundConfidence(p float32) float64 {
	return math.Round(float64(p)*100*100) / 100
}
