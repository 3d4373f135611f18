// Package classify turns raw probability vectors into the labeled,
// human-readable prediction the API returns.
package classify

// Advisory is the static guidance returned alongside a prediction.
type Advisory struct {
	Status string   `json:"status"`
	Tips   []string `json:"tips"`
}

// AdvisoryBundle maps a class name to its advisory. The bundle is read-only
// configuration data established once at startup.
type AdvisoryBundle map[string]Advisory

// DefaultAdvisories returns the agronomy guidance for the potato-leaf
// catalog. Keys must match the class names in the model metadata.
func DefaultAdvisories() AdvisoryBundle {
	return AdvisoryBundle{
		"Healthy": {
			Status: "🟢 Healthy Potato Crop",
			Tips: []string{
				"Maintain irrigation.",
				"Apply balanced fertilizers.",
				"Monitor for signs of disease.",
			},
		},
		"Early Blight": {
			Status: "🟠 Early Blight Detected",
			Tips: []string{
				"Remove infected leaves immediately.",
				"Apply fungicides (Chlorothalonil).",
				"Improve air circulation.",
			},
		},
		"Late Blight": {
			Status: "🔴 Late Blight Detected (URGENT)",
			Tips: []string{
				"Destroy infected plants.",
				"Spray Metalaxyl or Mancozeb immediately.",
				"Isolate infected area.",
			},
		},
	}
}

// Lookup resolves the advisory for a label. An unknown label gets a defined
// fallback with empty tips: the prediction itself is still valid, so a
// missing advisory must never fail the request.
func (b AdvisoryBundle) Lookup(label string) Advisory {
	if adv, ok := b[label]; ok {
		return adv
	}
	return Advisory{Status: "No guidance available for " + label, Tips: []string{}}
}
