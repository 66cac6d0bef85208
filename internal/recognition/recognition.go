// Package recognition wraps the external ML detection service. The model
// itself is a black box behind POST /predict/; this package only ships
// images to it and normalizes what comes back.
package recognition

import "context"

// Detection is one tool observation reported by the service, validated and
// normalized at the gateway boundary.
type Detection struct {
	// CanonicalID is the toolkit id the service matched, 0 when the
	// detection does not correspond to a kit tool.
	CanonicalID  int     `json:"id"`
	Name         string  `json:"name"`
	SerialNumber string  `json:"serial_number"`
	Category     string  `json:"category"`
	Confidence   float64 `json:"confidence"`
}

// Result is the normalized response for one image.
type Result struct {
	Tools             []Detection `json:"tools"`
	HandCheck         bool        `json:"hand_check"`
	ProcessedImageURL string      `json:"processed_image_url,omitempty"`
	MLPredictions     []float64   `json:"ml_predictions"`
}

// Recognizer detects tools on a photographed tray. Implemented by Client;
// faked in tests.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, fileName string, toolkitID int, confidence float64) (Result, error)
}
