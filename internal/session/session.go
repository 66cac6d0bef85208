// Package session owns the per-session state of one check-out or check-in
// workflow: the uploaded images, the detections attributed to each image,
// manual corrections, and the comparison result once reconciliation has been
// requested. All state is session-local and dies with the session.
package session

import (
	"errors"

	"github.com/avialab/toolkiosk/internal/reconcile"
)

// State is the session lifecycle phase.
type State string

const (
	// StateEmpty: no images, no detections.
	StateEmpty State = "empty"
	// StateUploading: at least one image attached, recognition may still
	// be in flight for some of them.
	StateUploading State = "uploading"
	// StateScanned: every attached image has its recognition result.
	StateScanned State = "scanned"
	// StateReconciled: a comparison result is attached and current.
	StateReconciled State = "reconciled"
)

// Source records how a detected tool entered the session.
type Source string

const (
	SourceRecognition Source = "recognition"
	SourceManual      Source = "manual"
)

// Condition of a returned tool, assessed by the operator.
type Condition string

const (
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
	ConditionPoor      Condition = "poor"
)

// DetectedTool is one observation of a tool, produced by recognition or
// entered manually. ID is session-local; CanonicalID, when non-zero, ties
// the observation to a toolkit tool. The two identifier spaces never mix.
type DetectedTool struct {
	ID           string    `json:"id"`
	Source       Source    `json:"source"`
	CanonicalID  int       `json:"canonical_id,omitempty"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	SerialNumber string    `json:"serial_number,omitempty"`
	Confidence   float64   `json:"confidence"`
	Quantity     int       `json:"quantity"`
	Condition    Condition `json:"condition"`
}

// ImageResult associates one uploaded photo with the detections attributed
// to it.
type ImageResult struct {
	FileName          string         `json:"file_name"`
	Tools             []DetectedTool `json:"tools"`
	HandCheck         bool           `json:"hand_check"`
	ProcessedImageURL string         `json:"processed_image_url,omitempty"`
	MLPredictions     []float64      `json:"ml_predictions"`
}

// imageEntry is one uploaded image in upload order. Result stays nil while
// recognition is in flight.
type imageEntry struct {
	fileName string
	data     []byte
	result   *ImageResult
}

var (
	ErrDuplicateImage = errors.New("an image with this file name is already attached")
	ErrNoSuchImage    = errors.New("no image with this file name is attached")
	ErrNoSuchTool     = errors.New("no detected tool with this id")
)

// Edit is a partial update applied to a detected tool from the review
// dialog. Nil fields are left unchanged.
type Edit struct {
	Name      *string
	Quantity  *int
	Condition *Condition
}

// Snapshot is an immutable view of the session handed to callers and to the
// pure aggregation/reconciliation functions.
type Snapshot struct {
	ID         string                      `json:"session_id"`
	State      State                       `json:"state"`
	Images     []ImageResult               `json:"images"`
	Tools      []DetectedTool              `json:"tools"`
	TotalQty   int                         `json:"total_quantity"`
	HandCheck  bool                        `json:"hand_check"`
	Error      string                      `json:"error,omitempty"`
	Comparison *reconcile.ComparisonResult `json:"comparison_result,omitempty"`
}
