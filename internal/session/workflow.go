package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/avialab/toolkiosk/internal/recognition"
	"github.com/avialab/toolkiosk/internal/reconcile"
	"github.com/avialab/toolkiosk/internal/toolkit"
)

// Session is the owner of one workflow instance. All access goes through
// the mutex; handlers for different sessions never share state.
type Session struct {
	id        string
	toolkitID int
	mu        sync.Mutex

	images     []imageEntry
	manual     []DetectedTool
	removed    map[string]struct{}
	comparison *reconcile.ComparisonResult
	lastError  string
}

func New(toolkitID int) *Session {
	return &Session{
		id:        uuid.NewString(),
		toolkitID: toolkitID,
		removed:   make(map[string]struct{}),
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) ToolkitID() int {
	return s.toolkitID
}

// state computes the lifecycle phase from the data (internal, no lock).
func (s *Session) state() State {
	if len(s.images) == 0 && len(s.manual) == 0 {
		return StateEmpty
	}
	for _, img := range s.images {
		if img.result == nil {
			return StateUploading
		}
	}
	if s.comparison != nil {
		return StateReconciled
	}
	return StateScanned
}

// invalidateComparison drops a stale comparison result after any mutation of
// the aggregate. It must be recomputed before being trusted again.
func (s *Session) invalidateComparison() {
	if s.comparison != nil {
		log.Debug().Str("sessionId", s.id).Msg("aggregate changed, discarding comparison result")
		s.comparison = nil
	}
}

// AddImage registers an uploaded photo and keeps its bytes for recognition.
// Returns ErrDuplicateImage when the file name is already attached: file
// names key the per-image results and must be unique within a session.
func (s *Session) AddImage(fileName string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, img := range s.images {
		if img.fileName == fileName {
			return ErrDuplicateImage
		}
	}
	s.images = append(s.images, imageEntry{fileName: fileName, data: data})
	s.invalidateComparison()
	log.Info().Str("sessionId", s.id).Str("fileName", fileName).Msg("image attached")
	return nil
}

// AttachResult records the recognition result for an attached image.
// Results arriving for an image that was removed in the meantime are
// discarded: a removed image must not resurrect its detections. Completions
// may arrive in any order; upload order is preserved for display.
func (s *Session) AttachResult(fileName string, result ImageResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.images {
		if s.images[i].fileName == fileName {
			s.purgeRemovedLocked(s.images[i].result)
			result.FileName = fileName
			s.images[i].result = &result
			s.invalidateComparison()
			return true
		}
	}
	log.Warn().Str("sessionId", s.id).Str("fileName", fileName).Msg("discarding recognition result for removed image")
	return false
}

// AddImageResult attaches an image together with its already-known
// detections in one step. No-op if the file name is already attached.
func (s *Session) AddImageResult(fileName string, result ImageResult) {
	if err := s.AddImage(fileName, nil); err != nil {
		return
	}
	s.AttachResult(fileName, result)
}

// RemoveImage detaches a photo and its detections. Manual entries survive.
// Removing the last image resets the session entirely.
func (s *Session) RemoveImage(fileName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.images {
		if s.images[i].fileName == fileName {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrNoSuchImage
	}
	s.purgeRemovedLocked(s.images[idx].result)
	s.images = append(s.images[:idx], s.images[idx+1:]...)
	s.invalidateComparison()
	log.Info().Str("sessionId", s.id).Str("fileName", fileName).Msg("image removed")

	if len(s.images) == 0 {
		s.resetLocked()
	}
	return nil
}

// AddManualTool appends an operator-entered tool. The entry gets a
// session-local id; if the name matches a kit tool exactly, the canonical id
// is recorded as well so reconciliation counts it against the kit.
func (s *Session) AddManualTool(name string, quantity int, condition Condition) DetectedTool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity < 1 {
		quantity = 1
	}
	if condition == "" {
		condition = ConditionGood
	}
	tool := DetectedTool{
		ID:         "manual_" + uuid.NewString(),
		Source:     SourceManual,
		Name:       name,
		Category:   name,
		Confidence: 1.0,
		Quantity:   quantity,
		Condition:  condition,
	}
	if t, ok := toolkit.ByName(name); ok {
		tool.CanonicalID = t.ID
		tool.Category = t.Category
		tool.SerialNumber = t.SerialNumber
	}
	s.manual = append(s.manual, tool)
	s.invalidateComparison()
	log.Info().Str("sessionId", s.id).Str("name", name).Int("quantity", quantity).Msg("manual tool added")
	return tool
}

// purgeRemovedLocked drops removal marks referencing detections of the given
// per-image result. Detection ids are positional per file name and repeat
// when the same file is re-attached or re-scanned, so a mark must not
// outlive the result that produced it.
func (s *Session) purgeRemovedLocked(result *ImageResult) {
	if result == nil {
		return
	}
	for _, t := range result.Tools {
		delete(s.removed, t.ID)
	}
}

// RemoveTool removes a detected tool by id from the aggregate, no matter
// which image produced it. Stored per-image results are not mutated; the
// tool is overlaid as removed.
func (s *Session) RemoveTool(toolID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range aggregate(s.images, s.manual, s.removed) {
		if t.ID == toolID {
			s.removed[toolID] = struct{}{}
			s.invalidateComparison()
			return nil
		}
	}
	return ErrNoSuchTool
}

// UpdateTool applies review-dialog edits to a detected tool.
func (s *Session) UpdateTool(toolID string, edit Edit) (DetectedTool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	apply := func(t *DetectedTool) {
		if edit.Name != nil {
			t.Name = *edit.Name
		}
		if edit.Quantity != nil && *edit.Quantity > 0 {
			t.Quantity = *edit.Quantity
		}
		if edit.Condition != nil {
			t.Condition = *edit.Condition
		}
	}

	for i := range s.images {
		if s.images[i].result == nil {
			continue
		}
		for j := range s.images[i].result.Tools {
			if s.images[i].result.Tools[j].ID == toolID {
				apply(&s.images[i].result.Tools[j])
				s.invalidateComparison()
				return s.images[i].result.Tools[j], nil
			}
		}
	}
	for i := range s.manual {
		if s.manual[i].ID == toolID {
			apply(&s.manual[i])
			s.invalidateComparison()
			return s.manual[i], nil
		}
	}
	return DetectedTool{}, ErrNoSuchTool
}

// SetComparison attaches a freshly computed comparison result, moving the
// session to Reconciled.
func (s *Session) SetComparison(result reconcile.ComparisonResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comparison = &result
}

// SetError records a session-visible error message. The aggregate is left
// untouched; the UI stays usable.
func (s *Session) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		s.lastError = ""
		return
	}
	s.lastError = err.Error()
}

// Reset discards all images, detections and derived state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	log.Info().Str("sessionId", s.id).Msg("reset session")
	s.images = nil
	s.manual = nil
	s.removed = make(map[string]struct{})
	s.comparison = nil
	s.lastError = ""
}

// Tools returns the aggregated detected-tool list.
func (s *Session) Tools() []DetectedTool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return aggregate(s.images, s.manual, s.removed)
}

// TotalQuantity sums quantities over the aggregate.
func (s *Session) TotalQuantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalQuantity(aggregate(s.images, s.manual, s.removed))
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

// Snapshot returns an immutable view of the whole session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	tools := aggregate(s.images, s.manual, s.removed)
	snap := Snapshot{
		ID:       s.id,
		State:    s.state(),
		Images:   make([]ImageResult, 0, len(s.images)),
		Tools:    tools,
		TotalQty: totalQuantity(tools),
		Error:    s.lastError,
	}
	snap.HandCheck = snap.TotalQty != toolkit.Size
	for _, img := range s.images {
		if img.result != nil {
			snap.Images = append(snap.Images, *img.result)
		}
	}
	if s.comparison != nil {
		c := *s.comparison
		snap.Comparison = &c
	}
	return snap
}

// ReturnedTools normalizes the aggregate for the reconciliation engine.
// Detections that map to a kit tool are keyed by canonical id; anything else
// is keyed by name via a zero tool_id, so session-local ids can never
// collide with canonical ones.
func (s *Session) ReturnedTools() []reconcile.ReturnedTool {
	s.mu.Lock()
	defer s.mu.Unlock()

	tools := aggregate(s.images, s.manual, s.removed)
	returned := make([]reconcile.ReturnedTool, 0, len(tools))
	for _, t := range tools {
		qty := t.Quantity
		if qty < 0 {
			qty = 0
		}
		returned = append(returned, reconcile.ReturnedTool{
			ToolID:       t.CanonicalID,
			Name:         t.Name,
			SerialNumber: t.SerialNumber,
			Quantity:     qty,
		})
	}
	return returned
}

// FromRecognition converts a gateway result into an ImageResult, stamping
// each detection with a session-local id.
func FromRecognition(fileName string, res recognition.Result) ImageResult {
	img := ImageResult{
		FileName:          fileName,
		Tools:             make([]DetectedTool, 0, len(res.Tools)),
		HandCheck:         res.HandCheck,
		ProcessedImageURL: res.ProcessedImageURL,
		MLPredictions:     res.MLPredictions,
	}
	for i, d := range res.Tools {
		img.Tools = append(img.Tools, DetectedTool{
			ID:           fmt.Sprintf("%s_%d", fileName, i),
			Source:       SourceRecognition,
			CanonicalID:  d.CanonicalID,
			Name:         d.Name,
			Category:     d.Category,
			SerialNumber: d.SerialNumber,
			Confidence:   d.Confidence,
			Quantity:     1,
			Condition:    ConditionGood,
		})
	}
	return img
}
