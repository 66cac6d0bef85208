package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/avialab/toolkiosk/internal/confidence"
	"github.com/avialab/toolkiosk/internal/reconcile"
	"github.com/avialab/toolkiosk/internal/session"
	"github.com/avialab/toolkiosk/internal/storage"
	"github.com/avialab/toolkiosk/internal/toolkit"
)

// maxImageSize bounds uploaded photos (32 MiB, same as the recognition
// service's own limit).
const maxImageSize = 32 << 20

func (s *Server) handleGetConfidence(w http.ResponseWriter, r *http.Request) {
	v, err := s.confidence.GetConfidence(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"confidence": v})
}

type setConfidenceRequest struct {
	Confidence float64 `json:"confidence"`
}

type setConfidenceResponse struct {
	Success    bool    `json:"success"`
	Confidence float64 `json:"confidence"`
	Message    string  `json:"message"`
}

func (s *Server) handleSetConfidence(w http.ResponseWriter, r *http.Request) {
	var req setConfidenceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.confidence.SetConfidence(r.Context(), req.Confidence); err != nil {
		var verr *confidence.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, setConfidenceResponse{
				Success: false,
				Message: verr.Error(),
			})
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, setConfidenceResponse{
		Success:    true,
		Confidence: req.Confidence,
		Message:    fmt.Sprintf("confidence updated to %v", req.Confidence),
	})
}

func (s *Server) handleGetToolkit(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"toolkit_id": s.toolkitID,
		"tools":      toolkit.Standard,
		"size":       toolkit.Size,
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create(s.toolkitID)
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// handleUploadImage accepts one photo, runs recognition with the persisted
// threshold and attaches the result. On recognition failure the session's
// aggregate is left unchanged and the error is recorded on the session.
func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("bad multipart form: %w", err))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing image field: %w", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("failed to read image: %w", err))
		return
	}

	if err := sess.AddImage(header.Filename, data); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}

	conf, err := s.confidence.GetConfidence(r.Context())
	if err != nil {
		log.Warn().Err(err).Msg("falling back to default confidence")
		conf = confidence.Default
	}

	res, err := s.recognizer.Recognize(r.Context(), data, header.Filename, sess.ToolkitID(), conf)
	if err != nil {
		// The image stays attached without a result; the operator can
		// retry via scan or remove it.
		sess.SetError(err)
		writeError(w, http.StatusBadGateway, fmt.Errorf("recognition failed: %w", err))
		return
	}

	attached := sess.AttachResult(header.Filename, session.FromRecognition(header.Filename, res))
	if !attached {
		// Image was removed while recognition was in flight.
		writeJSON(w, http.StatusOK, sess.Snapshot())
		return
	}
	sess.SetError(nil)
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleRemoveImage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.RemoveImage(r.PathValue("file")); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// handleScanAll re-runs recognition for every attached image, e.g. after
// the operator changed the confidence threshold.
func (s *Server) handleScanAll(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	conf, err := s.confidence.GetConfidence(r.Context())
	if err != nil {
		log.Warn().Err(err).Msg("falling back to default confidence")
		conf = confidence.Default
	}

	if err := sess.ScanAll(r.Context(), s.recognizer, conf); err != nil {
		writeError(w, http.StatusBadGateway, fmt.Errorf("recognition failed: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

type addToolRequest struct {
	Name      string            `json:"name"`
	Quantity  int               `json:"quantity"`
	Condition session.Condition `json:"condition"`
}

func (s *Server) handleAddTool(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req addToolRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, errors.New("tool name is required"))
		return
	}
	tool := sess.AddManualTool(req.Name, req.Quantity, req.Condition)
	writeJSON(w, http.StatusCreated, tool)
}

type updateToolRequest struct {
	Name      *string            `json:"name"`
	Quantity  *int               `json:"quantity"`
	Condition *session.Condition `json:"condition"`
}

func (s *Server) handleUpdateTool(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req updateToolRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	tool, err := sess.UpdateTool(r.PathValue("toolId"), session.Edit{
		Name:      req.Name,
		Quantity:  req.Quantity,
		Condition: req.Condition,
	})
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, tool)
}

func (s *Server) handleRemoveTool(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.RemoveTool(r.PathValue("toolId")); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// handleCompare reconciles the aggregated returned tools against the issued
// kit. The remote comparison service is best-effort enrichment: any failure
// there falls back to the local engine.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	returned := sess.ReturnedTools()

	var result reconcile.ComparisonResult
	if s.comparer != nil {
		remote, err := s.comparer.CompareWithIssued(r.Context(), 1, sess.ToolkitID(), returned)
		if err == nil {
			result = remote
		} else {
			log.Warn().Err(err).Msg("remote comparison failed, computing locally")
			result = reconcile.Compare(reconcile.IssuedFromKit(toolkit.Standard), returned)
		}
	} else {
		result = reconcile.Compare(reconcile.IssuedFromKit(toolkit.Standard), returned)
	}

	sess.SetComparison(result)
	writeJSON(w, http.StatusOK, result)
}

// handleConfirm finalizes the return: the comparison (computed now if the
// session is not reconciled) is written to the transaction log and the
// session is reset for the next operator.
func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	snap := sess.Snapshot()
	comparison := snap.Comparison
	if comparison == nil {
		c := reconcile.Compare(reconcile.IssuedFromKit(toolkit.Standard), sess.ReturnedTools())
		comparison = &c
	}

	tx := &storage.ReturnTransaction{
		SessionID:     snap.ID,
		ToolkitID:     sess.ToolkitID(),
		TotalReturned: comparison.Summary.TotalReturned,
		MissingCount:  comparison.Summary.MissingCount,
		ExtraCount:    comparison.Summary.ExtraCount,
		AllReturned:   comparison.AllReturned,
		HandCheck:     snap.HandCheck,
	}
	if err := s.txLog.SaveTransaction(r.Context(), tx); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to record return: %w", err))
		return
	}

	sess.Reset()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"transaction_id":    tx.ID,
		"comparison_result": comparison,
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Reset()
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.txLog.ListTransactions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if txs == nil {
		txs = []storage.ReturnTransaction{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": txs})
}
