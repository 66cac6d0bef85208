// Package server exposes the kiosk's JSON API to the browser front end.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/avialab/toolkiosk/internal/confidence"
	"github.com/avialab/toolkiosk/internal/recognition"
	"github.com/avialab/toolkiosk/internal/reconcile"
	"github.com/avialab/toolkiosk/internal/session"
	"github.com/avialab/toolkiosk/internal/storage"
)

// Comparer abstracts the remote comparison endpoint so the server can run
// without one and tests can fake it.
type Comparer interface {
	CompareWithIssued(ctx context.Context, userID, toolkitID int, returned []reconcile.ReturnedTool) (reconcile.ComparisonResult, error)
}

// TransactionLog is the slice of storage the server needs for confirmed
// returns.
type TransactionLog interface {
	SaveTransaction(ctx context.Context, tx *storage.ReturnTransaction) error
	ListTransactions(ctx context.Context) ([]storage.ReturnTransaction, error)
}

// Server wires the kiosk API handlers together. All dependencies are
// injected; nothing here keeps state of its own beyond the session manager.
type Server struct {
	sessions   *session.Manager
	recognizer recognition.Recognizer
	confidence confidence.Store
	comparer   Comparer // nil means local comparison only
	txLog      TransactionLog
	toolkitID  int
	mux        *http.ServeMux
}

type Opts struct {
	Sessions   *session.Manager
	Recognizer recognition.Recognizer
	Confidence confidence.Store
	Comparer   Comparer
	TxLog      TransactionLog
	ToolkitID  int
}

func New(opts Opts) *Server {
	s := &Server{
		sessions:   opts.Sessions,
		recognizer: opts.Recognizer,
		confidence: opts.Confidence,
		comparer:   opts.Comparer,
		txLog:      opts.TxLog,
		toolkitID:  opts.ToolkitID,
	}
	if s.toolkitID == 0 {
		s.toolkitID = 1
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /api/confidence", s.handleGetConfidence)
	mux.HandleFunc("POST /api/confidence", s.handleSetConfidence)
	mux.HandleFunc("GET /api/toolkit", s.handleGetToolkit)
	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("POST /api/sessions/{id}/images", s.handleUploadImage)
	mux.HandleFunc("DELETE /api/sessions/{id}/images/{file}", s.handleRemoveImage)
	mux.HandleFunc("POST /api/sessions/{id}/scan", s.handleScanAll)
	mux.HandleFunc("POST /api/sessions/{id}/tools", s.handleAddTool)
	mux.HandleFunc("PATCH /api/sessions/{id}/tools/{toolId}", s.handleUpdateTool)
	mux.HandleFunc("DELETE /api/sessions/{id}/tools/{toolId}", s.handleRemoveTool)
	mux.HandleFunc("POST /api/sessions/{id}/compare", s.handleCompare)
	mux.HandleFunc("POST /api/sessions/{id}/confirm", s.handleConfirm)
	mux.HandleFunc("POST /api/sessions/{id}/reset", s.handleReset)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	s.mux = mux

	return s
}

// Handler returns the root handler with request logging attached.
func (s *Server) Handler() http.Handler {
	return logRequests(s.mux)
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("kiosk api listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("bad json: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
