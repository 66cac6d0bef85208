package session

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/avialab/toolkiosk/internal/recognition"
)

// ScanAll runs recognition for every attached image concurrently and
// attaches the results as they complete. Each attach is a single-step
// update, so completions may land in any order; images removed while a
// request is in flight simply have their late result discarded. On failure
// the failing image keeps its previous result (if any) and the error is
// recorded on the session.
func (s *Session) ScanAll(ctx context.Context, rec recognition.Recognizer, confidence float64) error {
	s.mu.Lock()
	type job struct {
		fileName string
		data     []byte
	}
	jobs := make([]job, 0, len(s.images))
	for _, img := range s.images {
		jobs = append(jobs, job{fileName: img.fileName, data: img.data})
	}
	toolkitID := s.toolkitID
	s.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	for _, j := range jobs {
		g.Go(func() error {
			res, err := rec.Recognize(ctx, j.data, j.fileName, toolkitID, confidence)
			if err != nil {
				log.Error().Err(err).Str("fileName", j.fileName).Msg("recognition failed")
				return err
			}
			s.AttachResult(j.fileName, FromRecognition(j.fileName, res))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.SetError(err)
		return err
	}
	s.SetError(nil)
	return nil
}
