package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dgallion1/docoutline/internal/parser"
)

// Worker processes a single outline job.
type Worker struct {
	extractor *Extractor
	log       *slog.Logger
}

func NewWorker(ex *Extractor, log *slog.Logger) *Worker {
	return &Worker{extractor: ex, log: log}
}

// Process parses and classifies the job's document, mirroring each phase on
// the job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	phase := "queued"
	ex, err := w.extractor.extract(ctx, job.Filename, job.FileData(), func(s JobStatus) {
		phase = string(s)
		job.SetStatus(s, phase)
	})
	if err != nil {
		if errors.Is(err, parser.ErrUnsupportedFormat) {
			log.Error("unsupported format", "error", err)
		} else {
			log.Error("outline failed", "phase", phase, "error", err)
		}
		job.Fail(phase, err)
		return
	}

	job.Finish(ex)
	log.Info("job complete", "cached", ex.Cached, "headings", len(ex.Result.Outline))
}
