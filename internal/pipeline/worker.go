package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dgallion1/figgest/internal/config"
	"github.com/dgallion1/figgest/internal/figure"
	"github.com/dgallion1/figgest/internal/question"
)

// NewAssembler wires the figure pipeline from configuration.
func NewAssembler(cfg config.Config, log *slog.Logger) *question.Assembler {
	var snap figure.Snapshotter = figure.DisabledSnapshotter{}
	if cfg.Snapshots {
		s := figure.DefaultRasterSnapshotter()
		s.MaxWidth = cfg.SnapshotWidth
		snap = s
	}
	collector := figure.NewCollector(log, figure.Options{
		Snapshotter:           snap,
		MaxAxisLabels:         cfg.MaxAxisLabels,
		ComplexDescriptionLen: cfg.ComplexDescriptionLen,
	})
	return question.NewAssembler(collector, log)
}

// Worker processes the questions of a batch job, one at a time.
type Worker struct {
	assembler *question.Assembler
	stats     *ExtractStats
	log       *slog.Logger
}

func NewWorker(assembler *question.Assembler, stats *ExtractStats, log *slog.Logger) *Worker {
	return &Worker{
		assembler: assembler,
		stats:     stats,
		log:       log,
	}
}

// Process runs every question of the job and writes the results.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID)
	imagesDir := filepath.Join(job.OutputDir, "images")

	job.SetStatus(StatusProcessing, "extracting")
	inputs := job.Inputs()
	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			log.Warn("job interrupted", "remaining", len(inputs)-i)
			job.AddError(fmt.Sprintf("interrupted with %d questions left: %s", len(inputs)-i, err))
			break
		}
		rec := w.ProcessOne(in, imagesDir)
		job.AddResult(rec)
	}

	job.SetStatus(StatusWriting, "writing")
	results := job.Results()
	path, err := WriteRecords(job.OutputDir, job.Format, results)
	if err != nil {
		log.Error("write results failed", "error", err)
		job.AddError(fmt.Sprintf("write: %s", err))
		job.SetStatus(StatusFailed, "writing")
		return
	}
	job.SetResultPath(path)

	snap := job.Snapshot()
	log.Info("job complete", "questions", snap.Progress.QuestionsProcessed,
		"failed", snap.Progress.QuestionsFailed, "figures", snap.Progress.FiguresExtracted)

	switch {
	case snap.Progress.QuestionsProcessed == 0 && snap.Progress.TotalQuestions > 0:
		job.SetStatus(StatusFailed, "extracting")
	case snap.Progress.QuestionsFailed == snap.Progress.QuestionsProcessed && snap.Progress.QuestionsFailed > 0:
		job.SetStatus(StatusFailed, "done")
	case snap.Progress.QuestionsFailed > 0 || snap.Progress.QuestionsProcessed < snap.Progress.TotalQuestions:
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusCompleted, "done")
	}
}

// ProcessOne assembles a single question. Any failure, including a panic, is
// reported as an errored record so the batch can move on.
func (w *Worker) ProcessOne(in Input, imagesDir string) (rec question.Record) {
	start := time.Now()
	id := in.QuestionID
	if id == "" {
		id = in.Name
	}
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("question panicked", "input", in.Name, "panic", fmt.Sprint(r))
			rec = question.Failed(id, fmt.Errorf("panic: %v", r))
		}
		if w.stats != nil {
			w.stats.Record(time.Since(start).Milliseconds(), rec)
		}
	}()

	rec, err := w.assembler.AssembleMarkup(bytes.NewReader(in.Data), in.QuestionID, imagesDir)
	if err != nil {
		w.log.Warn("question failed", "input", in.Name, "error", err)
		return question.Failed(id, err)
	}
	if problems := question.Validate(rec); len(problems) > 0 {
		w.log.Error("record inconsistent", "input", in.Name, "question_id", rec.QuestionID, "problems", problems)
	}
	return rec
}
