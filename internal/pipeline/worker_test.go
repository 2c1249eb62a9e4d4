package pipeline

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgallion1/figgest/internal/config"
	"github.com/dgallion1/figgest/internal/question"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleQuestion = `<div id="modalID1">
  <div class="cb-dialog-header"><h2>Question ID 0a1b2c3d</h2></div>
  <div class="question"><p>Evaluate <mjx-container aria-label="2+2"></mjx-container>.</p></div>
  <div class="answer-choices"><ul><li>A. 4</li><li>B. 5</li></ul></div>
</div>`

func testConfig(t *testing.T) config.Config {
	cfg := config.Load(config.New())
	cfg.OutputDir = t.TempDir()
	cfg.WorkerCount = 1
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWorker_ProcessOne(t *testing.T) {
	cfg := testConfig(t)
	stats := NewExtractStats(time.Hour)
	w := NewWorker(NewAssembler(cfg, discardLogger()), stats, discardLogger())
	imagesDir := filepath.Join(cfg.OutputDir, "images")

	rec := w.ProcessOne(Input{Name: "q.html", Data: []byte(sampleQuestion)}, imagesDir)
	require.Empty(t, rec.Error)
	assert.Equal(t, "0a1b2c3d", rec.QuestionID)
	assert.Equal(t, "Evaluate {{FIG_1}} .", rec.QuestionText)
	require.Len(t, rec.Figures, 1)
	require.True(t, rec.Figures[0].HasImage(), "snapshots are on by default")
	assert.FileExists(t, *rec.Figures[0].ImagePath)

	failed := w.ProcessOne(Input{Name: "empty.html", Data: []byte("<p>nothing</p>")}, imagesDir)
	assert.Equal(t, "empty.html", failed.QuestionID)
	assert.Contains(t, failed.Error, "no question regions")

	snap := stats.Snapshot()
	assert.Equal(t, 2, snap.Questions)
	assert.Equal(t, 1, snap.Failed)
	assert.Equal(t, 1, snap.Figures["equation"])
}

func TestWorker_SnapshotsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Snapshots = false
	w := NewWorker(NewAssembler(cfg, discardLogger()), nil, discardLogger())

	rec := w.ProcessOne(Input{Name: "q.html", Data: []byte(sampleQuestion)}, cfg.OutputDir)
	require.Len(t, rec.Figures, 1)
	assert.Nil(t, rec.Figures[0].ImagePath)
}

func TestWorker_ProcessPartialJob(t *testing.T) {
	cfg := testConfig(t)
	w := NewWorker(NewAssembler(cfg, discardLogger()), nil, discardLogger())

	job := &Job{ID: "job-1", OutputDir: filepath.Join(cfg.OutputDir, "job-1"), Format: "yaml"}
	job.SetInputs([]Input{
		{Name: "good.html", Data: []byte(sampleQuestion)},
		{Name: "bad.html", Data: []byte("<p>nothing</p>")},
	})
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	assert.Equal(t, StatusPartial, snap.Status)
	assert.Equal(t, 2, snap.Progress.QuestionsProcessed)
	assert.Equal(t, 1, snap.Progress.QuestionsFailed)
	assert.Equal(t, filepath.Join(job.OutputDir, "questions.yaml"), snap.ResultPath)

	recs, err := ReadRecords(snap.ResultPath)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "0a1b2c3d", recs[0].QuestionID)
	assert.Equal(t, "bad.html", recs[1].QuestionID)
	assert.NotEmpty(t, recs[1].Error)
}

func TestWorker_ProcessCancelled(t *testing.T) {
	cfg := testConfig(t)
	w := NewWorker(NewAssembler(cfg, discardLogger()), nil, discardLogger())

	job := &Job{ID: "job-2", OutputDir: filepath.Join(cfg.OutputDir, "job-2"), Format: "json"}
	job.SetInputs([]Input{{Name: "good.html", Data: []byte(sampleQuestion)}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Process(ctx, job)

	snap := job.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Equal(t, 0, snap.Progress.QuestionsProcessed)
	assert.NotEmpty(t, snap.Progress.Errors)
}

func TestOrchestrator_RunsJob(t *testing.T) {
	cfg := testConfig(t)
	log := discardLogger()
	orch := NewOrchestrator(cfg, NewAssembler(cfg, log), log)
	orch.Start(context.Background())
	defer orch.Stop()

	job := &Job{ID: "orch-1", Status: StatusQueued, OutputDir: filepath.Join(cfg.OutputDir, "orch-1"), Format: "json"}
	job.SetInputs([]Input{{Name: "good.html", Data: []byte(sampleQuestion)}})
	require.NoError(t, orch.Submit(job))
	assert.Same(t, job, orch.GetJob("orch-1"))

	require.Eventually(t, func() bool {
		return orch.GetJob("orch-1").Snapshot().Status == StatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	_, err := os.Stat(filepath.Join(job.OutputDir, "questions.json"))
	assert.NoError(t, err)
	assert.Equal(t, 1, orch.Stats().Snapshot().Questions)
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxQueueSize = 1
	orch := NewOrchestrator(cfg, NewAssembler(cfg, discardLogger()), discardLogger())

	// Not started: the first job fills the queue.
	require.NoError(t, orch.Submit(&Job{ID: "a"}))
	err := orch.Submit(&Job{ID: "b"})
	require.Error(t, err)
	assert.Equal(t, StatusFailed, orch.GetJob("b").Snapshot().Status)
	assert.Equal(t, 1, orch.QueueDepth())
}

func TestWriteRecords_Formats(t *testing.T) {
	dir := t.TempDir()
	recs := []question.Record{{QuestionID: "q1", QuestionText: "x"}}

	path, err := WriteRecords(dir, "json", recs)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "questions.json"), path)
	back, err := ReadRecords(path)
	require.NoError(t, err)
	assert.Equal(t, "x", back[0].QuestionText)

	path, err = WriteRecords(dir, "yaml", nil)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))

	_, err = WriteRecords(dir, "xml", recs)
	assert.Error(t, err)
}
