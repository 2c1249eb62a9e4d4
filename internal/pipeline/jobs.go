package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/figgest/internal/question"
)

// JobStatus represents the state of a batch extraction job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusWriting    JobStatus = "writing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusPartial    JobStatus = "partial"
)

// Input is one question's markup awaiting extraction.
type Input struct {
	Name       string // file name, used in logs
	QuestionID string // optional; found in the markup otherwise
	Data       []byte
}

// Job tracks the state of a batch of questions.
type Job struct {
	mu sync.Mutex

	ID     string    `json:"job_id"`
	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	OutputDir string `json:"output_dir"`
	Format    string `json:"format"`

	Progress Progress `json:"progress"`

	ResultPath string    `json:"result_path,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Internal: not serialized.
	inputs  []Input
	results []question.Record
	errors  []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalQuestions     int      `json:"total_questions"`
	QuestionsProcessed int      `json:"questions_processed"`
	QuestionsFailed    int      `json:"questions_failed"`
	FiguresExtracted   int      `json:"figures_extracted"`
	Errors             []string `json:"errors"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs. Output files stay on disk.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetInputs sets the question markup to process.
func (j *Job) SetInputs(inputs []Input) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.inputs = inputs
	j.Progress.TotalQuestions = len(inputs)
}

// Inputs returns the question markup to process.
func (j *Job) Inputs() []Input {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inputs
}

// AddResult appends a processed question and updates the counters.
func (j *Job) AddResult(rec question.Record) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.results = append(j.results, rec)
	j.Progress.QuestionsProcessed++
	if rec.Error != "" {
		j.Progress.QuestionsFailed++
		j.errors = append(j.errors, fmt.Sprintf("%s: %s", rec.QuestionID, rec.Error))
		j.Progress.Errors = j.errors
	}
	j.Progress.FiguresExtracted += len(rec.Figures)
	j.UpdatedAt = time.Now()
}

// Results returns a copy of the processed questions, in input order.
func (j *Job) Results() []question.Record {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]question.Record, len(j.results))
	copy(out, j.results)
	return out
}

// SetResultPath records where the results were written.
func (j *Job) SetResultPath(p string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ResultPath = p
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID         string    `json:"job_id"`
	Status     JobStatus `json:"status"`
	Phase      string    `json:"phase"`
	OutputDir  string    `json:"output_dir"`
	ResultPath string    `json:"result_path,omitempty"`
	Progress   Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.Progress.Errors))
	copy(errs, j.Progress.Errors)
	return JobSnapshot{
		ID:         j.ID,
		Status:     j.Status,
		Phase:      j.Phase,
		OutputDir:  j.OutputDir,
		ResultPath: j.ResultPath,
		Progress: Progress{
			TotalQuestions:     j.Progress.TotalQuestions,
			QuestionsProcessed: j.Progress.QuestionsProcessed,
			QuestionsFailed:    j.Progress.QuestionsFailed,
			FiguresExtracted:   j.Progress.FiguresExtracted,
			Errors:             errs,
		},
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
