package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/figgest/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	format := s.cfg.OutputFormat
	if v := r.FormValue("format"); v != "" {
		if v != "json" && v != "yaml" {
			jsonError(w, fmt.Sprintf("unsupported format %q", v), http.StatusBadRequest)
			return
		}
		format = v
	}

	var inputs []pipeline.Input
	var rejected []map[string]any
	seen := make(map[string]string) // content hash -> first file name
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		ext := strings.ToLower(filepath.Ext(filename))
		if ext != ".html" && ext != ".htm" {
			rejected = append(rejected, map[string]any{
				"filename": filename,
				"error":    fmt.Sprintf("unsupported file type: %s", ext),
			})
			continue
		}

		f, err := fh.Open()
		if err != nil {
			rejected = append(rejected, map[string]any{
				"filename": filename,
				"error":    "failed to open file",
			})
			continue
		}
		data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
		f.Close()
		if err != nil || int64(len(data)) > s.cfg.MaxUploadBytes {
			rejected = append(rejected, map[string]any{
				"filename": filename,
				"error":    "file too large or read error",
			})
			continue
		}
		hash := pipeline.ContentHashHex(data)
		if first, dup := seen[hash]; dup {
			rejected = append(rejected, map[string]any{
				"filename": filename,
				"error":    "duplicate of " + first,
			})
			continue
		}
		seen[hash] = filename
		inputs = append(inputs, pipeline.Input{Name: filename, Data: data})
	}
	if len(inputs) == 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"error": "no usable files", "rejected": rejected})
		return
	}

	now := time.Now()
	jobID := pipeline.NewJobID()
	job := &pipeline.Job{
		ID:        jobID,
		Status:    pipeline.StatusQueued,
		Phase:     "queued",
		OutputDir: filepath.Join(s.cfg.OutputDir, "jobs", jobID),
		Format:    format,
		CreatedAt: now,
		UpdatedAt: now,
	}
	job.SetInputs(inputs)

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":    job.ID,
		"status":    job.Status,
		"questions": len(inputs),
		"rejected":  rejected,
		"poll_url":  fmt.Sprintf("/api/batch/%s/status", job.ID),
	})
}

func (s *Server) handleBatchStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":      snap.ID,
		"status":      snap.Status,
		"phase":       snap.Phase,
		"progress":    snap.Progress,
		"result_path": snap.ResultPath,
	})
}

func (s *Server) handleBatchResults(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":    job.ID,
		"status":    job.Snapshot().Status,
		"questions": job.Results(),
	})
}

func (s *Server) handleBatchImage(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	name := sanitizeFilename(chi.URLParam(r, "name"))
	if !strings.HasSuffix(name, ".png") {
		jsonError(w, "image not found", http.StatusNotFound)
		return
	}
	path := filepath.Join(job.OutputDir, "images", name)
	if _, err := os.Stat(path); err != nil {
		jsonError(w, "image not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, path)
}
