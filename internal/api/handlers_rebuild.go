package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dgallion1/figgest/internal/question"
	"github.com/dgallion1/figgest/internal/rebuild"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// handleRebuild reconstructs posted question records. The body is the JSON
// array produced by extraction; ?mode= picks text, markdown, html or docx.
func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	mode := rebuild.ModeText
	if v := r.URL.Query().Get("mode"); v != "" {
		m, err := rebuild.ParseMode(v)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		mode = m
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	var recs []question.Record
	if err := json.NewDecoder(r.Body).Decode(&recs); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if mode == rebuild.ModeDocx {
		var buf bytes.Buffer
		if err := rebuild.WriteDocx(&buf, recs, rebuild.DocxOptions{BaseDir: s.cfg.OutputDir}); err != nil {
			s.log.Error("docx rebuild failed", "error", err)
			jsonError(w, "docx rebuild failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", docxContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="questions.docx"`)
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.Write(buf.Bytes())
		return
	}

	qs := rebuild.All(recs, mode)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"mode":        mode,
		"questions":   qs,
		"type_counts": rebuild.TypeCounts(qs),
	})
}
