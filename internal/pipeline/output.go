package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/figgest/internal/question"
	"go.yaml.in/yaml/v3"
)

// WriteRecords writes recs to dir/questions.json or dir/questions.yaml and
// returns the path written.
func WriteRecords(dir, format string, recs []question.Record) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	if recs == nil {
		recs = []question.Record{}
	}

	var (
		data []byte
		err  error
		path string
	)
	switch strings.ToLower(format) {
	case "yaml", "yml":
		path = filepath.Join(dir, "questions.yaml")
		data, err = yaml.Marshal(recs)
	case "json", "":
		path = filepath.Join(dir, "questions.json")
		data, err = json.MarshalIndent(recs, "", "  ")
	default:
		return "", fmt.Errorf("unsupported format %q: use json or yaml", format)
	}
	if err != nil {
		return "", fmt.Errorf("marshal records: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write records: %w", err)
	}
	return path, nil
}

// ReadRecords loads records written by WriteRecords. The format follows the
// file extension.
func ReadRecords(path string) ([]question.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	var recs []question.Record
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &recs)
	default:
		err = json.Unmarshal(data, &recs)
	}
	if err != nil {
		return nil, fmt.Errorf("decode records %s: %w", filepath.Base(path), err)
	}
	return recs, nil
}
