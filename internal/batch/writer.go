package batch

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/nlpkit/internal/models"
	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

// RunInfo describes a batch run.
type RunInfo struct {
	ID          string `yaml:"id"`
	Task        string `yaml:"task"`
	Method      string `yaml:"method"`
	Input       string `yaml:"input"`
	Count       int    `yaml:"count,omitempty"`
	Concurrency int    `yaml:"concurrency"`
	Timestamp   string `yaml:"timestamp"`
}

// Report is the complete output of a batch run.
type Report struct {
	Run     RunInfo            `yaml:"run"`
	Summary Summary            `yaml:"summary"`
	Results []*models.Analysis `yaml:"results"`
}

// Row is one line of Parquet output. Result holds the JSON-encoded result.
type Row struct {
	RunID       string `parquet:"run_id"`
	ID          string `parquet:"id"`
	Task        string `parquet:"task"`
	Method      string `parquet:"method"`
	Text        string `parquet:"text"`
	Result      string `parquet:"result"`
	Error       string `parquet:"error"`
	Unavailable bool   `parquet:"unavailable"`
	DurationMS  int64  `parquet:"duration_ms"`
}

// NewReport wraps results with a fresh run id.
func NewReport(task, input string, opts Options, results []*models.Analysis) *Report {
	method := opts.Method
	if method == "" && len(results) > 0 {
		method = results[0].Method
	}
	return &Report{
		Run: RunInfo{
			ID:          uuid.NewString(),
			Task:        task,
			Method:      method,
			Input:       input,
			Count:       opts.Count,
			Concurrency: opts.Concurrency,
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
		},
		Summary: Summarize(results),
		Results: results,
	}
}

// Rows flattens the report for columnar output.
func (r *Report) Rows() ([]Row, error) {
	rows := make([]Row, 0, len(r.Results))
	for _, a := range r.Results {
		row := Row{
			RunID:       r.Run.ID,
			ID:          a.ID,
			Task:        a.Task,
			Method:      a.Method,
			Text:        a.Text,
			Error:       a.Error,
			Unavailable: a.Unavailable,
			DurationMS:  a.DurationMS,
		}
		if a.Result != nil {
			data, err := json.Marshal(a.Result)
			if err != nil {
				return nil, fmt.Errorf("failed to encode result %s: %w", a.ID, err)
			}
			row.Result = string(data)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Write saves the report to path as .parquet, .yaml or .jsonl. The file is
// written to a temporary name first so a failed run leaves no partial output.
func Write(path string, report *Report) error {
	var write func(io.Writer, *Report) error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".parquet":
		write = writeParquet
	case ".yaml", ".yml":
		write = writeYAML
	case ".jsonl":
		write = writeJSONL
	default:
		return fmt.Errorf("unsupported output format: %s (supported: .parquet, .yaml, .jsonl)", ext)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp, report); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

func writeParquet(w io.Writer, report *Report) error {
	rows, err := report.Rows()
	if err != nil {
		return err
	}
	pw := parquet.NewGenericWriter[Row](w)
	if _, err := pw.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, report *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return enc.Close()
}

func writeJSONL(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	for _, a := range report.Results {
		if err := enc.Encode(a); err != nil {
			return fmt.Errorf("failed to encode result %s: %w", a.ID, err)
		}
	}
	return nil
}
