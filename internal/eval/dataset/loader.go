package dataset

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Example is a text with the labels a method is expected to produce: entity
// texts, key phrases, a language code or a sentiment class.
type Example struct {
	ID       string   `json:"id" parquet:"id"`
	Text     string   `json:"text" parquet:"text"`
	Expected []string `json:"expected" parquet:"expected,list"`
}

// UnmarshalJSON accepts "expected" as a single string or a list of strings.
func (e *Example) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       string          `json:"id"`
		Text     string          `json:"text"`
		Expected json.RawMessage `json:"expected"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.ID, e.Text, e.Expected = raw.ID, raw.Text, nil

	if len(raw.Expected) == 0 || string(raw.Expected) == "null" {
		return nil
	}
	var single string
	if err := json.Unmarshal(raw.Expected, &single); err == nil {
		e.Expected = []string{single}
		return nil
	}
	if err := json.Unmarshal(raw.Expected, &e.Expected); err != nil {
		return fmt.Errorf("expected must be a string or a list of strings: %w", err)
	}
	return nil
}

// Loader handles loading of labeled evaluation datasets
type Loader struct {
	datasetPath string
}

// NewLoader creates a new dataset loader
func NewLoader(datasetPath string) *Loader {
	return &Loader{
		datasetPath: datasetPath,
	}
}

// Load loads every example from a dataset file (JSONL or Parquet)
func (l *Loader) Load() ([]Example, error) {
	return l.LoadSample(0)
}

// LoadSample loads at most limit examples. A limit of zero or less loads all
// of them.
func (l *Loader) LoadSample(limit int) ([]Example, error) {
	var (
		examples []Example
		err      error
	)

	switch ext := strings.ToLower(filepath.Ext(l.datasetPath)); ext {
	case ".parquet":
		examples, err = l.loadParquet(limit)
	case ".jsonl", ".json":
		examples, err = l.loadJSONL(limit)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl)", ext)
	}
	if err != nil {
		return nil, err
	}

	kept := examples[:0]
	for i, ex := range examples {
		if strings.TrimSpace(ex.Text) == "" {
			slog.Warn("Skipping example without text", "index", i+1, "id", ex.ID)
			continue
		}
		if ex.ID == "" {
			ex.ID = strconv.Itoa(i + 1)
		}
		kept = append(kept, ex)
	}

	slog.Debug("Loaded dataset", "path", l.datasetPath, "examples", len(kept))
	return kept, nil
}

// loadJSONL loads examples from a JSONL file
func (l *Loader) loadJSONL(limit int) ([]Example, error) {
	slog.Debug("Opening JSONL file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	var examples []Example
	scanner := bufio.NewScanner(file)

	// Increase buffer size for long texts
	const maxCapacity = 10 * 1024 * 1024 // 10MB per line
	scanner.Buffer(make([]byte, 64*1024), maxCapacity)

	lineNum := 0
	for (limit <= 0 || len(examples) < limit) && scanner.Scan() {
		lineNum++
		line := scanner.Bytes()

		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var ex Example
		if err := json.Unmarshal(line, &ex); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		examples = append(examples, ex)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}

	return examples, nil
}

// loadParquet loads examples from a Parquet file
func (l *Loader) loadParquet(limit int) ([]Example, error) {
	slog.Debug("Opening Parquet file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened successfully", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[Example](pf)
	defer reader.Close()

	var examples []Example
	for limit <= 0 || len(examples) < limit {
		// Fresh batch each time: the reader reuses list storage of its rows
		rows := make([]Example, 128)
		n, err := reader.Read(rows)
		if limit > 0 && n > limit-len(examples) {
			n = limit - len(examples)
		}
		examples = append(examples, rows[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	return examples, nil
}
