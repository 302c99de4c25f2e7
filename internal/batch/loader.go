// Package batch runs one task over a file of texts and writes the results.
package batch

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
)

// Input is one text to analyze.
type Input struct {
	ID   string `json:"id" parquet:"id"`
	Text string `json:"text" parquet:"text"`
}

// maxLineBytes bounds a single JSONL or text line.
const maxLineBytes = 10 * 1024 * 1024

// Load reads inputs from a .jsonl, .txt or .parquet file. Inputs without an
// id get a UUID; blank texts are skipped.
func Load(path string) ([]Input, error) {
	var (
		inputs []Input
		err    error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".jsonl", ".json":
		inputs, err = loadJSONL(path)
	case ".txt":
		inputs, err = loadText(path)
	case ".parquet":
		inputs, err = loadParquet(path)
	default:
		return nil, fmt.Errorf("unsupported input format: %s (supported: .jsonl, .txt, .parquet)", ext)
	}
	if err != nil {
		return nil, err
	}

	kept := inputs[:0]
	for _, in := range inputs {
		if strings.TrimSpace(in.Text) == "" {
			continue
		}
		if in.ID == "" {
			in.ID = uuid.NewString()
		}
		kept = append(kept, in)
	}
	slog.Debug("Loaded inputs", "path", path, "inputs", len(kept), "skipped", len(inputs)-len(kept))
	return kept, nil
}

func loadJSONL(path string) ([]Input, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	var inputs []Input
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var in Input
		if err := json.Unmarshal(line, &in); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		inputs = append(inputs, in)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}
	return inputs, nil
}

func loadText(path string) ([]Input, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	var inputs []Input
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		inputs = append(inputs, Input{Text: strings.TrimSuffix(scanner.Text(), "\r")})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}
	return inputs, nil
}

func loadParquet(path string) ([]Input, error) {
	file, err := os.Open(path)
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
	slog.Debug("Parquet file opened", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[Input](pf)
	defer reader.Close()

	inputs := make([]Input, 0, pf.NumRows())
	rows := make([]Input, 128)
	for {
		n, err := reader.Read(rows)
		inputs = append(inputs, rows[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}
	return inputs, nil
}
