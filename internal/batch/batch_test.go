package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/nlpkit/internal/analysis"
	"github.com/lehigh-university-libraries/nlpkit/internal/models"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type upperResult struct {
	Method string `json:"method" yaml:"method"`
	Text   string `json:"text" yaml:"text"`
}

func (r upperResult) MethodLabel() string { return r.Method }
func (r upperResult) Render(w io.Writer)  { fmt.Fprintln(w, r.Text) }

// newTestTask returns a task whose "upper" method sleeps longer for earlier
// inputs so that completion order differs from input order.
func newTestTask(inFlight, peak *int64) analysis.Task {
	base := analysis.NewBase[upperResult](analysis.TaskInfo{Name: "upper", Subject: "shouting", Default: "upper"})
	base.Registry.Register(analysis.Backend[upperResult]{
		Key:   "upper",
		Label: "Upper",
		Adapter: func(ctx context.Context, req analysis.Request) (upperResult, error) {
			n := atomic.AddInt64(inFlight, 1)
			defer atomic.AddInt64(inFlight, -1)
			for {
				p := atomic.LoadInt64(peak)
				if n <= p || atomic.CompareAndSwapInt64(peak, p, n) {
					break
				}
			}
			if req.Text == "fail" {
				return upperResult{}, errors.New("backend exploded")
			}
			time.Sleep(time.Duration(10-len(req.Text)) * time.Millisecond)
			return upperResult{Method: "Upper", Text: strings.ToUpper(req.Text)}, nil
		},
	})
	base.Registry.Register(analysis.Backend[upperResult]{Key: "native", Label: "Native", Err: errors.New("missing library")})
	return base
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadJSONL(t *testing.T) {
	path := writeFile(t, "in.jsonl", `{"id":"a","text":"first"}

{"text":"second"}
{"id":"c","text":"  "}
`)

	inputs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, Input{ID: "a", Text: "first"}, inputs[0])
	assert.Equal(t, "second", inputs[1].Text)
	assert.NoError(t, uuid.Validate(inputs[1].ID))
}

func TestLoadJSONLError(t *testing.T) {
	path := writeFile(t, "in.jsonl", "{\"id\":\"a\",\"text\":\"ok\"}\nnot json\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "line 2")
}

func TestLoadText(t *testing.T) {
	path := writeFile(t, "in.txt", "one line\r\n\nanother line\n")

	inputs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, "one line", inputs[0].Text)
	assert.Equal(t, "another line", inputs[1].Text)
}

func TestLoadParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.parquet")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := parquet.NewGenericWriter[Input](f)
	_, err = w.Write([]Input{{ID: "1", Text: "alpha"}, {ID: "2", Text: "beta"}})
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	inputs, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []Input{{ID: "1", Text: "alpha"}, {ID: "2", Text: "beta"}}, inputs)
}

func TestLoadUnsupported(t *testing.T) {
	_, err := Load(writeFile(t, "in.csv", "a,b"))
	assert.EqualError(t, err, "unsupported input format: .csv (supported: .jsonl, .txt, .parquet)")
}

func TestRunPreservesOrder(t *testing.T) {
	var inFlight, peak int64
	task := newTestTask(&inFlight, &peak)
	inputs := []Input{{ID: "1", Text: "a"}, {ID: "2", Text: "bb"}, {ID: "3", Text: "fail"}, {ID: "4", Text: "dddd"}, {ID: "5", Text: "eeeee"}}

	results := Run(context.Background(), task, inputs, Options{Concurrency: 3})

	require.Len(t, results, len(inputs))
	for i, r := range results {
		assert.Equal(t, inputs[i].ID, r.ID)
		assert.Equal(t, "upper", r.Method)
	}
	assert.Equal(t, upperResult{Method: "Upper", Text: "BB"}, results[1].Result)
	assert.Equal(t, "backend exploded", results[2].Error)
	assert.LessOrEqual(t, peak, int64(3))

	assert.Equal(t, Summary{Total: 5, Succeeded: 4, Failed: 1}, Summarize(results))
}

func TestRunSequentialByDefault(t *testing.T) {
	var inFlight, peak int64
	task := newTestTask(&inFlight, &peak)
	inputs := []Input{{ID: "1", Text: "a"}, {ID: "2", Text: "b"}, {ID: "3", Text: "c"}}

	Run(context.Background(), task, inputs, Options{})
	assert.Equal(t, int64(1), peak)
}

func TestRunUnavailable(t *testing.T) {
	var inFlight, peak int64
	results := Run(context.Background(), newTestTask(&inFlight, &peak), []Input{{ID: "1", Text: "a"}}, Options{Method: "native"})

	require.Len(t, results, 1)
	assert.True(t, results[0].Unavailable)
	assert.Equal(t, Summary{Total: 1, Unavailable: 1}, Summarize(results))
}

func TestRunCancelled(t *testing.T) {
	var inFlight, peak int64
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := Run(ctx, newTestTask(&inFlight, &peak), []Input{{ID: "1", Text: "a"}}, Options{})
	require.Len(t, results, 1)
	assert.Equal(t, context.Canceled.Error(), results[0].Error)
	assert.Equal(t, int64(0), peak)
}

func testReport(t *testing.T) *Report {
	t.Helper()
	var inFlight, peak int64
	inputs := []Input{{ID: "1", Text: "hi"}, {ID: "2", Text: "fail"}}
	results := Run(context.Background(), newTestTask(&inFlight, &peak), inputs, Options{Concurrency: 2})
	return NewReport("upper", "in.jsonl", Options{Concurrency: 2}, results)
}

func TestWriteYAML(t *testing.T) {
	report := testReport(t)
	path := filepath.Join(t.TempDir(), "out", "results.yaml")
	require.NoError(t, Write(path, report))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded struct {
		Run     RunInfo `yaml:"run"`
		Summary Summary `yaml:"summary"`
		Results []struct {
			ID     string      `yaml:"id"`
			Result upperResult `yaml:"result"`
			Error  string      `yaml:"error"`
		} `yaml:"results"`
	}
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, report.Run.ID, decoded.Run.ID)
	assert.Equal(t, "upper", decoded.Run.Method)
	assert.Equal(t, Summary{Total: 2, Succeeded: 1, Failed: 1}, decoded.Summary)
	require.Len(t, decoded.Results, 2)
	assert.Equal(t, "HI", decoded.Results[0].Result.Text)
	assert.Equal(t, "backend exploded", decoded.Results[1].Error)
}

func TestWriteParquet(t *testing.T) {
	report := testReport(t)
	path := filepath.Join(t.TempDir(), "results.parquet")
	require.NoError(t, Write(path, report))

	rows, err := parquet.ReadFile[Row](path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, report.Run.ID, rows[0].RunID)
	assert.Equal(t, `{"method":"Upper","text":"HI"}`, rows[0].Result)
	assert.Empty(t, rows[1].Result)
	assert.Equal(t, "backend exploded", rows[1].Error)
}

func TestWriteJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.jsonl")
	require.NoError(t, Write(path, testReport(t)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"result":{"method":"Upper","text":"HI"}`)
}

func TestWriteUnsupported(t *testing.T) {
	dir := t.TempDir()
	err := Write(filepath.Join(dir, "results.csv"), testReport(t))
	assert.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunInvalidMethod(t *testing.T) {
	var inFlight, peak int64
	inputs := []Input{{ID: "1", Text: "a"}, {ID: "2", Text: "b"}}

	results := Run(context.Background(), newTestTask(&inFlight, &peak), inputs, Options{Method: "shout"})

	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, `invalid method "shout". Choose from: upper, native`, r.Error)
	}
	assert.Equal(t, int64(0), peak)
}

func TestRunBlockedOnCancel(t *testing.T) {
	release := make(chan struct{})
	base := analysis.NewBase[upperResult](analysis.TaskInfo{Name: "slow", Default: "wait"})
	ctx, cancel := context.WithCancel(context.Background())
	var calls int64
	base.Registry.Register(analysis.Backend[upperResult]{
		Key:   "wait",
		Label: "Wait",
		Adapter: func(ctx context.Context, req analysis.Request) (upperResult, error) {
			atomic.AddInt64(&calls, 1)
			cancel()
			<-release
			return upperResult{Method: "Wait", Text: req.Text}, nil
		},
	})

	done := make(chan []*models.Analysis)
	go func() {
		done <- Run(ctx, base, []Input{{ID: "1", Text: "a"}, {ID: "2", Text: "b"}, {ID: "3", Text: "c"}}, Options{})
	}()
	<-ctx.Done()
	close(release)
	results := <-done

	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
	assert.Empty(t, results[0].Error)
	assert.Equal(t, context.Canceled.Error(), results[1].Error)
	assert.Equal(t, context.Canceled.Error(), results[2].Error)
}
