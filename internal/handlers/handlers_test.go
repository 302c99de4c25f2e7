package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/nlpkit/internal/analysis"
	"github.com/lehigh-university-libraries/nlpkit/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wordResult struct {
	Method string `json:"method"`
	Words  int    `json:"words"`
}

func (r wordResult) MethodLabel() string { return r.Method }
func (r wordResult) Render(w io.Writer)  { fmt.Fprintf(w, "Words: %d\n", r.Words) }

func newTestTask() analysis.Task {
	base := analysis.NewBase[wordResult](analysis.TaskInfo{Name: "words", Subject: "word counting", Default: "fields"})
	base.Registry.Register(analysis.Backend[wordResult]{
		Key:   "fields",
		Label: "Fields",
		Adapter: func(ctx context.Context, req analysis.Request) (wordResult, error) {
			return wordResult{Method: "Fields", Words: len(strings.Fields(req.Text))}, nil
		},
	})
	base.Registry.Register(analysis.Backend[wordResult]{Key: "native", Label: "Native Counter", Err: errors.New("library not found")})
	base.Registry.Register(analysis.Backend[wordResult]{
		Key:   "remote",
		Label: "Remote",
		Adapter: func(ctx context.Context, req analysis.Request) (wordResult, error) {
			return wordResult{}, errors.New("remote request failed: connection refused")
		},
	})
	return base
}

func newTestServer(t *testing.T) (*httptest.Server, *storage.AnalysisStore) {
	t.Helper()
	store := storage.New(10)
	mux := http.NewServeMux()
	New(store, newTestTask()).Routes(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, store
}

func post(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url+"/api/analyze", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestHandleAnalyze(t *testing.T) {
	server, store := newTestServer(t)

	resp, body := post(t, server.URL, `{"task":"words","text":"one two three"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "words", body["task"])
	assert.Equal(t, "fields", body["method"])
	assert.Equal(t, map[string]any{"method": "Fields", "words": float64(3)}, body["result"])

	id, _ := body["id"].(string)
	require.NotEmpty(t, id)
	stored, ok := store.Get(id)
	require.True(t, ok)
	assert.Equal(t, "one two three", stored.Text)
}

func TestHandleAnalyzeStatus(t *testing.T) {
	server, store := newTestServer(t)

	tests := []struct {
		name      string
		body      string
		status    int
		wantError string
	}{
		{name: "unknown task", body: `{"task":"poetry","text":"x"}`, status: http.StatusBadRequest, wantError: `invalid task "poetry". Choose from: words`},
		{name: "unknown method", body: `{"task":"words","method":"nltk","text":"x"}`, status: http.StatusBadRequest, wantError: `invalid method "nltk". Choose from: fields, native, remote`},
		{name: "empty text", body: `{"task":"words","text":"  "}`, status: http.StatusBadRequest, wantError: "text is required"},
		{name: "negative count", body: `{"task":"words","text":"x","count":-1}`, status: http.StatusBadRequest, wantError: "count must not be negative"},
		{name: "bad json", body: `{"task":`, status: http.StatusBadRequest},
		{name: "unavailable", body: `{"task":"words","method":"native","text":"x"}`, status: http.StatusServiceUnavailable, wantError: "Native Counter is not available: library not found"},
		{name: "upstream fault", body: `{"task":"words","method":"remote","text":"x"}`, status: http.StatusBadGateway, wantError: "remote request failed: connection refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := post(t, server.URL, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			require.Contains(t, body, "error")
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
			}
		})
	}
	assert.Empty(t, store.List())
}

func TestHandleAnalyzeMethodNotAllowed(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/analyze")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHandleMethods(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/methods")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []TaskMethods
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "words", list[0].Task)
	assert.Equal(t, "fields", list[0].Default)
	require.Len(t, list[0].Methods, 3)
	assert.True(t, list[0].Methods[0].Available)
	assert.False(t, list[0].Methods[1].Available)
	assert.Equal(t, "library not found", list[0].Methods[1].Reason)
}

func TestHandleAnalyses(t *testing.T) {
	server, _ := newTestServer(t)

	_, body := post(t, server.URL, `{"task":"words","text":"a b"}`)
	id := body["id"].(string)

	resp, err := http.Get(server.URL + "/api/analyses")
	require.NoError(t, err)
	var list []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	resp.Body.Close()
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0]["id"])

	resp, err = http.Get(server.URL + "/api/analyses/" + id)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/api/analyses/"+id, nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Get(server.URL + "/api/analyses/" + id)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
