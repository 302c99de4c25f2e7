package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/nlpkit/internal/analysis"
)

// huggingFace calls a hosted text classification model
type huggingFace struct {
	url    string
	token  string
	client *http.Client
}

func newHuggingFace(baseURL, model, token string) *huggingFace {
	return &huggingFace{
		url:    strings.TrimSuffix(baseURL, "/") + "/" + model,
		token:  token,
		client: &http.Client{},
	}
}

type classification struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func (h *huggingFace) classify(ctx context.Context, text string) (classification, error) {
	requestBody, err := json.Marshal(map[string]interface{}{
		"inputs": text,
	})
	if err != nil {
		return classification{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", h.url, bytes.NewBuffer(requestBody))
	if err != nil {
		return classification{}, fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.token)

	resp, err := h.client.Do(req)
	if err != nil {
		return classification{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return classification{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return classification{}, fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body))
	}

	// The endpoint answers [[...]] for a single input; some deployments
	// answer with the inner list only.
	var nested [][]classification
	var labels []classification
	if err := json.Unmarshal(body, &nested); err == nil {
		if len(nested) > 0 {
			labels = nested[0]
		}
	} else if err := json.Unmarshal(body, &labels); err != nil {
		return classification{}, fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(labels) == 0 {
		return classification{}, fmt.Errorf("no labels returned from Hugging Face: %w", analysis.ErrEmptyResponse)
	}

	best := labels[0]
	for _, l := range labels[1:] {
		if l.Score > best.Score {
			best = l
		}
	}
	return best, nil
}

func (h *huggingFace) analyze(ctx context.Context, text string) (string, float64, error) {
	c, err := h.classify(ctx, text)
	if err != nil {
		return "", 0, err
	}
	return classifyLabel(c.Label), c.Score, nil
}
