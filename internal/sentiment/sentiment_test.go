package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lehigh-university-libraries/nlpkit/internal/analysis"
	"github.com/lehigh-university-libraries/nlpkit/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChat struct {
	reply string
	err   error
}

func (f *fakeChat) Chat(ctx context.Context, system, user string, maxTokens int) (string, error) {
	return f.reply, f.err
}

func testConfig() *config.Config {
	return &config.Config{
		LLM: config.LLMConfig{Provider: "gemini", GeminiModel: "gemini-1.5-flash"},
		HuggingFace: config.HuggingFaceConfig{
			BaseURL:        config.DefaultHFBaseURL,
			SentimentModel: "distilbert-base-uncased-finetuned-sst-2-english",
		},
	}
}

func TestClassifyPolarity(t *testing.T) {
	tests := []struct {
		polarity float64
		want     string
	}{
		{polarity: 0.5, want: Positive},
		{polarity: 0.0001, want: Positive},
		{polarity: 0, want: Neutral},
		{polarity: -0.0001, want: Negative},
		{polarity: -1, want: Negative},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyPolarity(tt.polarity), "polarity %v", tt.polarity)
	}
}

func TestClassifyCompound(t *testing.T) {
	tests := []struct {
		compound float64
		want     string
	}{
		{compound: 0.06, want: Positive},
		{compound: 0.05, want: Positive},
		{compound: 0.04, want: Neutral},
		{compound: 0, want: Neutral},
		{compound: -0.04, want: Neutral},
		{compound: -0.05, want: Negative},
		{compound: -0.9, want: Negative},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyCompound(tt.compound), "compound %v", tt.compound)
	}
}

func TestVaderScorer(t *testing.T) {
	v := &vader{compound: func(text string) float64 { return 0.69 }}

	sentiment, score, err := v.analyze(context.Background(), "I love this product")
	require.NoError(t, err)
	assert.Equal(t, Positive, sentiment)
	assert.Equal(t, 0.69, score)
}

func TestMethods(t *testing.T) {
	task := New(testConfig(), &fakeChat{})

	assert.Equal(t, []string{"naivebayes", "vader", "transformers", "llm"}, task.Registry.Keys())
	assert.Equal(t, "naivebayes", task.DefaultMethod())
}

func TestLocalBackends(t *testing.T) {
	task := New(testConfig(), &fakeChat{})

	tests := []struct {
		method string
		text   string
		want   string
	}{
		{method: "vader", text: "I love this product", want: Positive},
		{method: "vader", text: "This is terrible, I hate it", want: Negative},
		{method: "naivebayes", text: "I love this wonderful product, it is excellent", want: Positive},
		{method: "naivebayes", text: "This is a terrible, awful and boring waste of time", want: Negative},
		{method: "naivebayes", text: "The meeting is on Tuesday at the library.", want: Neutral},
		{method: "vader", text: "The meeting is on Tuesday at the library.", want: Neutral},
	}

	for _, tt := range tests {
		t.Run(tt.method+"/"+tt.text, func(t *testing.T) {
			res, err := task.Analyze(context.Background(), analysis.Request{Text: tt.text, Method: tt.method})
			require.NoError(t, err)
			result := res.(Result)
			assert.Equal(t, tt.want, result.Sentiment)
			require.NotNil(t, result.Score)
			assert.GreaterOrEqual(t, *result.Score, -1.0)
			assert.LessOrEqual(t, *result.Score, 1.0)
		})
	}
}

func TestNaiveBayesNeutral(t *testing.T) {
	calls := 0
	nb, err := newNaiveBayes(func(text string) float64 {
		calls++
		return 0
	})
	require.NoError(t, err)

	for _, text := range []string{"", "   ", "The train leaves at noon."} {
		sentiment, polarity, err := nb.analyze(context.Background(), text)
		require.NoError(t, err)
		assert.Equal(t, Neutral, sentiment, "%q", text)
		assert.Equal(t, 0.0, polarity)
	}
	assert.Equal(t, 1, calls, "blank text skips the lexicon")

	nb.lexicon = func(text string) float64 { return 0.4 }
	sentiment, polarity, err := nb.analyze(context.Background(), "I love this wonderful product, it is excellent")
	require.NoError(t, err)
	assert.Equal(t, Positive, sentiment)
	assert.Greater(t, polarity, 0.0)
}

func TestClassifyLabel(t *testing.T) {
	assert.Equal(t, Positive, classifyLabel("POSITIVE"))
	assert.Equal(t, Negative, classifyLabel("negative"))
	assert.Equal(t, Neutral, classifyLabel("LABEL_1"))
}

func TestHuggingFace(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		want      string
		wantScore float64
		wantErr   bool
	}{
		{
			name:      "nested response",
			status:    http.StatusOK,
			body:      `[[{"label":"NEGATIVE","score":0.02},{"label":"POSITIVE","score":0.98}]]`,
			want:      Positive,
			wantScore: 0.98,
		},
		{
			name:      "flat response",
			status:    http.StatusOK,
			body:      `[{"label":"NEGATIVE","score":0.91}]`,
			want:      Negative,
			wantScore: 0.91,
		},
		{
			name:      "other label",
			status:    http.StatusOK,
			body:      `[[{"label":"LABEL_1","score":0.7}]]`,
			want:      Neutral,
			wantScore: 0.7,
		},
		{name: "empty", status: http.StatusOK, body: `[[]]`, wantErr: true},
		{name: "model loading", status: http.StatusServiceUnavailable, body: `{"error":"Model is currently loading"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/models/sst-2", r.URL.Path)
				assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))
				var body map[string]string
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "so good", body["inputs"])
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			hf := newHuggingFace(server.URL+"/models/", "sst-2", "hf_test")
			sentiment, score, err := hf.analyze(context.Background(), "so good")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, sentiment)
			assert.Equal(t, tt.wantScore, score)
		})
	}
}

func TestParseSentiment(t *testing.T) {
	tests := []struct {
		response  string
		want      string
		wantScore float64
		wantErr   bool
	}{
		{response: "Positive, 0.95", want: "Positive", wantScore: 0.95},
		{response: "Negative,0.8", want: "Negative", wantScore: 0.8},
		{response: "Neutral, 0.5, extra", want: "Neutral", wantScore: 0.5},
		{response: "Positive", wantErr: true},
		{response: "Positive, very", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.response, func(t *testing.T) {
			sentiment, score, err := parseSentiment(tt.response)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, sentiment)
			assert.Equal(t, tt.wantScore, score)
		})
	}
}

func TestAnalyzeLLM(t *testing.T) {
	task := New(testConfig(), &fakeChat{reply: "Positive, 0.9"})

	res, err := task.Analyze(context.Background(), analysis.Request{Text: "I love it", Method: "llm"})
	require.NoError(t, err)
	result := res.(Result)
	assert.Equal(t, "LLM (gemini-1.5-flash)", result.Method)
	assert.Equal(t, "Positive", result.Sentiment)
	assert.Equal(t, 0.9, *result.Score)

	task = New(testConfig(), &fakeChat{err: errors.New("quota exceeded")})
	_, err = task.Analyze(context.Background(), analysis.Request{Text: "I love it", Method: "llm"})
	assert.EqualError(t, err, "quota exceeded")
}

func TestRender(t *testing.T) {
	score := 0.69
	var buf bytes.Buffer
	Result{Method: "VADER", Sentiment: Positive, Score: &score}.Render(&buf)
	assert.Equal(t, "\nMethod used: VADER\nSentiment: Positive\nScore/Confidence: 0.69\n", buf.String())
}

func TestLabels(t *testing.T) {
	var labeler analysis.Labeler = Result{Sentiment: Negative}
	assert.Equal(t, []string{Negative}, labeler.Labels())
}
