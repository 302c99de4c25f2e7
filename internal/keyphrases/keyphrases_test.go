package keyphrases

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/nlpkit/internal/analysis"
	"github.com/lehigh-university-libraries/nlpkit/internal/config"
	"github.com/lehigh-university-libraries/nlpkit/internal/textsim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "Machine learning is a field of artificial intelligence. " +
	"Machine learning systems learn patterns from large data sets. " +
	"Deep learning is a branch of machine learning that uses neural networks. " +
	"Neural networks power modern artificial intelligence research."

type fakeChat struct {
	reply  string
	system string
	user   string
}

func (f *fakeChat) Chat(ctx context.Context, system, user string, maxTokens int) (string, error) {
	f.system, f.user = system, user
	return f.reply, nil
}

func newTask(chat *fakeChat) *Task {
	return New(&config.Config{LLM: config.LLMConfig{Provider: "ollama", OllamaModel: "llama3.2"}}, chat)
}

func analyze(t *testing.T, task *Task, req analysis.Request) Result {
	t.Helper()
	res, err := task.Analyze(context.Background(), req)
	require.NoError(t, err)
	return res.(Result)
}

func TestMethods(t *testing.T) {
	task := newTask(&fakeChat{})

	assert.Equal(t, []string{"rake", "textrank", "yake", "llm"}, task.Registry.Keys())
	assert.Equal(t, "rake", task.DefaultMethod())
	for _, m := range task.Methods() {
		assert.True(t, m.Available, m.Key)
	}

	var counter analysis.Counter = task
	assert.Equal(t, DefaultCount, counter.DefaultCount())
}

func TestLocalMethodsHonorCount(t *testing.T) {
	task := newTask(&fakeChat{})

	for _, m := range []Method{MethodRake, MethodTextRank, MethodYake} {
		for _, count := range []int{1, 3} {
			result := analyze(t, task, analysis.Request{Text: sample, Method: string(m), Count: count})
			assert.NotEmpty(t, result.Phrases, m)
			assert.LessOrEqual(t, len(result.Phrases), count, m)
		}
	}
}

func TestDefaultCount(t *testing.T) {
	chat := &fakeChat{reply: "one\ntwo\nthree\nfour\nfive\nsix\nseven"}
	task := newTask(chat)

	result := analyze(t, task, analysis.Request{Text: sample, Method: "llm"})
	assert.Equal(t, []string{"one", "two", "three", "four", "five"}, result.Phrases)
	assert.Equal(t, "LLM (llama3.2)", result.Method)
	assert.Contains(t, chat.system, "Extract the top 5 key phrases")
}

func TestLLMCount(t *testing.T) {
	chat := &fakeChat{reply: "neural networks\nmachine learning\ndeep learning"}
	task := newTask(chat)

	result := analyze(t, task, analysis.Request{Text: "some text", Method: "llm", Count: 2})
	assert.Equal(t, []string{"neural networks", "machine learning"}, result.Phrases)
	assert.Equal(t, systemPrompt(2), chat.system)
	assert.Equal(t, "Extract key phrases from this text: 'some text'", chat.user)
}

func TestNegativeCount(t *testing.T) {
	task := newTask(&fakeChat{})

	_, err := task.Analyze(context.Background(), analysis.Request{Text: sample, Count: -1})
	require.Error(t, err)
	assert.False(t, analysis.IsUnavailable(err))
}

func TestYake(t *testing.T) {
	phrases, err := extractYake(context.Background(), sample, 10)
	require.NoError(t, err)
	require.NotEmpty(t, phrases)

	for i, p := range phrases {
		assert.Equal(t, strings.ToLower(p), p)
		words := strings.Fields(p)
		assert.LessOrEqual(t, len(words), yakeMaxNgram)
		assert.False(t, stopwords[words[0]], "%q starts with a stopword", p)
		assert.False(t, stopwords[words[len(words)-1]], "%q ends with a stopword", p)
		for _, q := range phrases[:i] {
			assert.LessOrEqual(t, textsim.Similarity(p, q), yakeDedupLim, "%q duplicates %q", p, q)
		}
	}
}

func TestYakeEmpty(t *testing.T) {
	phrases, err := extractYake(context.Background(), "", 5)
	require.NoError(t, err)
	assert.Empty(t, phrases)
}

func TestTextRankUnique(t *testing.T) {
	phrases, err := extractTextRank(context.Background(), sample, 10)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, p := range phrases {
		assert.False(t, seen[p], "duplicate phrase %q", p)
		seen[p] = true
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	Result{Method: "TextRank", Phrases: []string{"neural networks", "deep learning"}}.Render(&buf)
	assert.Equal(t, "\nMethod used: TextRank\nKey phrases extracted:\n1. neural networks\n2. deep learning\n", buf.String())
}

func TestLabels(t *testing.T) {
	var labeler analysis.Labeler = Result{Phrases: []string{"deep learning", "neural networks"}}
	assert.Equal(t, []string{"deep learning", "neural networks"}, labeler.Labels())
}
