package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/nlpkit/internal/analysis"
	"github.com/lehigh-university-libraries/nlpkit/internal/config"
	"github.com/lehigh-university-libraries/nlpkit/internal/console"
	"github.com/lehigh-university-libraries/nlpkit/internal/entities"
	"github.com/lehigh-university-libraries/nlpkit/internal/keyphrases"
	"github.com/lehigh-university-libraries/nlpkit/internal/language"
	"github.com/lehigh-university-libraries/nlpkit/internal/llm"
	"github.com/lehigh-university-libraries/nlpkit/internal/sentiment"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// taskFactory builds one analysis task from the shared configuration.
type taskFactory func(cfg *config.Config, chat llm.Chatter) analysis.Task

// taskFactories lists every task in menu and API order.
var taskFactories = []struct {
	name  string
	build taskFactory
}{
	{name: "entities", build: func(cfg *config.Config, chat llm.Chatter) analysis.Task { return entities.New(cfg, chat) }},
	{name: "keyphrases", build: func(cfg *config.Config, chat llm.Chatter) analysis.Task { return keyphrases.New(cfg, chat) }},
	{name: "language", build: func(cfg *config.Config, chat llm.Chatter) analysis.Task { return language.New(cfg, chat) }},
	{name: "sentiment", build: func(cfg *config.Config, chat llm.Chatter) analysis.Task { return sentiment.New(cfg, chat) }},
}

func taskNames() []string {
	names := make([]string, len(taskFactories))
	for i, f := range taskFactories {
		names[i] = f.name
	}
	return names
}

// buildTask creates the named task with a chat client for its LLM method.
func (a *app) buildTask(name string) (analysis.Task, error) {
	for _, f := range taskFactories {
		if f.name != name {
			continue
		}
		chat, err := a.chatClient()
		if err != nil {
			return nil, err
		}
		return f.build(a.cfg, chat), nil
	}
	return nil, fmt.Errorf("invalid task %q. Choose from: %s", name, strings.Join(taskNames(), ", "))
}

// chatClient returns the hosted model client shared by every task, so a
// circuit breaker sees all of the process's requests.
func (a *app) chatClient() (llm.Chatter, error) {
	if a.chat == nil {
		chat, err := llm.New(a.cfg)
		if err != nil {
			return nil, err
		}
		a.chat = chat
	}
	return a.chat, nil
}

// buildAllTasks creates every task, closing the ones already built on error.
func (a *app) buildAllTasks() ([]analysis.Task, error) {
	tasks := make([]analysis.Task, 0, len(taskFactories))
	for _, f := range taskFactories {
		task, err := a.buildTask(f.name)
		if err != nil {
			closeTasks(tasks...)
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func closeTasks(tasks ...analysis.Task) {
	for _, t := range tasks {
		if err := t.Close(); err != nil {
			slog.Error("Unable to release task resources", "task", t.Name(), "err", err)
		}
	}
}

type taskCmdSpec struct {
	name    string
	short   string
	long    string
	example string
	// withCount adds --count for tasks that rank their output.
	withCount bool
}

func newTaskCmd(a *app, spec taskCmdSpec) *cobra.Command {
	var text string
	var method string
	var count int
	var format string

	cmd := &cobra.Command{
		Use:     spec.name,
		Short:   spec.short,
		Long:    spec.long,
		Example: spec.example,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}

			task, err := a.buildTask(spec.name)
			if err != nil {
				return err
			}
			defer closeTasks(task)

			if !cmd.Flags().Changed("text") {
				return console.New(task, cmd.InOrStdin(), cmd.OutOrStdout()).Run(cmd.Context())
			}

			if text == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read text from stdin: %w", err)
				}
				text = string(data)
			}
			return runOnce(cmd.Context(), cmd.OutOrStdout(), task, analysis.Request{Text: text, Method: method, Count: count}, format)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", `Analyze this text once instead of starting the interactive prompt ("-" reads stdin)`)
	cmd.Flags().StringVar(&method, "method", "", "Method to use with --text (defaults to the task's default method)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format with --text: text, json or yaml")
	if spec.withCount {
		cmd.Flags().IntVar(&count, "count", keyphrases.DefaultCount, "Number of key phrases to extract with --text")
	}

	return cmd
}

func validateFormat(format string) error {
	switch format {
	case "text", "json", "yaml":
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json, yaml)", format)
	}
}

// runOnce analyzes a single request and prints the result in format.
func runOnce(ctx context.Context, w io.Writer, task analysis.Task, req analysis.Request, format string) error {
	if strings.TrimSpace(req.Text) == "" {
		return fmt.Errorf("--text must not be empty")
	}

	result, err := task.Analyze(ctx, req)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return enc.Close()
	default:
		result.Render(w)
		return nil
	}
}

func newEntitiesCmd(a *app) *cobra.Command {
	return newTaskCmd(a, taskCmdSpec{
		name:  "entities",
		short: "Recognize named entities",
		long: `Recognize named entities (people, organizations, places, dates) in text.

Methods: spacy, prose (default), transformers (BERT), gliner and llm.`,
		example: `  # Interactive prompt
  nlpkit entities

  # One-shot with the hosted model
  nlpkit entities --text "Tim Cook leads Apple in Cupertino." --method llm --format json`,
	})
}

func newKeyPhrasesCmd(a *app) *cobra.Command {
	return newTaskCmd(a, taskCmdSpec{
		name:  "keyphrases",
		short: "Extract key phrases",
		long: `Extract the top key phrases from text.

Methods: rake (default), textrank, yake and llm.`,
		example: `  # Interactive prompt
  nlpkit keyphrases

  # Top 3 phrases with YAKE
  nlpkit keyphrases --text "$(cat article.txt)" --method yake --count 3`,
		withCount: true,
	})
}

func newLanguageCmd(a *app) *cobra.Command {
	return newTaskCmd(a, taskCmdSpec{
		name:  "language",
		short: "Detect the language of text",
		long: `Detect the language of text as an ISO 639-1 code.

Methods: simple (default), langid, fasttext and llm. The fastText model is
downloaded once into the model cache directory.`,
		example: `  nlpkit language --text "Ceci est une phrase." --method fasttext`,
	})
}

func newSentimentCmd(a *app) *cobra.Command {
	return newTaskCmd(a, taskCmdSpec{
		name:  "sentiment",
		short: "Analyze the sentiment of text",
		long: `Classify text as Positive, Negative or Neutral.

Methods: naivebayes (default), vader, transformers (local DistilBERT model;
falls back to the Hugging Face inference API when HF_TOKEN is set) and llm.`,
		example: `  echo "I love this product" | nlpkit sentiment --text - --method vader --format yaml`,
	})
}
