package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/nlpkit/internal/config"
	"github.com/lehigh-university-libraries/nlpkit/internal/llm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// logLevelAnnotation sets a command's default log level when none is
// configured.
const logLevelAnnotation = "nlpkit/log-level"

// app carries the configuration shared by every subcommand.
type app struct {
	cfgFile string
	cfg     *config.Config
	chat    llm.Chatter
}

func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "nlpkit",
		Short: "Entity recognition, key phrase extraction, language detection and sentiment analysis",
		Long: `nlpkit runs four text analysis tasks, each backed by several interchangeable
methods: local libraries, native models and hosted LLMs.

Every task command starts an interactive prompt by default. Pass --text for a
single analysis, use "batch" to process a file, or "serve" to expose the tasks
over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return a.load(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "Config file (default ./nlpkit.yaml or $HOME/.nlpkit.yaml)")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("provider", "", "Hosted model provider: openai, ollama or gemini")
	flags.String("model", "", "Hosted model name (defaults to the provider's default)")

	cmd.AddCommand(newEntitiesCmd(a))
	cmd.AddCommand(newKeyPhrasesCmd(a))
	cmd.AddCommand(newLanguageCmd(a))
	cmd.AddCommand(newSentimentCmd(a))
	cmd.AddCommand(newBatchCmd(a))
	cmd.AddCommand(newEvalCmd(a))
	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newMethodsCmd(a))

	return cmd
}

// load builds the configuration from defaults, environment, the config file
// and flags, in increasing order of precedence.
func (a *app) load(cmd *cobra.Command) error {
	v := viper.New()
	config.SetDefaults(v)
	if err := config.BindEnv(v); err != nil {
		return err
	}

	flags := cmd.Root().PersistentFlags()
	for key, name := range map[string]string{
		"log.level":    "log-level",
		"llm.provider": "provider",
		"llm.model":    "model",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}

	if err := config.ReadFile(v, a.cfgFile); err != nil {
		return err
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if def, ok := cmd.Annotations[logLevelAnnotation]; ok && !logLevelConfigured(v, flags.Changed("log-level")) {
		level = def
	}
	if err := setupLogger(level); err != nil {
		return err
	}

	slog.Debug("Configuration loaded", "config_file", v.ConfigFileUsed(), "provider", cfg.LLM.Provider, "model", cfg.LLM.ModelFor(cfg.LLM.Provider))
	a.cfg = cfg
	return nil
}

func logLevelConfigured(v *viper.Viper, flagChanged bool) bool {
	if flagChanged || v.InConfig("log.level") {
		return true
	}
	_, ok := os.LookupEnv("NLPKIT_LOG_LEVEL")
	return ok
}

// setupLogger writes structured logs to stderr so console output stays clean.
func setupLogger(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return nil
}
