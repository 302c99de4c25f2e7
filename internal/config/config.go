package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for nlpkit. It is built once at startup and
// passed by reference to every task.
type Config struct {
	Log            LogConfig            `mapstructure:"log"`
	LLM            LLMConfig            `mapstructure:"llm"`
	Models         ModelsConfig         `mapstructure:"models"`
	HuggingFace    HuggingFaceConfig    `mapstructure:"huggingface"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// LLMConfig selects and configures the hosted chat completion provider
type LLMConfig struct {
	Provider    string  `mapstructure:"provider"` // openai, ollama, gemini
	Model       string  `mapstructure:"model"`    // overrides the provider default
	Temperature float64 `mapstructure:"temperature"`

	OpenAIAPIKey  string `mapstructure:"openai_api_key"`
	OpenAIBaseURL string `mapstructure:"openai_base_url"`
	OpenAIModel   string `mapstructure:"openai_model"`

	OllamaURL   string `mapstructure:"ollama_url"`
	OllamaModel string `mapstructure:"ollama_model"`

	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	GeminiModel  string `mapstructure:"gemini_model"`
}

// ModelFor returns the model to use with the configured provider.
func (c LLMConfig) ModelFor(provider string) string {
	if c.Model != "" {
		return c.Model
	}
	switch provider {
	case "openai":
		return c.OpenAIModel
	case "ollama":
		return c.OllamaModel
	case "gemini":
		return c.GeminiModel
	default:
		return ""
	}
}

// ModelsConfig configures the local model backends
type ModelsConfig struct {
	SpacyModel   string   `mapstructure:"spacy_model"`
	NERModelID   string   `mapstructure:"ner_model_id"` // empty uses the default BERT NER model
	GlinerModel  string   `mapstructure:"gliner_model"`
	GlinerLabels []string `mapstructure:"gliner_labels"`
	FastTextURL  string   `mapstructure:"fasttext_url"`
	CacheDir     string   `mapstructure:"cache_dir"`
}

// HuggingFaceConfig configures the hosted transformers sentiment backend
type HuggingFaceConfig struct {
	Token          string `mapstructure:"token"`
	BaseURL        string `mapstructure:"base_url"`
	SentimentModel string `mapstructure:"sentiment_model"`
}

// CircuitBreakerConfig holds configuration for circuit breaking around the
// hosted chat provider
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

const (
	DefaultFastTextURL = "https://dl.fbaipublicfiles.com/fasttext/supervised-models/lid.176.bin"
	DefaultHFBaseURL   = "https://api-inference.huggingface.co/models"
)

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "warn")

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.temperature", 1.0)
	v.SetDefault("llm.openai_model", "gpt-3.5-turbo")
	v.SetDefault("llm.ollama_url", "http://localhost:11434")
	v.SetDefault("llm.ollama_model", "llama3.2")
	v.SetDefault("llm.gemini_model", "gemini-1.5-flash")

	v.SetDefault("models.spacy_model", "en_core_web_sm")
	v.SetDefault("models.gliner_model", "onnx-community/gliner_small-v2.1")
	v.SetDefault("models.gliner_labels", []string{"person", "organization", "location", "date"})
	v.SetDefault("models.fasttext_url", DefaultFastTextURL)
	v.SetDefault("models.cache_dir", defaultCacheDir())

	v.SetDefault("huggingface.base_url", DefaultHFBaseURL)
	v.SetDefault("huggingface.sentiment_model", "distilbert-base-uncased-finetuned-sst-2-english")

	v.SetDefault("circuit_breaker.enabled", false)
	v.SetDefault("circuit_breaker.max_requests", 1)
	v.SetDefault("circuit_breaker.interval", 60)
	v.SetDefault("circuit_breaker.timeout", 30)
	v.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)
}

// BindEnv maps environment variables onto config keys. Every key can be set
// with the NLPKIT_ prefix (NLPKIT_LLM_PROVIDER); the conventional provider
// variable names are accepted as well.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix("NLPKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	aliases := map[string][]string{
		"llm.provider":            {"NLPKIT_LLM_PROVIDER", "NLPKIT_PROVIDER"},
		"llm.openai_api_key":      {"NLPKIT_LLM_OPENAI_API_KEY", "OPENAI_API_KEY"},
		"llm.openai_base_url":     {"NLPKIT_LLM_OPENAI_BASE_URL", "OPENAI_BASE_URL"},
		"llm.openai_model":        {"NLPKIT_LLM_OPENAI_MODEL", "OPENAI_MODEL"},
		"llm.ollama_url":          {"NLPKIT_LLM_OLLAMA_URL", "OLLAMA_URL", "OLLAMA_HOST"},
		"llm.ollama_model":        {"NLPKIT_LLM_OLLAMA_MODEL", "OLLAMA_MODEL"},
		"llm.gemini_api_key":      {"NLPKIT_LLM_GEMINI_API_KEY", "GEMINI_API_KEY"},
		"llm.gemini_model":        {"NLPKIT_LLM_GEMINI_MODEL", "GEMINI_MODEL"},
		"huggingface.token":       {"NLPKIT_HUGGINGFACE_TOKEN", "HF_TOKEN", "HUGGINGFACE_TOKEN"},
		"models.cache_dir":        {"NLPKIT_MODELS_CACHE_DIR", "NLPKIT_CACHE_DIR"},
		"models.ner_model_id":     {"NLPKIT_MODELS_NER_MODEL_ID"},
		"huggingface.base_url":    {"NLPKIT_HUGGINGFACE_BASE_URL"},
		"models.fasttext_url":     {"NLPKIT_MODELS_FASTTEXT_URL"},
		"circuit_breaker.enabled": {"NLPKIT_CIRCUIT_BREAKER_ENABLED"},
	}
	for key, envs := range aliases {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	return nil
}

// ReadFile reads cfgFile if set, otherwise looks for nlpkit.yaml in the
// working directory and .nlpkit.yaml in the home directory. A missing default
// file is not an error.
func ReadFile(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
		return nil
	}

	v.SetConfigType("yaml")
	v.SetConfigName("nlpkit")
	v.AddConfigPath(".")
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}
	if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if home, err := os.UserHomeDir(); err == nil {
		v.SetConfigName(".nlpkit")
		v.AddConfigPath(home)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}
	return nil
}

// Load unmarshals v into a Config
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "openai", "ollama", "gemini":
	default:
		return fmt.Errorf("unsupported llm provider: %s (supported: openai, ollama, gemini)", c.LLM.Provider)
	}
	if c.CircuitBreaker.Enabled && (c.CircuitBreaker.ReadyToTripRatio <= 0 || c.CircuitBreaker.ReadyToTripRatio > 1) {
		return fmt.Errorf("circuit_breaker.ready_to_trip_ratio must be in (0, 1], got %v", c.CircuitBreaker.ReadyToTripRatio)
	}
	return nil
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "nlpkit")
	}
	return "."
}
