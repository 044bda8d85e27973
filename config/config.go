// Package config loads service configuration from .env, an optional YAML
// file and the process environment, in that order of precedence (lowest first).
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Session   SessionConfig   `yaml:"session"`
	LLM       LLMConfig       `yaml:"llm"`
	Intake    IntakeConfig    `yaml:"intake"`
	Knowledge KnowledgeConfig `yaml:"knowledge"`
}

type ServerConfig struct {
	Port           string   `yaml:"port"`
	Env            string   `yaml:"env"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes"`
}

// SessionConfig selects where wizard cases live between requests.
type SessionConfig struct {
	// Store is one of "memory", "redis", "postgres".
	Store       string        `yaml:"store"`
	TTL         time.Duration `yaml:"ttl"`
	RedisAddr   string        `yaml:"redis_addr"`
	DatabaseURL string        `yaml:"database_url"`
}

type LLMConfig struct {
	// Provider is "gemini" or "openai".
	Provider string `yaml:"provider"`
	// EmbeddingProvider defaults to Provider when empty.
	EmbeddingProvider    string `yaml:"embedding_provider"`
	GeminiAPIKey         string `yaml:"gemini_api_key"`
	GeminiModel          string `yaml:"gemini_model"`
	GeminiEmbeddingModel string `yaml:"gemini_embedding_model"`
	OpenAIAPIKey         string `yaml:"openai_api_key"`
	OpenAIBaseURL        string `yaml:"openai_base_url"`
	OpenAIModel          string `yaml:"openai_model"`
	OpenAIEmbeddingModel string `yaml:"openai_embedding_model"`
}

type IntakeConfig struct {
	// TranscriptionProvider is "openai" or "gcp".
	TranscriptionProvider string `yaml:"transcription_provider"`
	// OCRProvider is "gcp" or "none".
	OCRProvider       string `yaml:"ocr_provider"`
	GoogleCredentials string `yaml:"google_credentials"`
	LanguageCode      string `yaml:"language_code"`
}

// KnowledgeConfig holds the storage keys of the persisted JSON documents.
type KnowledgeConfig struct {
	KnowledgeKey string `yaml:"knowledge_key"`
	PatternsKey  string `yaml:"patterns_key"`
}

// DefaultConfig returns a Config with development defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
			Env:  "development",
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost:5173",
				"http://127.0.0.1:3000",
				"http://127.0.0.1:5173",
			},
			MaxUploadBytes: 50 * 1024 * 1024,
		},
		Session: SessionConfig{
			Store: "memory",
			TTL:   72 * time.Hour,
		},
		LLM: LLMConfig{
			Provider:             "gemini",
			GeminiModel:          "gemini-2.0-flash",
			GeminiEmbeddingModel: "text-embedding-004",
			OpenAIModel:          "gpt-4o-mini",
			OpenAIEmbeddingModel: "text-embedding-3-small",
		},
		Intake: IntakeConfig{
			TranscriptionProvider: "openai",
			OCRProvider:           "gcp",
			LanguageCode:          "es-CO",
		},
		Knowledge: KnowledgeConfig{
			KnowledgeKey: "knowledge/base_conocimiento_legal.json",
			PatternsKey:  "patterns/patrones_referencia.json",
		},
	}
}

// Load reads .env (current directory first, then the project root relative to
// cmd/<name>/), applies the YAML file named by CONFIG_FILE if set, then the
// environment, and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	cfg := DefaultConfig()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg.Merge(fileCfg)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile parses a YAML config file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Merge copies the non-zero values of other into c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	mergeString(&c.Server.Port, other.Server.Port)
	mergeString(&c.Server.Env, other.Server.Env)
	if len(other.Server.AllowedOrigins) > 0 {
		c.Server.AllowedOrigins = other.Server.AllowedOrigins
	}
	if other.Server.MaxUploadBytes > 0 {
		c.Server.MaxUploadBytes = other.Server.MaxUploadBytes
	}

	mergeString(&c.Session.Store, other.Session.Store)
	if other.Session.TTL > 0 {
		c.Session.TTL = other.Session.TTL
	}
	mergeString(&c.Session.RedisAddr, other.Session.RedisAddr)
	mergeString(&c.Session.DatabaseURL, other.Session.DatabaseURL)

	mergeString(&c.LLM.Provider, other.LLM.Provider)
	mergeString(&c.LLM.EmbeddingProvider, other.LLM.EmbeddingProvider)
	mergeString(&c.LLM.GeminiAPIKey, other.LLM.GeminiAPIKey)
	mergeString(&c.LLM.GeminiModel, other.LLM.GeminiModel)
	mergeString(&c.LLM.GeminiEmbeddingModel, other.LLM.GeminiEmbeddingModel)
	mergeString(&c.LLM.OpenAIAPIKey, other.LLM.OpenAIAPIKey)
	mergeString(&c.LLM.OpenAIBaseURL, other.LLM.OpenAIBaseURL)
	mergeString(&c.LLM.OpenAIModel, other.LLM.OpenAIModel)
	mergeString(&c.LLM.OpenAIEmbeddingModel, other.LLM.OpenAIEmbeddingModel)

	mergeString(&c.Intake.TranscriptionProvider, other.Intake.TranscriptionProvider)
	mergeString(&c.Intake.OCRProvider, other.Intake.OCRProvider)
	mergeString(&c.Intake.GoogleCredentials, other.Intake.GoogleCredentials)
	mergeString(&c.Intake.LanguageCode, other.Intake.LanguageCode)

	mergeString(&c.Knowledge.KnowledgeKey, other.Knowledge.KnowledgeKey)
	mergeString(&c.Knowledge.PatternsKey, other.Knowledge.PatternsKey)
}

func (c *Config) applyEnv() {
	envString(&c.Server.Port, "PORT")
	envString(&c.Server.Env, "APP_ENV")
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			c.Server.MaxUploadBytes = n
		} else {
			log.Printf("Warning: ignoring invalid MAX_UPLOAD_BYTES %q", v)
		}
	}

	envString(&c.Session.Store, "SESSION_STORE")
	if v := os.Getenv("SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.Session.TTL = d
		} else {
			log.Printf("Warning: ignoring invalid SESSION_TTL %q", v)
		}
	}
	envString(&c.Session.RedisAddr, "REDIS_ADDR")
	envString(&c.Session.DatabaseURL, "DATABASE_URL")

	envString(&c.LLM.Provider, "LLM_PROVIDER")
	envString(&c.LLM.EmbeddingProvider, "EMBEDDING_PROVIDER")
	envString(&c.LLM.GeminiAPIKey, "GEMINI_API_KEY")
	envString(&c.LLM.GeminiModel, "GEMINI_MODEL")
	envString(&c.LLM.GeminiEmbeddingModel, "GEMINI_EMBEDDING_MODEL")
	envString(&c.LLM.OpenAIAPIKey, "OPENAI_API_KEY")
	envString(&c.LLM.OpenAIBaseURL, "OPENAI_BASE_URL")
	envString(&c.LLM.OpenAIModel, "OPENAI_MODEL")
	envString(&c.LLM.OpenAIEmbeddingModel, "OPENAI_EMBEDDING_MODEL")

	envString(&c.Intake.TranscriptionProvider, "TRANSCRIPTION_PROVIDER")
	envString(&c.Intake.OCRProvider, "OCR_PROVIDER")
	envString(&c.Intake.GoogleCredentials, "GOOGLE_APPLICATION_CREDENTIALS")
	envString(&c.Intake.LanguageCode, "SPEECH_LANGUAGE_CODE")

	envString(&c.Knowledge.KnowledgeKey, "KNOWLEDGE_KEY")
	envString(&c.Knowledge.PatternsKey, "PATTERNS_KEY")
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}

	switch c.Session.Store {
	case "memory":
	case "redis":
		if c.Session.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for redis session store")
		}
	case "postgres":
		if c.Session.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for postgres session store")
		}
	default:
		return fmt.Errorf("unknown session store: %s", c.Session.Store)
	}

	for _, p := range []string{c.LLM.Provider, c.EmbeddingProvider()} {
		if p != "gemini" && p != "openai" {
			return fmt.Errorf("unknown llm provider: %s", p)
		}
	}

	switch c.Intake.TranscriptionProvider {
	case "openai", "gcp":
	default:
		return fmt.Errorf("unknown transcription provider: %s", c.Intake.TranscriptionProvider)
	}

	switch c.Intake.OCRProvider {
	case "gcp", "none":
	default:
		return fmt.Errorf("unknown ocr provider: %s", c.Intake.OCRProvider)
	}

	if c.Knowledge.KnowledgeKey == "" || c.Knowledge.PatternsKey == "" {
		return fmt.Errorf("knowledge and patterns keys are required")
	}
	return nil
}

// EmbeddingProvider returns the provider used for embeddings.
func (c *Config) EmbeddingProvider() string {
	if c.LLM.EmbeddingProvider != "" {
		return c.LLM.EmbeddingProvider
	}
	return c.LLM.Provider
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Env)
	return env == "production" || env == "prod"
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func envString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
