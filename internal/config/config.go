package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"

	"github.com/empathai/backend/internal/model/persona"
)

// Config aggregates every runtime setting for the service.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	LLM      LLMConfig
	Persona  persona.Persona
	Memory   MemoryConfig
	CORS     CORSConfig
}

// Load reads configuration from environment variables. A missing LLM API key
// is an error: the service must fail fast rather than silently serve
// requests it cannot answer.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	llm, err := loadLLMConfig()
	if err != nil {
		return nil, err
	}

	mem, err := loadMemoryConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:   server,
		Database: loadDatabaseConfig(),
		LLM:      llm,
		Persona:  loadPersona(),
		Memory:   mem,
		CORS:     loadCORSConfig(),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8087"
	}

	if strings.Contains(port, ":") {
		// Accept ":8087" or "127.0.0.1:8087" verbatim.
		return ServerConfig{Addr: port}, nil
	}

	if _, err := strconv.Atoi(port); err != nil {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// DatabaseConfig locates the SQLite database file.
type DatabaseConfig struct {
	Path string
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Path: getEnvOrDefault("DATABASE_PATH", "data/empathai.db"),
	}
}

// LLMConfig describes the hosted model provider.
type LLMConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature *float64
	MaxTokens   *int
	Stream      bool
}

func loadLLMConfig() (LLMConfig, error) {
	apiKey := strings.TrimSpace(os.Getenv("LLM_API_KEY"))
	if apiKey == "" {
		return LLMConfig{}, fmt.Errorf("LLM_API_KEY is required")
	}

	temperature, err := parseOptionalFloatEnv("LLM_TEMPERATURE")
	if err != nil {
		return LLMConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("LLM_MAX_TOKENS")
	if err != nil {
		return LLMConfig{}, err
	}

	stream, err := parseBoolEnv("LLM_STREAM", true)
	if err != nil {
		return LLMConfig{}, err
	}

	return LLMConfig{
		APIKey:      apiKey,
		Model:       getEnvOrDefault("LLM_MODEL", "llama-3.1-8b-instant"),
		BaseURL:     strings.TrimSpace(os.Getenv("LLM_BASE_URL")),
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Stream:      stream,
	}, nil
}

// NewChatModel builds the provider chat model from this configuration.
func (c LLMConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if c.APIKey == "" || c.Model == "" {
		return nil, fmt.Errorf("LLM credentials missing: provide LLM_API_KEY and LLM_MODEL")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		APIKey:      c.APIKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadPersona() persona.Persona {
	p := persona.Default()
	if name := strings.TrimSpace(os.Getenv("PERSONA_NAME")); name != "" {
		p.Name = name
	}
	if raw := strings.TrimSpace(os.Getenv("PERSONA_AGE")); raw != "" {
		if age, err := strconv.Atoi(raw); err == nil && age > 0 {
			p.Age = age
		}
	}
	if background := strings.TrimSpace(os.Getenv("PERSONA_BACKGROUND")); background != "" {
		p.Background = background
	}
	if traits := persona.ParseTraits(os.Getenv("PERSONA_TRAITS")); traits != nil {
		p.Traits = traits
	}
	return p
}

// MemoryConfig bounds memory recall and the prompt history window.
type MemoryConfig struct {
	RecallLimit  int
	HistoryLimit int
}

func loadMemoryConfig() (MemoryConfig, error) {
	cfg := MemoryConfig{RecallLimit: 10, HistoryLimit: 10}

	if override, err := parseOptionalIntEnv("MEMORY_LIMIT"); err != nil {
		return MemoryConfig{}, err
	} else if override != nil && *override > 0 {
		cfg.RecallLimit = *override
	}

	if override, err := parseOptionalIntEnv("HISTORY_LIMIT"); err != nil {
		return MemoryConfig{}, err
	} else if override != nil && *override > 0 {
		cfg.HistoryLimit = *override
	}

	return cfg, nil
}

// CORSConfig lists origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string
}

func loadCORSConfig() CORSConfig {
	raw := getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")
	origins := make([]string, 0, 4)
	for _, part := range strings.Split(raw, ",") {
		if o := strings.TrimSpace(part); o != "" {
			origins = append(origins, o)
		}
	}
	return CORSConfig{AllowedOrigins: origins}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
