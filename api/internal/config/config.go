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

type Config struct {
	Port string `yaml:"port"`

	// LLMProvider selects the default engine: "gemini" or "gpt".
	LLMProvider string `yaml:"llm_provider"`

	GeminiAPIKey  string `yaml:"gemini_api_key"`
	GeminiModel   string `yaml:"gemini_model"`
	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIModel   string `yaml:"openai_model"`
	OpenAIBaseURL string `yaml:"openai_base_url"`

	RequestTimeoutSec int      `yaml:"request_timeout_sec"`
	MaxUploadMB       int      `yaml:"max_upload_mb"`
	MaxImagePixels    int      `yaml:"max_image_pixels"`
	CORSOrigins       []string `yaml:"cors_origins"`

	TelegramBotToken string `yaml:"telegram_bot_token"`
	WebhookURL       string `yaml:"webhook_url"`
}

func defaults() *Config {
	return &Config{
		Port:              "8000",
		LLMProvider:       "gemini",
		GeminiModel:       "gemini-2.5-pro",
		OpenAIModel:       "gpt-4o-mini",
		OpenAIBaseURL:     "https://api.openai.com/v1",
		RequestTimeoutSec: 60,
		MaxUploadMB:       10,
		MaxImagePixels:    12_000_000,
	}
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		log.Printf("config: ignoring %s=%q: not a non-negative integer", k, v)
		return def
	}
	return n
}

// Load reads defaults, then the YAML file named by CONFIG_FILE, then the
// environment (after .env, if present). A missing API key is not an error:
// requests that need it fail instead.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env not loaded: %v", err)
	}

	cfg := defaults()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.LLMProvider = strings.ToLower(getEnv("LLM_PROVIDER", cfg.LLMProvider))
	cfg.GeminiAPIKey = getEnv("GEMINI_API_KEY", getEnv("GOOGLE_API_KEY", cfg.GeminiAPIKey))
	cfg.GeminiModel = getEnv("GEMINI_MODEL", cfg.GeminiModel)
	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.OpenAIModel = getEnv("OPENAI_MODEL", cfg.OpenAIModel)
	cfg.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", cfg.OpenAIBaseURL)
	cfg.RequestTimeoutSec = getEnvInt("REQUEST_TIMEOUT", cfg.RequestTimeoutSec)
	cfg.MaxUploadMB = getEnvInt("MAX_UPLOAD_MB", cfg.MaxUploadMB)
	cfg.MaxImagePixels = getEnvInt("MAX_IMAGE_PIXELS", cfg.MaxImagePixels)
	if v := strings.TrimSpace(os.Getenv("CORS_ORIGINS")); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
	cfg.TelegramBotToken = getEnv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	cfg.WebhookURL = getEnv("WEBHOOK_URL", cfg.WebhookURL)

	switch cfg.LLMProvider {
	case "gemini", "google", "gpt", "openai":
	default:
		return nil, fmt.Errorf("config: unknown LLM_PROVIDER %q (want gemini or gpt)", cfg.LLMProvider)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSec <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

func (c *Config) MaxUploadBytes() int64 { return int64(c.MaxUploadMB) << 20 }

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
