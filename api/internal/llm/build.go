package llm

import (
	"log"

	"nutrition-analyzer/api/internal/config"
	"nutrition-analyzer/api/internal/llm/gemini"
	"nutrition-analyzer/api/internal/llm/openai"
)

// FromConfig builds every provider the config names. A provider that fails
// to initialize is installed as Unavailable and logged; the process stays up.
func FromConfig(cfg *config.Config) *Engines {
	engs := &Engines{Default: cfg.LLMProvider}

	if g, err := gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel); err != nil {
		log.Printf("gemini engine unavailable: %v", err)
		engs.Gemini = NewUnavailable("gemini", cfg.GeminiModel, err)
	} else {
		engs.Gemini = g
	}

	if o, err := openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL); err != nil {
		log.Printf("openai engine unavailable: %v", err)
		engs.OpenAI = NewUnavailable("gpt", cfg.OpenAIModel, err)
	} else {
		engs.OpenAI = o
	}

	return engs
}
