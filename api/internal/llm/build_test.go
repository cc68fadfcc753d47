package llm

import (
	"testing"

	"nutrition-analyzer/api/internal/config"
	"nutrition-analyzer/api/internal/llm/gemini"
)

func TestFromConfig(t *testing.T) {
	engs := FromConfig(&config.Config{LLMProvider: "gemini", GeminiModel: "gemini-2.5-pro"})
	if _, ok := engs.Gemini.(*Unavailable); !ok {
		t.Errorf("gemini without key = %T", engs.Gemini)
	}
	if _, ok := engs.OpenAI.(*Unavailable); !ok {
		t.Errorf("openai without key = %T", engs.OpenAI)
	}
	if engs.Ready() {
		t.Error("Ready() without keys")
	}

	engs = FromConfig(&config.Config{LLMProvider: "gemini", GeminiAPIKey: "k", GeminiModel: "gemini-2.5-flash"})
	g, ok := engs.Gemini.(*gemini.Engine)
	if !ok {
		t.Fatalf("gemini with key = %T", engs.Gemini)
	}
	if g.GetModel() != "gemini-2.5-flash" {
		t.Errorf("model = %q", g.GetModel())
	}
	if !engs.Ready() {
		t.Error("Ready() with default key set")
	}
}
