package llm

import (
	"context"
	"fmt"
	"strings"

	"nutrition-analyzer/api/internal/nutrition"
)

type Engine interface {
	Name() string
	GetModel() string
	Infer(ctx context.Context, image []byte, mime, prompt string) (string, error)
}

type Engines struct {
	Default string // provider used when a request names none
	Gemini  Engine
	OpenAI  Engine
}

func (e *Engines) GetEngine(llmName string) (Engine, error) {
	name := strings.ToLower(strings.TrimSpace(llmName))
	if name == "" {
		name = strings.ToLower(e.Default)
	}
	var eng Engine
	switch name {
	case "gemini", "google":
		eng = e.Gemini
	case "gpt", "openai":
		eng = e.OpenAI
	default:
		return nil, nutrition.InvalidInput(fmt.Errorf("unknown llm_name %q; use 'gemini' or 'gpt'", llmName))
	}
	if eng == nil {
		return nil, nutrition.CredentialError(fmt.Errorf("%s engine is not configured", name))
	}
	return eng, nil
}

// Ready reports whether the default engine has a usable credential.
func (e *Engines) Ready() bool {
	eng, err := e.GetEngine("")
	if err != nil {
		return false
	}
	_, down := eng.(*Unavailable)
	return !down
}

// Resolve is GetEngine for request paths. A provider without a credential
// resolves to an Unavailable engine, so input errors are still reported
// before the configuration problem.
func (e *Engines) Resolve(llmName string) (Engine, error) {
	eng, err := e.GetEngine(llmName)
	if err != nil && nutrition.KindOf(err) == nutrition.KindCredential {
		name := strings.TrimSpace(llmName)
		if name == "" {
			name = e.Default
		}
		return NewUnavailable(name, "", err), nil
	}
	return eng, err
}
