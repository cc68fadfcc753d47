package llm

import (
	"context"

	"nutrition-analyzer/api/internal/nutrition"
)

// Unavailable stands in for an engine whose initialization failed, so the
// process keeps serving and each analysis reports the configuration problem.
type Unavailable struct {
	Provider string
	Model    string
	Err      error
}

func NewUnavailable(provider, model string, err error) *Unavailable {
	return &Unavailable{Provider: provider, Model: model, Err: nutrition.CredentialError(err)}
}

func (u *Unavailable) Name() string     { return u.Provider }
func (u *Unavailable) GetModel() string { return u.Model }

func (u *Unavailable) Infer(context.Context, []byte, string, string) (string, error) {
	return "", u.Err
}
