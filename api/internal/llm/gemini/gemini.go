package gemini

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"nutrition-analyzer/api/internal/nutrition"
)

const DefaultModel = "gemini-2.5-pro"

type Engine struct {
	APIKey string
	Model  string

	opts []option.ClientOption
}

// New fails with a credential error when apiKey is empty.
func New(apiKey, model string, opts ...option.ClientOption) (*Engine, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, nutrition.CredentialError(fmt.Errorf("GEMINI_API_KEY: %w", nutrition.ErrMissingCredential))
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	return &Engine{APIKey: apiKey, Model: model, opts: opts}, nil
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

// Infer sends the prompt and the image in one GenerateContent call.
func (e *Engine) Infer(ctx context.Context, image []byte, mime, prompt string) (string, error) {
	opts := append([]option.ClientOption{option.WithAPIKey(e.APIKey)}, e.opts...)
	cl, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", classify(fmt.Errorf("gemini client: %w", err))
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	if m == nil {
		return "", nutrition.ServiceError(fmt.Errorf("gemini: model %q is nil", e.Model))
	}

	resp, err := m.GenerateContent(ctx,
		genai.Text(prompt),
		genai.Blob{MIMEType: mime, Data: image},
	)
	if err != nil {
		return "", classify(fmt.Errorf("gemini: %w", err))
	}
	txt := responseText(resp)
	if strings.TrimSpace(txt) == "" {
		return "", nutrition.ServiceError(fmt.Errorf("gemini: %w", nutrition.ErrEmptyCompletion))
	}
	return txt, nil
}

// responseText joins the text parts of the first candidate that has any.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}

func classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == http.StatusUnauthorized, gerr.Code == http.StatusForbidden:
			return nutrition.CredentialError(err)
		case gerr.Code == http.StatusBadRequest && isKeyProblem(gerr.Message+" "+gerr.Body):
			return nutrition.CredentialError(err)
		}
		return nutrition.ServiceError(err)
	}
	var uerr *url.Error
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &uerr) || errors.As(err, &nerr) {
		return nutrition.TransportError(err)
	}
	if isKeyProblem(err.Error()) {
		return nutrition.CredentialError(err)
	}
	return nutrition.ServiceError(err)
}

func isKeyProblem(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(s, "api key not valid") ||
		strings.Contains(s, "api_key_invalid") ||
		strings.Contains(s, "permission_denied")
}
