package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"nutrition-analyzer/api/internal/nutrition"
	"nutrition-analyzer/api/internal/util"
)

const (
	DefaultModel   = "gpt-4o-mini"
	DefaultBaseURL = "https://api.openai.com/v1"
)

type Engine struct {
	APIKey  string
	Model   string
	BaseURL string
	httpc   *http.Client
}

// New fails with a credential error when key is empty.
func New(key, model, baseURL string) (*Engine, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nutrition.CredentialError(fmt.Errorf("OPENAI_API_KEY: %w", nutrition.ErrMissingCredential))
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 120 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          10,
	}
	return &Engine{
		APIKey:  key,
		Model:   strings.TrimSpace(model),
		BaseURL: strings.TrimRight(baseURL, "/"),
		// the request context carries the deadline
		httpc: &http.Client{Transport: tr},
	}, nil
}

// WithHTTPClient overrides the internal HTTP client.
func (e *Engine) WithHTTPClient(c *http.Client) *Engine {
	if c != nil {
		e.httpc = c
	}
	return e
}

func (e *Engine) Name() string     { return "gpt" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Infer(ctx context.Context, image []byte, mime, prompt string) (string, error) {
	dataURL := util.MakeDataURL(mime, base64.StdEncoding.EncodeToString(image))

	body := map[string]any{
		"model": e.Model,
		"messages": []any{
			map[string]any{
				"role": "user",
				"content": []any{
					map[string]any{"type": "text", "text": prompt},
					map[string]any{"type": "image_url", "image_url": map[string]any{"url": dataURL, "detail": "high"}},
				},
			},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", nutrition.ServiceError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", nutrition.ServiceError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.APIKey)

	resp, err := e.httpc.Do(req)
	if err != nil {
		return "", nutrition.TransportError(fmt.Errorf("openai: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		err := fmt.Errorf("openai %d: %s", resp.StatusCode, strings.TrimSpace(apiMessage(x)))
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return "", nutrition.CredentialError(err)
		}
		return "", nutrition.ServiceError(err)
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
				Refusal string `json:"refusal"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		var nerr net.Error
		if errors.As(err, &nerr) {
			return "", nutrition.TransportError(fmt.Errorf("openai: read response: %w", err))
		}
		return "", nutrition.ServiceError(fmt.Errorf("openai: bad response: %w", err))
	}
	if len(raw.Choices) == 0 {
		return "", nutrition.ServiceError(fmt.Errorf("openai: %w", nutrition.ErrEmptyCompletion))
	}
	msg := raw.Choices[0].Message
	if msg.Content == "" && msg.Refusal != "" {
		return "", nutrition.ServiceError(fmt.Errorf("openai refused: %s", msg.Refusal))
	}
	if strings.TrimSpace(msg.Content) == "" {
		return "", nutrition.ServiceError(fmt.Errorf("openai: %w", nutrition.ErrEmptyCompletion))
	}
	return msg.Content, nil
}

// apiMessage pulls error.message out of an OpenAI error body, falling back
// to the raw body.
func apiMessage(b []byte) string {
	var env struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(b, &env); err == nil && env.Error.Message != "" {
		return env.Error.Message
	}
	return string(b)
}
