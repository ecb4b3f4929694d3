// Package chat adapts chat-completion HTTP APIs (Ollama, OpenRouter and any
// OpenAI-compatible server) to backend.Transformer.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sashabaranov/go-openai"

	"yashubustudio/texteval/internal/backend"
)

const (
	ProviderOllama     = "ollama"
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
)

const (
	defaultOllamaURL     = "http://localhost:11434"
	defaultOpenRouterURL = "https://openrouter.ai"
	defaultTimeout       = 60 * time.Second
)

// Config selects a provider and the model served by it.
type Config struct {
	Provider    string
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Client is a Transformer backed by a chat model.
type Client struct {
	cfg    Config
	http   *resty.Client
	openai *openai.Client
}

var _ backend.Transformer = (*Client)(nil)

// New validates cfg and prepares the HTTP client for its provider.
func New(cfg Config) (*Client, error) {
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.Model == "" {
		return nil, errors.New("chat model is empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	c := &Client{cfg: cfg}
	switch cfg.Provider {
	case ProviderOllama, ProviderOpenRouter:
		c.http = resty.New().SetTimeout(cfg.Timeout)
	case ProviderOpenAI:
		oc := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
		}
		c.openai = openai.NewClientWithConfig(oc)
	default:
		return nil, fmt.Errorf("unsupported provider: %q", cfg.Provider)
	}
	return c, nil
}

// Model returns the default model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Transform sends text with a task-specific prompt and unwraps the reply.
func (c *Client) Transform(ctx context.Context, text string, p backend.Params) (string, error) {
	if p.Task == "" {
		p.Task = backend.TaskTranslate
	}
	if p.Model == "" {
		p.Model = c.cfg.Model
	}
	if p.Temperature == 0 {
		p.Temperature = c.cfg.Temperature
	}
	if p.MaxTokens == 0 {
		p.MaxTokens = c.cfg.MaxTokens
	}
	system, user := buildPrompt(text, p)

	var (
		content string
		err     error
	)
	switch c.cfg.Provider {
	case ProviderOllama:
		content, err = c.chatOllama(ctx, system, user, p)
	case ProviderOpenRouter:
		content, err = c.chatOpenRouter(ctx, system, user, p)
	case ProviderOpenAI:
		content, err = c.chatOpenAI(ctx, system, user, p)
	default:
		err = fmt.Errorf("unsupported provider: %q", c.cfg.Provider)
	}
	if err != nil {
		return "", err
	}
	return extractField(content, resultField(p.Task))
}

func (c *Client) chatOllama(ctx context.Context, system, user string, p backend.Params) (string, error) {
	base := c.cfg.BaseURL
	if base == "" {
		base = defaultOllamaURL
	}
	url := strings.TrimRight(base, "/") + "/api/chat"
	options := map[string]any{"temperature": p.Temperature}
	if p.MaxTokens > 0 {
		options["num_predict"] = p.MaxTokens
	}
	body := map[string]any{
		"model": p.Model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"stream":  false,
		"format":  "json",
		"options": options,
	}
	var resp struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	r, err := c.http.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).SetResult(&resp).
		Post(url)
	if err != nil {
		return "", err
	}
	if r.IsError() {
		return "", fmt.Errorf("ollama %s: %s; body: %s", p.Task, r.Status(), abbreviate(r.String(), 500))
	}
	return strings.TrimSpace(resp.Message.Content), nil
}

func (c *Client) chatOpenRouter(ctx context.Context, system, user string, p backend.Params) (string, error) {
	base := c.cfg.BaseURL
	if base == "" {
		base = defaultOpenRouterURL
	}
	url := openRouterURL(base, "/chat/completions")
	field := resultField(p.Task)
	body := map[string]any{
		"model": p.Model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"temperature": p.Temperature,
		"response_format": map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   field,
				"strict": true,
				"schema": map[string]any{
					"type":                 "object",
					"properties":           map[string]any{field: map[string]any{"type": "string"}},
					"required":             []string{field},
					"additionalProperties": false,
				},
			},
		},
	}
	if p.MaxTokens > 0 {
		body["max_tokens"] = p.MaxTokens
	}

	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	post := func() (*resty.Response, error) {
		return c.http.R().SetContext(ctx).
			SetHeader("Authorization", "Bearer "+c.cfg.APIKey).
			SetHeader("X-Title", "texteval").
			SetHeader("Content-Type", "application/json").
			SetBody(body).SetResult(&resp).
			Post(url)
	}
	r, err := post()
	if err != nil {
		return "", err
	}
	// Not every routed model accepts json_schema; retry with plain JSON mode.
	if r.StatusCode() == 400 {
		body["response_format"] = map[string]string{"type": "json_object"}
		if r, err = post(); err != nil {
			return "", err
		}
	}
	if r.IsError() {
		return "", fmt.Errorf("openrouter %s: %s; body: %s", p.Task, r.Status(), abbreviate(r.String(), 500))
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openrouter returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *Client) chatOpenAI(ctx context.Context, system, user string, p backend.Params) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: p.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: float32(p.Temperature),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	if p.MaxTokens > 0 {
		req.MaxCompletionTokens = p.MaxTokens
	}
	resp, err := c.openai.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai %s: %w", p.Task, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// openRouterURL builds a URL for OpenRouter whether base contains /api/v1 or not.
func openRouterURL(base, tail string) string {
	b := strings.TrimRight(base, "/")
	if idx := strings.Index(b, "/api/v1"); idx >= 0 {
		return b[:idx+len("/api/v1")] + tail
	}
	return b + "/api/v1" + tail
}

// abbreviate shortens s to at most n runes.
func abbreviate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
