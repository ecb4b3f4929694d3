package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yashubustudio/texteval/internal/backend"
)

func TestNewValidates(t *testing.T) {
	_, err := New(Config{Provider: "ollama"})
	assert.Error(t, err)

	_, err = New(Config{Provider: "carrier-pigeon", Model: "m"})
	assert.ErrorContains(t, err, "unsupported provider")

	c, err := New(Config{Provider: " OpenAI ", Model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", c.Model())
}

func TestOllamaTranslate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"{\"translation\":\"Bonjour le monde\"}"}}`))
	}))
	defer srv.Close()

	c, err := New(Config{Provider: ProviderOllama, BaseURL: srv.URL, Model: "llama3"})
	require.NoError(t, err)

	out, err := c.Transform(context.Background(), "Hello world", backend.Params{TargetLanguage: "French"})
	require.NoError(t, err)
	assert.Equal(t, "Bonjour le monde", out)
	assert.Equal(t, "llama3", got["model"])
	assert.Equal(t, false, got["stream"])
	assert.Equal(t, "json", got["format"])
}

func TestOllamaHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := New(Config{Provider: ProviderOllama, BaseURL: srv.URL, Model: "missing"})
	require.NoError(t, err)

	_, err = c.Transform(context.Background(), "Hello", backend.Params{TargetLanguage: "German"})
	assert.ErrorContains(t, err, "404")
}

func TestOpenRouterFallsBackToJSONObject(t *testing.T) {
	var formats []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		var body struct {
			ResponseFormat struct {
				Type string `json:"type"`
			} `json:"response_format"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		formats = append(formats, body.ResponseFormat.Type)
		if body.ResponseFormat.Type == "json_schema" {
			http.Error(w, `{"error":"json_schema unsupported"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"summary\":\"Short.\"}"}}]}`))
	}))
	defer srv.Close()

	c, err := New(Config{Provider: ProviderOpenRouter, BaseURL: srv.URL, APIKey: "secret", Model: "meta/llama"})
	require.NoError(t, err)

	out, err := c.Transform(context.Background(), "A long text.", backend.Params{Task: backend.TaskSummarize})
	require.NoError(t, err)
	assert.Equal(t, "Short.", out)
	assert.Equal(t, []string{"json_schema", "json_object"}, formats)
}

func TestOpenAICompatible(t *testing.T) {
	var req struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"paraphrase\": \"A speedy fox.\"}"}, "finish_reason": "stop"}]
		}`))
	}))
	defer srv.Close()

	c, err := New(Config{Provider: ProviderOpenAI, BaseURL: srv.URL + "/v1", APIKey: "k", Model: "gpt-4o-mini"})
	require.NoError(t, err)

	out, err := c.Transform(context.Background(), "A quick fox.", backend.Params{Task: backend.TaskParaphrase})
	require.NoError(t, err)
	assert.Equal(t, "A speedy fox.", out)
	assert.Equal(t, "gpt-4o-mini", req.Model)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, "A quick fox.", req.Messages[1].Content)
}

func TestOpenAIServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	defer srv.Close()

	c, err := New(Config{Provider: ProviderOpenAI, BaseURL: srv.URL + "/v1", Model: "m"})
	require.NoError(t, err)

	_, err = c.Transform(context.Background(), "text", backend.Params{TargetLanguage: "Italian"})
	assert.Error(t, err)
}

func TestOpenRouterURL(t *testing.T) {
	assert.Equal(t, "https://openrouter.ai/api/v1/models", openRouterURL("https://openrouter.ai/", "/models"))
	assert.Equal(t, "https://openrouter.ai/api/v1/models", openRouterURL("https://openrouter.ai/api/v1/chat", "/models"))
}

func TestAbbreviate(t *testing.T) {
	assert.Equal(t, "short", abbreviate("short", 10))
	assert.Equal(t, "abcdefg...", abbreviate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", abbreviate("abcdef", 2))

	hindi := "नमस्ते दुनिया, यह एक लंबा उत्तर है"
	got := abbreviate(hindi, 8)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, string([]rune(hindi)[:5])+"...", got)
	assert.Equal(t, 8, utf8.RuneCountInString(got))
}
