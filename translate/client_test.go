package translate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minios-linux/llmtranslator/config"
)

type chatBody struct {
	Model       string     `json:"model"`
	Temperature *float64   `json:"temperature"`
	Messages    []chatItem `json:"messages"`
}

type chatItem struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.APIKey = "sk-test"
	cfg.Endpoint = srv.URL + "/v1/chat/completions"
	cfg.Model = "test-model"
	cfg.Timeout = 5 * time.Second
	return NewOpenAIClient(cfg)
}

func completion(content string) string {
	data, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "test-model",
		"choices": []any{map[string]any{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	})
	return string(data)
}

func TestOpenAIClientComplete(t *testing.T) {
	var got chatBody
	var auth, path string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completion("  {\"title\": \"Bonjour\"}\n"))
	})

	text, err := client.Complete(context.Background(), ChatRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: "sys"},
			{Role: RoleUser, Content: "user"},
		},
		Temperature: 0.3,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"title": "Bonjour"}`, text)

	assert.Equal(t, "/v1/chat/completions", path)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, "test-model", client.Model())
	require.NotNil(t, got.Temperature)
	assert.InDelta(t, 0.3, *got.Temperature, 1e-6)
	assert.Equal(t, []chatItem{{Role: "system", Content: "sys"}, {Role: "user", Content: "user"}}, got.Messages)
}

func TestOpenAIClientSendsExplicitZeroTemperature(t *testing.T) {
	var got chatBody
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completion("{}"))
	})

	_, err := client.Complete(context.Background(), ChatRequest{Temperature: 0})
	require.NoError(t, err)
	require.NotNil(t, got.Temperature, "temperature must not be omitted")
	assert.InDelta(t, 0, *got.Temperature, 1e-6)
}

func TestOpenAIClientEmptyCompletion(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completion("   "))
	})

	_, err := client.Complete(context.Background(), ChatRequest{})
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestOpenAIClientAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`)
	})

	_, err := client.Complete(context.Background(), ChatRequest{})
	require.Error(t, err)

	pe := newProviderError(CallTranslate, err)
	assert.Equal(t, http.StatusUnauthorized, pe.StatusCode)
	assert.Contains(t, pe.Error(), "translate request failed with status 401")
	assert.Contains(t, pe.Error(), "Incorrect API key provided")
}

func TestProviderErrorWithoutStatus(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	pe := newProviderError(CallCorrect, cause)
	assert.Equal(t, 0, pe.StatusCode)
	assert.Equal(t, "correct request failed: dial tcp: connection refused", pe.Error())
	assert.ErrorIs(t, pe, cause)
}

func TestMakeHTTPClientProxy(t *testing.T) {
	c := makeHTTPClient("http://proxy.local:3128", 7*time.Second)
	assert.Equal(t, 7*time.Second, c.Timeout)

	tr, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	req, _ := http.NewRequest(http.MethodPost, "https://api.openai.com/v1/chat/completions", nil)
	u, err := tr.Proxy(req)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "proxy.local:3128", u.Host)
}

func TestChatClientFunc(t *testing.T) {
	f := ChatClientFunc(func(_ context.Context, req ChatRequest) (string, error) {
		return req.Messages[0].Content, nil
	})
	got, err := f.Complete(context.Background(), ChatRequest{Messages: []Message{{Role: RoleUser, Content: "ping"}}})
	require.NoError(t, err)
	assert.Equal(t, "ping", got)
}
