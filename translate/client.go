package translate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/minios-linux/llmtranslator/config"
)

// Chat roles.
const (
	RoleSystem = openai.ChatMessageRoleSystem
	RoleUser   = openai.ChatMessageRoleUser
)

// Message is one chat message.
type Message struct {
	Role    string
	Content string
}

// ChatRequest is a single chat completion request.
type ChatRequest struct {
	Messages    []Message
	Temperature float64
}

// ChatClient sends chat completion requests to a language model.
type ChatClient interface {
	// Complete returns the text content of the first choice.
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// ChatClientFunc adapts a function to ChatClient.
type ChatClientFunc func(ctx context.Context, req ChatRequest) (string, error)

// Complete calls f.
func (f ChatClientFunc) Complete(ctx context.Context, req ChatRequest) (string, error) {
	return f(ctx, req)
}

// ErrEmptyCompletion is returned when the provider answers without content.
var ErrEmptyCompletion = errors.New("no content in response")

// Provider call kinds, as reported in ProviderError.
const (
	CallTranslate = "translate"
	CallCorrect   = "correct"
)

// ProviderError is a failed call to the language model provider.
type ProviderError struct {
	// Call is CallTranslate or CallCorrect.
	Call string
	// StatusCode is the HTTP status of the provider response, or 0 when
	// no response was received.
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed with status %d: %v", e.Call, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s request failed: %v", e.Call, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func newProviderError(call string, err error) *ProviderError {
	pe := &ProviderError{Call: call, Err: err}
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		pe.StatusCode = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		pe.StatusCode = reqErr.HTTPStatusCode
	}
	return pe
}

// ---------------------------------------------------------------------------
// OpenAI-compatible client
// ---------------------------------------------------------------------------

// OpenAIClient talks to an OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient returns a client for cfg's endpoint, key and model.
func NewOpenAIClient(cfg config.Config) *OpenAIClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = cfg.BaseURL()
	oc.HTTPClient = makeHTTPClient(cfg.Proxy, cfg.Timeout)
	return &OpenAIClient{
		client: openai.NewClientWithConfig(oc),
		model:  cfg.Model,
	}
}

// Model returns the model name requests are sent to.
func (c *OpenAIClient) Model() string { return c.model }

// Complete sends req and returns the trimmed content of the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, req ChatRequest) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: wireTemperature(req.Temperature),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}

// wireTemperature maps t to the request field. The field is omitted when
// zero, which providers read as their default, so an explicit zero is sent
// as the smallest positive value instead.
func wireTemperature(t float64) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

// ---------------------------------------------------------------------------
// HTTP client with real proxy support
// ---------------------------------------------------------------------------

func makeHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	// Support both the proxy setting and HTTP_PROXY/HTTPS_PROXY env vars
	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
