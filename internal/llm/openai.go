package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
)

// chatCompletionRequest is the request body for POST /chat/completions.
type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
}

// chatCompletionResponse is the response from POST /chat/completions.
type chatCompletionResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Index   int     `json:"index"`
		Message Message `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// OpenAIOption configures the OpenAI-compatible client.
type OpenAIOption func(*openAIClient)

// WithOpenAIBaseURL overrides the API base URL, allowing any
// OpenAI-compatible endpoint (vLLM, LiteLLM, a local gateway).
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(c *openAIClient) {
		c.baseURL = url
	}
}

// WithOpenAIModel overrides the default model.
func WithOpenAIModel(model string) OpenAIOption {
	return func(c *openAIClient) {
		c.model = model
	}
}

// WithOpenAITemperature sets the sampling temperature.
func WithOpenAITemperature(temp float64) OpenAIOption {
	return func(c *openAIClient) {
		c.temperature = &temp
	}
}

// WithOpenAIMaxTokens caps the completion length.
func WithOpenAIMaxTokens(n int) OpenAIOption {
	return func(c *openAIClient) {
		c.maxTokens = &n
	}
}

// WithOpenAITimeout overrides the per-request timeout.
func WithOpenAITimeout(d time.Duration) OpenAIOption {
	return func(c *openAIClient) {
		c.http.Timeout = d
	}
}

// WithOpenAIHTTPClient overrides the default http.Client.
func WithOpenAIHTTPClient(hc *http.Client) OpenAIOption {
	return func(c *openAIClient) {
		c.http = hc
	}
}

type openAIClient struct {
	apiKey      string
	baseURL     string
	model       string
	temperature *float64
	maxTokens   *int
	http        *http.Client
}

// NewOpenAI creates a Client backed by an OpenAI-compatible chat-completions
// endpoint.
func NewOpenAI(apiKey string, opts ...OpenAIOption) Client {
	c := &openAIClient{
		apiKey:  apiKey,
		baseURL: defaultOpenAIBaseURL,
		model:   defaultOpenAIModel,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *openAIClient) Complete(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(chatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", eris.Wrap(err, "llm: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", eris.Wrap(err, "llm: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", eris.Wrap(err, "llm: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "llm: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("llm: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", eris.Wrap(err, "llm: unmarshal response")
	}

	if len(result.Choices) == 0 {
		return "", eris.New("llm: response contained no choices")
	}
	return result.Choices[0].Message.Content, nil
}
