package llm

import (
	"context"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
)

const defaultAnthropicModel = "claude-haiku-4-5-20251001"

// AnthropicOption configures the Anthropic-backed client.
type AnthropicOption func(*anthropicClient)

// WithAnthropicModel overrides the default model.
func WithAnthropicModel(model string) AnthropicOption {
	return func(c *anthropicClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithAnthropicMaxTokens caps the completion length.
func WithAnthropicMaxTokens(n int64) AnthropicOption {
	return func(c *anthropicClient) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithAnthropicTemperature sets the sampling temperature.
func WithAnthropicTemperature(temp float64) AnthropicOption {
	return func(c *anthropicClient) {
		c.temperature = &temp
	}
}

type anthropicClient struct {
	client      sdk.Client
	model       string
	maxTokens   int64
	temperature *float64
}

// NewAnthropic creates a Client backed by the official anthropic-sdk-go.
// System-role messages are lifted into the Messages API system blocks.
func NewAnthropic(apiKey string, opts ...AnthropicOption) Client {
	c := &anthropicClient{
		client:    sdk.NewClient(option.WithAPIKey(apiKey)),
		model:     defaultAnthropicModel,
		maxTokens: 2048,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *anthropicClient) Complete(ctx context.Context, messages []Message) (string, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
	}
	if c.temperature != nil {
		params.Temperature = sdk.Float(*c.temperature)
	}

	for _, m := range messages {
		block := sdk.NewTextBlock(m.Content)
		switch m.Role {
		case "system":
			params.System = append(params.System, sdk.TextBlockParam{Text: m.Content})
		case "assistant":
			params.Messages = append(params.Messages, sdk.NewAssistantMessage(block))
		default:
			params.Messages = append(params.Messages, sdk.NewUserMessage(block))
		}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", eris.Wrap(err, "llm: anthropic create message")
	}

	var sb strings.Builder
	for _, b := range msg.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	if sb.Len() == 0 {
		return "", eris.New("llm: anthropic response contained no text")
	}
	return sb.String(), nil
}
