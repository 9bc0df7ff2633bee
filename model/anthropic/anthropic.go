// Package anthropic provides a backend adapter for the Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/ScientiaCapital/trading-backtesting-sub003/model"
)

// Options configures the Anthropic backend adapter.
type Options struct {
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Backend wraps the Anthropic Messages API behind the generic model.Backend
// interface. The backendID passed to Invoke is used verbatim as the Anthropic
// model name, so the agent routing table fully controls model selection.
type Backend struct {
	client *anthropic.Client
	opts   Options
}

// New creates a new Anthropic backend using the official client.
func New(optFns ...func(o *Options)) *Backend {
	opts := Options{
		Temperature: 0.3,
		MaxTokens:   2048,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Backend{
		client: &client,
		opts:   opts,
	}
}

// NewFromClient creates a new Anthropic backend from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Backend {
	opts := Options{
		Temperature: 0.3,
		MaxTokens:   2048,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Backend{
		client: client,
		opts:   opts,
	}
}

// Invoke implements model.Backend against the Messages API.
func (b *Backend) Invoke(ctx context.Context, backendID, prompt, systemPrompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(backendID),
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		MaxTokens:   b.opts.MaxTokens,
		Temperature: anthropic.Float(b.opts.Temperature),
	}

	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}

	resp, err := b.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}

	return sb.String(), nil
}

// Info returns metadata describing this Anthropic backend implementation.
func (b *Backend) Info() model.Info {
	return model.Info{Provider: "anthropic"}
}
