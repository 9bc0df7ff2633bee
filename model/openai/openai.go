// Package openai provides a backend adapter for the OpenAI Chat Completions
// API. It maps the runtime's prompt/system-prompt pair onto chat messages and
// returns the first choice's text.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ScientiaCapital/trading-backtesting-sub003/model"
)

// Options configure the OpenAI backend adapter. Fields mirror a subset of
// Chat Completion parameters intentionally kept minimal.
type Options struct {
	Temperature         float64
	MaxCompletionTokens int64
	APIKey              string
}

// Backend wraps the OpenAI Chat Completions API behind the generic
// model.Backend interface. The backendID passed to Invoke is used verbatim as
// the chat model name.
type Backend struct {
	client *openai.Client
	opts   Options
}

// New creates a new OpenAI backend using the official client.
func New(optFns ...func(o *Options)) *Backend {
	opts := Options{
		Temperature:         0.3,
		MaxCompletionTokens: 2048,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := openai.NewClient(clientOpts...)
	return &Backend{client: &client, opts: opts}
}

// NewFromClient creates a new OpenAI backend from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Backend {
	opts := Options{
		Temperature:         0.3,
		MaxCompletionTokens: 2048,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Backend{client: client, opts: opts}
}

// Invoke implements model.Backend against the Chat Completions API.
func (b *Backend) Invoke(ctx context.Context, backendID, prompt, systemPrompt string) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage(prompt))

	params := openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               backendID,
		Temperature:         openai.Float(b.opts.Temperature),
		MaxCompletionTokens: openai.Int(b.opts.MaxCompletionTokens),
	}

	resp, err := b.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

// Info returns metadata describing this OpenAI backend implementation.
func (b *Backend) Info() model.Info {
	return model.Info{Provider: "openai"}
}
