package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	antoption "github.com/anthropics/anthropic-sdk-go/option"

	"github.com/jbonatakis/accomplish/internal/logger"
)

const anthropicMaxTokens = 4096

func init() {
	RegisterProvider("anthropic", Registration{
		Label:        "Anthropic",
		DefaultModel: "claude-sonnet-4-5",
		EnvKey:       "ANTHROPIC_API_KEY",
		Constructor: func(conn ConnectedProvider) (Provider, error) {
			return newAnthropicProvider(conn), nil
		},
	})
}

type AnthropicProvider struct {
	model  string
	client anthropic.Client
}

func newAnthropicProvider(conn ConnectedProvider) *AnthropicProvider {
	opts := []antoption.RequestOption{
		antoption.WithAPIKey(conn.APIKey),
		antoption.WithMaxRetries(sdkMaxRetries),
	}
	if conn.BaseURL != "" {
		opts = append(opts, antoption.WithBaseURL(conn.BaseURL))
	}
	return &AnthropicProvider{
		model:  conn.Model,
		client: anthropic.NewClient(opts...),
	}
}

func (p *AnthropicProvider) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: anthropicMaxTokens,
		System:    []anthropic.TextBlockParam{{Text: taskSystemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		logger.Error("anthropic request failed", "model", p.model, "err", err)
		return "", fmt.Errorf("anthropic request: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	logger.Info("anthropic response",
		"model", p.model,
		"stopReason", msg.StopReason,
		"outputTokens", msg.Usage.OutputTokens,
		"latencyMs", time.Since(start).Milliseconds(),
	)
	return strings.TrimSpace(b.String()), nil
}
