package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	oaioption "github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/jbonatakis/accomplish/internal/logger"
)

const (
	sdkMaxRetries = 2

	taskSystemPrompt = "You are an assistant that carries out the user's task. Describe the steps you take and finish with a short summary of the result."
)

func init() {
	RegisterProvider("openai", Registration{
		Label:        "OpenAI",
		DefaultModel: "gpt-4o-mini",
		EnvKey:       "OPENAI_API_KEY",
		Constructor: func(conn ConnectedProvider) (Provider, error) {
			return newOpenAIProvider(conn), nil
		},
	})
}

type OpenAIProvider struct {
	model  string
	client openai.Client
}

func newOpenAIProvider(conn ConnectedProvider) *OpenAIProvider {
	opts := []oaioption.RequestOption{
		oaioption.WithAPIKey(conn.APIKey),
		oaioption.WithMaxRetries(sdkMaxRetries),
	}
	if conn.BaseURL != "" {
		opts = append(opts, oaioption.WithBaseURL(conn.BaseURL))
	}
	return &OpenAIProvider{
		model:  conn.Model,
		client: openai.NewClient(opts...),
	}
}

func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(taskSystemPrompt),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		logger.Error("openai request failed", "model", p.model, "err", err)
		return "", fmt.Errorf("openai request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai request: no choices in response")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	logger.Info("openai response",
		"model", p.model,
		"finishReason", resp.Choices[0].FinishReason,
		"totalTokens", resp.Usage.TotalTokens,
		"latencyMs", time.Since(start).Milliseconds(),
	)
	return content, nil
}
