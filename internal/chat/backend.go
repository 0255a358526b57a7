package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/google/uuid"

	"yieldScope/internal/process"
)

const (
	ActionChat          = "Chat"
	ActionGetChatResult = "Get-Chat-Result"
)

// ProcessBackend runs the conversation through an advisor process.
type ProcessBackend struct {
	Client process.Client
	Target string
}

// Submit sends the prompt under a fresh session id. A Pending reply without
// its own session id inherits that one.
func (b *ProcessBackend) Submit(ctx context.Context, prompt string) (process.Response, error) {
	sessionID := uuid.NewString()
	resp, err := b.Client.Send(ctx, process.Message{
		Target: b.Target,
		Action: ActionChat,
		Data:   prompt,
		Tags:   []process.Tag{{Name: "Session-Id", Value: sessionID}},
	})
	if err != nil {
		return nil, err
	}
	if pending, ok := resp.(process.Pending); ok && pending.SessionID == "" {
		return process.Pending{SessionID: sessionID}, nil
	}
	return resp, nil
}

func (b *ProcessBackend) Poll(ctx context.Context, sessionID string) (process.Response, error) {
	return b.Client.Send(ctx, process.Message{
		Target: b.Target,
		Action: ActionGetChatResult,
		Tags:   []process.Tag{{Name: "Session-Id", Value: sessionID}},
	})
}

const defaultSystemPrompt = "You are a DeFi yield advisor. Answer using only the ranked strategies provided. " +
	"Mention the risk tier and APY of anything you recommend."

// AnthropicBackend answers directly through the Messages API. Submit is
// synchronous so the poller never polls it.
type AnthropicBackend struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
	system    string
}

func NewAnthropicBackend(client *anthropic.Client, model string, maxTokens int64) *AnthropicBackend {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &AnthropicBackend{client: client, model: model, maxTokens: maxTokens, system: defaultSystemPrompt}
}

func (b *AnthropicBackend) Submit(ctx context.Context, prompt string) (process.Response, error) {
	resp, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(b.model),
		MaxTokens: b.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: b.system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic messages: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return process.Error{Code: "empty", Message: "model returned no text"}, nil
	}
	return process.Success{Data: text.String()}, nil
}

func (b *AnthropicBackend) Poll(context.Context, string) (process.Response, error) {
	return process.Error{Code: "unsupported", Message: "anthropic backend has no sessions"}, nil
}
