// Package openai implements the completion capability on the OpenAI
// chat completions API.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"fieldagent/pkg/completion"
	"fieldagent/pkg/domain"
	"fieldagent/pkg/tools"
)

// Completer implements completion.Completer using the go-openai SDK.
type Completer struct {
	client *openai.Client
}

// Verify interface compliance.
var _ completion.Completer = (*Completer)(nil)

// New creates an OpenAI-backed completer.
func New(apiKey string) *Completer {
	return &Completer{client: openai.NewClient(apiKey)}
}

// NewWithConfig creates a completer against a custom endpoint (e.g. a
// compatible proxy), used by tests.
func NewWithConfig(cfg openai.ClientConfig) *Completer {
	return &Completer{client: openai.NewClientWithConfig(cfg)}
}

// Name returns the provider identifier.
func (c *Completer) Name() string { return "openai" }

// Complete issues one chat completion request and normalizes the reply.
func (c *Completer) Complete(ctx context.Context, req *completion.Request) (*completion.Reply, error) {
	slog.Debug("openai.Complete", "model", req.Model, "turns", len(req.Turns), "forcedTool", req.ForcedTool)

	chatReq := openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: toMessages(req.Instructions, req.Turns),
	}
	if len(req.Tools) > 0 {
		chatReq.Tools = toTools(req.Tools)
	}
	if req.ForcedTool != "" {
		chatReq.ToolChoice = openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: req.ForcedTool},
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	msg := resp.Choices[0].Message
	reply := &completion.Reply{Content: msg.Content}

	if len(msg.ToolCalls) > 0 {
		tc := msg.ToolCalls[0]
		input := map[string]any{}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &input); err != nil {
				return nil, fmt.Errorf("parsing tool call arguments: %w", err)
			}
		}
		id := tc.ID
		if id == "" {
			id = "call-" + uuid.New().String()
		}
		reply.ToolCall = &domain.ToolCall{
			ID:    id,
			Name:  tc.Function.Name,
			Input: input,
		}
	}

	return reply, nil
}

func toMessages(instructions string, turns []domain.Turn) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(turns)+1)
	if instructions != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: instructions,
		})
	}

	for _, t := range turns {
		switch t.Role {
		case domain.RoleAssistant:
			m := openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: t.Content,
			}
			if t.ToolCall != nil {
				args, _ := json.Marshal(t.ToolCall.Input)
				m.ToolCalls = []openai.ToolCall{{
					ID:   t.ToolCall.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      t.ToolCall.Name,
						Arguments: string(args),
					},
				}}
			}
			msgs = append(msgs, m)
		case domain.RoleFunction:
			msgs = append(msgs, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    t.Content,
				Name:       t.Name,
				ToolCallID: toolCallID(turns, t),
			})
		case domain.RoleSystem:
			// Instructions are passed separately; stray system turns
			// are dropped before extraction.
		default:
			msgs = append(msgs, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: t.Content,
			})
		}
	}
	return msgs
}

// toolCallID finds the call ID the function-result turn answers: the
// nearest preceding assistant turn carrying call metadata.
func toolCallID(turns []domain.Turn, result domain.Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		t := turns[i]
		if t.Role == domain.RoleAssistant && t.ToolCall != nil && t.ToolCall.Name == result.Name {
			return t.ToolCall.ID
		}
	}
	return ""
}

func toTools(ts []tools.Tool) []openai.Tool {
	out := make([]openai.Tool, 0, len(ts))
	for _, t := range ts {
		properties := map[string]any{}
		required := make([]string, 0, len(t.Params()))
		for _, p := range t.Params() {
			prop := map[string]any{"type": string(p.Type)}
			if p.Description != "" {
				prop["description"] = p.Description
			}
			if len(p.Enum) > 0 {
				prop["enum"] = p.Enum
			}
			properties[p.Name] = prop
			required = append(required, p.Name)
		}
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters: map[string]any{
					"type":       "object",
					"properties": properties,
					"required":   required,
				},
			},
		})
	}
	return out
}
