// Package gemini implements the completion capability on the Google
// Gen AI SDK.
package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"fieldagent/pkg/completion"
	"fieldagent/pkg/domain"
	"fieldagent/pkg/tools"
)

// Completer implements completion.Completer using the Google Gen AI SDK.
type Completer struct {
	client *genai.Client
}

// Verify interface compliance.
var _ completion.Completer = (*Completer)(nil)

// New creates a Gemini-backed completer.
func New(ctx context.Context, apiKey string) (*Completer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Completer{client: client}, nil
}

// Name returns the provider identifier.
func (c *Completer) Name() string { return "gemini" }

// Complete issues one generateContent request and normalizes the reply.
func (c *Completer) Complete(ctx context.Context, req *completion.Request) (*completion.Reply, error) {
	slog.Debug("gemini.Complete", "model", req.Model, "turns", len(req.Turns), "forcedTool", req.ForcedTool)

	config := &genai.GenerateContentConfig{}
	if req.Instructions != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.Instructions}},
		}
	}
	if len(req.Tools) > 0 {
		config.Tools = toDeclarations(req.Tools)
	}
	if req.ForcedTool != "" {
		config.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode:                 genai.FunctionCallingConfigModeAny,
				AllowedFunctionNames: []string{req.ForcedTool},
			},
		}
	}

	contents := toContents(req.Turns)

	resp, err := c.client.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("generate content returned no candidates")
	}

	reply := &completion.Reply{}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			reply.Content += part.Text
		}
		if part.FunctionCall != nil && reply.ToolCall == nil {
			id := part.FunctionCall.ID
			if id == "" {
				id = "call-" + uuid.New().String()
			}
			reply.ToolCall = &domain.ToolCall{
				ID:    id,
				Name:  part.FunctionCall.Name,
				Input: part.FunctionCall.Args,
			}
		}
	}
	return reply, nil
}

func toContents(turns []domain.Turn) []*genai.Content {
	var contents []*genai.Content
	for _, t := range turns {
		switch t.Role {
		case domain.RoleAssistant:
			parts := []*genai.Part{}
			if t.Content != "" {
				parts = append(parts, &genai.Part{Text: t.Content})
			}
			if t.ToolCall != nil {
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{
						ID:   t.ToolCall.ID,
						Name: t.ToolCall.Name,
						Args: t.ToolCall.Input,
					},
				})
			}
			if len(parts) > 0 {
				contents = append(contents, &genai.Content{Role: "model", Parts: parts})
			}
		case domain.RoleFunction:
			contents = append(contents, &genai.Content{
				Role: "user",
				Parts: []*genai.Part{{
					FunctionResponse: &genai.FunctionResponse{
						Name:     t.Name,
						Response: map[string]any{"result": t.Content},
					},
				}},
			})
		case domain.RoleSystem:
			// Handled via SystemInstruction.
		default:
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []*genai.Part{{Text: t.Content}},
			})
		}
	}
	return contents
}

func toDeclarations(ts []tools.Tool) []*genai.Tool {
	decls := make([]*genai.FunctionDeclaration, 0, len(ts))
	for _, t := range ts {
		properties := map[string]*genai.Schema{}
		required := make([]string, 0, len(t.Params()))
		for _, p := range t.Params() {
			s := &genai.Schema{Type: genai.TypeString, Description: p.Description}
			if p.Type == tools.TypeNumber {
				s.Type = genai.TypeNumber
			}
			if len(p.Enum) > 0 {
				s.Enum = p.Enum
			}
			properties[p.Name] = s
			required = append(required, p.Name)
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: properties,
				Required:   required,
			},
		})
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}
