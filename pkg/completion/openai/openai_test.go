package openai

import (
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"fieldagent/pkg/domain"
	"fieldagent/pkg/tools"
)

func TestToMessagesRolesAndOrder(t *testing.T) {
	turns := []domain.Turn{
		{Role: domain.RoleUser, Content: "hi"},
		{Role: domain.RoleAssistant, Content: "hello"},
		{Role: domain.RoleSystem, Content: "stray directive"},
		{Role: domain.RoleUser, Content: "weather?"},
	}

	msgs := toMessages("be helpful", turns)
	wantRoles := []string{
		openai.ChatMessageRoleSystem,
		openai.ChatMessageRoleUser,
		openai.ChatMessageRoleAssistant,
		openai.ChatMessageRoleUser,
	}
	if len(msgs) != len(wantRoles) {
		t.Fatalf("len(msgs) = %d, want %d", len(msgs), len(wantRoles))
	}
	for i, role := range wantRoles {
		if msgs[i].Role != role {
			t.Errorf("msgs[%d].Role = %q, want %q", i, msgs[i].Role, role)
		}
	}
	if msgs[0].Content != "be helpful" {
		t.Errorf("system content = %q", msgs[0].Content)
	}
}

func TestToMessagesNoInstructions(t *testing.T) {
	msgs := toMessages("", []domain.Turn{{Role: domain.RoleUser, Content: "hi"}})
	if len(msgs) != 1 || msgs[0].Role != openai.ChatMessageRoleUser {
		t.Errorf("msgs = %+v, want single user message", msgs)
	}
}

func TestToMessagesToolRoundTrip(t *testing.T) {
	call := &domain.ToolCall{
		ID:    "call-42",
		Name:  "get_weather",
		Input: map[string]any{"city": "Oslo"},
	}
	turns := []domain.Turn{
		{Role: domain.RoleUser, Content: "weather in Oslo"},
		{Role: domain.RoleAssistant, ToolCall: call},
		{Role: domain.RoleFunction, Name: "get_weather", Content: "The weather in Oslo is sunny."},
	}

	msgs := toMessages("", turns)
	if len(msgs) != 3 {
		t.Fatalf("len(msgs) = %d, want 3", len(msgs))
	}

	assistant := msgs[1]
	if len(assistant.ToolCalls) != 1 {
		t.Fatalf("assistant carries %d tool calls, want 1", len(assistant.ToolCalls))
	}
	tc := assistant.ToolCalls[0]
	if tc.ID != "call-42" || tc.Function.Name != "get_weather" {
		t.Errorf("tool call = %+v", tc)
	}
	if tc.Function.Arguments != `{"city":"Oslo"}` {
		t.Errorf("arguments = %q", tc.Function.Arguments)
	}

	result := msgs[2]
	if result.Role != openai.ChatMessageRoleTool {
		t.Errorf("result role = %q, want tool", result.Role)
	}
	if result.ToolCallID != "call-42" {
		t.Errorf("ToolCallID = %q, want the originating call ID", result.ToolCallID)
	}
	if result.Name != "get_weather" {
		t.Errorf("result name = %q", result.Name)
	}
}

func TestToolCallIDUnmatched(t *testing.T) {
	result := domain.Turn{Role: domain.RoleFunction, Name: "orphan", Content: "x"}
	if got := toolCallID([]domain.Turn{result}, result); got != "" {
		t.Errorf("toolCallID = %q, want empty for unmatched result", got)
	}
}

func TestToToolsSchema(t *testing.T) {
	defs := toTools([]tools.Tool{tools.NewWeather()})
	if len(defs) != 1 {
		t.Fatalf("len(defs) = %d, want 1", len(defs))
	}
	fn := defs[0].Function
	if fn.Name != "get_weather" {
		t.Errorf("Name = %q", fn.Name)
	}

	params, ok := fn.Parameters.(map[string]any)
	if !ok {
		t.Fatalf("Parameters type = %T", fn.Parameters)
	}
	if params["type"] != "object" {
		t.Errorf("schema type = %v", params["type"])
	}
	props, ok := params["properties"].(map[string]any)
	if !ok {
		t.Fatalf("properties type = %T", params["properties"])
	}
	city, ok := props["city"].(map[string]any)
	if !ok {
		t.Fatalf("city property missing: %v", props)
	}
	if city["type"] != "string" {
		t.Errorf("city type = %v", city["type"])
	}
	required, ok := params["required"].([]string)
	if !ok || len(required) != 1 || required[0] != "city" {
		t.Errorf("required = %v", params["required"])
	}
}
