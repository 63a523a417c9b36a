package domain

// Turn is a single role-tagged message in a conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// ToolCall carries function-call metadata on assistant turns that
	// requested a tool invocation.
	ToolCall *ToolCall `json:"tool_call,omitempty"`

	// Name identifies the tool that produced a RoleFunction turn.
	Name string `json:"name,omitempty"`
}

// ToolCall represents a tool invocation requested by the model.
type ToolCall struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Input map[string]any `json:"input"`
}

// ToolResult represents the outcome of a tool call execution.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Content    string `json:"content"`
	IsError    bool   `json:"is_error"`
}

// Result wraps the final reply produced by one runner invocation.
type Result struct {
	FinalOutput string `json:"final_output"`
}

// TruncateHistory returns the trailing window of turns, dropping the
// oldest first. A window <= 0 leaves the history unbounded.
func TruncateHistory(turns []Turn, window int) []Turn {
	if window <= 0 || len(turns) <= window {
		return turns
	}
	return turns[len(turns)-window:]
}
