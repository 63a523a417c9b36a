package domain

// Role defines the sender of a conversation turn.
type Role string

const (
	// RoleSystem indicates the agent's standing instructions.
	RoleSystem Role = "system"
	// RoleUser indicates a message from the user.
	RoleUser Role = "user"
	// RoleAssistant indicates a reply (or tool-call request) from the agent.
	RoleAssistant Role = "assistant"
	// RoleFunction indicates the stringified result of a tool invocation.
	RoleFunction Role = "function"
)
