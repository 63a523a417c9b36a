// Package completion defines the remote completion capability: a service
// that, given instructions and history (plus tool schemas), proposes a
// reply or a structured tool-call request. Every provider normalizes its
// transport's response into the single Reply shape before it reaches
// orchestration logic.
package completion

import (
	"context"

	"fieldagent/pkg/domain"
	"fieldagent/pkg/tools"
)

// Request is one completion call.
type Request struct {
	// Model identifies which model to use (e.g. "gpt-4o-mini").
	Model string
	// Instructions is the system directive.
	Instructions string
	// Turns is the bounded conversation history, current message last.
	Turns []domain.Turn
	// Tools lists the schemas offered to the service. Empty means no
	// tool eligibility for this call.
	Tools []tools.Tool
	// ForcedTool, when non-empty, forces the named tool to be eligible
	// ("hinted tool-choice" semantics).
	ForcedTool string
}

// Reply is the normalized completion result: plain content, or a
// structured tool call, or both.
type Reply struct {
	Content  string
	ToolCall *domain.ToolCall
}

// Completer is the injected remote completion capability. Its absence
// (nil) routes the runner to the local fallback; a per-call error routes
// to the fixed apology.
type Completer interface {
	// Name returns the provider identifier (e.g. "openai", "gemini").
	Name() string

	// Complete issues one completion request. It may be abandoned via
	// ctx; implementations must return ctx.Err() in that case.
	Complete(ctx context.Context, req *Request) (*Reply, error)
}
