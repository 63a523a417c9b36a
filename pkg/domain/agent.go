package domain

import (
	"fieldagent/pkg/slotfill"
	"fieldagent/pkg/tools"
)

// Mode is the agent's conversation mode, switched only via the explicit
// transitions below.
type Mode int

const (
	// ModeIdle means no multi-turn task is in flight.
	ModeIdle Mode = iota
	// ModeAwaitingSlot means a slot-filling handler is waiting for the
	// next field value.
	ModeAwaitingSlot
)

// Agent is one logical chat session: immutable identity and tools,
// mutable bounded history and conversation mode. Agents are not safe
// for concurrent runs; the caller must serialize turns per agent.
type Agent struct {
	// Name is descriptive only.
	Name string
	// Instructions is the system directive for remote completion calls.
	// Immutable for the agent's lifetime.
	Instructions string
	// Tools is the agent's immutable capability set.
	Tools *tools.Registry

	// History is the bounded ordered turn sequence, mutated only by the
	// runner.
	History []Turn

	mode    Mode
	pending *slotfill.Handler
}

// NewAgent creates an agent with an explicit, immutable tool set.
func NewAgent(name, instructions string, reg *tools.Registry) *Agent {
	if reg == nil {
		reg = tools.NewRegistry()
	}
	return &Agent{
		Name:         name,
		Instructions: instructions,
		Tools:        reg,
	}
}

// Mode returns the current conversation mode.
func (a *Agent) Mode() Mode { return a.mode }

// PendingHandler returns the in-flight slot-filling handler, or nil when
// the agent is idle.
func (a *Agent) PendingHandler() *slotfill.Handler {
	if a.mode != ModeAwaitingSlot {
		return nil
	}
	return a.pending
}

// EnterSlotFilling transitions the agent into a multi-turn slot-filling
// task. An already-active handler is replaced.
func (a *Agent) EnterSlotFilling(h *slotfill.Handler) {
	a.mode = ModeAwaitingSlot
	a.pending = h
}

// FinishSlotFilling returns the agent to idle so a later turn starts a
// fresh task.
func (a *Agent) FinishSlotFilling() {
	a.mode = ModeIdle
	a.pending = nil
}
