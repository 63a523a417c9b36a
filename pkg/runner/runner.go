// Package runner orchestrates one conversation turn: it updates the
// agent's bounded history, routes between the remote completion
// capability and the local reasoning fallback, executes at most one tool
// call, and always produces a reply.
package runner

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"fieldagent/pkg/completion"
	"fieldagent/pkg/domain"
	"fieldagent/pkg/slotfill"
)

// DefaultHistoryWindow bounds retained turns when none is configured.
const DefaultHistoryWindow = 20

// Fixed user-visible strings. Chat output never carries raw errors.
const (
	// ApologyReply answers any remote-completion failure, and replaces
	// an empty final answer.
	ApologyReply = "Hmm, something went wrong. Can you try again?"
)

// Runner drives agents. The zero value is not usable; construct with New.
type Runner struct {
	// Completer is the optional remote completion capability. Nil routes
	// every turn to the local reasoning fallback.
	Completer completion.Completer
	// Model names the remote model to use.
	Model string
	// Window bounds retained history turns; <= 0 means the default.
	Window int
	// NewHandler builds the slot-filling handler when a turn initiates
	// an analysis. Defaults to the commodity analysis field set.
	NewHandler func(commodity string) *slotfill.Handler
}

// New creates a runner. completer may be nil when no remote capability
// is configured.
func New(completer completion.Completer, model string) *Runner {
	return &Runner{
		Completer: completer,
		Model:     model,
		Window:    DefaultHistoryWindow,
	}
}

func (r *Runner) window() int {
	if r.Window > 0 {
		return r.Window
	}
	return DefaultHistoryWindow
}

func (r *Runner) newHandler(commodity string) *slotfill.Handler {
	if r.NewHandler != nil {
		return r.NewHandler(commodity)
	}
	return slotfill.NewCommodityAnalysis(commodity, true)
}

// Run handles a fresh user message: it is appended to the agent's
// history and answered. The returned error is non-nil only when ctx was
// cancelled mid-turn; in that case the agent is left untouched and the
// turn is not marked as answered.
func (r *Runner) Run(ctx context.Context, ag *domain.Agent, message string) (domain.Result, error) {
	hist := cloneTurns(ag.History)
	hist = append(hist, domain.Turn{Role: domain.RoleUser, Content: message})
	hist = domain.TruncateHistory(hist, r.window())
	return r.respond(ctx, ag, message, hist)
}

// RunTurns handles input given as the full recent context: system turns
// are dropped, the trailing window becomes the new history, and the last
// turn's content is the current message.
func (r *Runner) RunTurns(ctx context.Context, ag *domain.Agent, incoming []domain.Turn) (domain.Result, error) {
	var kept []domain.Turn
	for _, t := range incoming {
		if t.Role == domain.RoleSystem {
			continue
		}
		kept = append(kept, domain.Turn{Role: t.Role, Content: t.Content})
	}

	message := ""
	hist := cloneTurns(ag.History)
	if len(kept) > 0 {
		message = kept[len(kept)-1].Content
		hist = domain.TruncateHistory(kept, r.window())
	}
	return r.respond(ctx, ag, message, hist)
}

// respond branches on adapter availability, obtains the reply, and only
// then commits the mutated history back to the agent.
func (r *Runner) respond(ctx context.Context, ag *domain.Agent, message string, hist []domain.Turn) (domain.Result, error) {
	if r.Completer == nil {
		reply := r.fallbackReply(ctx, ag, message, hist)
		slog.Debug("local reply", "agent", ag.Name, "user", message, "reply", reply)
		return r.commit(ag, hist, reply), nil
	}

	reply, augmented, err := r.remoteReply(ctx, ag, message, hist)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			// Abandoned by the caller: no history mutation, the turn is
			// not answered.
			return domain.Result{}, ctxErr
		}
		slog.Error("remote completion failed", "agent", ag.Name, "provider", r.Completer.Name(), "error", err)
		return r.commit(ag, hist, ApologyReply), nil
	}
	slog.Debug("remote reply", "agent", ag.Name, "user", message, "reply", reply)
	return r.commit(ag, augmented, reply), nil
}

// remoteReply runs the adapter branch: one completion, an optional tool
// round-trip with two synthetic turns, and a second completion for the
// natural-language answer.
func (r *Runner) remoteReply(ctx context.Context, ag *domain.Agent, message string, hist []domain.Turn) (string, []domain.Turn, error) {
	req := &completion.Request{
		Model:        r.Model,
		Instructions: ag.Instructions,
		Turns:        hist,
	}
	if hinted := r.hintedTool(ag, message); hinted != "" {
		req.Tools = ag.Tools.All()
		req.ForcedTool = hinted
	}

	reply, err := r.Completer.Complete(ctx, req)
	if err != nil {
		return "", nil, err
	}

	final := reply.Content
	if tc := reply.ToolCall; tc != nil {
		result := ag.Tools.Invoke(ctx, tc.Name, tc.Input)

		hist = append(hist,
			domain.Turn{Role: domain.RoleAssistant, ToolCall: tc},
			domain.Turn{Role: domain.RoleFunction, Name: tc.Name, Content: result},
		)

		followUp, err := r.Completer.Complete(ctx, &completion.Request{
			Model:        r.Model,
			Instructions: ag.Instructions,
			Turns:        hist,
		})
		if err != nil {
			return "", nil, err
		}
		final = followUp.Content
	}

	if strings.TrimSpace(final) == "" {
		final = ApologyReply
	}
	return final, hist, nil
}

// hintedTool returns the first registered tool whose name appears as a
// whole word in the message, the crude intent signal that gates remote
// tool eligibility.
func (r *Runner) hintedTool(ag *domain.Agent, message string) string {
	for _, t := range ag.Tools.All() {
		pattern := `(?i)\b` + regexp.QuoteMeta(t.Name()) + `\b`
		if matched, err := regexp.MatchString(pattern, message); err == nil && matched {
			return t.Name()
		}
	}
	return ""
}

// commit appends the assistant reply, truncates, and hands the history
// back to the agent.
func (r *Runner) commit(ag *domain.Agent, hist []domain.Turn, reply string) domain.Result {
	hist = append(hist, domain.Turn{Role: domain.RoleAssistant, Content: reply})
	ag.History = domain.TruncateHistory(hist, r.window())
	return domain.Result{FinalOutput: reply}
}

func cloneTurns(turns []domain.Turn) []domain.Turn {
	out := make([]domain.Turn, len(turns))
	copy(out, turns)
	return out
}

// IsAbandoned reports whether err is a caller-side cancellation rather
// than a remote failure.
func IsAbandoned(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
