package runner

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"fieldagent/pkg/domain"
	"fieldagent/pkg/tools"
)

// Fixed replies for the deterministic local reasoning mode.
const (
	GreetingReply = "Hello! How can I assist you today?"
	HelpReply     = "Ask about the weather, look things up with 'get_information', " +
		"show the time with 'show_time', or start a food security analysis with 'analyze <commodity>'."
	DefaultReply = "I'm not sure how to help with that."
)

// recallPhrases trigger verbatim replay of the previous user turn.
var recallPhrases = []string{
	"what did i just say",
	"what was my last message",
	"what was my last question",
	"what did i just ask",
}

var (
	analyzePattern       = regexp.MustCompile(`(?:analy[sz]e|analysis(?: of)?)\s+(\w+)`)
	weatherPattern       = regexp.MustCompile(`(?:weather|forecast|temperature|umbrella|rain).*(?:in|for|of) ([a-z ]+)`)
	weatherSuffixPattern = regexp.MustCompile(`([a-z ]+)\s+(?:weather|forecast)`)
)

// fallbackReply evaluates the ordered decision list once per message,
// first match wins. Memory recall and in-flight multi-turn tasks win
// over fresh intent detection, which wins over generic chit-chat.
func (r *Runner) fallbackReply(ctx context.Context, ag *domain.Agent, message string, hist []domain.Turn) string {
	trimmed := strings.TrimSpace(message)
	lowered := strings.ToLower(trimmed)

	// 1. Self-recall.
	if prev := previousUserTurn(hist); prev != "" {
		for _, phrase := range recallPhrases {
			if strings.Contains(lowered, phrase) {
				return prev
			}
		}
	}

	// 2. Active slot-filling continuation.
	if h := ag.PendingHandler(); h != nil {
		partial := map[string]any{}
		if f := h.NextField(); f != nil {
			if v := f.ExtractValue(lowered); v != nil {
				partial[f.Name] = v
			}
		}
		reply := h.Collect(partial)
		if h.IsComplete() || strings.Contains(strings.ToLower(reply), "analysis:") {
			ag.FinishSlotFilling()
		}
		return reply
	}

	// 3. Slot-filling initiation.
	if m := analyzePattern.FindStringSubmatch(lowered); m != nil {
		commodity := m[1]
		ag.EnterSlotFilling(r.newHandler(commodity))
		return fmt.Sprintf("Sure, I can help with a food security analysis. Let's start. "+
			"What was the price of %s last month?", commodity)
	}

	// 4. Direct textual tool invocation.
	if t, ok := ag.Tools.MatchPrefix(lowered); ok {
		remainder := strings.TrimSpace(trimmed[len(t.Name()):])
		parts := strings.Fields(remainder)
		if len(parts) == len(t.Params()) {
			return ag.Tools.InvokePositional(ctx, t, parts)
		}
		if t.Name() == tools.AnalystToolName {
			// Partial analyst invocations seed the multi-turn flow
			// instead of failing on arity.
			commodity := ""
			if len(parts) > 0 {
				commodity = parts[0]
			}
			h := r.newHandler(commodity)
			ag.EnterSlotFilling(h)
			if commodity != "" {
				return fmt.Sprintf("Sure, to analyze %s, could you tell me the price last month?", commodity)
			}
			return h.Collect(nil)
		}
		return tools.ErrorString(t.Name(), "incorrect arguments")
	}

	// 5. Weather intent via keyword + location phrase.
	if wt, ok := ag.Tools.Lookup("get_weather"); ok {
		if city := extractCity(lowered); city != "" {
			return ag.Tools.InvokePositional(ctx, wt, []string{city})
		}
	}

	// 6. Canned small talk.
	switch lowered {
	case "hi", "hello":
		return GreetingReply
	case "help":
		return HelpReply
	}

	// 7. Default.
	return DefaultReply
}

// previousUserTurn returns the content of the user turn before the
// current message, or "" when none exists.
func previousUserTurn(hist []domain.Turn) string {
	for i := len(hist) - 2; i >= 0; i-- {
		if hist[i].Role == domain.RoleUser {
			return hist[i].Content
		}
	}
	return ""
}

// extractCity pulls a location phrase out of a weather-style question
// and normalizes it (trimmed, title-cased).
func extractCity(lowered string) string {
	m := weatherPattern.FindStringSubmatch(lowered)
	if m == nil {
		m = weatherSuffixPattern.FindStringSubmatch(lowered)
	}
	if m == nil {
		return ""
	}
	return titleCase(strings.TrimSpace(m[len(m)-1]))
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
