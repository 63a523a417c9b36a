package tools

import (
	"context"
	"time"
)

// NewClock returns the show_time tool. now is injectable for tests; nil
// uses the wall clock.
func NewClock(now func() time.Time) Tool {
	if now == nil {
		now = time.Now
	}
	return &Func{
		ToolName: "show_time",
		Doc:      "Show the current date and time.",
		Schema:   nil,
		Fn: func(_ context.Context, _ map[string]any) (string, error) {
			return "The current time is " + now().Format("Mon Jan 2 15:04:05 2006"), nil
		},
	}
}
