package tools

import (
	"context"
	"fmt"
)

// NewWeather returns the deterministic weather lookup tool.
func NewWeather() Tool {
	return &Func{
		ToolName: "get_weather",
		Doc:      "Get the current weather for a given city.",
		Schema: []Param{
			{Name: "city", Type: TypeString, Description: "City name"},
		},
		Fn: func(_ context.Context, args map[string]any) (string, error) {
			city := StringArg(args, "city")
			return fmt.Sprintf("The weather in %s is sunny.", city), nil
		},
	}
}
