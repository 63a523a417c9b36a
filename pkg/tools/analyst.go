package tools

import (
	"context"

	"fieldagent/pkg/slotfill"
)

// AnalystToolName is the registered name of the commodity analysis tool.
const AnalystToolName = "food_security_analyst"

// NewAnalyst returns the food_security_analyst tool: a one-shot,
// schema-mediated entry into the commodity price analysis. When invoked
// with every field present it returns the full analysis; partial input
// returns the prompt for the first missing field.
func NewAnalyst(includeCountry bool) Tool {
	fields := slotfill.CommodityFields(includeCountry)
	params := make([]Param, 0, len(fields))
	for _, f := range fields {
		p := Param{Name: f.Name, Type: TypeString, Enum: f.Enum}
		if f.Kind == slotfill.KindNumber {
			p.Type = TypeNumber
		}
		params = append(params, p)
	}

	return &Func{
		ToolName: AnalystToolName,
		Doc:      "Provide an expert level food security analysis using recent prices and availability levels for a commodity.",
		Schema:   params,
		Fn: func(_ context.Context, args map[string]any) (string, error) {
			h := slotfill.New(slotfill.CommodityFields(includeCountry), slotfill.CommodityAnalysis, nil)
			return h.Collect(args), nil
		},
	}
}
