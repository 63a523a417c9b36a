package slotfill

import (
	"fmt"
	"strings"
)

// Field names for the commodity price analysis flow.
const (
	FieldCommodityName     = "commodity_name"
	FieldPriceLastMonth    = "price_last_month"
	FieldPriceTwoMonthsAgo = "price_two_months_ago"
	FieldAvailabilityLevel = "availability_level"
	FieldCountry           = "country"
)

// AvailabilityLevels are the accepted answers for the availability field,
// in matching priority order.
var AvailabilityLevels = []string{"high", "moderate", "low"}

// CommodityFields returns the required field order for a commodity price
// analysis. includeCountry adds the country/region field the later flow
// variants collect.
func CommodityFields(includeCountry bool) []Field {
	fields := []Field{
		{
			Name: FieldCommodityName,
			Kind: KindText,
			Prompt: func(map[string]any) string {
				return "What commodity would you like to analyze?"
			},
		},
		{
			Name: FieldPriceLastMonth,
			Kind: KindNumber,
			Prompt: func(data map[string]any) string {
				item := itemName(data)
				return fmt.Sprintf("Sure, to analyze %s, could you tell me the price last month?", item)
			},
		},
		{
			Name: FieldPriceTwoMonthsAgo,
			Kind: KindNumber,
			Prompt: func(map[string]any) string {
				return "And what was the price two months ago?"
			},
		},
		{
			Name: FieldAvailabilityLevel,
			Kind: KindEnum,
			Enum: AvailabilityLevels,
			Prompt: func(data map[string]any) string {
				item := itemName(data)
				return fmt.Sprintf("How is %s availability now: high, moderate, or low?", item)
			},
		},
	}
	if includeCountry {
		fields = append(fields, Field{
			Name: FieldCountry,
			Kind: KindText,
			Prompt: func(map[string]any) string {
				return "Which country or region is this analysis for?"
			},
		})
	}
	return fields
}

// NewCommodityAnalysis creates a slot-filling handler for a commodity
// price analysis. commodity pre-fills the first field when non-empty.
func NewCommodityAnalysis(commodity string, includeCountry bool) *Handler {
	seed := map[string]any{}
	if commodity != "" {
		seed[FieldCommodityName] = commodity
	}
	return New(CommodityFields(includeCountry), CommodityAnalysis, seed)
}

// CommodityAnalysis computes the terminal analysis once every field is
// present. Numeric fields are parsed here, not at collection time.
func CommodityAnalysis(data map[string]any) (string, error) {
	name := AsText(data, FieldCommodityName)
	last, err := AsNumber(data, FieldPriceLastMonth)
	if err != nil {
		return "", err
	}
	prev, err := AsNumber(data, FieldPriceTwoMonthsAgo)
	if err != nil {
		return "", err
	}
	avail := strings.ToLower(AsText(data, FieldAvailabilityLevel))

	change := last - prev
	pct := 0.0
	if prev != 0 {
		pct = change / prev * 100
	}

	trend := "remained stable"
	switch {
	case change > 0:
		trend = "increased"
	case change < 0:
		trend = "decreased"
	}

	availabilityText := map[string]string{
		"high":     "supplies are plentiful",
		"moderate": "supplies are somewhat constrained",
		"low":      "there are significant shortages",
	}[avail]
	if availabilityText == "" {
		availabilityText = "availability information is unclear"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analysis: The price of %s has %s by %.1f%% compared with two months ago and %s.\n",
		name, trend, pct, availabilityText)
	fmt.Fprintf(&b, "Commodity: %s\n", name)
	fmt.Fprintf(&b, "Price last month: %v\n", last)
	fmt.Fprintf(&b, "Price two months ago: %v\n", prev)
	fmt.Fprintf(&b, "Availability: %s", avail)
	if country := AsText(data, FieldCountry); country != "" {
		fmt.Fprintf(&b, "\nCountry: %s", country)
	}
	return b.String(), nil
}

func itemName(data map[string]any) string {
	if item := AsText(data, FieldCommodityName); item != "" {
		return item
	}
	return "it"
}
