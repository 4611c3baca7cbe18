package model

import "fmt"

// EventCategory is the semantic classification of a passing snapshot.
type EventCategory string

const (
	EventPotentialRug        EventCategory = "potential_rug"
	EventSignificantPump     EventCategory = "significant_pump"
	EventHighLiquidityVolume EventCategory = "high_liquidity_volume"
	EventCEXListed           EventCategory = "cex_listed"
	EventSuspiciousActivity  EventCategory = "suspicious_activity"
	EventNormalTrading       EventCategory = "normal_trading"
)

// EventCategories lists every category in classification priority order.
var EventCategories = []EventCategory{
	EventPotentialRug,
	EventSignificantPump,
	EventHighLiquidityVolume,
	EventCEXListed,
	EventSuspiciousActivity,
	EventNormalTrading,
}

// ParseEventCategory converts a configured category name.
func ParseEventCategory(name string) (EventCategory, error) {
	for _, c := range EventCategories {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown event category: %s", name)
}
