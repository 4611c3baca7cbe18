package classify

import "riskScope/internal/model"

// Rule maps a predicate over a snapshot to a category.
type Rule struct {
	Category model.EventCategory
	Match    func(model.PairSnapshot) bool
}

// Rules are evaluated top to bottom; the first match wins.
var Rules = []Rule{
	{
		Category: model.EventPotentialRug,
		Match: func(p model.PairSnapshot) bool {
			return p.PriceChange24h() <= -90
		},
	},
	{
		Category: model.EventSignificantPump,
		Match: func(p model.PairSnapshot) bool {
			return p.PriceChange24h() >= 100 && p.Volume24h() > 100_000
		},
	},
	{
		Category: model.EventHighLiquidityVolume,
		Match: func(p model.PairSnapshot) bool {
			return p.LiquidityUSD > 1_000_000 && p.Volume24h() > 500_000
		},
	},
	{
		Category: model.EventCEXListed,
		Match: func(p model.PairSnapshot) bool {
			return p.HasLabel("cex")
		},
	},
	{
		Category: model.EventSuspiciousActivity,
		Match: func(p model.PairSnapshot) bool {
			return len(p.SuspiciousFlags) > 0
		},
	},
}

// Classify returns the category of a passing snapshot.
func Classify(pair model.PairSnapshot) model.EventCategory {
	for _, rule := range Rules {
		if rule.Match(pair) {
			return rule.Category
		}
	}
	return model.EventNormalTrading
}
