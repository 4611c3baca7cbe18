package model

import "github.com/shopspring/decimal"

// Side is the direction of a trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// SyntheticTrade is a trade reconstructed from aggregate transaction counts.
type SyntheticTrade struct {
	Trader    string
	Timestamp int64
	AmountUSD float64
	Side      Side
}

// TradeCommand is sent to the execution channel.
type TradeCommand struct {
	PairAddress string          `json:"pair_address"`
	Side        Side            `json:"side"`
	AmountUSD   decimal.Decimal `json:"amount_usd"`
}
