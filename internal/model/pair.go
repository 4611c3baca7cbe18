package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Window is a rolling aggregation window reported by the market data gateway.
type Window string

const (
	WindowM5  Window = "m5"
	WindowH1  Window = "h1"
	WindowH6  Window = "h6"
	WindowH24 Window = "h24"
)

// Windows lists the known windows from shortest to longest.
var Windows = []Window{WindowM5, WindowH1, WindowH6, WindowH24}

// Offset returns how far before "now" the window starts.
func (w Window) Offset() time.Duration {
	switch w {
	case WindowM5:
		return 5 * time.Minute
	case WindowH1:
		return time.Hour
	case WindowH6:
		return 6 * time.Hour
	case WindowH24:
		return 24 * time.Hour
	default:
		return 0
	}
}

// Token identifies one side of a pair.
type Token struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol,omitempty"`
}

// TxnCount holds buy and sell transaction counts for a window.
type TxnCount struct {
	Buys  int `json:"buys"`
	Sells int `json:"sells"`
}

// PairSnapshot is a validated market snapshot of one pair plus the risk
// annotations attached while it is evaluated.
type PairSnapshot struct {
	ChainID      string
	DexID        string
	PairAddress  string
	BaseToken    Token
	QuoteToken   Token
	PriceUSD     decimal.Decimal
	LiquidityUSD float64
	Volume       map[Window]float64
	Txns         map[Window]TxnCount
	PriceChange  map[Window]float64
	CreatedAt    *time.Time
	Labels       []string

	RugCheck        *RugVerdict
	VolumeAnalysis  *VolumeVerdict
	SuspiciousFlags []string
}

// Volume24h returns the 24h volume, zero when absent.
func (p PairSnapshot) Volume24h() float64 {
	return p.Volume[WindowH24]
}

// PriceChange24h returns the 24h price change percentage, zero when absent.
func (p PairSnapshot) PriceChange24h() float64 {
	return p.PriceChange[WindowH24]
}

// HasLabel reports whether the pair carries the given label.
func (p PairSnapshot) HasLabel(label string) bool {
	for _, l := range p.Labels {
		if l == label {
			return true
		}
	}
	return false
}
