package washtrade

import (
	"fmt"
	"sort"
	"time"

	"riskScope/internal/model"
)

// syntheticSpacing separates consecutive synthetic trades.
const syntheticSpacing int64 = 60

// Config holds the pattern thresholds.
type Config struct {
	MaxSelfTrades               int
	MinTimeBetweenTradesSeconds int64
	MaxRepetitiveAmounts        int
}

// Result summarizes the trade-pattern analysis of one snapshot.
type Result struct {
	UniqueTraders            int
	TotalTrades              int
	WashTradeCount           int
	SuspiciousTimingPatterns []string
}

// WashTradePercentage is wash-trade count over total trades, in percent.
func (r Result) WashTradePercentage() float64 {
	total := r.TotalTrades
	if total < 1 {
		total = 1
	}
	return float64(r.WashTradeCount) / float64(total) * 100
}

// Analyzer scores a snapshot for wash-trading and bot-like patterns.
type Analyzer struct {
	cfg Config
	now func() time.Time
}

func NewAnalyzer(cfg Config, now func() time.Time) *Analyzer {
	if now == nil {
		now = time.Now
	}
	return &Analyzer{cfg: cfg, now: now}
}

// Analyze reconstructs the synthetic trade list and scores it. The clock is
// read once per call.
func (a *Analyzer) Analyze(pair model.PairSnapshot) Result {
	trades := Synthesize(pair, a.now())

	res := Result{
		TotalTrades:              len(trades),
		SuspiciousTimingPatterns: []string{},
	}

	byTrader := make(map[string][]model.SyntheticTrade)
	traderOrder := make([]string, 0)
	amountCount := make(map[float64]int)
	amountOrder := make([]float64, 0)

	for _, trade := range trades {
		if _, ok := byTrader[trade.Trader]; !ok {
			traderOrder = append(traderOrder, trade.Trader)
		}
		byTrader[trade.Trader] = append(byTrader[trade.Trader], trade)

		if _, ok := amountCount[trade.AmountUSD]; !ok {
			amountOrder = append(amountOrder, trade.AmountUSD)
		}
		amountCount[trade.AmountUSD]++
	}
	res.UniqueTraders = len(traderOrder)

	for _, trader := range traderOrder {
		list := byTrader[trader]
		if len(list) > a.cfg.MaxSelfTrades {
			res.WashTradeCount += len(list)
		}

		sort.SliceStable(list, func(i, j int) bool { return list[i].Timestamp < list[j].Timestamp })
		for i := 1; i < len(list); i++ {
			diff := list[i].Timestamp - list[i-1].Timestamp
			if diff < a.cfg.MinTimeBetweenTradesSeconds {
				res.SuspiciousTimingPatterns = append(res.SuspiciousTimingPatterns,
					fmt.Sprintf("Rapid trades from %s: %ds between trades", trader, diff))
			}
		}
	}

	for _, amount := range amountOrder {
		if count := amountCount[amount]; count > a.cfg.MaxRepetitiveAmounts {
			res.SuspiciousTimingPatterns = append(res.SuspiciousTimingPatterns,
				fmt.Sprintf("Repetitive trade amount: %v used %d times", amount, count))
		}
	}

	return res
}

// Synthesize builds one trade per counted transaction. Every trade gets its
// own trader identity, so per-trader checks only fire if that changes.
func Synthesize(pair model.PairSnapshot, now time.Time) []model.SyntheticTrade {
	trades := make([]model.SyntheticTrade, 0)
	nowUnix := now.Unix()

	for _, window := range model.Windows {
		count, ok := pair.Txns[window]
		if !ok {
			continue
		}
		base := nowUnix - int64(window.Offset()/time.Second)
		volume := pair.Volume[window]

		buyAmount := volume / float64(maxInt(count.Buys, 1))
		for i := 0; i < count.Buys; i++ {
			trades = append(trades, syntheticTrade(len(trades), base, buyAmount, model.SideBuy))
		}

		sellAmount := volume / float64(maxInt(count.Sells, 1))
		for i := 0; i < count.Sells; i++ {
			trades = append(trades, syntheticTrade(len(trades), base, sellAmount, model.SideSell))
		}
	}

	return trades
}

func syntheticTrade(index int, base int64, amount float64, side model.Side) model.SyntheticTrade {
	return model.SyntheticTrade{
		Trader:    fmt.Sprintf("trader_%d", index),
		Timestamp: base + int64(index)*syntheticSpacing,
		AmountUSD: amount,
		Side:      side,
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
