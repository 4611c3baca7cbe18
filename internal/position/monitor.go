package position

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"riskScope/internal/model"
)

var hundred = decimal.NewFromInt(100)

// ErrAutoTradeDisabled is returned when a trade is requested while auto-trade
// is off.
var ErrAutoTradeDisabled = errors.New("auto trade disabled")

// Executor places a trade command and reports whether it succeeded.
type Executor interface {
	Execute(ctx context.Context, cmd model.TradeCommand) error
}

// Notifier accepts a formatted alert for asynchronous delivery.
type Notifier interface {
	Notify(text string)
}

// Config controls trading behavior.
type Config struct {
	AutoTrade      bool
	TradeAmountUSD decimal.Decimal
	StopLossPct    decimal.Decimal
	TakeProfitPct  decimal.Decimal
}

// Position is an open trade on one pair.
type Position struct {
	PairAddress string
	EntryPrice  decimal.Decimal
	AmountUSD   decimal.Decimal
	OpenedAt    time.Time
}

// Trigger names an exit condition.
type Trigger string

const (
	TriggerNone       Trigger = ""
	TriggerStopLoss   Trigger = "stop_loss"
	TriggerTakeProfit Trigger = "take_profit"
)

type slot struct {
	mu  sync.Mutex
	pos *Position
}

// Monitor owns the open positions. Transitions for one pair are serialized
// on that pair's slot, so a pair never holds more than one position.
type Monitor struct {
	cfg      Config
	executor Executor
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time

	mu    sync.Mutex
	slots map[string]*slot
}

func NewMonitor(cfg Config, executor Executor, notifier Notifier, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		cfg:      cfg,
		executor: executor,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		slots:    make(map[string]*slot),
	}
}

func (m *Monitor) slotFor(pairAddress string) *slot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[pairAddress]
	if !ok {
		s = &slot{}
		m.slots[pairAddress] = s
	}
	return s
}

// Get returns the open position for a pair.
func (m *Monitor) Get(pairAddress string) (Position, bool) {
	s := m.slotFor(pairAddress)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos == nil {
		return Position{}, false
	}
	return *s.pos, true
}

// Positions lists open positions ordered by pair address.
func (m *Monitor) Positions() []Position {
	m.mu.Lock()
	slots := make([]*slot, 0, len(m.slots))
	for _, s := range m.slots {
		slots = append(slots, s)
	}
	m.mu.Unlock()

	out := make([]Position, 0, len(slots))
	for _, s := range slots {
		s.mu.Lock()
		if s.pos != nil {
			out = append(out, *s.pos)
		}
		s.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PairAddress < out[j].PairAddress })
	return out
}

// Open buys into a pair at its current price. It returns false without
// trading when a position is already open.
func (m *Monitor) Open(ctx context.Context, pair model.PairSnapshot) (bool, error) {
	if !m.cfg.AutoTrade {
		return false, ErrAutoTradeDisabled
	}
	s := m.slotFor(pair.PairAddress)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pos != nil {
		return false, nil
	}
	if err := m.execute(ctx, pair, model.SideBuy); err != nil {
		return false, err
	}
	s.pos = &Position{
		PairAddress: pair.PairAddress,
		EntryPrice:  pair.PriceUSD,
		AmountUSD:   m.cfg.TradeAmountUSD,
		OpenedAt:    m.now().UTC(),
	}
	return true, nil
}

// Close sells an open position. Closing a pair with no position is a no-op.
func (m *Monitor) Close(ctx context.Context, pair model.PairSnapshot) (bool, error) {
	if !m.cfg.AutoTrade {
		return false, ErrAutoTradeDisabled
	}
	s := m.slotFor(pair.PairAddress)
	s.mu.Lock()
	defer s.mu.Unlock()
	return m.closeLocked(ctx, s, pair)
}

func (m *Monitor) closeLocked(ctx context.Context, s *slot, pair model.PairSnapshot) (bool, error) {
	if s.pos == nil {
		return false, nil
	}
	if err := m.execute(ctx, pair, model.SideSell); err != nil {
		return false, err
	}
	s.pos = nil
	return true, nil
}

// Check evaluates stop-loss and take-profit for the pair's open position and
// sells when one fires. Both thresholds are inclusive.
func (m *Monitor) Check(ctx context.Context, pair model.PairSnapshot) (Trigger, error) {
	s := m.slotFor(pair.PairAddress)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pos == nil || s.pos.EntryPrice.IsZero() {
		return TriggerNone, nil
	}

	change := ChangePct(s.pos.EntryPrice, pair.PriceUSD)
	var trigger Trigger
	switch {
	case change.LessThanOrEqual(m.cfg.StopLossPct.Neg()):
		trigger = TriggerStopLoss
		m.notify(fmt.Sprintf("🔴 Stop Loss triggered for %s\nLoss: %s%%", pair.BaseToken.Name, change.StringFixed(2)))
	case change.GreaterThanOrEqual(m.cfg.TakeProfitPct):
		trigger = TriggerTakeProfit
		m.notify(fmt.Sprintf("🟢 Take Profit triggered for %s\nProfit: %s%%", pair.BaseToken.Name, change.StringFixed(2)))
	default:
		return TriggerNone, nil
	}

	m.logger.Info("position exit triggered",
		zap.String("pair", pair.PairAddress),
		zap.String("trigger", string(trigger)),
		zap.String("change_pct", change.StringFixed(2)),
	)
	if !m.cfg.AutoTrade {
		return trigger, ErrAutoTradeDisabled
	}
	if _, err := m.closeLocked(ctx, s, pair); err != nil {
		return trigger, err
	}
	return trigger, nil
}

// ChangePct is (current - entry) / entry * 100.
func ChangePct(entry, current decimal.Decimal) decimal.Decimal {
	return current.Sub(entry).Div(entry).Mul(hundred)
}

func (m *Monitor) execute(ctx context.Context, pair model.PairSnapshot, side model.Side) error {
	if m.executor == nil {
		return fmt.Errorf("no trade executor configured")
	}
	cmd := model.TradeCommand{
		PairAddress: pair.PairAddress,
		Side:        side,
		AmountUSD:   m.cfg.TradeAmountUSD,
	}
	if err := m.executor.Execute(ctx, cmd); err != nil {
		m.logger.Warn("trade failed", zap.String("pair", pair.PairAddress), zap.String("side", string(side)), zap.Error(err))
		return fmt.Errorf("%s %s: %w", side, pair.PairAddress, err)
	}
	m.notify(tradeMessage(pair, side, m.cfg.TradeAmountUSD))
	return nil
}

func (m *Monitor) notify(text string) {
	if m.notifier != nil {
		m.notifier.Notify(text)
	}
}

func tradeMessage(pair model.PairSnapshot, side model.Side, amount decimal.Decimal) string {
	action := "🟢 BUY"
	if side == model.SideSell {
		action = "🔴 SELL"
	}
	return fmt.Sprintf("🤖 <b>Trade Executed</b>\nAction: %s\nToken: %s\nPrice: $%s\nAmount: $%s\nPair: %s\n",
		action, pair.BaseToken.Name, pair.PriceUSD.StringFixed(8), amount.StringFixed(2), pair.PairAddress)
}
