package position

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskScope/internal/model"
)

type recordingExecutor struct {
	mu   sync.Mutex
	cmds []model.TradeCommand
	err  error
}

func (e *recordingExecutor) Execute(_ context.Context, cmd model.TradeCommand) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.cmds = append(e.cmds, cmd)
	return nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
}

func testConfig() Config {
	return Config{
		AutoTrade:      true,
		TradeAmountUSD: decimal.NewFromInt(10),
		StopLossPct:    decimal.NewFromInt(5),
		TakeProfitPct:  decimal.NewFromInt(50),
	}
}

func pairAt(price string) model.PairSnapshot {
	return model.PairSnapshot{
		PairAddress: "0xpair",
		BaseToken:   model.Token{Name: "Pepe"},
		PriceUSD:    decimal.RequireFromString(price),
	}
}

func TestStopLossClosesPosition(t *testing.T) {
	exec := &recordingExecutor{}
	notes := &recordingNotifier{}
	m := NewMonitor(testConfig(), exec, notes, nil)
	ctx := context.Background()

	opened, err := m.Open(ctx, pairAt("1.00"))
	require.NoError(t, err)
	require.True(t, opened)

	trigger, err := m.Check(ctx, pairAt("0.90"))
	require.NoError(t, err)
	assert.Equal(t, TriggerStopLoss, trigger)

	_, ok := m.Get("0xpair")
	assert.False(t, ok)
	require.Len(t, exec.cmds, 2)
	assert.Equal(t, model.SideSell, exec.cmds[1].Side)
	assert.Contains(t, notes.messages, "🔴 Stop Loss triggered for Pepe\nLoss: -10.00%")
}

func TestThresholdsAreInclusive(t *testing.T) {
	ctx := context.Background()

	m := NewMonitor(testConfig(), &recordingExecutor{}, nil, nil)
	_, err := m.Open(ctx, pairAt("1.00"))
	require.NoError(t, err)
	trigger, err := m.Check(ctx, pairAt("0.95"))
	require.NoError(t, err)
	assert.Equal(t, TriggerStopLoss, trigger)

	notes := &recordingNotifier{}
	m = NewMonitor(testConfig(), &recordingExecutor{}, notes, nil)
	_, err = m.Open(ctx, pairAt("1.00"))
	require.NoError(t, err)
	trigger, err = m.Check(ctx, pairAt("1.50"))
	require.NoError(t, err)
	assert.Equal(t, TriggerTakeProfit, trigger)
	assert.Contains(t, notes.messages, "🟢 Take Profit triggered for Pepe\nProfit: 50.00%")
}

func TestCheckWithinBandKeepsPosition(t *testing.T) {
	exec := &recordingExecutor{}
	m := NewMonitor(testConfig(), exec, nil, nil)
	ctx := context.Background()

	_, err := m.Open(ctx, pairAt("1.00"))
	require.NoError(t, err)

	for _, price := range []string{"0.96", "1.20", "1.49"} {
		trigger, err := m.Check(ctx, pairAt(price))
		require.NoError(t, err)
		assert.Equal(t, TriggerNone, trigger, price)
	}
	pos, ok := m.Get("0xpair")
	require.True(t, ok)
	assert.True(t, pos.EntryPrice.Equal(decimal.NewFromInt(1)))
	assert.Len(t, exec.cmds, 1)
}

func TestCheckWithoutPositionIsNoop(t *testing.T) {
	exec := &recordingExecutor{}
	m := NewMonitor(testConfig(), exec, nil, nil)

	trigger, err := m.Check(context.Background(), pairAt("0.01"))
	require.NoError(t, err)
	assert.Equal(t, TriggerNone, trigger)
	assert.Empty(t, exec.cmds)
}

func TestSellWithoutPositionIsNoop(t *testing.T) {
	exec := &recordingExecutor{}
	m := NewMonitor(testConfig(), exec, nil, nil)

	closed, err := m.Close(context.Background(), pairAt("1.00"))
	require.NoError(t, err)
	assert.False(t, closed)
	assert.Empty(t, exec.cmds)
}

func TestOpenTwiceKeepsOnePosition(t *testing.T) {
	exec := &recordingExecutor{}
	m := NewMonitor(testConfig(), exec, nil, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.Open(ctx, pairAt("1.00"))
		}()
	}
	wg.Wait()

	assert.Len(t, exec.cmds, 1)
	assert.Len(t, m.Positions(), 1)
}

func TestFailedExecutionLeavesStateUnchanged(t *testing.T) {
	exec := &recordingExecutor{err: errors.New("bot unreachable")}
	notes := &recordingNotifier{}
	m := NewMonitor(testConfig(), exec, notes, nil)
	ctx := context.Background()

	opened, err := m.Open(ctx, pairAt("1.00"))
	require.Error(t, err)
	assert.False(t, opened)
	assert.Empty(t, m.Positions())
	assert.Empty(t, notes.messages)

	exec.err = nil
	_, err = m.Open(ctx, pairAt("1.00"))
	require.NoError(t, err)

	exec.err = errors.New("bot unreachable")
	trigger, err := m.Check(ctx, pairAt("0.50"))
	require.Error(t, err)
	assert.Equal(t, TriggerStopLoss, trigger)
	_, ok := m.Get("0xpair")
	assert.True(t, ok)
}

func TestAutoTradeDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.AutoTrade = false
	exec := &recordingExecutor{}
	m := NewMonitor(cfg, exec, nil, nil)

	opened, err := m.Open(context.Background(), pairAt("1.00"))
	assert.ErrorIs(t, err, ErrAutoTradeDisabled)
	assert.False(t, opened)
	assert.Empty(t, exec.cmds)
}

func TestTradeMessage(t *testing.T) {
	notes := &recordingNotifier{}
	m := NewMonitor(testConfig(), &recordingExecutor{}, notes, nil)

	_, err := m.Open(context.Background(), pairAt("0.000123"))
	require.NoError(t, err)

	want := "🤖 <b>Trade Executed</b>\nAction: 🟢 BUY\nToken: Pepe\nPrice: $0.00012300\nAmount: $10.00\nPair: 0xpair\n"
	assert.Equal(t, []string{want}, notes.messages)
}

func TestChangePct(t *testing.T) {
	got := ChangePct(decimal.RequireFromString("1.00"), decimal.RequireFromString("0.90"))
	assert.True(t, got.Equal(decimal.NewFromInt(-10)), got.String())
}
