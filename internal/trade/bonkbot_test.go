package trade

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"riskScope/internal/model"
)

type captureSender struct {
	texts []string
	err   error
}

func (c *captureSender) Send(_ context.Context, text string) error {
	if c.err != nil {
		return c.err
	}
	c.texts = append(c.texts, text)
	return nil
}

func TestExecute(t *testing.T) {
	sender := &captureSender{}
	bot := NewBonkBot(sender, nil)

	cmd := model.TradeCommand{PairAddress: "0xpair", Side: model.SideBuy, AmountUSD: decimal.RequireFromString("10.5")}
	if err := bot.Execute(context.Background(), cmd); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(sender.texts) != 1 || sender.texts[0] != "/trade buy 0xpair 10.5USD" {
		t.Fatalf("unexpected commands: %v", sender.texts)
	}
}

func TestExecuteRejectsBadCommands(t *testing.T) {
	bot := NewBonkBot(&captureSender{}, nil)
	cases := []model.TradeCommand{
		{PairAddress: "0xpair", Side: "hold", AmountUSD: decimal.NewFromInt(10)},
		{PairAddress: "0xpair", Side: model.SideSell, AmountUSD: decimal.Zero},
	}
	for _, cmd := range cases {
		if err := bot.Execute(context.Background(), cmd); err == nil {
			t.Fatalf("expected error for %+v", cmd)
		}
	}
}

func TestExecuteSendFailure(t *testing.T) {
	bot := NewBonkBot(&captureSender{err: errors.New("timeout")}, nil)
	cmd := model.TradeCommand{PairAddress: "0xpair", Side: model.SideSell, AmountUSD: decimal.NewFromInt(10)}
	if err := bot.Execute(context.Background(), cmd); err == nil {
		t.Fatalf("expected send failure")
	}
}
