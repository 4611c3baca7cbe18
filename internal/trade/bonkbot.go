package trade

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"riskScope/internal/model"
	"riskScope/internal/notify"
)

// BonkBot executes trades by posting commands to the trading bot's chat.
type BonkBot struct {
	sender notify.Sender
	logger *zap.Logger
}

func NewBonkBot(sender notify.Sender, logger *zap.Logger) *BonkBot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BonkBot{sender: sender, logger: logger}
}

// Command renders the bot command for a trade.
func Command(cmd model.TradeCommand) string {
	return fmt.Sprintf("/trade %s %s %sUSD", cmd.Side, cmd.PairAddress, cmd.AmountUSD.String())
}

// Execute sends the command. Delivery of the command is treated as success.
func (b *BonkBot) Execute(ctx context.Context, cmd model.TradeCommand) error {
	if cmd.Side != model.SideBuy && cmd.Side != model.SideSell {
		return fmt.Errorf("invalid trade side: %q", cmd.Side)
	}
	if !cmd.AmountUSD.IsPositive() {
		return fmt.Errorf("invalid trade amount: %s", cmd.AmountUSD)
	}
	text := Command(cmd)
	if err := b.sender.Send(ctx, text); err != nil {
		return fmt.Errorf("send trade command: %w", err)
	}
	b.logger.Info("trade command sent", zap.String("command", text))
	return nil
}
