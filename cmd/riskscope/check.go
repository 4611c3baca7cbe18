package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"riskScope/internal/config"
	"riskScope/internal/model"
	"riskScope/internal/oracle"
	"riskScope/internal/scanner"
)

type checkResult struct {
	PairAddress    string               `json:"pair_address"`
	ChainID        string               `json:"chain_id"`
	TokenName      string               `json:"token_name"`
	Passed         bool                 `json:"passed"`
	Reason         string               `json:"reason"`
	EventType      model.EventCategory  `json:"event_type,omitempty"`
	Suspicious     []string             `json:"suspicious_flags,omitempty"`
	VolumeAnalysis *model.VolumeVerdict `json:"volume_analysis,omitempty"`
	RugCheck       *model.RugVerdict    `json:"rugcheck_analysis,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient := oracle.NewHTTPClient(cfg.HTTPTimeout)
	gateway := oracle.NewDexScreener(cfg.DexScreenerURL, httpClient, cfg.MaxRetries, cfg.RetryBackoff, logger.Named("dexscreener"))
	runner := scanner.NewRunner(scanner.RunConfig{Queries: args, Once: true}, gateway, newPipeline(cfg, httpClient, logger), nil, nil, nil, logger)

	outcomes, err := runner.ProcessQuery(ctx, args[0], make(map[string]struct{}))
	if err != nil {
		return err
	}
	logger.Debug("check complete", zap.String("query", args[0]), zap.Int("pairs", len(outcomes)))

	results := make([]checkResult, 0, len(outcomes))
	for _, out := range outcomes {
		results = append(results, checkResult{
			PairAddress:    out.Pair.PairAddress,
			ChainID:        out.Pair.ChainID,
			TokenName:      out.Pair.BaseToken.Name,
			Passed:         out.Result.Passed,
			Reason:         string(out.Result.Reason),
			EventType:      out.Category,
			Suspicious:     out.Pair.SuspiciousFlags,
			VolumeAnalysis: out.Pair.VolumeAnalysis,
			RugCheck:       out.Pair.RugCheck,
		})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
