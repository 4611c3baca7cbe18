package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"riskScope/internal/config"
	"riskScope/internal/report"
	"riskScope/internal/storage/postgres"
)

func runReport(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadReport(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	since, err := cfg.Window(time.Now())
	if err != nil {
		return fmt.Errorf("parse since: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var source report.Source = report.JSONLSource{Path: cfg.AnalysisOut, Logger: logger}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		source = store
	}

	records, err := source.RecordsSince(ctx, since)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	summary := report.Summarize(records, since)
	logger.Info("report built", zap.Time("since", since), zap.Int("records", summary.TotalPairsAnalyzed))

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
