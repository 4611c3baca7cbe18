package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"riskScope/internal/blacklist"
	"riskScope/internal/config"
	"riskScope/internal/metrics"
	"riskScope/internal/notify"
	"riskScope/internal/oracle"
	"riskScope/internal/position"
	"riskScope/internal/risk"
	"riskScope/internal/scanner"
	"riskScope/internal/storage"
	"riskScope/internal/storage/postgres"
	"riskScope/internal/trade"
	"riskScope/internal/washtrade"
)

const defaultBlacklistPath = "config.json"

func main() {
	root := &cobra.Command{
		Use:          "riskscope",
		Short:        "DEX pair risk scanner",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Scan the watch list, alert and trade",
		RunE:  runScanner,
	}

	runCmd.Flags().StringSlice("pairs", nil, "pair queries to watch (comma-separated)")
	runCmd.Flags().Duration("poll-interval", 60*time.Second, "delay between scan cycles")
	runCmd.Flags().Bool("once", false, "run a single cycle and exit")
	runCmd.Flags().String("analysis-out", "./data/analysis_results.jsonl", "analysis records JSONL path")
	runCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for analysis records")
	runCmd.Flags().String("metrics-addr", "", "listen address for Prometheus metrics, empty disables")
	runCmd.Flags().Duration("notify-interval", time.Second, "minimum delay between notifications")
	runCmd.Flags().Int("notify-queue-size", 256, "pending notification capacity")
	addOracleFlags(runCmd)

	root.AddCommand(runCmd)

	checkCmd := &cobra.Command{
		Use:   "check <query>",
		Short: "Evaluate the pairs returned by one query and print the analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck,
	}
	addOracleFlags(checkCmd)

	root.AddCommand(checkCmd)

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize recorded analysis results",
		RunE:  runReport,
	}

	reportCmd.Flags().String("analysis-out", "./data/analysis_results.jsonl", "analysis records JSONL path")
	reportCmd.Flags().String("pg-dsn", "", "read records from Postgres instead of JSONL")
	reportCmd.Flags().Int("days", 7, "report window in days")
	reportCmd.Flags().String("since", "", "report window start (unix seconds or RFC3339), overrides days")
	reportCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(reportCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addOracleFlags(cmd *cobra.Command) {
	cmd.Flags().String("dexscreener-url", oracle.DefaultDexScreenerURL, "market data search endpoint")
	cmd.Flags().String("rugcheck-url", oracle.DefaultRugCheckURL, "rug check API base URL")
	cmd.Flags().String("pocket-universe-url", oracle.DefaultPocketUniverseURL, "volume verification API base URL")
	cmd.Flags().Duration("http-timeout", 15*time.Second, "per-request HTTP timeout")
	cmd.Flags().Int("max-retries", 3, "maximum retry attempts for market data")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func runScanner(cmd *cobra.Command, _ []string) error {
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

	if len(cfg.Pairs) == 0 {
		return fmt.Errorf("pairs list is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: m.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("metrics server stopped", zap.Error(err))
			}
		}()
		defer srv.Close()
	}

	httpClient := oracle.NewHTTPClient(cfg.HTTPTimeout)

	alerts := notify.NewQueue(
		notify.NewTelegramSender(cfg.Telegram.APIURL, cfg.Telegram.BotToken, cfg.Telegram.ChatID, httpClient),
		cfg.NotifyQueueSize, cfg.NotifyInterval, m, logger.Named("alerts"),
	)
	// Trade commands are plain text for the trading bot.
	tradeSender := notify.NewTelegramSender(cfg.Telegram.APIURL, cfg.Telegram.BonkBot.APIKey, cfg.Telegram.BonkBot.ChatID, httpClient)
	tradeSender.ParseMode = ""

	notifyCtx, stopNotify := context.WithCancel(context.Background())
	notifyDone := make(chan struct{})
	go func() {
		defer close(notifyDone)
		_ = alerts.Run(notifyCtx)
	}()
	defer func() {
		stopNotify()
		<-notifyDone
	}()

	bonk := cfg.Telegram.BonkBot
	monitor := position.NewMonitor(position.Config{
		AutoTrade:      bonk.AutoTrade,
		TradeAmountUSD: bonk.TradeAmountUSD,
		StopLossPct:    bonk.StopLossPct,
		TakeProfitPct:  bonk.TakeProfitPct,
	}, trade.NewBonkBot(tradeSender, logger.Named("trade")), alerts, logger.Named("position"))

	pipeline := newPipeline(cfg, httpClient, logger)

	var sinks storage.Fanout
	sinks = append(sinks, storage.NewJsonlStorage(cfg.AnalysisOut))
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		sinks = append(sinks, store)
	}

	gateway := oracle.NewDexScreener(cfg.DexScreenerURL, httpClient, cfg.MaxRetries, cfg.RetryBackoff, logger.Named("dexscreener"))

	runner := scanner.NewRunner(scanner.RunConfig{
		Queries:       cfg.Pairs,
		PollInterval:  cfg.PollInterval,
		Once:          cfg.Once,
		BuyCategories: bonk.BuyCategories,
	}, gateway, pipeline, monitor, sinks, m, logger)

	logger.Info("scanner start",
		zap.Strings("pairs", cfg.Pairs),
		zap.Duration("poll_interval", cfg.PollInterval),
		zap.Bool("once", cfg.Once),
		zap.String("analysis_out", cfg.AnalysisOut),
		zap.Bool("postgres", cfg.PGDSN != ""),
		zap.String("metrics_addr", cfg.MetricsAddr),
		zap.Bool("auto_trade", bonk.AutoTrade),
		zap.Bool("volume_oracle", cfg.Volume.PocketUniverseAPIKey != ""),
	)

	return runner.Run(ctx)
}

// newPipeline wires the risk gates to the configured oracles and the
// persistent deployer blacklist.
func newPipeline(cfg config.Config, httpClient *http.Client, logger *zap.Logger) *risk.Pipeline {
	blacklistPath := cfg.ConfigFile
	if blacklistPath == "" {
		blacklistPath = defaultBlacklistPath
	}
	bl := blacklist.New(cfg.BlacklistedTokens, cfg.BlacklistedDeployers, config.NewBlacklistFile(blacklistPath), logger.Named("blacklist"))

	var volume risk.VolumeOracle
	if pu := oracle.NewPocketUniverse(cfg.PocketUniverseURL, cfg.Volume.PocketUniverseAPIKey, httpClient); pu != nil {
		volume = pu
	}

	return risk.NewPipeline(risk.Config{
		MinLiquidityUSD:        cfg.Filters.MinLiquidityUSD,
		MinVolume24h:           cfg.Filters.MinVolume24h,
		MinAgeHours:            cfg.Filters.MinAgeHours,
		MaxTaxPercentage:       cfg.MaxTaxPercentage,
		MinRealVolumeRatio:     cfg.Volume.MinRealVolumeRatio,
		MinUniqueTraders:       cfg.Volume.MinUniqueTraders,
		MaxWashTradePercentage: cfg.Volume.MaxWashTradePercentage,
		Patterns: washtrade.Config{
			MaxSelfTrades:               cfg.Volume.MaxSelfTrades,
			MinTimeBetweenTradesSeconds: cfg.Volume.MinTimeBetweenTradesSeconds,
			MaxRepetitiveAmounts:        cfg.Volume.MaxRepetitiveAmounts,
		},
	}, bl, oracle.NewRugCheck(cfg.RugCheckURL, httpClient), volume, logger.Named("risk"))
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
