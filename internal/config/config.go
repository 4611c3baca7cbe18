package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"riskScope/internal/model"
)

const envPrefix = "RISKSCOPE"

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	// ConfigFile is the file actually read, empty when none was found.
	ConfigFile string

	Pairs        []string
	PollInterval time.Duration
	Once         bool
	LogLevel     string
	AnalysisOut  string
	PGDSN        string
	MetricsAddr  string

	DexScreenerURL    string
	RugCheckURL       string
	PocketUniverseURL string
	HTTPTimeout       time.Duration
	MaxRetries        int
	RetryBackoff      time.Duration

	NotifyInterval  time.Duration
	NotifyQueueSize int

	Filters              Filters
	BlacklistedTokens    []string
	BlacklistedDeployers []string
	MaxTaxPercentage     float64
	Volume               VolumeVerification
	Telegram             Telegram
}

// Filters are the threshold gates.
type Filters struct {
	MinLiquidityUSD float64
	MinVolume24h    float64
	MinAgeHours     float64
}

// VolumeVerification configures the volume legitimacy check.
type VolumeVerification struct {
	MinRealVolumeRatio          float64
	PocketUniverseAPIKey        string
	MinUniqueTraders            int
	MaxWashTradePercentage      float64
	MaxSelfTrades               int
	MinTimeBetweenTradesSeconds int64
	MaxRepetitiveAmounts        int
}

// Telegram configures alert delivery and the trading bot channel.
type Telegram struct {
	BotToken string
	ChatID   string
	APIURL   string
	BonkBot  BonkBot
}

// BonkBot configures automated trading.
type BonkBot struct {
	APIKey         string
	ChatID         string
	AutoTrade      bool
	TradeAmountUSD decimal.Decimal
	StopLossPct    decimal.Decimal
	TakeProfitPct  decimal.Decimal
	BuyCategories  []model.EventCategory
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := newViper()

	v.SetDefault("poll-interval", 60*time.Second)
	v.SetDefault("once", false)
	v.SetDefault("log-level", "info")
	v.SetDefault("analysis-out", "./data/analysis_results.jsonl")
	v.SetDefault("http-timeout", 15*time.Second)
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("notify-interval", time.Second)
	v.SetDefault("notify-queue-size", 256)

	v.SetDefault("filters.min_liquidity_usd", 0)
	v.SetDefault("filters.min_volume_24h", 0)
	v.SetDefault("filters.min_age_hours", 0)
	v.SetDefault("suspicious_patterns.max_tax_percentage", 10)
	v.SetDefault("volume_verification.min_real_volume_ratio", 0.5)
	v.SetDefault("volume_verification.min_unique_traders", 10)
	v.SetDefault("volume_verification.max_wash_trade_percentage", 50)
	v.SetDefault("volume_verification.suspicious_trade_patterns.max_self_trades", 5)
	v.SetDefault("volume_verification.suspicious_trade_patterns.min_time_between_trades_seconds", 60)
	v.SetDefault("volume_verification.suspicious_trade_patterns.max_repetitive_amounts", 5)
	v.SetDefault("telegram.api_url", "https://api.telegram.org")
	v.SetDefault("telegram.bonkbot.auto_trade", false)
	v.SetDefault("telegram.bonkbot.trade_amount_usd", 10)
	v.SetDefault("telegram.bonkbot.stop_loss_percentage", 10)
	v.SetDefault("telegram.bonkbot.take_profit_percentage", 50)
	v.SetDefault("telegram.bonkbot.buy_categories", []string{string(model.EventHighLiquidityVolume)})

	if err := readConfig(v, cfgFile, flags); err != nil {
		return Config{}, err
	}

	cfg := Config{
		ConfigFile:        v.ConfigFileUsed(),
		Pairs:             getStringSlice(v, "pairs"),
		PollInterval:      v.GetDuration("poll-interval"),
		Once:              v.GetBool("once"),
		LogLevel:          v.GetString("log-level"),
		AnalysisOut:       v.GetString("analysis-out"),
		PGDSN:             v.GetString("pg-dsn"),
		MetricsAddr:       v.GetString("metrics-addr"),
		DexScreenerURL:    v.GetString("dexscreener-url"),
		RugCheckURL:       v.GetString("rugcheck-url"),
		PocketUniverseURL: v.GetString("pocket-universe-url"),
		HTTPTimeout:       v.GetDuration("http-timeout"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		NotifyInterval:    v.GetDuration("notify-interval"),
		NotifyQueueSize:   v.GetInt("notify-queue-size"),
		Filters: Filters{
			MinLiquidityUSD: v.GetFloat64("filters.min_liquidity_usd"),
			MinVolume24h:    v.GetFloat64("filters.min_volume_24h"),
			MinAgeHours:     v.GetFloat64("filters.min_age_hours"),
		},
		BlacklistedTokens:    getStringSlice(v, "blacklisted_tokens"),
		BlacklistedDeployers: getStringSlice(v, "blacklisted_deployers"),
		MaxTaxPercentage:     v.GetFloat64("suspicious_patterns.max_tax_percentage"),
		Volume: VolumeVerification{
			MinRealVolumeRatio:          v.GetFloat64("volume_verification.min_real_volume_ratio"),
			PocketUniverseAPIKey:        v.GetString("volume_verification.pocket_universe_api_key"),
			MinUniqueTraders:            v.GetInt("volume_verification.min_unique_traders"),
			MaxWashTradePercentage:      v.GetFloat64("volume_verification.max_wash_trade_percentage"),
			MaxSelfTrades:               v.GetInt("volume_verification.suspicious_trade_patterns.max_self_trades"),
			MinTimeBetweenTradesSeconds: v.GetInt64("volume_verification.suspicious_trade_patterns.min_time_between_trades_seconds"),
			MaxRepetitiveAmounts:        v.GetInt("volume_verification.suspicious_trade_patterns.max_repetitive_amounts"),
		},
		Telegram: Telegram{
			BotToken: v.GetString("telegram.bot_token"),
			ChatID:   v.GetString("telegram.chat_id"),
			APIURL:   v.GetString("telegram.api_url"),
			BonkBot: BonkBot{
				APIKey:    v.GetString("telegram.bonkbot.api_key"),
				ChatID:    v.GetString("telegram.bonkbot.chat_id"),
				AutoTrade: v.GetBool("telegram.bonkbot.auto_trade"),
			},
		},
	}

	var err error
	bonk := &cfg.Telegram.BonkBot
	if bonk.TradeAmountUSD, err = getDecimal(v, "telegram.bonkbot.trade_amount_usd"); err != nil {
		return Config{}, err
	}
	if bonk.StopLossPct, err = getDecimal(v, "telegram.bonkbot.stop_loss_percentage"); err != nil {
		return Config{}, err
	}
	if bonk.TakeProfitPct, err = getDecimal(v, "telegram.bonkbot.take_profit_percentage"); err != nil {
		return Config{}, err
	}
	for _, name := range getStringSlice(v, "telegram.bonkbot.buy_categories") {
		category, err := model.ParseEventCategory(name)
		if err != nil {
			return Config{}, fmt.Errorf("telegram.bonkbot.buy_categories: %w", err)
		}
		bonk.BuyCategories = append(bonk.BuyCategories, category)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll-interval must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max-retries must not be negative")
	}
	bonk := c.Telegram.BonkBot
	if bonk.AutoTrade && !bonk.TradeAmountUSD.IsPositive() {
		return fmt.Errorf("telegram.bonkbot.trade_amount_usd must be positive")
	}
	if bonk.StopLossPct.IsNegative() || bonk.TakeProfitPct.IsNegative() {
		return fmt.Errorf("stop loss and take profit percentages must not be negative")
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

func readConfig(v *viper.Viper, cfgFile string, flags *pflag.FlagSet) error {
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func getDecimal(v *viper.Viper, key string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid number %q", key, raw)
	}
	return d, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
