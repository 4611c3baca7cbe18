package risk

import (
	"context"
	"time"

	"go.uber.org/zap"

	"riskScope/internal/blacklist"
	"riskScope/internal/model"
	"riskScope/internal/washtrade"
)

// RugOracle serves contract and supply analysis for a token.
type RugOracle interface {
	ContractAnalysis(ctx context.Context, chainID, token string) (model.ContractReport, error)
	SupplyAnalysis(ctx context.Context, chainID, token string) (*model.SupplyReport, error)
}

// VolumeOracle serves a third-party real-volume estimate for a pair.
type VolumeOracle interface {
	PairAnalysis(ctx context.Context, pairAddress string) (model.VolumeReport, error)
}

// Config holds the filter thresholds.
type Config struct {
	MinLiquidityUSD        float64
	MinVolume24h           float64
	MinAgeHours            float64
	MaxTaxPercentage       float64
	MinRealVolumeRatio     float64
	MinUniqueTraders       int
	MaxWashTradePercentage float64
	Patterns               washtrade.Config
}

// Reason names the gate that decided a verdict.
type Reason string

const (
	ReasonPassed              Reason = "passed"
	ReasonTokenBlacklisted    Reason = "token_blacklisted"
	ReasonLowLiquidity        Reason = "low_liquidity"
	ReasonLowVolume           Reason = "low_volume"
	ReasonRugCheckFailed      Reason = "rugcheck_failed"
	ReasonSupplyBundled       Reason = "supply_bundled"
	ReasonDeployerBlacklisted Reason = "deployer_blacklisted"
	ReasonIllegitimateVolume  Reason = "illegitimate_volume"
	ReasonTooYoung            Reason = "too_young"
)

// Result is the verdict of one evaluation.
type Result struct {
	Passed bool
	Reason Reason
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the time source used by the age filter and the
// wash-trade analyzer.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// Pipeline runs the ordered risk gates over a snapshot.
type Pipeline struct {
	cfg       Config
	blacklist *blacklist.Set
	rug       RugOracle
	volume    VolumeOracle
	analyzer  *washtrade.Analyzer
	now       func() time.Time
	logger    *zap.Logger
}

// NewPipeline builds a Pipeline. volume may be nil when no volume oracle
// credential is configured.
func NewPipeline(cfg Config, bl *blacklist.Set, rug RugOracle, volume VolumeOracle, logger *zap.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bl == nil {
		bl = blacklist.New(nil, nil, nil, logger)
	}
	p := &Pipeline{
		cfg:       cfg,
		blacklist: bl,
		rug:       rug,
		volume:    volume,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.analyzer = washtrade.NewAnalyzer(cfg.Patterns, p.now)
	return p
}

// Evaluate runs the gates in order and stops at the first failure. Computed
// verdicts are attached to pair. Suspicious flags are attached to passing
// pairs and never affect the verdict.
func (p *Pipeline) Evaluate(ctx context.Context, pair *model.PairSnapshot) Result {
	if p.blacklist.IsTokenBlacklisted(pair.BaseToken.Address) || p.blacklist.IsTokenBlacklisted(pair.QuoteToken.Address) {
		return reject(ReasonTokenBlacklisted)
	}

	log := p.logger.With(zap.String("pair", pair.PairAddress))

	if pair.LiquidityUSD < p.cfg.MinLiquidityUSD {
		log.Info("pair rejected", zap.String("reason", string(ReasonLowLiquidity)), zap.Float64("liquidity_usd", pair.LiquidityUSD))
		return reject(ReasonLowLiquidity)
	}
	if pair.Volume24h() < p.cfg.MinVolume24h {
		log.Info("pair rejected", zap.String("reason", string(ReasonLowVolume)), zap.Float64("volume_24h", pair.Volume24h()))
		return reject(ReasonLowVolume)
	}

	rug := p.CheckRug(ctx, pair.ChainID, pair.BaseToken.Address)
	pair.RugCheck = &rug
	if !rug.IsSafe {
		log.Info("pair rejected", zap.String("reason", string(ReasonRugCheckFailed)), zap.String("status", rug.Status))
		return reject(ReasonRugCheckFailed)
	}
	if rug.IsSupplyBundled {
		log.Info("pair rejected", zap.String("reason", string(ReasonSupplyBundled)), zap.String("deployer", rug.Deployer))
		return reject(ReasonSupplyBundled)
	}
	if p.blacklist.IsDeployerBlacklisted(rug.Deployer) {
		log.Info("pair rejected", zap.String("reason", string(ReasonDeployerBlacklisted)), zap.String("deployer", rug.Deployer))
		return reject(ReasonDeployerBlacklisted)
	}

	volume := p.CheckVolume(ctx, *pair)
	if !volume.IsLegitimate {
		pair.VolumeAnalysis = &volume
		log.Info("pair rejected", zap.String("reason", string(ReasonIllegitimateVolume)), zap.Strings("flags", volume.Flags))
		return reject(ReasonIllegitimateVolume)
	}

	if pair.CreatedAt != nil {
		ageHours := p.now().Sub(*pair.CreatedAt).Hours()
		if ageHours < p.cfg.MinAgeHours {
			log.Info("pair rejected", zap.String("reason", string(ReasonTooYoung)), zap.Float64("age_hours", ageHours))
			return reject(ReasonTooYoung)
		}
	}

	if flags := DetectSuspicious(*pair, p.cfg.MaxTaxPercentage); len(flags) > 0 {
		pair.SuspiciousFlags = flags
	}
	return Result{Passed: true, Reason: ReasonPassed}
}

func reject(reason Reason) Result {
	return Result{Passed: false, Reason: reason}
}
