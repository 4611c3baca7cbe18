package scanner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"riskScope/internal/classify"
	"riskScope/internal/metrics"
	"riskScope/internal/model"
	"riskScope/internal/position"
	"riskScope/internal/risk"
	"riskScope/internal/storage"
)

// Gateway fetches raw pair payloads for a free-text query.
type Gateway interface {
	Search(ctx context.Context, query string) ([]json.RawMessage, error)
}

// Evaluator runs the risk gates over a snapshot, annotating it in place.
type Evaluator interface {
	Evaluate(ctx context.Context, pair *model.PairSnapshot) risk.Result
}

// Positions is the trading side of the scanner.
type Positions interface {
	Check(ctx context.Context, pair model.PairSnapshot) (position.Trigger, error)
	Open(ctx context.Context, pair model.PairSnapshot) (bool, error)
	Positions() []position.Position
}

// RunConfig holds runtime settings for the scanner.
type RunConfig struct {
	Queries       []string
	PollInterval  time.Duration
	Once          bool
	BuyCategories []model.EventCategory
}

// Outcome is what happened to one snapshot during a cycle.
type Outcome struct {
	Query    string
	Pair     model.PairSnapshot
	Result   risk.Result
	Category model.EventCategory
	Trigger  position.Trigger
	Bought   bool
}

// Runner is the single worker that fetches, evaluates, classifies, records
// and trades, one pair at a time.
type Runner struct {
	cfg       RunConfig
	gateway   Gateway
	pipeline  Evaluator
	positions Positions
	storage   storage.Storage
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewRunner builds a Runner. positions and storageSink may be nil to scan
// without trading or recording.
func NewRunner(cfg RunConfig, gateway Gateway, pipeline Evaluator, positions Positions, storageSink storage.Storage, m *metrics.Metrics, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:       cfg,
		gateway:   gateway,
		pipeline:  pipeline,
		positions: positions,
		storage:   storageSink,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// Run executes scan cycles until ctx is cancelled, or a single cycle when
// configured with Once.
func (r *Runner) Run(ctx context.Context) error {
	if r.gateway == nil {
		return fmt.Errorf("gateway is nil")
	}
	if r.pipeline == nil {
		return fmt.Errorf("pipeline is nil")
	}
	if len(r.cfg.Queries) == 0 {
		return fmt.Errorf("at least one pair query is required")
	}
	if !r.cfg.Once && r.cfg.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be greater than zero")
	}

	for {
		r.RunCycle(ctx)
		if r.cfg.Once {
			return nil
		}

		timer := time.NewTimer(r.cfg.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			r.logger.Info("scanner stopped")
			return nil
		case <-timer.C:
		}
	}
}

// RunCycle processes every query once. A pair returned by more than one
// query is processed only the first time.
func (r *Runner) RunCycle(ctx context.Context) []Outcome {
	start := r.now()
	seen := make(map[string]struct{})
	var outcomes []Outcome

	for _, query := range r.cfg.Queries {
		select {
		case <-ctx.Done():
			return outcomes
		default:
		}

		results, err := r.ProcessQuery(ctx, query, seen)
		if err != nil {
			r.logger.Warn("query failed", zap.String("query", query), zap.Error(err))
			continue
		}
		outcomes = append(outcomes, results...)
	}

	if r.positions != nil {
		r.metrics.SetOpenPositions(len(r.positions.Positions()))
	}
	elapsed := r.now().Sub(start)
	r.metrics.ObserveCycle(elapsed.Seconds())
	r.logger.Info("cycle complete", zap.Int("queries", len(r.cfg.Queries)), zap.Int("pairs", len(outcomes)), zap.Duration("elapsed", elapsed))
	return outcomes
}

// ProcessQuery fetches one query and processes each returned pair. Malformed
// pairs are logged and skipped. seen may be nil.
func (r *Runner) ProcessQuery(ctx context.Context, query string, seen map[string]struct{}) ([]Outcome, error) {
	raws, err := r.gateway.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	outcomes := make([]Outcome, 0, len(raws))
	records := make([]model.AnalysisRecord, 0, len(raws))
	for _, raw := range raws {
		r.metrics.PairScanned()
		pair, err := model.DecodePair(raw)
		if err != nil {
			var shapeErr *model.ShapeError
			if errors.As(err, &shapeErr) {
				r.metrics.ShapeError()
				r.logger.Warn("skipping malformed pair", zap.String("pair", shapeErr.PairAddress), zap.String("field", shapeErr.Field), zap.String("reason", shapeErr.Reason))
				continue
			}
			return outcomes, err
		}
		if seen != nil {
			key := pair.ChainID + ":" + strings.ToLower(pair.PairAddress)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
		}

		out := r.processPair(ctx, query, &pair)
		outcomes = append(outcomes, out)
		if out.Result.Passed {
			records = append(records, model.NewAnalysisRecord(r.now(), pair, out.Category))
		}
	}

	if r.storage != nil && len(records) > 0 {
		if err := r.storage.PutRecords(ctx, records); err != nil {
			r.logger.Warn("store analysis records failed", zap.Int("records", len(records)), zap.Error(err))
		}
	}
	return outcomes, nil
}

func (r *Runner) processPair(ctx context.Context, query string, pair *model.PairSnapshot) Outcome {
	out := Outcome{Query: query}

	if r.positions != nil {
		out.Trigger = r.checkPosition(ctx, *pair)
	}

	out.Result = r.pipeline.Evaluate(ctx, pair)
	r.metrics.Verdict(string(out.Result.Reason))
	if out.Result.Passed {
		out.Category = classify.Classify(*pair)
		r.metrics.Category(string(out.Category))
		r.logger.Info("pair passed",
			zap.String("pair", pair.PairAddress),
			zap.String("token", pair.BaseToken.Name),
			zap.String("category", string(out.Category)),
			zap.Strings("suspicious_flags", pair.SuspiciousFlags),
		)

		if r.positions != nil && out.Trigger == position.TriggerNone && r.shouldBuy(out.Category) {
			out.Bought = r.buy(ctx, *pair)
		}
	}

	out.Pair = *pair
	return out
}

func (r *Runner) checkPosition(ctx context.Context, pair model.PairSnapshot) position.Trigger {
	trigger, err := r.positions.Check(ctx, pair)
	if trigger == position.TriggerNone {
		return trigger
	}
	r.metrics.Trigger(string(trigger))
	switch {
	case err == nil:
		r.metrics.Trade(string(model.SideSell), "ok")
	case errors.Is(err, position.ErrAutoTradeDisabled):
	default:
		r.metrics.Trade(string(model.SideSell), "failed")
		r.logger.Warn("exit trade failed", zap.String("pair", pair.PairAddress), zap.String("trigger", string(trigger)), zap.Error(err))
	}
	return trigger
}

func (r *Runner) buy(ctx context.Context, pair model.PairSnapshot) bool {
	opened, err := r.positions.Open(ctx, pair)
	switch {
	case errors.Is(err, position.ErrAutoTradeDisabled):
		return false
	case err != nil:
		r.metrics.Trade(string(model.SideBuy), "failed")
		r.logger.Warn("buy failed", zap.String("pair", pair.PairAddress), zap.Error(err))
		return false
	case opened:
		r.metrics.Trade(string(model.SideBuy), "ok")
	}
	return opened
}

func (r *Runner) shouldBuy(category model.EventCategory) bool {
	for _, c := range r.cfg.BuyCategories {
		if c == category {
			return true
		}
	}
	return false
}
