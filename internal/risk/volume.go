package risk

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"riskScope/internal/model"
)

// CheckVolume decides whether a pair's volume looks real. A negative answer
// from the volume oracle is final; oracle errors fall back to the local
// trade-pattern analysis.
func (p *Pipeline) CheckVolume(ctx context.Context, pair model.PairSnapshot) model.VolumeVerdict {
	verdict := model.VolumeVerdict{
		IsLegitimate:    true,
		Flags:           []string{},
		RealVolumeRatio: 1.0,
		Source:          model.VolumeSourceLocal,
	}

	if p.volume != nil {
		report, err := p.volume.PairAnalysis(ctx, pair.PairAddress)
		if err != nil {
			p.logger.Warn("volume oracle query failed", zap.String("pair", pair.PairAddress), zap.Error(err))
		} else {
			verdict.IsLegitimate = report.RealVolumeRatio >= p.cfg.MinRealVolumeRatio
			verdict.RealVolumeRatio = report.RealVolumeRatio
			verdict.Source = model.VolumeSourcePocketUniverse
			if report.Flags != nil {
				verdict.Flags = append(verdict.Flags, report.Flags...)
			}
			if !verdict.IsLegitimate {
				return verdict
			}
		}
	}

	trades := p.analyzer.Analyze(pair)

	if trades.UniqueTraders < p.cfg.MinUniqueTraders {
		verdict.Flags = append(verdict.Flags, fmt.Sprintf("Low unique traders: %d", trades.UniqueTraders))
		verdict.IsLegitimate = false
	}

	washPct := trades.WashTradePercentage()
	if washPct > p.cfg.MaxWashTradePercentage {
		verdict.Flags = append(verdict.Flags, fmt.Sprintf("High wash trading: %.2f%%", washPct))
		verdict.IsLegitimate = false
	}

	if len(trades.SuspiciousTimingPatterns) > 0 {
		verdict.Flags = append(verdict.Flags, "Suspicious trade timing patterns detected")
		verdict.IsLegitimate = false
	}

	verdict.WashTradePercentage = washPct
	verdict.UniqueTraders = trades.UniqueTraders
	verdict.SuspiciousPatterns = trades.SuspiciousTimingPatterns
	return verdict
}
