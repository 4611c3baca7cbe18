package risk

import (
	"context"
	"math"

	"go.uber.org/zap"

	"riskScope/internal/model"
)

const (
	statusGood    = "GOOD"
	statusError   = "ERROR"
	statusUnknown = "UNKNOWN"

	dominantHolderPct    = 50.0
	clusteredHolderDelta = 1.0
	minCirculationRatio  = 0.10
)

// CheckRug queries the rug oracle for a token. Any oracle failure yields an
// unsafe ERROR verdict. When supply bundling is detected the deployer is
// blacklisted.
func (p *Pipeline) CheckRug(ctx context.Context, chainID, token string) model.RugVerdict {
	if p.rug == nil {
		return errorVerdict("rug oracle not configured")
	}

	contract, err := p.rug.ContractAnalysis(ctx, chainID, token)
	if err != nil {
		p.logger.Warn("rug oracle query failed", zap.String("token", token), zap.Error(err))
		return errorVerdict(err.Error())
	}
	supply, err := p.rug.SupplyAnalysis(ctx, chainID, token)
	if err != nil {
		p.logger.Warn("rug oracle supply query failed", zap.String("token", token), zap.Error(err))
		return errorVerdict(err.Error())
	}

	status := contract.Status
	if status == "" {
		status = statusUnknown
	}
	warnings := contract.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	verdict := model.RugVerdict{
		IsSafe:   status == statusGood,
		Status:   status,
		Warnings: warnings,
		Deployer: contract.Deployer,
		Supply:   supply,
	}
	verdict.IsSupplyBundled = IsSupplyBundled(supply)

	if verdict.IsSupplyBundled && verdict.Deployer != "" {
		p.blacklist.AddDeployer(verdict.Deployer)
	}
	return verdict
}

// IsSupplyBundled reports whether holdings look concentrated or coordinated:
// a dominant top holder, two top holders within one percentage point of each
// other, or less than 10% of supply circulating.
func IsSupplyBundled(supply *model.SupplyReport) bool {
	if supply == nil {
		return false
	}

	holders := supply.TopHolders
	if len(holders) > 0 && holders[0].Percentage > dominantHolderPct {
		return true
	}
	for i := 0; i < len(holders)-1; i++ {
		for j := i + 1; j < len(holders); j++ {
			if math.Abs(holders[i].Percentage-holders[j].Percentage) < clusteredHolderDelta {
				return true
			}
		}
	}

	if supply.TotalSupply > 0 && supply.CirculatingSupply/supply.TotalSupply < minCirculationRatio {
		return true
	}
	return false
}

func errorVerdict(msg string) model.RugVerdict {
	return model.RugVerdict{
		IsSafe:   false,
		Status:   statusError,
		Warnings: []string{msg},
	}
}
