package risk

import (
	"fmt"
	"math"
	"strconv"

	"riskScope/internal/model"
)

// DetectSuspicious returns advisory flags for a snapshot.
func DetectSuspicious(pair model.PairSnapshot, maxTaxPercentage float64) []string {
	var flags []string

	impact := math.Abs(pair.PriceChange[model.WindowH1])
	if impact > maxTaxPercentage {
		flags = append(flags, fmt.Sprintf("High price impact: %s%%", strconv.FormatFloat(impact, 'f', -1, 64)))
	}

	if day, ok := pair.Txns[model.WindowH24]; ok && day.Sells == 0 && day.Buys > 0 {
		flags = append(flags, "Possible honeypot: no sell transactions")
	}

	return flags
}
