package model

import "time"

// AnalysisRecord is the append-only record written for every passing pair.
type AnalysisRecord struct {
	Timestamp        time.Time      `json:"timestamp"`
	ChainID          string         `json:"chain_id"`
	PairAddress      string         `json:"pair_address"`
	TokenName        string         `json:"token_name"`
	CurrentPrice     float64        `json:"current_price"`
	PriceChange24h   float64        `json:"price_change_24h"`
	Volume24h        float64        `json:"volume_24h"`
	LiquidityUSD     float64        `json:"liquidity_usd"`
	EventType        EventCategory  `json:"event_type"`
	SuspiciousFlags  []string       `json:"suspicious_flags,omitempty"`
	VolumeAnalysis   *VolumeVerdict `json:"volume_analysis,omitempty"`
	RugcheckAnalysis *RugVerdict    `json:"rugcheck_analysis,omitempty"`
}

// NewAnalysisRecord builds the record for a classified snapshot.
func NewAnalysisRecord(at time.Time, pair PairSnapshot, category EventCategory) AnalysisRecord {
	return AnalysisRecord{
		Timestamp:        at.UTC(),
		ChainID:          pair.ChainID,
		PairAddress:      pair.PairAddress,
		TokenName:        pair.BaseToken.Name,
		CurrentPrice:     pair.PriceUSD.InexactFloat64(),
		PriceChange24h:   pair.PriceChange24h(),
		Volume24h:        pair.Volume24h(),
		LiquidityUSD:     pair.LiquidityUSD,
		EventType:        category,
		SuspiciousFlags:  pair.SuspiciousFlags,
		VolumeAnalysis:   pair.VolumeAnalysis,
		RugcheckAnalysis: pair.RugCheck,
	}
}
