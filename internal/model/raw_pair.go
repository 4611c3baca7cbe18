package model

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"riskScope/internal/address"
)

// RawPair is the pair payload as returned by the market data gateway.
type RawPair struct {
	ChainID       string              `json:"chainId"`
	DexID         string              `json:"dexId"`
	PairAddress   string              `json:"pairAddress"`
	BaseToken     Token               `json:"baseToken"`
	QuoteToken    Token               `json:"quoteToken"`
	PriceUSD      string              `json:"priceUsd"`
	Liquidity     *RawLiquidity       `json:"liquidity"`
	Volume        map[string]float64  `json:"volume"`
	Txns          map[string]TxnCount `json:"txns"`
	PriceChange   map[string]float64  `json:"priceChange"`
	PairCreatedAt *int64              `json:"pairCreatedAt"`
	Labels        []string            `json:"labels"`
}

// RawLiquidity is the liquidity block of a raw pair.
type RawLiquidity struct {
	USD *float64 `json:"usd"`
}

// DecodePair unmarshals one pair payload and validates it. A payload that
// does not fit RawPair is reported as a *ShapeError.
func DecodePair(data []byte) (PairSnapshot, error) {
	var raw RawPair
	if err := json.Unmarshal(data, &raw); err != nil {
		var probe struct {
			PairAddress string `json:"pairAddress"`
		}
		_ = json.Unmarshal(data, &probe)
		return PairSnapshot{}, newShapeError(probe.PairAddress, "payload", err.Error())
	}
	return ParsePair(raw)
}

// ParsePair validates a raw pair and converts it into a PairSnapshot.
// Any violation is reported as a *ShapeError.
func ParsePair(raw RawPair) (PairSnapshot, error) {
	pairAddr := strings.TrimSpace(raw.PairAddress)
	if pairAddr == "" {
		return PairSnapshot{}, newShapeError(raw.PairAddress, "pairAddress", "missing")
	}
	shapeErr := func(field, reason string) error {
		return newShapeError(pairAddr, field, reason)
	}

	if strings.TrimSpace(raw.ChainID) == "" {
		return PairSnapshot{}, shapeErr("chainId", "missing")
	}
	if err := address.Validate(raw.ChainID, pairAddr); err != nil {
		return PairSnapshot{}, shapeErr("pairAddress", err.Error())
	}
	if err := address.Validate(raw.ChainID, raw.BaseToken.Address); err != nil {
		return PairSnapshot{}, shapeErr("baseToken.address", err.Error())
	}
	if err := address.Validate(raw.ChainID, raw.QuoteToken.Address); err != nil {
		return PairSnapshot{}, shapeErr("quoteToken.address", err.Error())
	}

	if raw.PriceUSD == "" {
		return PairSnapshot{}, shapeErr("priceUsd", "missing")
	}
	price, err := decimal.NewFromString(raw.PriceUSD)
	if err != nil {
		return PairSnapshot{}, shapeErr("priceUsd", "not a number: "+raw.PriceUSD)
	}
	if price.IsNegative() {
		return PairSnapshot{}, shapeErr("priceUsd", "negative")
	}

	if raw.Liquidity == nil || raw.Liquidity.USD == nil {
		return PairSnapshot{}, shapeErr("liquidity.usd", "missing")
	}
	if !nonNegativeFinite(*raw.Liquidity.USD) {
		return PairSnapshot{}, shapeErr("liquidity.usd", "must be a non-negative finite number")
	}

	volume := make(map[Window]float64, len(raw.Volume))
	for key, value := range raw.Volume {
		if !nonNegativeFinite(value) {
			return PairSnapshot{}, shapeErr("volume."+key, "must be a non-negative finite number")
		}
		volume[Window(key)] = value
	}
	if _, ok := volume[WindowH24]; !ok {
		return PairSnapshot{}, shapeErr("volume.h24", "missing")
	}

	txns := make(map[Window]TxnCount, len(raw.Txns))
	for key, count := range raw.Txns {
		if count.Buys < 0 || count.Sells < 0 {
			return PairSnapshot{}, shapeErr("txns."+key, "negative count")
		}
		txns[Window(key)] = count
	}

	priceChange := make(map[Window]float64, len(raw.PriceChange))
	for key, value := range raw.PriceChange {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return PairSnapshot{}, shapeErr("priceChange."+key, "not finite")
		}
		priceChange[Window(key)] = value
	}
	if _, ok := priceChange[WindowH24]; !ok {
		return PairSnapshot{}, shapeErr("priceChange.h24", "missing")
	}

	var createdAt *time.Time
	if raw.PairCreatedAt != nil {
		if *raw.PairCreatedAt < 0 {
			return PairSnapshot{}, shapeErr("pairCreatedAt", "negative")
		}
		ts := time.UnixMilli(*raw.PairCreatedAt).UTC()
		createdAt = &ts
	}

	return PairSnapshot{
		ChainID:      raw.ChainID,
		DexID:        raw.DexID,
		PairAddress:  pairAddr,
		BaseToken:    raw.BaseToken,
		QuoteToken:   raw.QuoteToken,
		PriceUSD:     price,
		LiquidityUSD: *raw.Liquidity.USD,
		Volume:       volume,
		Txns:         txns,
		PriceChange:  priceChange,
		CreatedAt:    createdAt,
		Labels:       raw.Labels,
	}, nil
}

func nonNegativeFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
