package model

import (
	"encoding/json"
	"errors"
	"testing"
)

const samplePair = `{
  "chainId": "ethereum",
  "dexId": "uniswap",
  "pairAddress": "0xB4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc",
  "baseToken": {"address": "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", "name": "USD Coin", "symbol": "USDC"},
  "quoteToken": {"address": "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", "name": "Wrapped Ether", "symbol": "WETH"},
  "priceUsd": "1.0004",
  "liquidity": {"usd": 2500000.5, "base": 1, "quote": 2},
  "volume": {"m5": 100, "h1": 2000, "h6": 9000, "h24": 40000},
  "txns": {"m5": {"buys": 1, "sells": 2}, "h24": {"buys": 40, "sells": 35}},
  "priceChange": {"h1": -0.5, "h24": 1.25},
  "pairCreatedAt": 1589000000000,
  "labels": ["v2"]
}`

func decodeSample(t *testing.T) RawPair {
	t.Helper()
	var raw RawPair
	if err := json.Unmarshal([]byte(samplePair), &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	return raw
}

func TestParsePair(t *testing.T) {
	pair, err := ParsePair(decodeSample(t))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if pair.PriceUSD.String() != "1.0004" {
		t.Fatalf("price mismatch: %s", pair.PriceUSD)
	}
	if pair.LiquidityUSD != 2500000.5 {
		t.Fatalf("liquidity mismatch: %v", pair.LiquidityUSD)
	}
	if pair.Volume24h() != 40000 {
		t.Fatalf("volume mismatch: %v", pair.Volume24h())
	}
	if pair.Txns[WindowM5].Sells != 2 {
		t.Fatalf("txns mismatch: %+v", pair.Txns)
	}
	if _, ok := pair.Txns[WindowH6]; ok {
		t.Fatalf("absent window should stay absent")
	}
	if pair.PriceChange[WindowH1] != -0.5 {
		t.Fatalf("price change mismatch: %+v", pair.PriceChange)
	}
	if pair.CreatedAt == nil || pair.CreatedAt.UnixMilli() != 1589000000000 {
		t.Fatalf("created at mismatch: %v", pair.CreatedAt)
	}
	if !pair.HasLabel("v2") || pair.HasLabel("cex") {
		t.Fatalf("labels mismatch: %v", pair.Labels)
	}
}

func TestParsePairShapeErrors(t *testing.T) {
	cases := []struct {
		name  string
		field string
		edit  func(*RawPair)
	}{
		{"missing liquidity", "liquidity.usd", func(r *RawPair) { r.Liquidity = nil }},
		{"negative liquidity", "liquidity.usd", func(r *RawPair) { v := -1.0; r.Liquidity.USD = &v }},
		{"bad price", "priceUsd", func(r *RawPair) { r.PriceUSD = "abc" }},
		{"negative price", "priceUsd", func(r *RawPair) { r.PriceUSD = "-0.1" }},
		{"missing volume", "volume.h24", func(r *RawPair) { delete(r.Volume, "h24") }},
		{"negative volume", "volume.h1", func(r *RawPair) { r.Volume["h1"] = -5 }},
		{"negative txns", "txns.m5", func(r *RawPair) { r.Txns["m5"] = TxnCount{Buys: -1} }},
		{"missing price change", "priceChange.h24", func(r *RawPair) { delete(r.PriceChange, "h24") }},
		{"bad base token", "baseToken.address", func(r *RawPair) { r.BaseToken.Address = "0x12" }},
		{"missing pair", "pairAddress", func(r *RawPair) { r.PairAddress = "" }},
	}

	for _, tc := range cases {
		raw := decodeSample(t)
		tc.edit(&raw)
		_, err := ParsePair(raw)
		var shapeErr *ShapeError
		if !errors.As(err, &shapeErr) {
			t.Fatalf("%s: expected ShapeError, got %v", tc.name, err)
		}
		if shapeErr.Field != tc.field {
			t.Fatalf("%s: field mismatch: %s != %s", tc.name, shapeErr.Field, tc.field)
		}
	}
}

func TestParsePairNegativePriceChangeAllowed(t *testing.T) {
	raw := decodeSample(t)
	raw.PriceChange["h24"] = -95
	pair, err := ParsePair(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if pair.PriceChange24h() != -95 {
		t.Fatalf("price change mismatch: %v", pair.PriceChange24h())
	}
}

func TestDecodePairWrongType(t *testing.T) {
	payload := `{"pairAddress": "0xB4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc", "volume": {"h24": "lots"}}`
	_, err := DecodePair([]byte(payload))

	var shapeErr *ShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("expected ShapeError, got %v", err)
	}
	if shapeErr.Field != "payload" || shapeErr.PairAddress != "0xB4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc" {
		t.Fatalf("unexpected shape error: %+v", shapeErr)
	}
}

func TestDecodePair(t *testing.T) {
	pair, err := DecodePair([]byte(samplePair))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if pair.BaseToken.Symbol != "USDC" {
		t.Fatalf("base token mismatch: %+v", pair.BaseToken)
	}
}
