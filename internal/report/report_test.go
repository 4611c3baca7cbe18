package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"riskScope/internal/model"
)

var now = time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC)

func record(age time.Duration, category model.EventCategory, change float64) model.AnalysisRecord {
	return model.AnalysisRecord{
		Timestamp:      now.Add(-age),
		PairAddress:    "0xpair",
		EventType:      category,
		PriceChange24h: change,
	}
}

func TestSummarize(t *testing.T) {
	since := now.Add(-7 * 24 * time.Hour)
	records := []model.AnalysisRecord{
		record(time.Hour, model.EventPotentialRug, -95),
		record(2*time.Hour, model.EventSignificantPump, 150),
		record(3*time.Hour, model.EventHighLiquidityVolume, 5),
		record(4*time.Hour, model.EventHighLiquidityVolume, 0),
		record(5*time.Hour, model.EventCEXListed, 10),
		record(6*time.Hour, model.EventSuspiciousActivity, -10),
		record(7*time.Hour, model.EventNormalTrading, 2),
		record(8*24*time.Hour, model.EventPotentialRug, -99),
	}

	rep := Summarize(records, since)

	if rep.TotalPairsAnalyzed != 7 {
		t.Fatalf("expected 7 pairs, got %d", rep.TotalPairsAnalyzed)
	}
	if rep.PotentialRugs != 1 || rep.SignificantPumps != 1 || rep.HighActivityPairs != 2 ||
		rep.CEXListings != 1 || rep.SuspiciousActivities != 1 || rep.NormalTrading != 1 {
		t.Fatalf("unexpected counts: %+v", rep)
	}
	if rep.AveragePriceChange == nil || *rep.AveragePriceChange != 62.0/7 {
		t.Fatalf("unexpected average: %v", rep.AveragePriceChange)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	rep := Summarize(nil, now)
	if rep.TotalPairsAnalyzed != 0 || rep.AveragePriceChange != nil {
		t.Fatalf("unexpected report: %+v", rep)
	}
}

func TestLoadJSONLSkipsBadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.jsonl")
	content := `{"timestamp":"2024-05-07T00:00:00Z","pair_address":"0x1","event_type":"potential_rug","price_change_24h":-95}

not json
{"timestamp":"2024-04-01T00:00:00Z","pair_address":"0x2","event_type":"normal_trading","price_change_24h":1}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	records, err := LoadJSONL(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	recent, err := JSONLSource{Path: path}.RecordsSince(context.Background(), now.Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("records since: %v", err)
	}
	if len(recent) != 1 || recent[0].PairAddress != "0x1" {
		t.Fatalf("unexpected recent records: %+v", recent)
	}
}

func TestWindowBoundaryExcluded(t *testing.T) {
	since := now.Add(-7 * 24 * time.Hour)
	path := filepath.Join(t.TempDir(), "analysis.jsonl")
	content := `{"timestamp":"2024-05-01T00:00:00Z","pair_address":"0xedge","event_type":"potential_rug","price_change_24h":-95}
{"timestamp":"2024-05-01T00:00:01Z","pair_address":"0xin","event_type":"normal_trading","price_change_24h":1}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	recent, err := JSONLSource{Path: path}.RecordsSince(context.Background(), since)
	if err != nil {
		t.Fatalf("records since: %v", err)
	}
	if len(recent) != 1 || recent[0].PairAddress != "0xin" {
		t.Fatalf("unexpected records: %+v", recent)
	}

	all, err := LoadJSONL(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rep := Summarize(all, since); rep.TotalPairsAnalyzed != len(recent) {
		t.Fatalf("summary counted %d, source kept %d", rep.TotalPairsAnalyzed, len(recent))
	}
}

func TestLoadJSONLMissingFile(t *testing.T) {
	records, err := LoadJSONL(filepath.Join(t.TempDir(), "missing.jsonl"), nil)
	if err != nil || len(records) != 0 {
		t.Fatalf("expected empty result, got %v, %v", records, err)
	}
}
