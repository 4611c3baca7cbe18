package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"riskScope/internal/model"
)

func sampleRecord(pair string) model.AnalysisRecord {
	return model.AnalysisRecord{
		Timestamp:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		ChainID:        "ethereum",
		PairAddress:    pair,
		TokenName:      "Pepe",
		CurrentPrice:   0.5,
		PriceChange24h: 5,
		Volume24h:      600000,
		LiquidityUSD:   2000000,
		EventType:      model.EventHighLiquidityVolume,
		RugcheckAnalysis: &model.RugVerdict{
			IsSafe:   true,
			Status:   "GOOD",
			Warnings: []string{},
		},
	}
}

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "analysis.jsonl")
	s := NewJsonlStorage(path)
	ctx := context.Background()

	if err := s.PutRecords(ctx, []model.AnalysisRecord{sampleRecord("0x1")}); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if err := s.PutRecords(ctx, []model.AnalysisRecord{sampleRecord("0x2"), sampleRecord("0x3")}); err != nil {
		t.Fatalf("second put: %v", err)
	}
	if err := s.PutRecords(ctx, nil); err != nil {
		t.Fatalf("empty put: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()

	var pairs []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var decoded map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		if decoded["event_type"] != "high_liquidity_volume" {
			t.Fatalf("event_type mismatch: %v", decoded["event_type"])
		}
		rug, ok := decoded["rugcheck_analysis"].(map[string]any)
		if !ok || rug["status"] != "GOOD" {
			t.Fatalf("rugcheck_analysis mismatch: %v", decoded["rugcheck_analysis"])
		}
		if _, ok := decoded["volume_analysis"]; ok {
			t.Fatalf("absent volume analysis should be omitted")
		}
		pairs = append(pairs, decoded["pair_address"].(string))
	}
	if strings.Join(pairs, ",") != "0x1,0x2,0x3" {
		t.Fatalf("unexpected records: %v", pairs)
	}
}

func TestJsonlStorageKeepsExistingLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.jsonl")
	existing := `{"pair_address":"0xold"}` + "\n"
	if err := os.WriteFile(path, []byte(existing), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := NewJsonlStorage(path).PutRecords(context.Background(), []model.AnalysisRecord{sampleRecord("0x1")}); err != nil {
		t.Fatalf("put: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 || lines[0] != `{"pair_address":"0xold"}` || !strings.Contains(lines[1], `"0x1"`) {
		t.Fatalf("unexpected file content: %q", data)
	}
}

type failingStorage struct{ calls int }

func (f *failingStorage) PutRecords(context.Context, []model.AnalysisRecord) error {
	f.calls++
	return errors.New("disk full")
}

type countingStorage struct{ records int }

func (c *countingStorage) PutRecords(_ context.Context, records []model.AnalysisRecord) error {
	c.records += len(records)
	return nil
}

func TestFanoutWritesAllSinks(t *testing.T) {
	failing := &failingStorage{}
	counting := &countingStorage{}
	fan := Fanout{failing, nil, counting}

	err := fan.PutRecords(context.Background(), []model.AnalysisRecord{sampleRecord("0x1")})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected joined error, got %v", err)
	}
	if failing.calls != 1 || counting.records != 1 {
		t.Fatalf("sinks not all written: failing=%d counting=%d", failing.calls, counting.records)
	}
}
