package report

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"go.uber.org/zap"

	"riskScope/internal/model"
)

// Source yields analysis records recorded strictly after a point in time.
type Source interface {
	RecordsSince(ctx context.Context, since time.Time) ([]model.AnalysisRecord, error)
}

// Report summarizes recent analyses.
type Report struct {
	Since                time.Time `json:"since"`
	TotalPairsAnalyzed   int       `json:"total_pairs_analyzed"`
	PotentialRugs        int       `json:"potential_rugs"`
	SignificantPumps     int       `json:"significant_pumps"`
	CEXListings          int       `json:"cex_listings"`
	HighActivityPairs    int       `json:"high_activity_pairs"`
	SuspiciousActivities int       `json:"suspicious_activities"`
	NormalTrading        int       `json:"normal_trading"`
	AveragePriceChange   *float64  `json:"average_price_change"`
}

// Summarize counts records newer than since by category. The average 24h
// change is nil when no record qualifies.
func Summarize(records []model.AnalysisRecord, since time.Time) Report {
	rep := Report{Since: since.UTC()}
	var sum float64
	for _, r := range records {
		if !r.Timestamp.After(since) {
			continue
		}
		rep.TotalPairsAnalyzed++
		sum += r.PriceChange24h
		switch r.EventType {
		case model.EventPotentialRug:
			rep.PotentialRugs++
		case model.EventSignificantPump:
			rep.SignificantPumps++
		case model.EventCEXListed:
			rep.CEXListings++
		case model.EventHighLiquidityVolume:
			rep.HighActivityPairs++
		case model.EventSuspiciousActivity:
			rep.SuspiciousActivities++
		case model.EventNormalTrading:
			rep.NormalTrading++
		}
	}
	if rep.TotalPairsAnalyzed > 0 {
		avg := sum / float64(rep.TotalPairsAnalyzed)
		rep.AveragePriceChange = &avg
	}
	return rep
}

// JSONLSource reads records from an analysis log written by
// storage.JsonlStorage.
type JSONLSource struct {
	Path   string
	Logger *zap.Logger
}

// RecordsSince loads the log and keeps records strictly after since. A missing
// file yields no records; malformed lines are skipped.
func (s JSONLSource) RecordsSince(_ context.Context, since time.Time) ([]model.AnalysisRecord, error) {
	records, err := LoadJSONL(s.Path, s.Logger)
	if err != nil {
		return nil, err
	}
	kept := records[:0]
	for _, r := range records {
		if r.Timestamp.After(since) {
			kept = append(kept, r)
		}
	}
	return kept, nil
}

// LoadJSONL reads every decodable record from path.
func LoadJSONL(path string, logger *zap.Logger) ([]model.AnalysisRecord, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open analysis log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var records []model.AnalysisRecord
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var record model.AnalysisRecord
		if err := json.Unmarshal(line, &record); err != nil {
			logger.Warn("decode analysis record", zap.Int("line", lineNo), zap.Error(err))
			continue
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan analysis log: %w", err)
	}
	return records, nil
}
