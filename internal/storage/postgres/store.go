package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"riskScope/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS analysis_records (
	id                BIGSERIAL PRIMARY KEY,
	recorded_at       TIMESTAMPTZ NOT NULL,
	chain_id          TEXT NOT NULL,
	pair_address      TEXT NOT NULL,
	token_name        TEXT NOT NULL,
	current_price     DOUBLE PRECISION NOT NULL,
	price_change_24h  DOUBLE PRECISION NOT NULL,
	volume_24h        DOUBLE PRECISION NOT NULL,
	liquidity_usd     DOUBLE PRECISION NOT NULL,
	event_type        TEXT NOT NULL,
	suspicious_flags  TEXT[],
	volume_analysis   JSONB,
	rugcheck_analysis JSONB
);
CREATE INDEX IF NOT EXISTS analysis_records_recorded_at_idx ON analysis_records (recorded_at);
CREATE INDEX IF NOT EXISTS analysis_records_pair_idx ON analysis_records (chain_id, pair_address);
`

// Store provides Postgres persistence for analysis records.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the analysis table and its indexes.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// PutRecords inserts a batch of analysis records.
func (s *Store) PutRecords(ctx context.Context, records []model.AnalysisRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range records {
		volume, err := marshalOptional(r.VolumeAnalysis)
		if err != nil {
			return err
		}
		rug, err := marshalOptional(r.RugcheckAnalysis)
		if err != nil {
			return err
		}
		batch.Queue(`
			INSERT INTO analysis_records (
				recorded_at, chain_id, pair_address, token_name, current_price, price_change_24h,
				volume_24h, liquidity_usd, event_type, suspicious_flags, volume_analysis, rugcheck_analysis
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		`,
			r.Timestamp,
			r.ChainID,
			r.PairAddress,
			r.TokenName,
			r.CurrentPrice,
			r.PriceChange24h,
			r.Volume24h,
			r.LiquidityUSD,
			string(r.EventType),
			r.SuspiciousFlags,
			volume,
			rug,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// RecordsSince returns records strictly after since, oldest first.
func (s *Store) RecordsSince(ctx context.Context, since time.Time) ([]model.AnalysisRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT recorded_at, chain_id, pair_address, token_name, current_price, price_change_24h,
			volume_24h, liquidity_usd, event_type, suspicious_flags, volume_analysis, rugcheck_analysis
		FROM analysis_records
		WHERE recorded_at > $1
		ORDER BY recorded_at, id
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.AnalysisRecord
	for rows.Next() {
		var (
			r         model.AnalysisRecord
			eventType string
			volume    []byte
			rug       []byte
		)
		if err := rows.Scan(
			&r.Timestamp,
			&r.ChainID,
			&r.PairAddress,
			&r.TokenName,
			&r.CurrentPrice,
			&r.PriceChange24h,
			&r.Volume24h,
			&r.LiquidityUSD,
			&eventType,
			&r.SuspiciousFlags,
			&volume,
			&rug,
		); err != nil {
			return nil, err
		}
		r.Timestamp = r.Timestamp.UTC()
		r.EventType = model.EventCategory(eventType)
		if len(volume) > 0 {
			r.VolumeAnalysis = &model.VolumeVerdict{}
			if err := json.Unmarshal(volume, r.VolumeAnalysis); err != nil {
				return nil, fmt.Errorf("decode volume analysis: %w", err)
			}
		}
		if len(rug) > 0 {
			r.RugcheckAnalysis = &model.RugVerdict{}
			if err := json.Unmarshal(rug, r.RugcheckAnalysis); err != nil {
				return nil, fmt.Errorf("decode rugcheck analysis: %w", err)
			}
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func marshalOptional[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal annotation: %w", err)
	}
	return data, nil
}
