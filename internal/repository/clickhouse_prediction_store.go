package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"LevelBias/internal/domain/models"
	"LevelBias/internal/domain/repository"
)

// CHPredictionStore implements PredictionStore for ClickHouse. One row per
// analysis call; the per-level breakdown goes in as a JSON string column.
type CHPredictionStore struct {
	db    *sql.DB
	table string
}

// NewCHPredictionStore creates ClickHouse prediction storage.
func NewCHPredictionStore(db *sql.DB, table string) repository.PredictionStore {
	return &CHPredictionStore{db: db, table: table}
}

func (s *CHPredictionStore) Init(ctx context.Context) error {
	q := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            ts DateTime64(3),
            instrument LowCardinality(String),
            timezone String,
            current_price Float64,
            data_points UInt32,
            bias LowCardinality(String),
            confidence Float64,
            bullish_weight Float64,
            bearish_weight Float64,
            available_levels UInt16,
            total_levels UInt16,
            levels String
        ) ENGINE = MergeTree()
        ORDER BY (instrument, ts)
        TTL toDateTime(ts) + INTERVAL 90 DAY
    `, s.table)
	_, err := s.db.ExecContext(ctx, q)
	return err
}

func (s *CHPredictionStore) Store(ctx context.Context, r *models.PredictionResult) error {
	levels, err := json.Marshal(r.Levels)
	if err != nil {
		return fmt.Errorf("marshal levels: %w", err)
	}
	q := fmt.Sprintf(`INSERT INTO %s
        (ts, instrument, timezone, current_price, data_points, bias, confidence,
         bullish_weight, bearish_weight, available_levels, total_levels, levels)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
	_, err = s.db.ExecContext(ctx, q,
		r.Metadata.Timestamp,
		r.Metadata.Instrument,
		r.Metadata.Timezone,
		r.Metadata.CurrentPrice,
		uint32(r.Metadata.DataPoints),
		string(r.Analysis.Bias),
		r.Analysis.Confidence,
		r.Analysis.BullishWeight,
		r.Analysis.BearishWeight,
		uint16(r.Weights.AvailableLevels),
		uint16(r.Weights.TotalLevels),
		string(levels),
	)
	return err
}

func (s *CHPredictionStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHPredictionStore) Close() error {
	return nil // Managed by pkg
}
