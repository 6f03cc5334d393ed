package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"GoldCast/internal/domain/models"
	domrepo "GoldCast/internal/domain/repository"
	pkgch "GoldCast/pkg/clickhouse"
	applogger "GoldCast/pkg/logger"
)

// PredictionSchema returns the idempotent DDL for the predictions table.
func PredictionSchema(database, table string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
            id String,
            ts DateTime64(3),
            source LowCardinality(String),
            candle_pattern LowCardinality(String),
            trigram LowCardinality(String),
            label UInt8,
            model String,
            rows_in UInt32,
            rows_out UInt32,
            features String
        ) ENGINE = MergeTree
        ORDER BY (candle_pattern, ts)`, database, table),
	}
}

// CHPredictionStore persists served predictions in ClickHouse.
type CHPredictionStore struct {
	client *pkgch.Client
	db     *sql.DB
	schema []string
	table  string
	l      *applogger.Logger
}

func NewCHPredictionStore(client *pkgch.Client, database, table string) *CHPredictionStore {
	return &CHPredictionStore{
		client: client,
		db:     client.DB(),
		schema: PredictionSchema(database, table),
		table:  database + "." + table,
		l:      applogger.Nop(),
	}
}

// SetLogger injects a structured logger.
func (s *CHPredictionStore) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

func (s *CHPredictionStore) Init(ctx context.Context) error {
	return s.client.InitSchema(ctx, s.schema)
}

func (s *CHPredictionStore) Save(ctx context.Context, p *models.Prediction) error {
	if p == nil {
		return nil
	}
	args, err := predictionArgs(p)
	if err != nil {
		return err
	}
	q := fmt.Sprintf("INSERT INTO %s (id, ts, source, candle_pattern, trigram, label, model, rows_in, rows_out, features) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", s.table)
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		s.l.Error("clickhouse save prediction error",
			applogger.String("table", s.table),
			applogger.String("candle_pattern", p.CandlePattern),
			applogger.Error(err),
		)
		return fmt.Errorf("save prediction: %w", err)
	}
	return nil
}

func (s *CHPredictionStore) Recent(ctx context.Context, limit int) ([]*models.Prediction, error) {
	q := fmt.Sprintf("SELECT id, ts, source, candle_pattern, trigram, label, model, rows_in, rows_out, features FROM %s ORDER BY ts DESC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("recent predictions: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Prediction, 0, limit)
	for rows.Next() {
		var (
			r        predictionRow
			features string
		)
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Source, &r.CandlePattern, &r.Trigram, &r.Label, &r.Model, &r.RowsIn, &r.RowsOut, &features); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		p, err := r.prediction(features)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *CHPredictionStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

// Close is a no-op; the connection pool is owned by the clickhouse client.
func (s *CHPredictionStore) Close() error { return nil }

type predictionRow struct {
	ID            string
	Timestamp     time.Time
	Source        string
	CandlePattern string
	Trigram       string
	Label         uint8
	Model         string
	RowsIn        uint32
	RowsOut       uint32
}

func predictionArgs(p *models.Prediction) ([]any, error) {
	features, err := json.Marshal(p.Features)
	if err != nil {
		return nil, fmt.Errorf("encode features: %w", err)
	}
	return []any{
		p.ID,
		p.Timestamp.UTC(),
		p.Source,
		p.CandlePattern,
		p.Trigram,
		uint8(p.Label),
		p.Model,
		uint32(p.RowsIn),
		uint32(p.RowsOut),
		string(features),
	}, nil
}

func (r predictionRow) prediction(features string) (*models.Prediction, error) {
	p := &models.Prediction{
		ID:             r.ID,
		Timestamp:      r.Timestamp,
		Source:         r.Source,
		CandlePattern:  r.CandlePattern,
		Trigram:        r.Trigram,
		Label:          int(r.Label),
		Interpretation: models.Interpret(int(r.Label)),
		Model:          r.Model,
		RowsIn:         int(r.RowsIn),
		RowsOut:        int(r.RowsOut),
	}
	if features != "" {
		if err := json.Unmarshal([]byte(features), &p.Features); err != nil {
			return nil, fmt.Errorf("decode features: %w", err)
		}
	}
	return p, nil
}

// MemoryPredictionStore keeps the most recent predictions in process. It backs
// the history endpoint when ClickHouse is disabled.
type MemoryPredictionStore struct {
	mu   sync.Mutex
	max  int
	list []*models.Prediction
}

func NewMemoryPredictionStore(max int) *MemoryPredictionStore {
	if max <= 0 {
		max = 1000
	}
	return &MemoryPredictionStore{max: max}
}

func (s *MemoryPredictionStore) Init(context.Context) error { return nil }

func (s *MemoryPredictionStore) Save(_ context.Context, p *models.Prediction) error {
	if p == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = append(s.list, p)
	if len(s.list) > s.max {
		s.list = append(s.list[:0:0], s.list[len(s.list)-s.max:]...)
	}
	return nil
}

// Recent returns up to limit predictions, newest first.
func (s *MemoryPredictionStore) Recent(_ context.Context, limit int) ([]*models.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > len(s.list) {
		limit = len(s.list)
	}
	out := make([]*models.Prediction, 0, limit)
	for i := len(s.list) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.list[i])
	}
	return out, nil
}

func (s *MemoryPredictionStore) Health(context.Context) error { return nil }
func (s *MemoryPredictionStore) Close() error                 { return nil }

var (
	_ domrepo.PredictionStore = (*CHPredictionStore)(nil)
	_ domrepo.PredictionStore = (*MemoryPredictionStore)(nil)
)
