// internal/storage/insight/postgres.go
package insight

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quantarc/alphabench/internal/core"
)

// PostgresStore persists insights in a Postgres table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS insights (
	id           TEXT PRIMARY KEY,
	symbol       TEXT NOT NULL,
	direction    SMALLINT NOT NULL,
	period_secs  BIGINT NOT NULL,
	magnitude    DOUBLE PRECISION NOT NULL,
	confidence   DOUBLE PRECISION NOT NULL,
	model        TEXT NOT NULL,
	generated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS insights_symbol_idx ON insights (symbol, generated_at);
CREATE INDEX IF NOT EXISTS insights_model_idx ON insights (model, generated_at);
`

// NewPostgresStore connects a pool and ensures the insights table exists.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create insights table: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}

// Save persists an insight.
func (p *PostgresStore) Save(ctx context.Context, in core.Insight) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO insights (id, symbol, direction, period_secs, magnitude, confidence, model, generated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO NOTHING`,
		in.ID, in.Symbol, int16(in.Direction), int64(in.Period.Seconds()),
		in.Magnitude, in.Confidence, in.Model, in.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("insert insight: %w", err)
	}
	return nil
}

// GetByID retrieves an insight by ID.
func (p *PostgresStore) GetByID(ctx context.Context, id string) (*core.Insight, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT id, symbol, direction, period_secs, magnitude, confidence, model, generated_at
		 FROM insights WHERE id = $1`, id)

	in, err := scanInsight(row)
	if err == pgx.ErrNoRows {
		return nil, core.ErrInsightNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query insight: %w", err)
	}
	return &in, nil
}

// List returns insights matching the filter, oldest first.
func (p *PostgresStore) List(ctx context.Context, filter ListFilter) ([]core.Insight, error) {
	where, args := buildWhere(filter)

	query := `SELECT id, symbol, direction, period_secs, magnitude, confidence, model, generated_at
	 FROM insights` + where + ` ORDER BY generated_at`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query insights: %w", err)
	}
	defer rows.Close()

	var result []core.Insight
	for rows.Next() {
		in, err := scanInsight(rows)
		if err != nil {
			return nil, fmt.Errorf("scan insight: %w", err)
		}
		result = append(result, in)
	}
	return result, rows.Err()
}

// Count returns the number of insights matching the filter.
func (p *PostgresStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := buildWhere(filter)

	var count int
	err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM insights`+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count insights: %w", err)
	}
	return count, nil
}

func buildWhere(filter ListFilter) (string, []any) {
	var clauses []string
	var args []any

	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.Symbol != "" {
		add("symbol = $%d", filter.Symbol)
	}
	if filter.Model != "" {
		add("model = $%d", filter.Model)
	}
	if filter.Direction != nil {
		add("direction = $%d", int16(*filter.Direction))
	}
	if !filter.From.IsZero() {
		add("generated_at >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		add("generated_at <= $%d", filter.To)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanInsight(row pgx.Row) (core.Insight, error) {
	var in core.Insight
	var direction int16
	var periodSecs int64
	var generatedAt time.Time

	err := row.Scan(&in.ID, &in.Symbol, &direction, &periodSecs,
		&in.Magnitude, &in.Confidence, &in.Model, &generatedAt)
	if err != nil {
		return core.Insight{}, err
	}

	in.Direction = core.Direction(direction)
	in.Period = time.Duration(periodSecs) * time.Second
	in.GeneratedAt = generatedAt
	return in, nil
}
