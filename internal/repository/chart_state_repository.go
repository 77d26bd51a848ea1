package repository // repository defines MySQL data access for chart state

import (
	"context"      // context allows query cancellation and timeouts
	"database/sql" // sql provides DB primitives
	"strings"      // strings builds the IN placeholder list
)

// chartStateSchema creates the key-value table holding serialized chart
// maps. Values are JSON documents and can exceed VARCHAR limits.
const chartStateSchema = `CREATE TABLE IF NOT EXISTS chart_state (
    state_key   VARCHAR(191) NOT NULL PRIMARY KEY,
    state_value LONGTEXT     NOT NULL,
    updated_at  TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// ChartStateRepo reads and writes rows of the chart_state table.
type ChartStateRepo struct {
	db *sql.DB
}

// NewChartStateRepo constructs a ChartStateRepo with the given DB handle.
func NewChartStateRepo(db *sql.DB) *ChartStateRepo {
	return &ChartStateRepo{db: db}
}

// EnsureSchema creates the chart_state table when it does not exist.
func (r *ChartStateRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, chartStateSchema)
	return err
}

// Get returns the stored values for keys. Keys without a row are absent
// from the result.
func (r *ChartStateRepo) Get(ctx context.Context, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	q := `SELECT state_key, state_value FROM chart_state WHERE state_key IN (?` +
		strings.Repeat(", ?", len(keys)-1) + `)`
	args := make([]interface{}, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Set upserts the value stored under key.
func (r *ChartStateRepo) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyStateKey
	}
	const q = `INSERT INTO chart_state (state_key, state_value) VALUES (?, ?)
	           ON DUPLICATE KEY UPDATE state_value = VALUES(state_value)`
	_, err := r.db.ExecContext(ctx, q, key, value)
	return err
}
