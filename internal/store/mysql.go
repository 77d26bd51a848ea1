package store

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/iliyamo/theater-seating/internal/repository"
)

// NewMySQL is a KVStore backed by the chart_state table. The repository
// satisfies Backend directly.
func NewMySQL(db *sql.DB, keys Keys, log *zap.Logger) *KVStore {
	return NewKVStore(repository.NewChartStateRepo(db), keys, log)
}
