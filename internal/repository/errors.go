// Package repository holds the MySQL data access used by the chart store.
package repository

import "errors"

// ErrEmptyStateKey is returned when a caller writes under an empty key.
var ErrEmptyStateKey = errors.New("empty chart state key")
