package store

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// MemoryBackend holds values in process memory. It is used when no
// durable backend is configured or reachable, and in tests.
type MemoryBackend struct {
	mu   sync.RWMutex
	vals map[string]string
}

func NewMemoryBackend() *MemoryBackend { return &MemoryBackend{vals: map[string]string{}} }

// NewMemory is a KVStore backed by process memory.
func NewMemory(keys Keys, log *zap.Logger) *KVStore {
	return NewKVStore(NewMemoryBackend(), keys, log)
}

func (b *MemoryBackend) Get(_ context.Context, keys []string) (map[string]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := b.vals[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (b *MemoryBackend) Set(_ context.Context, key, value string) error {
	b.mu.Lock()
	b.vals[key] = value
	b.mu.Unlock()
	return nil
}
