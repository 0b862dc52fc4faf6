// Package storage contains the storage-agnostic loader contracts: the
// Repository every backend implements, a registry of backend factories keyed
// by storage kind, the batched copy helper, and the two-phase Load protocol.
package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"ispetl/internal/table"
)

// Repository is a destination store.
type Repository interface {
	// EnsureSchema creates schema if absent and commits before returning.
	// Calling it for an existing schema is a no-op.
	EnsureSchema(ctx context.Context, schema string) error

	// ReplaceTable drops schema.name if present, recreates it from t's
	// columns, and copies every row of t. Backends with transactional DDL do
	// all of it in one transaction. It returns the number of rows written.
	ReplaceTable(ctx context.Context, schema, name string, t *table.Table) (int64, error)

	// Close releases the connection. It is safe to call once.
	Close()
}

// Config selects and configures a backend.
type Config struct {
	Kind      string
	DSN       string
	BatchSize int
}

// Factory builds a Repository for one backend kind.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind. Registering the same kind
// again replaces the previous factory.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New builds the Repository registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s (registered: %s)", cfg.Kind, strings.Join(ListKinds(), ", "))
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
