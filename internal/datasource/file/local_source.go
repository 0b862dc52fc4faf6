// Package file implements a local filesystem-backed data source.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local opens one extract from the local disk.
type Local struct{ path string }

// NewLocal returns a Local bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the configured path. The watch mode subscribes to it.
func (l *Local) Path() string { return l.path }

// Name returns the base name of the file.
func (l *Local) Name() string { return filepath.Base(l.path) }

// Open opens the file for reading. A context that is already done short
// circuits without touching the filesystem. Errors keep os.ErrNotExist and
// friends reachable through errors.Is.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open extract %s: %w", l.path, err)
	}
	return f, nil
}
