// Package datasource opens the raw extracts. A Source yields the bytes of one
// extract; New picks the implementation named by the configuration.
package datasource

import (
	"context"
	"fmt"
	"io"

	"ispetl/internal/config"
	"ispetl/internal/datasource/file"
	"ispetl/internal/datasource/httpds"
)

// Source yields the raw bytes of one extract. Callers close the reader.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	// Name labels the source in logs and row origins.
	Name() string
}

// New builds the Source described by s.
func New(s config.Source) (Source, error) {
	switch s.Kind {
	case "", "file":
		if s.File.Path == "" {
			return nil, fmt.Errorf("file source: empty path")
		}
		return file.NewLocal(s.File.Path), nil
	case "http":
		if s.HTTP.URL == "" {
			return nil, fmt.Errorf("http source: empty url")
		}
		c := httpds.NewClient(httpds.Config{
			MaxRetries:         s.HTTP.MaxRetries,
			InsecureSkipVerify: s.HTTP.InsecureSkipVerify,
		})
		return httpds.NewSource(c, s.HTTP.URL), nil
	default:
		return nil, fmt.Errorf("unsupported source kind %q", s.Kind)
	}
}
