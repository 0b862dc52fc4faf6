// Package config defines the JSON/YAML-serializable configuration model for
// the ispetl pipeline: where the two extracts come from, how they are parsed,
// how the merged table is normalized, and where it is loaded.
//
// Example (JSON):
//
//	{
//	  "job": "grupos_vulneraveis",
//	  "sources": [
//	    { "kind": "file", "file": { "path": "data/grupos_vulneraveis_1.csv" } },
//	    { "kind": "http", "http": { "url": "https://example.org/grupos_vulneraveis_2.csv" } }
//	  ],
//	  "parser":    { "kind": "csv", "options": { "comma": ";", "encoding": "latin1" } },
//	  "normalize": { "timezone": "America/Sao_Paulo" },
//	  "storage":   { "kind": "postgres", "db": { "schema": "grupos_vulneraveis", "table": "todos" } }
//	}
//
// Files ending in .yaml or .yml are decoded as YAML with the same field names.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata" // Location must resolve on hosts without zoneinfo

	"gopkg.in/yaml.v3"
)

// Defaults applied by (*Pipeline).ApplyDefaults.
const (
	DefaultJob        = "grupos_vulneraveis"
	DefaultSchema     = "grupos_vulneraveis"
	DefaultTable      = "todos"
	DefaultStorage    = "postgres"
	DefaultParser     = "csv"
	DefaultSentinel   = "Não informado"
	DefaultTimeLayout = "15:04:05"
	DefaultTimezone   = "America/Sao_Paulo"
	DefaultBatchSize  = 5000
)

// DefaultDateLayouts are tried in order when parsing data_fato / data_com.
// ISO forms come first; the Brazilian day-first forms follow.
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"02/01/2006",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2/1/2006",
}

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Job names the run in logs and metrics.
	Job string `json:"job" yaml:"job"`

	// Sources lists the extracts, in concatenation order.
	Sources []Source `json:"sources" yaml:"sources"`

	// Parser configures how raw bytes are turned into rows.
	Parser Parser `json:"parser" yaml:"parser"`

	// Normalize tunes the normalizer (layouts, sentinel, time zone).
	Normalize Normalize `json:"normalize" yaml:"normalize"`

	// Storage describes the destination.
	Storage Storage       `json:"storage" yaml:"storage"`
	Runtime RuntimeConfig `json:"runtime" yaml:"runtime"`
}

// Source identifies one extract.
type Source struct {
	// Kind selects the source implementation: "file" or "http".
	Kind string `json:"kind" yaml:"kind"`

	File SourceFile `json:"file" yaml:"file"`
	HTTP SourceHTTP `json:"http" yaml:"http"`
}

// Name returns a short human-readable label for logs and row origins.
func (s Source) Name() string {
	switch s.Kind {
	case "http":
		return s.HTTP.URL
	default:
		return filepath.Base(s.File.Path)
	}
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	Path string `json:"path" yaml:"path"`
}

// SourceHTTP holds configuration for the "http" source kind.
type SourceHTTP struct {
	URL                string `json:"url" yaml:"url"`
	MaxRetries         int    `json:"max_retries" yaml:"max_retries"`
	InsecureSkipVerify bool   `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
}

// Parser selects how to parse the raw source into rows.
type Parser struct {
	// Kind selects the parser implementation. Current value: "csv".
	Kind string `json:"kind" yaml:"kind"`

	// Options is interpreted by the parser. For CSV:
	//   comma (string), encoding (string), has_header (bool),
	//   trim_space (bool), na_values ([]string)
	Options Options `json:"options" yaml:"options"`
}

// Normalize configures the normalizer.
type Normalize struct {
	DateLayouts []string `json:"date_layouts" yaml:"date_layouts"`
	TimeLayout  string   `json:"time_layout" yaml:"time_layout"`
	Sentinel    string   `json:"sentinel" yaml:"sentinel"`
	Timezone    string   `json:"timezone" yaml:"timezone"`
}

// Location resolves Timezone. An empty value means DefaultTimezone.
func (n Normalize) Location() (*time.Location, error) {
	name := n.Timezone
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("normalize.timezone %q: %w", name, err)
	}
	return loc, nil
}

// Storage selects the destination backend.
type Storage struct {
	// Kind selects the backend: "postgres", "mssql", "mysql" or "sqlite".
	Kind string   `json:"kind" yaml:"kind"`
	DB   DBConfig `json:"db" yaml:"db"`
}

// DBConfig configures the destination.
type DBConfig struct {
	// DSN overrides the connection string built from credentials. Leave
	// empty to build it from the ISPETL_DB_* environment.
	DSN string `json:"dsn" yaml:"dsn"`

	// Schema is the destination schema, created if absent.
	Schema string `json:"schema" yaml:"schema"`

	// Table is the destination table inside Schema, replaced on every run.
	Table string `json:"table" yaml:"table"`

	// BatchSize is the number of rows per bulk-copy batch.
	BatchSize int `json:"batch_size" yaml:"batch_size"`
}

// RuntimeConfig controls how the runner drives the pipeline.
type RuntimeConfig struct {
	// Timeout bounds a single run (Go duration, e.g. "15m"). Empty = none.
	Timeout string `json:"timeout" yaml:"timeout"`

	// Schedule is a cron expression; when set the runner keeps running and
	// triggers a run on every tick.
	Schedule string `json:"schedule" yaml:"schedule"`

	// Watch re-runs the pipeline whenever a file source changes.
	Watch bool `json:"watch" yaml:"watch"`
}

// TimeoutDuration parses Timeout. An empty Timeout yields zero.
func (r RuntimeConfig) TimeoutDuration() (time.Duration, error) {
	if strings.TrimSpace(r.Timeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(r.Timeout)
	if err != nil {
		return 0, fmt.Errorf("runtime.timeout: %w", err)
	}
	return d, nil
}

// ApplyDefaults fills unset fields with the production defaults.
func (p *Pipeline) ApplyDefaults() {
	if p.Job == "" {
		p.Job = DefaultJob
	}
	for i := range p.Sources {
		if p.Sources[i].Kind == "" {
			p.Sources[i].Kind = "file"
		}
	}
	if p.Parser.Kind == "" {
		p.Parser.Kind = DefaultParser
	}
	if p.Parser.Options == nil {
		p.Parser.Options = Options{}
	}
	if len(p.Normalize.DateLayouts) == 0 {
		p.Normalize.DateLayouts = append([]string(nil), DefaultDateLayouts...)
	}
	if p.Normalize.TimeLayout == "" {
		p.Normalize.TimeLayout = DefaultTimeLayout
	}
	if p.Normalize.Sentinel == "" {
		p.Normalize.Sentinel = DefaultSentinel
	}
	if p.Storage.Kind == "" {
		p.Storage.Kind = DefaultStorage
	}
	if p.Storage.DB.Schema == "" {
		p.Storage.DB.Schema = DefaultSchema
	}
	if p.Storage.DB.Table == "" {
		p.Storage.DB.Table = DefaultTable
	}
	if p.Storage.DB.BatchSize <= 0 {
		p.Storage.DB.BatchSize = DefaultBatchSize
	}
}

// Load reads a pipeline file (JSON, or YAML by extension) and applies
// defaults.
func Load(path string) (Pipeline, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("read config: %w", err)
	}
	p, err := Decode(b, filepath.Ext(path))
	if err != nil {
		return Pipeline{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return p, nil
}

// Decode decodes a pipeline document. ext selects the format (".yaml" and
// ".yml" mean YAML; anything else is JSON).
func Decode(b []byte, ext string) (Pipeline, error) {
	var p Pipeline
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &p); err != nil {
			return Pipeline{}, err
		}
	default:
		if err := json.Unmarshal(b, &p); err != nil {
			return Pipeline{}, err
		}
	}
	p.ApplyDefaults()
	return p, nil
}
