package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "sources[1].file.path").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline performs static validation of a Pipeline (normally after
// ApplyDefaults). It does not touch the network or the filesystem.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it labels logs and metrics",
		})
	}
	issues = append(issues, validateSources(p.Sources)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateNormalize(p.Normalize)...)
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validateRuntime(p.Runtime, p.Sources)...)

	return issues
}

func validateSources(ss []Source) []Issue {
	var issues []Issue

	if len(ss) != 2 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "sources",
			Message:  fmt.Sprintf("exactly two sources are required, got %d", len(ss)),
		})
	}

	for i, s := range ss {
		base := fmt.Sprintf("sources[%d]", i)
		switch s.Kind {
		case "file":
			if strings.TrimSpace(s.File.Path) == "" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     base + ".file.path",
					Message:  "file source requires a non-empty path",
				})
			}
		case "http":
			u := strings.TrimSpace(s.HTTP.URL)
			if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     base + ".http.url",
					Message:  fmt.Sprintf("http source requires an http(s) URL, got %q", s.HTTP.URL),
				})
			}
			if s.HTTP.MaxRetries < 0 {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     base + ".http.max_retries",
					Message:  "max_retries must not be negative",
				})
			}
			if s.HTTP.InsecureSkipVerify {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     base + ".http.insecure_skip_verify",
					Message:  "TLS verification is disabled for this source",
				})
			}
		default:
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     base + ".kind",
				Message:  fmt.Sprintf("unsupported source kind %q (want file or http)", s.Kind),
			})
		}
	}

	return issues
}

func validateParser(p Parser) []Issue {
	var issues []Issue

	if p.Kind != "csv" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  fmt.Sprintf("unsupported parser kind %q (want csv)", p.Kind),
		})
		return issues
	}

	if c := p.Options.String("comma", ";"); len([]rune(c)) != 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.options.comma",
			Message:  fmt.Sprintf("comma must be a single character, got %q", c),
		})
	}
	if !p.Options.Bool("has_header", true) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.options.has_header",
			Message:  "extracts must carry a header row; columns are addressed by name",
		})
	}

	return issues
}

func validateNormalize(n Normalize) []Issue {
	var issues []Issue

	if n.TimeLayout != "" && n.TimeLayout != DefaultTimeLayout {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "normalize.time_layout",
			Message:  fmt.Sprintf("hora_com layout %q differs from the strict HH:MM:SS default", n.TimeLayout),
		})
	}
	if _, err := n.Location(); err != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "normalize.timezone",
			Message:  err.Error(),
		})
	}
	for i, l := range n.DateLayouts {
		if strings.TrimSpace(l) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("normalize.date_layouts[%d]", i),
				Message:  "date layout must not be empty",
			})
		}
	}

	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue

	known := map[string]struct{}{
		"postgres": {},
		"mysql":    {},
		"mssql":    {},
		"sqlite":   {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}

	db := s.DB
	if strings.TrimSpace(db.Schema) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.schema",
			Message:  "storage.db.schema must not be empty",
		})
	}
	if strings.TrimSpace(db.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.table",
			Message:  "storage.db.table must not be empty",
		})
	}
	if strings.Contains(db.Table, ".") {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.table",
			Message:  "storage.db.table must be unqualified; set storage.db.schema instead",
		})
	}
	if db.BatchSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.db.batch_size",
			Message:  fmt.Sprintf("batch_size=%d; a default will be used", db.BatchSize),
		})
	}

	return issues
}

func validateRuntime(r RuntimeConfig, sources []Source) []Issue {
	var issues []Issue

	if d, err := r.TimeoutDuration(); err != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.timeout",
			Message:  err.Error(),
		})
	} else if d < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.timeout",
			Message:  "timeout must not be negative",
		})
	} else if d > 0 && d < time.Second {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "runtime.timeout",
			Message:  fmt.Sprintf("timeout %s is unusually short", d),
		})
	}

	if r.Schedule != "" {
		if _, err := cron.ParseStandard(r.Schedule); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "runtime.schedule",
				Message:  fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	if r.Watch {
		files := 0
		for _, s := range sources {
			if s.Kind == "file" {
				files++
			}
		}
		if files == 0 {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "runtime.watch",
				Message:  "watch is enabled but no file sources are configured",
			})
		}
	}

	return issues
}
