package file

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalOpen(t *testing.T) {
	t.Parallel()

	type tc struct {
		name            string
		prepare         func(t *testing.T) string
		makeCtx         func(t *testing.T) context.Context
		wantErrIs       error
		wantErrContains string
		wantContent     string
	}

	canceled := func(t *testing.T) context.Context {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	background := func(t *testing.T) context.Context { return context.Background() }
	writeFile := func(payload string) func(t *testing.T) string {
		return func(t *testing.T) string {
			t.Helper()
			p := filepath.Join(t.TempDir(), "grupos_vulneraveis_1.csv")
			if err := os.WriteFile(p, []byte(payload), 0o644); err != nil {
				t.Fatalf("write test file: %v", err)
			}
			return p
		}
	}

	cases := []tc{
		{
			name:        "reads_content",
			prepare:     writeFile("data_fato;idade\n2022-03-15;45\n"),
			makeCtx:     background,
			wantContent: "data_fato;idade\n2022-03-15;45\n",
		},
		{
			name: "missing_file_wraps_not_exist",
			prepare: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.csv")
			},
			makeCtx:         background,
			wantErrIs:       os.ErrNotExist,
			wantErrContains: "open extract ",
		},
		{
			name:      "canceled_context_short_circuits",
			prepare:   writeFile("ignored"),
			makeCtx:   canceled,
			wantErrIs: context.Canceled,
		},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			l := NewLocal(c.prepare(t))
			rc, err := l.Open(c.makeCtx(t))
			if c.wantErrIs != nil || c.wantErrContains != "" {
				if err == nil {
					rc.Close()
					t.Fatalf("expected error, got nil")
				}
				if c.wantErrIs != nil && !errors.Is(err, c.wantErrIs) {
					t.Fatalf("errors.Is(%v, %v) = false", err, c.wantErrIs)
				}
				if c.wantErrContains != "" && !strings.Contains(err.Error(), c.wantErrContains) {
					t.Fatalf("error %q does not contain %q", err, c.wantErrContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer rc.Close()
			b, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if string(b) != c.wantContent {
				t.Fatalf("content = %q, want %q", b, c.wantContent)
			}
		})
	}
}

func TestLocalNamePath(t *testing.T) {
	t.Parallel()

	l := NewLocal("/data/isp/grupos_vulneraveis_2.csv")
	if l.Name() != "grupos_vulneraveis_2.csv" {
		t.Fatalf("Name() = %q", l.Name())
	}
	if l.Path() != "/data/isp/grupos_vulneraveis_2.csv" {
		t.Fatalf("Path() = %q", l.Path())
	}
}
