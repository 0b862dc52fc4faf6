// Package csv reads delimited extracts. Input is decoded to UTF-8 from the
// configured charset on the fly, headers are cleaned (BOM, whitespace, NFC),
// and rows are returned as text together with their input line numbers.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"ispetl/internal/config"
	"ispetl/internal/parser"
)

// Options configures the parser. Zero values: ';' delimiter, latin1.
type Options struct {
	// Comma is the field delimiter.
	Comma rune

	// Encoding names the input charset (see LookupEncoding).
	Encoding string

	// TrimSpace trims surrounding whitespace from every field.
	TrimSpace bool

	// LazyQuotes relaxes quote handling for hand-edited extracts.
	LazyQuotes bool
}

// OptionsFrom reads parser options from the pipeline config.
func OptionsFrom(o config.Options) Options {
	return Options{
		Comma:      o.Rune("comma", ';'),
		Encoding:   o.String("encoding", "latin1"),
		TrimSpace:  o.Bool("trim_space", false),
		LazyQuotes: o.Bool("lazy_quotes", false),
	}
}

// Parser parses CSV input according to Options. The header row is mandatory.
type Parser struct {
	opt Options
	enc encoding.Encoding
}

var _ parser.Parser = (*Parser)(nil)

// NewParser validates opt and returns a Parser.
func NewParser(opt Options) (*Parser, error) {
	if opt.Comma == 0 {
		opt.Comma = ';'
	}
	enc, err := LookupEncoding(opt.Encoding)
	if err != nil {
		return nil, err
	}
	return &Parser{opt: opt, enc: enc}, nil
}

// ErrNoHeader is returned for an input without a header row.
var ErrNoHeader = errors.New("csv: missing header row")

// Parse reads every record of r. Rows shorter than the header are padded
// with empty fields, which later read as missing. Rows longer than the header
// are an error.
func (p *Parser) Parse(r io.Reader, source string) (*parser.Raw, error) {
	cr := csv.NewReader(transform.NewReader(r, p.enc.NewDecoder()))
	cr.Comma = p.opt.Comma
	cr.LazyQuotes = p.opt.LazyQuotes
	cr.FieldsPerRecord = -1

	h, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", source, ErrNoHeader)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read csv header: %w", source, err)
	}

	raw := &parser.Raw{Source: source, Header: normalizeHeaders(h)}
	width := len(raw.Header)

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		line, _ := cr.FieldPos(0)

		if len(rec) > width {
			return nil, fmt.Errorf("%s:%d: expected %d fields, got %d", source, line, width, len(rec))
		}
		row := make([]string, width)
		for i, v := range rec {
			if p.opt.TrimSpace {
				v = strings.TrimSpace(v)
			}
			row[i] = v
		}
		raw.Rows = append(raw.Rows, row)
		raw.Lines = append(raw.Lines, line)
	}
	return raw, nil
}

func normalizeHeaders(h []string) []string {
	h = StripHeaderBOM(append([]string(nil), h...))
	for i, c := range h {
		h[i] = norm.NFC.String(strings.TrimSpace(c))
	}
	return h
}
