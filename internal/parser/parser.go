// Package parser defines what a parser produces: the raw text grid of one
// extract, with the source line of every row kept for diagnostics.
package parser

import "io"

// Raw is one parsed extract before type inference.
type Raw struct {
	Source string
	Header []string
	Rows   [][]string
	// Lines holds the 1-based input line where each row starts.
	Lines []int
}

// Parser turns raw bytes into a Raw grid.
type Parser interface {
	Parse(r io.Reader, source string) (*Raw, error)
}
