// Package csv reads delimited text into an all-text table. Typing is left to
// the schema enforcer; values are kept as written except that the configured
// null tokens become nulls.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"dataflow/internal/table"
)

// DefaultNullTokens are the cell values read as null.
var DefaultNullTokens = []string{"", "NA", "N/A", "null", "None"}

// Options configures the CSV parser behavior. All fields are optional.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// NullTokens lists exact cell values read as null. When nil,
	// DefaultNullTokens is used.
	NullTokens []string

	// HeaderMap renames source headers (after BOM and space trimming).
	HeaderMap map[string]string
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct {
	opt   Options
	nulls map[string]struct{}
}

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser {
	tokens := opt.NullTokens
	if tokens == nil {
		tokens = DefaultNullTokens
	}
	nulls := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		nulls[t] = struct{}{}
	}
	return &Parser{opt: opt, nulls: nulls}
}

// Parse reads a header row and the body from r. Short rows are padded with
// nulls; rows wider than the header are an error.
func (p *Parser) Parse(r io.Reader) (table.Table, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	h, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return table.Table{}, errors.New("read csv header: no header row")
	}
	if err != nil {
		return table.Table{}, fmt.Errorf("read csv header: %w", err)
	}
	headers := normalizeHeaders(h, p.opt)

	cols := make([][]table.Opt[string], len(headers))
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return table.Table{}, fmt.Errorf("read csv: %w", err)
		}
		if len(row) > len(headers) {
			return table.Table{}, fmt.Errorf("read csv: line %d: expected %d fields, got %d", line, len(headers), len(row))
		}
		for i := range cols {
			var v table.Opt[string]
			if i < len(row) {
				if _, null := p.nulls[row[i]]; !null {
					v = table.Some(row[i])
				}
			}
			cols[i] = append(cols[i], v)
		}
	}

	series := make([]table.Column, len(headers))
	for i, name := range headers {
		series[i] = table.Strings(name, cols[i])
	}
	out, err := table.New(series...)
	if err != nil {
		return table.Table{}, fmt.Errorf("read csv: %w", err)
	}
	return out, nil
}

// normalizeHeaders strips a UTF-8 BOM and surrounding spaces from header
// cells and applies HeaderMap. Empty headers become "col_N".
func normalizeHeaders(h []string, opt Options) []string {
	res := StripHeaderBOM(append([]string(nil), h...))
	for i, col := range res {
		c := strings.TrimSpace(col)
		if m, ok := opt.HeaderMap[c]; ok {
			c = m
		}
		if c == "" {
			c = fmt.Sprintf("col_%d", i)
		}
		res[i] = c
	}
	return res
}
