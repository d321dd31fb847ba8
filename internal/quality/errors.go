package quality

import (
	"fmt"
	"strconv"
	"strings"
)

// SchemaError reports required columns that are absent from a table.
type SchemaError struct {
	Table   string
	Missing []string
}

func (e *SchemaError) Error() string {
	label := e.Table
	if label == "" {
		label = "table"
	}
	return fmt.Sprintf("%s: missing required columns: %s", label, strings.Join(e.Missing, ", "))
}

// EmptyDatasetError reports a table with zero rows.
type EmptyDatasetError struct {
	Label string
}

func (e *EmptyDatasetError) Error() string {
	return e.Label + " is empty"
}

// KeyViolationError reports a key column that is not usable as a unique key.
// Nulls is set when nulls were disallowed and found; Duplicates counts every
// row taking part in a duplicate group.
type KeyViolationError struct {
	Key        string
	Nulls      int
	Duplicates int
}

func (e *KeyViolationError) Error() string {
	if e.Nulls > 0 {
		return fmt.Sprintf("%s contains %d null values", e.Key, e.Nulls)
	}
	return fmt.Sprintf("%s not unique; %d duplicate rows", e.Key, e.Duplicates)
}

// Bound names the side of a range that was violated.
type Bound string

const (
	BoundLower Bound = "below"
	BoundUpper Bound = "above"
)

// RangeError reports values outside an inclusive [lo, hi] range.
type RangeError struct {
	Label string
	Bound Bound
	Limit float64
	Count int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %s %s (%d values)", e.Label, e.Bound, strconv.FormatFloat(e.Limit, 'g', -1, 64), e.Count)
}
