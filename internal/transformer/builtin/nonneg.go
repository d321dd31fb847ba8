package builtin

import (
	"dataflow/internal/quality"
	"dataflow/internal/table"
)

// NonNegative fails with a *quality.RangeError when any non-null value of
// Columns is below zero. It passes its input through unchanged.
type NonNegative struct {
	Columns []string
}

func (n NonNegative) Apply(in table.Table) (table.Table, error) {
	for _, col := range n.Columns {
		if err := quality.AssertColumnInRange(in, col, quality.AtLeast(0)); err != nil {
			return table.Table{}, err
		}
	}
	return in, nil
}
