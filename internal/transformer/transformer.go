// Package transformer defines the table-in, table-out stage contract used by
// the cleaning and feature steps of the pipeline.
package transformer

import (
	"fmt"

	"dataflow/internal/table"
)

// Transformer turns one table into another. Implementations must not modify
// their input.
type Transformer interface {
	Apply(in table.Table) (table.Table, error)
}

// Func adapts a plain function to Transformer.
type Func func(table.Table) (table.Table, error)

func (f Func) Apply(in table.Table) (table.Table, error) { return f(in) }

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs every transformer in order and stops at the first error.
func (c Chain) Apply(in table.Table) (table.Table, error) {
	out := in
	for i, t := range c {
		var err error
		if out, err = t.Apply(out); err != nil {
			return table.Table{}, fmt.Errorf("transformer: step %d (%T): %w", i, t, err)
		}
	}
	return out, nil
}
