package builtin

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"dataflow/internal/table"
)

// NormalizeText trims, case-folds and collapses internal whitespace of a text
// column. The result is written to Output (default "<Column>_clean"); the
// source column is kept. Nulls stay null.
type NormalizeText struct {
	Column string
	Output string
}

func (n NormalizeText) Apply(in table.Table) (table.Table, error) {
	src, err := table.Get[string](in, n.Column)
	if err != nil {
		return table.Table{}, fmt.Errorf("normalize: %w", err)
	}
	name := n.Output
	if name == "" {
		name = n.Column + "_clean"
	}
	fold := cases.Fold()
	out := table.Map(src, name, table.KindString, func(s string) table.Opt[string] {
		return table.Some(CollapseWhitespace(fold.String(strings.TrimSpace(s))))
	})
	return in.With(out)
}

// NormalizeString applies the NormalizeText rules to a single value.
func NormalizeString(s string) string {
	return CollapseWhitespace(cases.Fold().String(strings.TrimSpace(s)))
}

// CollapseWhitespace replaces runs of Unicode whitespace with a single ASCII
// space and trims both ends.
func CollapseWhitespace(s string) string {
	if s == "" {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	seenSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !seenSpace {
				b.WriteByte(' ')
				seenSpace = true
			}
			continue
		}
		b.WriteRune(r)
		seenSpace = false
	}
	return strings.TrimSpace(b.String())
}

// Mapping replaces values of a text column found in Values. Values not in the
// map and nulls are left as they are.
type Mapping struct {
	Column string
	Values map[string]string
}

func (m Mapping) Apply(in table.Table) (table.Table, error) {
	if len(m.Values) == 0 {
		return in, nil
	}
	src, err := table.Get[string](in, m.Column)
	if err != nil {
		return table.Table{}, fmt.Errorf("mapping: %w", err)
	}
	out := table.Map(src, m.Column, table.KindString, func(s string) table.Opt[string] {
		if v, ok := m.Values[s]; ok {
			return table.Some(v)
		}
		return table.Some(s)
	})
	return in.With(out)
}

// MissingSuffix is appended to a column name to form its missing-flag column.
const MissingSuffix = "__isna"

// MissingFlags adds, for every column in Columns, a non-null boolean column
// "<name>__isna" that is true exactly where the source is null.
type MissingFlags struct {
	Columns []string
}

func (m MissingFlags) Apply(in table.Table) (table.Table, error) {
	out := in
	for _, name := range m.Columns {
		c, ok := in.Column(name)
		if !ok {
			return table.Table{}, fmt.Errorf("missing flags: column %q not found", name)
		}
		flags := make([]bool, c.Len())
		for i := range flags {
			flags[i] = c.IsNull(i)
		}
		var err error
		if out, err = out.With(table.BoolsFrom(name+MissingSuffix, flags)); err != nil {
			return table.Table{}, err
		}
	}
	return out, nil
}
