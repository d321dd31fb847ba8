package ddl

import (
	"context"
	"fmt"
	"strings"

	"dataflow/internal/table"
)

// Dialect captures what differs between SQL backends when creating a table.
type Dialect struct {
	// Name prefixes error messages, e.g. "postgres ddl".
	Name string
	// MapType maps a column kind name ("string", "float", "int", "bool",
	// "timestamp", "date") onto a SQL type.
	MapType func(kind string) string
	// QuoteIdent quotes one identifier segment.
	QuoteIdent func(id string) string
	// Create wraps the quoted table name and the rendered column list into a
	// statement that is a no-op when the table already exists.
	Create func(fqn, columns string) string
}

// QuoteFQN quotes every non-empty segment of a dotted name.
func (d Dialect) QuoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, d.QuoteIdent(p))
	}
	return strings.Join(out, ".")
}

// FromTable derives a table definition from the columns of t. All columns
// are nullable; the definition has to accept every later run of the same
// pipeline.
func (d Dialect) FromTable(fqn string, t table.Table) TableDef {
	cols := make([]ColumnDef, 0, t.NumCols())
	for _, c := range t.Columns() {
		cols = append(cols, ColumnDef{Name: c.Name(), SQLType: d.MapType(c.Kind().String()), Nullable: true})
	}
	return TableDef{FQN: fqn, Columns: cols}
}

// BuildCreateTableSQL renders the CREATE TABLE statement for t.
//
// Rules:
//   - t.FQN must be non-empty.
//   - Each column must have a non-empty Name and SQLType.
//   - A column is rendered as <quoted name> <SQLType> [NOT NULL].
func (d Dialect) BuildCreateTableSQL(t TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s: table FQN must not be empty", d.Name)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s: at least one column is required", d.Name)
	}

	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("%s: column with empty name in table %s", d.Name, fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("%s: column %s missing SQLType", d.Name, name)
		}

		var sb strings.Builder
		sb.WriteString(d.QuoteIdent(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		cols = append(cols, sb.String())
	}
	return d.Create(d.QuoteFQN(fqn), strings.Join(cols, ",\n  ")), nil
}

// Execer runs a single SQL statement.
type Execer interface {
	Exec(ctx context.Context, sql string) error
}

// EnsureTable creates the table for t if it does not exist yet.
func (d Dialect) EnsureTable(ctx context.Context, db Execer, fqn string, t table.Table) error {
	stmt, err := d.BuildCreateTableSQL(d.FromTable(fqn, t))
	if err != nil {
		return err
	}
	return db.Exec(ctx, stmt)
}

// DoubleQuote quotes an identifier ANSI style, escaping embedded quotes.
func DoubleQuote(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
