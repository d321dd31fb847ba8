// Package ddl defines a small, backend-agnostic model for SQL DDL: a table
// definition inferred from a table.Table and a Dialect that renders it as a
// CREATE TABLE statement. Backend packages (internal/storage/<kind>/ddl)
// provide the type mapping, identifier quoting and the statement guard.
package ddl

// ColumnDef describes a single column in a table definition.
//
// Fields:
//   - Name: logical column name (unquoted; quoting happens at render time)
//   - SQLType: target SQL type (e.g., TEXT, BIGINT, TIMESTAMPTZ)
//   - Nullable: whether NULL is allowed
type ColumnDef struct {
	Name     string
	SQLType  string
	Nullable bool
}

// TableDef holds the fully-qualified table name (FQN) and an ordered list of
// columns. The FQN is expected in dotted form (e.g., "schema.table") and will
// be quoted by renderers segment by segment.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}
