// Package ddl contains SQLite-specific helpers for generating DDL.
package ddl

import (
	"strings"

	gddl "dataflow/internal/ddl"
)

// MapType maps a column kind name into a SQLite column type.
//
// SQLite supports dynamic typing, so this mapping prefers canonical affinities:
//   - int, bool         -> INTEGER (bool as 0/1)
//   - float             -> REAL
//   - timestamp, date   -> TEXT (ISO-8601, written by the repository)
//   - others            -> TEXT
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "bool":
		return "INTEGER"
	case "float":
		return "REAL"
	default:
		return "TEXT"
	}
}

// Dialect renders CREATE TABLE IF NOT EXISTS with double-quoted identifiers.
// Dotted names such as "main.events" are quoted segment by segment.
var Dialect = gddl.Dialect{
	Name:       "sqlite ddl",
	MapType:    MapType,
	QuoteIdent: gddl.DoubleQuote,
	Create: func(fqn, columns string) string {
		return "CREATE TABLE IF NOT EXISTS " + fqn + " (\n  " + columns + "\n);"
	},
}
