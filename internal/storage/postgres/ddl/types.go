// Package ddl contains Postgres-specific helpers for generating DDL.
package ddl

import (
	"strings"

	gddl "dataflow/internal/ddl"
)

// MapType maps a column kind name into a Postgres SQL type.
//
//	"int"       -> BIGINT
//	"float"     -> DOUBLE PRECISION
//	"bool"      -> BOOLEAN
//	"date"      -> DATE
//	"timestamp" -> TIMESTAMPTZ
//	everything else -> TEXT
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int":
		return "BIGINT"
	case "float":
		return "DOUBLE PRECISION"
	case "bool":
		return "BOOLEAN"
	case "date":
		return "DATE"
	case "timestamp":
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}

// Dialect renders CREATE TABLE IF NOT EXISTS with double-quoted, schema
// qualified identifiers ("public"."orders").
var Dialect = gddl.Dialect{
	Name:       "postgres ddl",
	MapType:    MapType,
	QuoteIdent: gddl.DoubleQuote,
	Create: func(fqn, columns string) string {
		return "CREATE TABLE IF NOT EXISTS " + fqn + " (\n  " + columns + "\n);"
	},
}
