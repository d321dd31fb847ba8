// Package ddl contains MSSQL-specific helpers for generating DDL.
//
// T-SQL has no CREATE TABLE IF NOT EXISTS, so the dialect wraps the
// statement in an IF OBJECT_ID(...) IS NULL guard and quotes identifiers
// with [brackets].
package ddl

import (
	"strings"

	gddl "dataflow/internal/ddl"
)

// MapType maps a column kind name into a SQL Server column type. Unknown or
// empty kinds fall back to NVARCHAR(MAX).
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int":
		return "BIGINT"
	case "float":
		return "FLOAT"
	case "bool":
		return "BIT"
	case "date":
		return "DATE"
	case "timestamp":
		return "DATETIMEOFFSET"
	default:
		return "NVARCHAR(MAX)"
	}
}

// QuoteIdent quotes a single identifier segment for SQL Server using
// bracket syntax, escaping any closing brackets.
//
//	name      -> [name]
//	weird]id  -> [weird]]id]
func QuoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

// Dialect renders the guarded T-SQL script:
//
//	IF OBJECT_ID(N'[schema].[table]', N'U') IS NULL
//	BEGIN
//	  CREATE TABLE [schema].[table] (
//	  [col1] TYPE,
//	  [col2] TYPE
//	  );
//	END;
var Dialect = gddl.Dialect{
	Name:       "mssql ddl",
	MapType:    MapType,
	QuoteIdent: QuoteIdent,
	Create: func(fqn, columns string) string {
		return "IF OBJECT_ID(N'" + strings.ReplaceAll(fqn, "'", "''") + "', N'U') IS NULL\nBEGIN\n  CREATE TABLE " +
			fqn + " (\n  " + columns + "\n  );\nEND;"
	},
}
