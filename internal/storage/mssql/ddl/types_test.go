package ddl

import (
	"testing"

	"dataflow/internal/table"
)

// TestMapType verifies that MapType maps every column kind into the expected
// SQL Server type and falls back to NVARCHAR(MAX).
func TestMapType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind string
		want string
	}{
		{kind: "int", want: "BIGINT"},
		{kind: "float", want: "FLOAT"},
		{kind: "BOOL", want: "BIT"},
		{kind: "date", want: "DATE"},
		{kind: "timestamp", want: "DATETIMEOFFSET"},
		{kind: "string", want: "NVARCHAR(MAX)"},
		{kind: "", want: "NVARCHAR(MAX)"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.kind, func(t *testing.T) {
			t.Parallel()

			if got := MapType(tt.kind); got != tt.want {
				t.Fatalf("MapType(%q) = %q, want %q", tt.kind, got, tt.want)
			}
		})
	}
}

func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	if got := QuoteIdent("weird]id"); got != "[weird]]id]" {
		t.Fatalf("QuoteIdent = %q, want [weird]]id]", got)
	}
	if got := Dialect.QuoteFQN("dbo.orders"); got != "[dbo].[orders]" {
		t.Fatalf("QuoteFQN = %q, want [dbo].[orders]", got)
	}
}

func TestDialect_GuardedCreate(t *testing.T) {
	t.Parallel()

	tbl := table.MustNew(table.Strings("user_id", nil), table.Bools("amount__isna", nil))
	got, err := Dialect.BuildCreateTableSQL(Dialect.FromTable("dbo.orders", tbl))
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}
	want := "IF OBJECT_ID(N'[dbo].[orders]', N'U') IS NULL\nBEGIN\n  CREATE TABLE [dbo].[orders] (\n  [user_id] NVARCHAR(MAX),\n  [amount__isna] BIT\n  );\nEND;"
	if got != want {
		t.Fatalf("SQL =\n%s\nwant\n%s", got, want)
	}
}
