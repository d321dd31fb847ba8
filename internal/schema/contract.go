// Package schema holds the column contracts of the pipeline inputs: which
// columns must be present and the canonical kind each one is cast to.
package schema

import "dataflow/internal/table"

// Field is one input column. Kind is only meaningful when Typed is set;
// untyped fields keep whatever the reader produced.
type Field struct {
	Name     string
	Kind     table.Kind
	Typed    bool
	Required bool
}

type Contract struct {
	Name   string
	Fields []Field
}

// Required lists the names of required fields in declaration order.
func (c Contract) Required() []string {
	out := make([]string, 0, len(c.Fields))
	for _, f := range c.Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// Kinds returns the cast target of every typed field. Identifiers are typed
// as text so numeric ids read from parquet are brought back to strings.
func (c Contract) Kinds() map[string]table.Kind {
	out := make(map[string]table.Kind, len(c.Fields))
	for _, f := range c.Fields {
		if !f.Typed {
			continue
		}
		out[f.Name] = f.Kind
	}
	return out
}

func typed(name string, k table.Kind) Field {
	return Field{Name: name, Kind: k, Typed: true, Required: true}
}

// Orders is the contract of the orders input. created_at and status stay
// text here; the temporal expander and cleaner own them.
var Orders = Contract{
	Name: "orders",
	Fields: []Field{
		typed("order_id", table.KindString),
		typed("user_id", table.KindString),
		typed("amount", table.KindFloat),
		typed("quantity", table.KindInt),
		{Name: "created_at", Required: true},
		{Name: "status", Required: true},
	},
}

// Users is the contract of the users input.
var Users = Contract{
	Name: "users",
	Fields: []Field{
		typed("user_id", table.KindString),
		{Name: "country", Required: true},
		{Name: "signup_date", Required: true},
	},
}
