package ledger

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	opEq  = "eq"
	opAnd = "and"
	opOr  = "or"
)

// Selector is a boolean expression over exact field equality. The row store
// accepts arbitrary nesting of and/or over eq leaves.
type Selector struct {
	Op       string     `json:"op"`
	Field    string     `json:"field,omitempty"`
	Value    any        `json:"value,omitempty"`
	Operands []Selector `json:"operands,omitempty"`
}

func Eq(field string, value any) Selector {
	return Selector{Op: opEq, Field: field, Value: value}
}

func And(sels ...Selector) Selector {
	if len(sels) == 1 {
		return sels[0]
	}
	return Selector{Op: opAnd, Operands: sels}
}

func Or(sels ...Selector) Selector {
	if len(sels) == 1 {
		return sels[0]
	}
	return Selector{Op: opOr, Operands: sels}
}

// String renders a compact form for log context, not for the wire.
func (s Selector) String() string {
	switch s.Op {
	case opEq:
		return fmt.Sprintf("%s=%v", s.Field, s.Value)
	case opAnd, opOr:
		parts := make([]string, len(s.Operands))
		for i, op := range s.Operands {
			parts[i] = op.String()
		}
		return "(" + strings.Join(parts, " "+s.Op+" ") + ")"
	default:
		return "<empty>"
	}
}

// CacheKey is a stable identity for collapsing identical in-flight queries.
func (s Selector) CacheKey() string {
	b, err := json.Marshal(s)
	if err != nil {
		return s.String()
	}
	return string(b)
}
