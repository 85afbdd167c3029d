package filter

import "fmt"

// Operator is a comparison operator supported in filter conditions.
type Operator int

const (
	// OpEqual matches values equal to the literal.
	OpEqual Operator = iota
	// OpNotEqual matches values different from the literal.
	OpNotEqual
	// OpGreater matches values greater than the literal.
	OpGreater
	// OpGreaterOrEqual matches values greater than or equal to the literal.
	OpGreaterOrEqual
	// OpLess matches values less than the literal.
	OpLess
	// OpLessOrEqual matches values less than or equal to the literal.
	OpLessOrEqual
)

func (o Operator) String() string {
	switch o {
	case OpEqual:
		return "="
	case OpNotEqual:
		return "!="
	case OpGreater:
		return ">"
	case OpGreaterOrEqual:
		return ">="
	case OpLess:
		return "<"
	case OpLessOrEqual:
		return "<="
	default:
		return "?"
	}
}

// ParseOperator converts an operator token to an Operator.
func ParseOperator(s string) (Operator, error) {
	switch s {
	case "=":
		return OpEqual, nil
	case "!=":
		return OpNotEqual, nil
	case ">":
		return OpGreater, nil
	case ">=":
		return OpGreaterOrEqual, nil
	case "<":
		return OpLess, nil
	case "<=":
		return OpLessOrEqual, nil
	default:
		return OpEqual, fmt.Errorf("unsupported operator: %q", s)
	}
}

// Holds reports whether a comparison result (-1, 0 or 1, as returned by
// cmp.Compare) satisfies the operator.
func (o Operator) Holds(cmp int) bool {
	switch o {
	case OpEqual:
		return cmp == 0
	case OpNotEqual:
		return cmp != 0
	case OpGreater:
		return cmp > 0
	case OpGreaterOrEqual:
		return cmp >= 0
	case OpLess:
		return cmp < 0
	case OpLessOrEqual:
		return cmp <= 0
	default:
		return false
	}
}
