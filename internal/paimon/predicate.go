package paimon

import (
	"fmt"
	"strconv"

	"paimon-cli/internal/filter"
	"paimon-cli/internal/schema"
)

// condition is a predicate bound to a column with its literal converted to
// the Row representation of the column type.
type condition struct {
	index   int
	op      filter.Operator
	literal any
}

// rowFilter is the conjunction of all scan predicates.
type rowFilter []condition

// compileFilter validates predicates against rowType. Literals that were
// passed through as text, such as dates and decimals, are parsed here.
func compileFilter(predicates []filter.Predicate, rowType schema.RowType) (rowFilter, error) {
	conds := make(rowFilter, 0, len(predicates))
	for _, p := range predicates {
		if p.FieldIndex < 0 || p.FieldIndex >= rowType.Len() {
			return nil, newInvalidPredicateError(p.Field, "field index out of range")
		}
		field := rowType.Fields[p.FieldIndex]
		literal, err := bindLiteral(p.Value, field.Type)
		if err != nil {
			return nil, newInvalidPredicateError(field.Name, err.Error())
		}
		conds = append(conds, condition{index: p.FieldIndex, op: p.Op, literal: literal})
	}
	return conds, nil
}

// Matches reports whether row satisfies every condition. A NULL column value
// never matches.
func (f rowFilter) Matches(row Row) bool {
	for _, c := range f {
		if c.index >= len(row) || row[c.index] == nil {
			return false
		}
		cmp, ok := compareValues(row[c.index], c.literal)
		if !ok || !c.op.Holds(cmp) {
			return false
		}
	}
	return true
}

func bindLiteral(v any, dt schema.DataType) (any, error) {
	switch {
	case dt.Root == schema.TypeBoolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case dt.Root.IsInteger():
		if n, ok := asInt64(v); ok {
			return n, nil
		}
	case dt.Root.IsFloating():
		switch x := v.(type) {
		case float32:
			return x, nil
		case float64:
			return x, nil
		}
	case dt.Root.IsString():
		return fmt.Sprint(v), nil
	case dt.Root == schema.TypeDecimal:
		d, err := ParseDecimal(fmt.Sprint(v))
		if err != nil {
			return nil, err
		}
		return d, nil
	case dt.Root == schema.TypeDate:
		d, err := ParseDate(fmt.Sprint(v))
		if err != nil {
			return nil, err
		}
		return d, nil
	case dt.Root == schema.TypeTimestamp, dt.Root == schema.TypeTimestampLTZ:
		ts, err := ParseTimestamp(fmt.Sprint(v))
		if err != nil {
			return nil, err
		}
		return ts, nil
	default:
		return nil, fmt.Errorf("filtering on %s columns is not supported", dt.Root)
	}
	return nil, fmt.Errorf("value %v does not match column type %s", v, dt)
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case int:
		return int64(x), true
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
