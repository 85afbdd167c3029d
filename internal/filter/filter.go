// Package filter translates user supplied filter expressions of the form
// "field op value [AND field op value ...]" into typed predicates resolved
// against a table's row type.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"paimon-cli/internal/schema"
)

// conditionPattern matches a single "field op value" condition. Two-character
// operators are listed before their one-character prefixes.
var conditionPattern = regexp.MustCompile(`^\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*(>=|<=|!=|=|>|<)\s*(.+)\s*$`)

// Predicate is a condition resolved against a row type and ready to be
// evaluated by a table scan.
type Predicate struct {
	// FieldIndex is the position of the field in the row type.
	FieldIndex int

	// Field is the field name as declared in the schema.
	Field string

	Op Operator

	// Value is the literal coerced to the field's type: bool, int8, int16,
	// int32, int64, float32, float64 or string.
	Value any
}

func (p Predicate) String() string {
	if s, ok := p.Value.(string); ok {
		return fmt.Sprintf("%s %s '%s'", p.Field, p.Op, s)
	}
	return fmt.Sprintf("%s %s %v", p.Field, p.Op, p.Value)
}

// Translate parses expression and resolves every condition against rowType.
//
// Conditions that are malformed, reference an unknown field or carry a
// literal that cannot be converted to the field's type are skipped; each
// produces exactly one Diagnostic. Translation never stops early, so the
// returned predicates preserve the order of the conditions that succeeded.
// An empty expression yields no predicates and no diagnostics.
func Translate(expression string, rowType schema.RowType) ([]Predicate, []Diagnostic) {
	if strings.TrimSpace(expression) == "" {
		return nil, nil
	}

	var predicates []Predicate
	var diagnostics []Diagnostic

	for _, condition := range splitConditions(expression) {
		pred, diag := translateCondition(condition, rowType)
		if diag != nil {
			diagnostics = append(diagnostics, *diag)
			continue
		}
		predicates = append(predicates, pred)
	}

	return predicates, diagnostics
}

// translateCondition resolves a single condition. Exactly one of the results is meaningful.
func translateCondition(condition string, rowType schema.RowType) (Predicate, *Diagnostic) {
	match := conditionPattern.FindStringSubmatch(condition)
	if match == nil {
		return Predicate{}, newGrammarDiagnostic(condition)
	}

	name := match[1]
	value := stripQuotes(strings.TrimSpace(match[3]))

	op, err := ParseOperator(match[2])
	if err != nil {
		// Unreachable while the pattern and the operator set agree.
		return Predicate{}, newGrammarDiagnostic(condition)
	}

	idx := rowType.FieldIndex(name)
	if idx == -1 {
		return Predicate{}, newFieldNotFoundDiagnostic(condition, name)
	}
	field := rowType.Fields[idx]

	coerced, err := Coerce(value, field.Type)
	if err != nil {
		return Predicate{}, newCoercionDiagnostic(condition, field.Name, value, err)
	}

	return Predicate{
		FieldIndex: idx,
		Field:      field.Name,
		Op:         op,
		Value:      coerced,
	}, nil
}

// stripQuotes removes one pair of matching single or double quotes
// surrounding value. Unmatched quotes are kept as part of the literal.
func stripQuotes(value string) string {
	if len(value) < 2 {
		return value
	}
	first, last := value[0], value[len(value)-1]
	if first == last && (first == '\'' || first == '"') {
		return value[1 : len(value)-1]
	}
	return value
}
