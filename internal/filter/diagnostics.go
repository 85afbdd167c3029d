package filter

import "fmt"

// DiagnosticKind classifies why a condition was skipped.
type DiagnosticKind int

const (
	// KindGrammar means the condition does not have the "field op value" shape.
	KindGrammar DiagnosticKind = iota
	// KindFieldNotFound means no field matches the condition's identifier.
	KindFieldNotFound
	// KindCoercion means the literal cannot be converted to the field's type.
	KindCoercion
)

func (k DiagnosticKind) String() string {
	switch k {
	case KindGrammar:
		return "grammar"
	case KindFieldNotFound:
		return "field_not_found"
	case KindCoercion:
		return "coercion"
	default:
		return "unknown"
	}
}

// Diagnostic describes one condition that was dropped during translation.
type Diagnostic struct {
	Kind DiagnosticKind

	// Condition is the condition text as it appeared after splitting.
	Condition string

	// Field is the identifier (grammar and field-not-found) or the resolved
	// schema field name (coercion). Empty for grammar errors.
	Field string

	// Value is the literal that failed coercion.
	Value string

	Message string
}

// Error implements the error interface so diagnostics can be logged or wrapped.
func (d Diagnostic) Error() string {
	return d.Message
}

func newGrammarDiagnostic(condition string) *Diagnostic {
	return &Diagnostic{
		Kind:      KindGrammar,
		Condition: condition,
		Message:   fmt.Sprintf("Invalid filter condition: %s", condition),
	}
}

func newFieldNotFoundDiagnostic(condition, field string) *Diagnostic {
	return &Diagnostic{
		Kind:      KindFieldNotFound,
		Condition: condition,
		Field:     field,
		Message:   fmt.Sprintf("Field not found: %s", field),
	}
}

func newCoercionDiagnostic(condition, field, value string, err error) *Diagnostic {
	return &Diagnostic{
		Kind:      KindCoercion,
		Condition: condition,
		Field:     field,
		Value:     value,
		Message:   fmt.Sprintf("Failed to parse value for field %s: %v", field, err),
	}
}
