package schema

import "strings"

// Field is a single named column of a row type.
type Field struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Type        DataType `json:"type"`
	Description string   `json:"description,omitempty"`
}

// RowType is the ordered list of fields that make up a table row.
type RowType struct {
	Fields []Field
}

// NewRowType creates a row type from the given fields.
func NewRowType(fields ...Field) RowType {
	return RowType{Fields: fields}
}

// Len returns the number of fields.
func (r RowType) Len() int {
	return len(r.Fields)
}

// FieldIndex returns the position of the first field whose name matches
// name case-insensitively, or -1 when there is none.
func (r RowType) FieldIndex(name string) int {
	for i, f := range r.Fields {
		if strings.EqualFold(f.Name, name) {
			return i
		}
	}
	return -1
}

// FieldNames returns the field names in declaration order.
func (r RowType) FieldNames() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}

// Project returns a row type containing only the named fields, in the given order.
// Unknown names are skipped.
func (r RowType) Project(names []string) RowType {
	fields := make([]Field, 0, len(names))
	for _, name := range names {
		if idx := r.FieldIndex(name); idx != -1 {
			fields = append(fields, r.Fields[idx])
		}
	}
	return RowType{Fields: fields}
}

// MustField is a test and fixture helper that builds a field from a type string.
// It panics on an unparsable type.
func MustField(id int, name, typ string) Field {
	dt, err := ParseDataType(typ)
	if err != nil {
		panic(err)
	}
	return Field{ID: id, Name: name, Type: dt}
}
