// Package schema models the Paimon table type system: field types, fields and row types
// as they are persisted in a table's schema files.
package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// TypeRoot identifies the family of a data type.
type TypeRoot int

const (
	// TypeUnknown is used for type names this package does not recognise.
	TypeUnknown TypeRoot = iota
	// TypeBoolean is a true/false value.
	TypeBoolean
	// TypeTinyInt is an 8-bit signed integer.
	TypeTinyInt
	// TypeSmallInt is a 16-bit signed integer.
	TypeSmallInt
	// TypeInteger is a 32-bit signed integer.
	TypeInteger
	// TypeBigInt is a 64-bit signed integer.
	TypeBigInt
	// TypeFloat is a 32-bit floating point number.
	TypeFloat
	// TypeDouble is a 64-bit floating point number.
	TypeDouble
	// TypeChar is a fixed-length string.
	TypeChar
	// TypeVarChar is a variable-length string.
	TypeVarChar
	// TypeBinary is a fixed-length byte string.
	TypeBinary
	// TypeVarBinary is a variable-length byte string.
	TypeVarBinary
	// TypeDecimal is a fixed precision decimal.
	TypeDecimal
	// TypeDate is a calendar date without time.
	TypeDate
	// TypeTime is a time of day without date.
	TypeTime
	// TypeTimestamp is a timestamp without time zone.
	TypeTimestamp
	// TypeTimestampLTZ is a timestamp with local time zone.
	TypeTimestampLTZ
	// TypeArray is an array of elements of one type.
	TypeArray
	// TypeMap is a key/value map.
	TypeMap
	// TypeRow is a nested row.
	TypeRow
	// TypeMultiset is a bag of elements.
	TypeMultiset
	// TypeVariant is a semi-structured value.
	TypeVariant
)

var typeRootNames = map[TypeRoot]string{
	TypeUnknown:      "UNKNOWN",
	TypeBoolean:      "BOOLEAN",
	TypeTinyInt:      "TINYINT",
	TypeSmallInt:     "SMALLINT",
	TypeInteger:      "INTEGER",
	TypeBigInt:       "BIGINT",
	TypeFloat:        "FLOAT",
	TypeDouble:       "DOUBLE",
	TypeChar:         "CHAR",
	TypeVarChar:      "VARCHAR",
	TypeBinary:       "BINARY",
	TypeVarBinary:    "VARBINARY",
	TypeDecimal:      "DECIMAL",
	TypeDate:         "DATE",
	TypeTime:         "TIME",
	TypeTimestamp:    "TIMESTAMP",
	TypeTimestampLTZ: "TIMESTAMP_LTZ",
	TypeArray:        "ARRAY",
	TypeMap:          "MAP",
	TypeRow:          "ROW",
	TypeMultiset:     "MULTISET",
	TypeVariant:      "VARIANT",
}

func (r TypeRoot) String() string {
	if name, ok := typeRootNames[r]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsInteger reports whether the root is one of the signed integer families.
func (r TypeRoot) IsInteger() bool {
	switch r {
	case TypeTinyInt, TypeSmallInt, TypeInteger, TypeBigInt:
		return true
	default:
		return false
	}
}

// IsFloating reports whether the root is FLOAT or DOUBLE.
func (r TypeRoot) IsFloating() bool {
	return r == TypeFloat || r == TypeDouble
}

// IsString reports whether the root is CHAR or VARCHAR.
func (r TypeRoot) IsString() bool {
	return r == TypeChar || r == TypeVarChar
}

// Default precisions used when a type omits them.
const (
	MaxVarCharLength          = 2147483647
	DefaultDecimalPrecision   = 10
	DefaultTimestampPrecision = 6
)

// DataType is a parsed Paimon type.
type DataType struct {
	Root      TypeRoot
	Nullable  bool
	Precision int
	Scale     int

	// Text is the type as written in the schema file, used for display.
	Text string

	// Element types of ARRAY, MULTISET and MAP (key, value) types.
	Elements []DataType

	// Fields of a nested ROW type.
	Fields []Field
}

func (t DataType) String() string {
	return t.Text
}

// typeAliases maps every accepted type keyword to its root.
var typeAliases = map[string]TypeRoot{
	"BOOLEAN":                        TypeBoolean,
	"BOOL":                           TypeBoolean,
	"TINYINT":                        TypeTinyInt,
	"SMALLINT":                       TypeSmallInt,
	"INT":                            TypeInteger,
	"INTEGER":                        TypeInteger,
	"BIGINT":                         TypeBigInt,
	"FLOAT":                          TypeFloat,
	"DOUBLE":                         TypeDouble,
	"DOUBLE PRECISION":               TypeDouble,
	"CHAR":                           TypeChar,
	"CHARACTER":                      TypeChar,
	"VARCHAR":                        TypeVarChar,
	"STRING":                         TypeVarChar,
	"BINARY":                         TypeBinary,
	"VARBINARY":                      TypeVarBinary,
	"BYTES":                          TypeVarBinary,
	"DECIMAL":                        TypeDecimal,
	"DEC":                            TypeDecimal,
	"NUMERIC":                        TypeDecimal,
	"DATE":                           TypeDate,
	"TIME":                           TypeTime,
	"TIMESTAMP":                      TypeTimestamp,
	"TIMESTAMP_LTZ":                  TypeTimestampLTZ,
	"TIMESTAMP WITH LOCAL TIME ZONE": TypeTimestampLTZ,
	"ARRAY":                          TypeArray,
	"MAP":                            TypeMap,
	"ROW":                            TypeRow,
	"MULTISET":                       TypeMultiset,
	"VARIANT":                        TypeVariant,
}

// ParseDataType parses a textual Paimon type such as "INT NOT NULL",
// "DECIMAL(10, 2)", "TIMESTAMP(3) WITH LOCAL TIME ZONE" or "ARRAY<STRING>".
// Unrecognised type names yield TypeUnknown rather than an error.
func ParseDataType(s string) (DataType, error) {
	text := strings.TrimSpace(s)
	if text == "" {
		return DataType{}, fmt.Errorf("empty type string")
	}

	dt := DataType{Text: text, Nullable: true}
	upper := strings.ToUpper(text)

	switch {
	case strings.HasSuffix(upper, " NOT NULL"):
		dt.Nullable = false
		upper = strings.TrimSpace(strings.TrimSuffix(upper, " NOT NULL"))
	case strings.HasSuffix(upper, " NULL"):
		upper = strings.TrimSpace(strings.TrimSuffix(upper, " NULL"))
	}

	// Generic arguments, e.g. ARRAY<INT> or MAP<STRING, INT>
	var generic string
	if open := strings.IndexByte(upper, '<'); open != -1 {
		if !strings.HasSuffix(upper, ">") {
			return DataType{}, fmt.Errorf("unbalanced type arguments in %q", s)
		}
		generic = upper[open+1 : len(upper)-1]
		upper = strings.TrimSpace(upper[:open])
	}

	// Precision arguments, e.g. DECIMAL(10, 2) or TIMESTAMP(3) WITH LOCAL TIME ZONE
	var params []int
	if open := strings.IndexByte(upper, '('); open != -1 {
		closing := strings.IndexByte(upper[open:], ')')
		if closing == -1 {
			return DataType{}, fmt.Errorf("unbalanced parentheses in %q", s)
		}
		for _, p := range strings.Split(upper[open+1:open+closing], ",") {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return DataType{}, fmt.Errorf("invalid type parameter %q in %q", p, s)
			}
			params = append(params, n)
		}
		upper = strings.TrimSpace(upper[:open] + upper[open+closing+1:])
	}
	upper = strings.Join(strings.Fields(upper), " ")

	if root, ok := typeAliases[upper]; ok {
		dt.Root = root
	} else if strings.HasPrefix(upper, "TIMESTAMP") && strings.HasSuffix(upper, "WITH LOCAL TIME ZONE") {
		dt.Root = TypeTimestampLTZ
	} else {
		dt.Root = TypeUnknown
	}

	applyDefaults(&dt, upper, params)

	if generic != "" && (dt.Root == TypeArray || dt.Root == TypeMultiset || dt.Root == TypeMap) {
		for _, part := range splitTopLevel(generic) {
			elem, err := ParseDataType(part)
			if err != nil {
				return DataType{}, fmt.Errorf("invalid element type in %q: %w", s, err)
			}
			dt.Elements = append(dt.Elements, elem)
		}
	}

	return dt, nil
}

func applyDefaults(dt *DataType, keyword string, params []int) {
	switch dt.Root {
	case TypeVarChar:
		dt.Precision = MaxVarCharLength
		if keyword == "VARCHAR" && len(params) > 0 {
			dt.Precision = params[0]
		}
	case TypeChar, TypeBinary:
		dt.Precision = 1
		if len(params) > 0 {
			dt.Precision = params[0]
		}
	case TypeVarBinary:
		dt.Precision = MaxVarCharLength
		if len(params) > 0 {
			dt.Precision = params[0]
		}
	case TypeDecimal:
		dt.Precision = DefaultDecimalPrecision
		if len(params) > 0 {
			dt.Precision = params[0]
		}
		if len(params) > 1 {
			dt.Scale = params[1]
		}
	case TypeTimestamp, TypeTimestampLTZ:
		dt.Precision = DefaultTimestampPrecision
		if len(params) > 0 {
			dt.Precision = params[0]
		}
	case TypeTime:
		if len(params) > 0 {
			dt.Precision = params[0]
		}
	}
}

// splitTopLevel splits s on commas that are not nested inside <> or ().
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(':
			depth++
		case '>', ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[last:i]))
				last = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(s[last:]))
}

// nestedType is the JSON object form Paimon uses for ARRAY, MAP, MULTISET and ROW types.
type nestedType struct {
	Type    string          `json:"type"`
	Element json.RawMessage `json:"element,omitempty"`
	Key     json.RawMessage `json:"key,omitempty"`
	Value   json.RawMessage `json:"value,omitempty"`
	Fields  []Field         `json:"fields,omitempty"`
}

// UnmarshalJSON accepts either the plain string form ("INT NOT NULL") or the
// object form used for nested types.
func (t *DataType) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		parsed, err := ParseDataType(text)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	}

	var nested nestedType
	if err := json.Unmarshal(data, &nested); err != nil {
		return fmt.Errorf("failed to decode data type: %w", err)
	}
	parsed, err := ParseDataType(nested.Type)
	if err != nil {
		return err
	}

	var args []string
	for _, raw := range []json.RawMessage{nested.Element, nested.Key, nested.Value} {
		if len(raw) == 0 {
			continue
		}
		var elem DataType
		if err := elem.UnmarshalJSON(raw); err != nil {
			return err
		}
		parsed.Elements = append(parsed.Elements, elem)
		args = append(args, elem.Text)
	}
	if parsed.Root == TypeRow {
		parsed.Fields = nested.Fields
		for _, f := range nested.Fields {
			args = append(args, fmt.Sprintf("%s %s", f.Name, f.Type.Text))
		}
	}

	text = parsed.Root.String() + "<" + strings.Join(args, ", ") + ">"
	if !parsed.Nullable {
		text += " NOT NULL"
	}
	parsed.Text = text
	*t = parsed
	return nil
}
