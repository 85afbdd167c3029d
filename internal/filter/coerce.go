package filter

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"paimon-cli/internal/schema"
)

// floatPattern accepts plain decimal and scientific notation. It rejects the
// hexadecimal, underscore and inf/nan forms strconv.ParseFloat would take.
var floatPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// Coerce converts a literal to the Go value matching the declared type.
//
// BOOLEAN accepts "true" or "false" in any case. Integer types are parsed as
// base-10 signed integers within the width of the type. FLOAT and DOUBLE
// accept decimal or scientific literals. CHAR, VARCHAR and every other type
// are returned unchanged as strings.
func Coerce(literal string, dt schema.DataType) (any, error) {
	switch dt.Root {
	case schema.TypeBoolean:
		switch strings.ToLower(literal) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		default:
			return nil, fmt.Errorf("invalid boolean value %q: expected true or false", literal)
		}

	case schema.TypeTinyInt, schema.TypeSmallInt, schema.TypeInteger, schema.TypeBigInt:
		return coerceInt(literal, dt.Root)

	case schema.TypeFloat:
		f, err := parseFloat(literal, 32)
		if err != nil {
			return nil, err
		}
		return float32(f), nil
	case schema.TypeDouble:
		f, err := parseFloat(literal, 64)
		if err != nil {
			return nil, err
		}
		return f, nil

	case schema.TypeChar, schema.TypeVarChar:
		return literal, nil

	default:
		// Decimal, date, timestamp and the rest are interpreted by the scan.
		return literal, nil
	}
}

// coerceInt parses literal with the width of root and returns the matching Go integer type.
func coerceInt(literal string, root schema.TypeRoot) (any, error) {
	switch root {
	case schema.TypeTinyInt:
		n, err := parseInt(literal, 8)
		if err != nil {
			return nil, err
		}
		return int8(n), nil
	case schema.TypeSmallInt:
		n, err := parseInt(literal, 16)
		if err != nil {
			return nil, err
		}
		return int16(n), nil
	case schema.TypeInteger:
		n, err := parseInt(literal, 32)
		if err != nil {
			return nil, err
		}
		return int32(n), nil
	default:
		n, err := parseInt(literal, 64)
		if err != nil {
			return nil, err
		}
		return n, nil
	}
}

func parseInt(literal string, bits int) (int64, error) {
	n, err := strconv.ParseInt(literal, 10, bits)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("value %q out of range for %d-bit integer", literal, bits)
		}
		return 0, fmt.Errorf("invalid integer value %q", literal)
	}
	return n, nil
}

func parseFloat(literal string, bits int) (float64, error) {
	if !floatPattern.MatchString(literal) {
		return 0, fmt.Errorf("invalid floating point value %q", literal)
	}
	f, err := strconv.ParseFloat(literal, bits)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("value %q out of range for %d-bit float", literal, bits)
		}
		return 0, fmt.Errorf("invalid floating point value %q", literal)
	}
	return f, nil
}
