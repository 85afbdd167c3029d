package paimon

import (
	"bytes"
	"cmp"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// Row is one table row. Values are nil, bool, int64, float32, float64,
// string, []byte, Decimal, Date or time.Time.
type Row []any

// Decimal is a fixed-point number: Unscaled * 10^-Scale.
type Decimal struct {
	Unscaled *big.Int
	Scale    int32
}

// ParseDecimal parses a plain decimal literal such as "-12.50".
func ParseDecimal(s string) (Decimal, error) {
	s = strings.TrimSpace(s)
	digits := strings.TrimLeft(s, "+-")
	if digits == "" {
		return Decimal{}, fmt.Errorf("invalid decimal: %q", s)
	}

	intPart, fracPart, _ := strings.Cut(digits, ".")
	if intPart == "" && fracPart == "" {
		return Decimal{}, fmt.Errorf("invalid decimal: %q", s)
	}
	for _, r := range intPart + fracPart {
		if r < '0' || r > '9' {
			return Decimal{}, fmt.Errorf("invalid decimal: %q", s)
		}
	}

	unscaled, ok := new(big.Int).SetString(intPart+fracPart, 10)
	if !ok {
		return Decimal{}, fmt.Errorf("invalid decimal: %q", s)
	}
	if strings.HasPrefix(s, "-") {
		unscaled.Neg(unscaled)
	}
	return Decimal{Unscaled: unscaled, Scale: int32(len(fracPart))}, nil
}

// decimalFromRat rounds r toward zero at the given scale.
func decimalFromRat(r *big.Rat, scale int32) Decimal {
	num := new(big.Int).Mul(r.Num(), new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(scale)), nil))
	return Decimal{Unscaled: num.Quo(num, r.Denom()), Scale: scale}
}

// decimalFromBytes decodes a big-endian two's complement unscaled value.
func decimalFromBytes(b []byte, scale int32) Decimal {
	v := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8)))
	}
	return Decimal{Unscaled: v, Scale: scale}
}

// Rat returns the exact value of d.
func (d Decimal) Rat() *big.Rat {
	if d.Unscaled == nil {
		return new(big.Rat)
	}
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(d.Scale)), nil)
	return new(big.Rat).SetFrac(d.Unscaled, denom)
}

func (d Decimal) String() string {
	if d.Unscaled == nil {
		return "0"
	}
	digits := new(big.Int).Abs(d.Unscaled).String()
	sign := ""
	if d.Unscaled.Sign() < 0 {
		sign = "-"
	}
	if d.Scale <= 0 {
		return sign + digits + strings.Repeat("0", int(-d.Scale))
	}

	scale := int(d.Scale)
	if len(digits) <= scale {
		digits = strings.Repeat("0", scale-len(digits)+1) + digits
	}
	point := len(digits) - scale
	return sign + digits[:point] + "." + digits[point:]
}

// Date is a calendar date stored as days since 1970-01-01.
type Date int32

// ParseDate parses a "2006-01-02" literal.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid date: %q", s)
	}
	return DateOf(t), nil
}

// DateOf returns the date of t in UTC.
func DateOf(t time.Time) Date {
	return Date(t.UTC().Truncate(24*time.Hour).Unix() / 86400)
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Unix(int64(d)*86400, 0).UTC()
}

func (d Date) String() string {
	return d.Time().Format(time.DateOnly)
}

const timestampLayout = "2006-01-02 15:04:05.999999999"

var timestampLayouts = []string{
	timestampLayout,
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	time.DateOnly,
}

// ParseTimestamp parses "2006-01-02 15:04:05[.fraction]", its ISO 8601
// variants, or a bare date. Values without a zone are taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp: %q", s)
}

// FormatValue renders a row value for display. nil is rendered as NULL.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int:
		return strconv.Itoa(x)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []byte:
		return "0x" + hex.EncodeToString(x)
	case Decimal:
		return x.String()
	case Date:
		return x.String()
	case time.Time:
		return x.UTC().Format(timestampLayout)
	default:
		return fmt.Sprint(x)
	}
}

// compareValues orders two non-nil values of the same family. The second
// result is false when the values cannot be compared.
func compareValues(a, b any) (int, bool) {
	switch x := a.(type) {
	case int64:
		switch y := b.(type) {
		case int64:
			return cmp.Compare(x, y), true
		case float32, float64:
			return cmp.Compare(float64(x), toFloat64(y)), true
		}
	case float32, float64:
		switch y := b.(type) {
		case float32, float64:
			return cmp.Compare(toFloat64(x), toFloat64(y)), true
		case int64:
			return cmp.Compare(toFloat64(x), float64(y)), true
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0, true
			case !x:
				return -1, true
			default:
				return 1, true
			}
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y), true
		}
	case Decimal:
		if y, ok := b.(Decimal); ok {
			return x.Rat().Cmp(y.Rat()), true
		}
	case Date:
		if y, ok := b.(Date); ok {
			return cmp.Compare(x, y), true
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y), true
		}
	case []byte:
		if y, ok := b.([]byte); ok {
			return bytes.Compare(x, y), true
		}
	}
	return 0, false
}

func toFloat64(v any) float64 {
	switch x := v.(type) {
	case float32:
		return float64(x)
	case float64:
		return x
	default:
		return 0
	}
}
