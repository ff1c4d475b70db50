// Package chtype defines the closed set of ClickHouse data types the
// bridge is able to describe on the wire, along with their default
// precision/scale rules and textual grammar.
package chtype

import (
	"fmt"
	"strconv"
	"strings"
)

// DataType is one of the fixed ClickHouse column types this bridge speaks.
type DataType int

const (
	Int8 DataType = iota
	Int16
	Int32
	Int64
	UInt8
	UInt16
	UInt32
	UInt64
	Float32
	Float64
	Date
	DateTime
	DateTime64
	Decimal
	Decimal32
	Decimal64
	Decimal128
	String
)

var names = [...]string{
	Int8: "Int8", Int16: "Int16", Int32: "Int32", Int64: "Int64",
	UInt8: "UInt8", UInt16: "UInt16", UInt32: "UInt32", UInt64: "UInt64",
	Float32: "Float32", Float64: "Float64",
	Date: "Date", DateTime: "DateTime", DateTime64: "DateTime64",
	Decimal: "Decimal", Decimal32: "Decimal32", Decimal64: "Decimal64", Decimal128: "Decimal128",
	String: "String",
}

var byName = func() map[string]DataType {
	m := make(map[string]DataType, len(names))
	for t, n := range names {
		m[n] = DataType(t)
	}
	return m
}()

func (t DataType) String() string {
	if int(t) < 0 || int(t) >= len(names) {
		return "Unknown"
	}
	return names[t]
}

// Parse resolves a bare type name (no arguments, no Nullable wrapper) to a DataType.
func Parse(name string) (DataType, error) {
	if t, ok := byName[name]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("chtype: unknown type name %q", name)
}

// DefaultPrecisionScale returns the default precision and scale for a type
// per the fixed table: Decimal(10,4), Decimal32 fixed precision 9 default
// scale 2, Decimal64 fixed precision 18 default scale 4, Decimal128 fixed
// precision 38 default scale 8, DateTime64 scale 3, everything else 0/0.
func DefaultPrecisionScale(t DataType) (precision, scale int) {
	switch t {
	case Decimal:
		return 10, 4
	case Decimal32:
		return 9, 2
	case Decimal64:
		return 18, 4
	case Decimal128:
		return 38, 8
	case DateTime64:
		return 0, 3
	default:
		return 0, 0
	}
}

// MaxDecimalPrecision is the largest precision this bridge accepts for Decimal.
const MaxDecimalPrecision = 38

// ClampScale enforces scale in [0, precision] with precision capped at
// MaxDecimalPrecision for Decimal (Decimal32/64/128 carry a fixed precision
// already and are not subject to the cap check here).
func ClampScale(scale, precision int) int {
	if precision > MaxDecimalPrecision {
		precision = MaxDecimalPrecision
	}
	if scale < 0 {
		return 0
	}
	if scale > precision {
		return precision
	}
	return scale
}

// IsDecimal reports whether t is one of the Decimal family types.
func IsDecimal(t DataType) bool {
	switch t {
	case Decimal, Decimal32, Decimal64, Decimal128:
		return true
	}
	return false
}

// FixedDecimalPrecision returns the fixed precision for Decimal32/64/128,
// and ok=false for the general Decimal type whose precision is configurable.
func FixedDecimalPrecision(t DataType) (precision int, ok bool) {
	switch t {
	case Decimal32:
		return 9, true
	case Decimal64:
		return 18, true
	case Decimal128:
		return 38, true
	default:
		return 0, false
	}
}

// DecimalKindForPrecision picks which concrete Decimal wire type to use for
// a given precision, per the BinaryEncoder's dispatch thresholds: >18 uses
// Decimal128, >9 uses Decimal64, else Decimal32.
func DecimalKindForPrecision(precision int) DataType {
	switch {
	case precision > 18:
		return Decimal128
	case precision > 9:
		return Decimal64
	default:
		return Decimal32
	}
}

// Spec describes a fully-resolved type: its base DataType plus any
// arguments (precision/scale for Decimal family, scale for DateTime64,
// timezone for DateTime/DateTime64) and whether it is Nullable-wrapped.
type Spec struct {
	Type      DataType
	Nullable  bool
	Precision int
	Scale     int
	Timezone  string
}

// ParseSpec parses a full type specification such as
// "Nullable(Decimal(10,3))", "DateTime('UTC')", "Decimal32(2)", "String".
func ParseSpec(s string) (Spec, error) {
	s = strings.TrimSpace(s)
	nullable := false
	if strings.HasPrefix(s, "Nullable(") && strings.HasSuffix(s, ")") {
		nullable = true
		s = s[len("Nullable(") : len(s)-1]
	}

	name := s
	argsStr := ""
	if idx := strings.IndexByte(s, '('); idx >= 0 && strings.HasSuffix(s, ")") {
		name = s[:idx]
		argsStr = s[idx+1 : len(s)-1]
	}

	t, err := Parse(name)
	if err != nil {
		return Spec{}, err
	}

	spec := Spec{Type: t, Nullable: nullable}
	defP, defS := DefaultPrecisionScale(t)
	spec.Precision, spec.Scale = defP, defS

	if fixed, ok := FixedDecimalPrecision(t); ok {
		spec.Precision = fixed
	}

	args := splitArgs(argsStr)

	switch t {
	case Decimal:
		if len(args) >= 1 {
			if p, err := strconv.Atoi(strings.TrimSpace(args[0])); err == nil {
				spec.Precision = p
			}
		}
		if len(args) >= 2 {
			if sc, err := strconv.Atoi(strings.TrimSpace(args[1])); err == nil {
				spec.Scale = sc
			}
		}
		spec.Scale = ClampScale(spec.Scale, spec.Precision)
	case Decimal32, Decimal64, Decimal128:
		if len(args) >= 1 {
			if sc, err := strconv.Atoi(strings.TrimSpace(args[0])); err == nil {
				spec.Scale = sc
			}
		}
		spec.Scale = ClampScale(spec.Scale, spec.Precision)
	case DateTime, DateTime64:
		for _, a := range args {
			a = strings.TrimSpace(a)
			if tz, ok := unquoteArg(a); ok {
				spec.Timezone = tz
				continue
			}
			if sc, err := strconv.Atoi(a); err == nil {
				spec.Scale = sc
			}
		}
	}

	return spec, nil
}

func splitArgs(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	// Args never nest parens/quotes containing commas in this grammar, so a
	// plain split is sufficient.
	return strings.Split(s, ",")
}

func unquoteArg(a string) (string, bool) {
	if len(a) >= 2 && a[0] == '\'' && a[len(a)-1] == '\'' {
		return strings.ReplaceAll(a[1:len(a)-1], "''", "'"), true
	}
	return "", false
}

// String renders the spec back to ClickHouse's textual grammar.
func (s Spec) String() string {
	var b strings.Builder
	inner := s.renderInner()
	if s.Nullable {
		b.WriteString("Nullable(")
		b.WriteString(inner)
		b.WriteString(")")
	} else {
		b.WriteString(inner)
	}
	return b.String()
}

func (s Spec) renderInner() string {
	switch s.Type {
	case Decimal:
		return fmt.Sprintf("Decimal(%d,%d)", s.Precision, s.Scale)
	case Decimal32, Decimal64, Decimal128:
		return fmt.Sprintf("%s(%d)", s.Type, s.Scale)
	case DateTime:
		if s.Timezone != "" {
			return fmt.Sprintf("DateTime('%s')", s.Timezone)
		}
		return "DateTime"
	case DateTime64:
		if s.Timezone != "" {
			return fmt.Sprintf("DateTime64(%d, '%s')", s.Scale, s.Timezone)
		}
		return fmt.Sprintf("DateTime64(%d)", s.Scale)
	default:
		return s.Type.String()
	}
}
