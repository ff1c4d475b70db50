package chtype

import "testing"

func TestParseSpecRoundTrip(t *testing.T) {
	cases := []string{
		"String",
		"Int32",
		"Nullable(Decimal(10,3))",
		"Nullable(Decimal32(3))",
		"DateTime",
		"DateTime('UTC')",
		"DateTime64(3, 'UTC')",
	}
	for _, c := range cases {
		spec, err := ParseSpec(c)
		if err != nil {
			t.Fatalf("ParseSpec(%q): %v", c, err)
		}
		if got := spec.String(); got != c {
			t.Errorf("round trip: ParseSpec(%q).String() = %q, want %q", c, got, c)
		}
	}
}

func TestDefaultPrecisionScale(t *testing.T) {
	p, s := DefaultPrecisionScale(Decimal)
	if p != 10 || s != 4 {
		t.Errorf("Decimal defaults = (%d,%d), want (10,4)", p, s)
	}
	p, s = DefaultPrecisionScale(Decimal128)
	if p != 38 || s != 8 {
		t.Errorf("Decimal128 defaults = (%d,%d), want (38,8)", p, s)
	}
}

func TestDecimalKindForPrecision(t *testing.T) {
	if DecimalKindForPrecision(9) != Decimal32 {
		t.Error("precision 9 should map to Decimal32")
	}
	if DecimalKindForPrecision(10) != Decimal64 {
		t.Error("precision 10 should map to Decimal64")
	}
	if DecimalKindForPrecision(19) != Decimal128 {
		t.Error("precision 19 should map to Decimal128")
	}
}
