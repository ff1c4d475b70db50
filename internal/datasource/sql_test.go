package datasource

import (
	"testing"

	"github.com/riverstonedata/ch-jdbc-bridge/pkg/chtype"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/column"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/queryparams"
	"github.com/riverstonedata/ch-jdbc-bridge/pkg/wire"
)

func TestMapJDBCTypeExactMatch(t *testing.T) {
	cases := map[string]chtype.DataType{
		"BIGINT":  chtype.Int64,
		"integer": chtype.Int32,
		"Boolean": chtype.Int8,
		"TEXT":    chtype.String,
		"DATE":    chtype.Date,
	}
	for in, want := range cases {
		if got := mapJDBCType(in); got != want {
			t.Errorf("mapJDBCType(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestMapJDBCTypeParameterized(t *testing.T) {
	if got := mapJDBCType("VARCHAR(255)"); got != chtype.String {
		t.Errorf("mapJDBCType(VARCHAR(255)) = %s, want String", got)
	}
	if got := mapJDBCType("NUMERIC(10,2)"); got != chtype.Decimal {
		t.Errorf("mapJDBCType(NUMERIC(10,2)) = %s, want Decimal", got)
	}
}

func TestMapJDBCTypeUnknownDefaultsToString(t *testing.T) {
	if got := mapJDBCType("SOME_VENDOR_SPECIFIC_TYPE"); got != chtype.String {
		t.Errorf("mapJDBCType(unknown) = %s, want String fallback", got)
	}
}

func TestApplyRowLimits(t *testing.T) {
	q := "SELECT * FROM t;"
	got := applyRowLimits(q, queryparams.Params{MaxRows: 10, Offset: 5})
	want := "SELECT * FROM t LIMIT 10 OFFSET 5"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestApplyRowLimitsMaxRowsOnly(t *testing.T) {
	got := applyRowLimits("SELECT 1", queryparams.Params{MaxRows: 3})
	want := "SELECT 1 LIMIT 3"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestApplyRowLimitsPositionTakesPriorityOverOffset(t *testing.T) {
	got := applyRowLimits("SELECT 1", queryparams.Params{MaxRows: 3, Offset: 5, Position: 10})
	want := "SELECT 1 LIMIT 3"
	if got != want {
		t.Errorf("got %q want %q (no OFFSET clause once Position is set)", got, want)
	}
}

func TestQuoteIdentifierDoublesEmbeddedQuote(t *testing.T) {
	ds := &SQLDataSource{Base: &Base{quote: "`"}}
	if got := ds.quoteIdentifier("weird`name"); got != "`weird``name`" {
		t.Errorf("got %q", got)
	}
}

func TestStripTrailingSemicolon(t *testing.T) {
	if got := stripTrailingSemicolon("SELECT 1;  \n"); got != "SELECT 1" {
		t.Errorf("got %q", got)
	}
	if got := stripTrailingSemicolon("SELECT 1"); got != "SELECT 1" {
		t.Errorf("got %q", got)
	}
}

func TestParseSQLTimeLayouts(t *testing.T) {
	cases := []string{
		"2026-08-06T10:00:00Z",
		"2026-08-06 10:00:00.123456",
		"2026-08-06 10:00:00",
		"2026-08-06",
	}
	for _, s := range cases {
		if _, err := parseSQLTime(s); err != nil {
			t.Errorf("parseSQLTime(%q): %v", s, err)
		}
	}
}

func TestParseSQLTimeRejectsGarbage(t *testing.T) {
	if _, err := parseSQLTime("not-a-time"); err == nil {
		t.Error("expected error for unparseable time")
	}
}

func TestResolveDSNTemplate(t *testing.T) {
	r := fakeResolver{"host": "10.0.0.1", "port": "5432"}
	got := resolveDSNTemplate(r, "postgres://user@{{host}}:{{port}}/db")
	want := "postgres://user@10.0.0.1:5432/db"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestResolveDSNTemplateNoPlaceholders(t *testing.T) {
	got := resolveDSNTemplate(fakeResolver{}, "postgres://user@host/db")
	if got != "postgres://user@host/db" {
		t.Errorf("got %q", got)
	}
}

func TestResolveDSNTemplateTrimsPlaceholderWhitespace(t *testing.T) {
	r := fakeResolver{"sip.example": "10.0.0.9"}
	got := resolveDSNTemplate(r, "jdbc://{{ sip.example }}/db")
	want := "jdbc://10.0.0.9/db"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

type fakeResolver map[string]string

func (r fakeResolver) Resolve(placeholder string) string { return r[placeholder] }

// writeSQLValue's null-handling must mirror the original nullAsDefault
// branching exactly: a null value on a Nullable column writes a plain
// null marker unless NullAsDefault is set, in which case it writes
// non-null followed by the column's default value instead.
func TestWriteSQLValueNullableNullWithoutNullAsDefault(t *testing.T) {
	enc := wire.New(nil, 16)
	col := column.New("n", chtype.Int32, true)

	if err := writeSQLValue(enc, col, nil, queryparams.Params{}); err != nil {
		t.Fatalf("writeSQLValue: %v", err)
	}

	want := wire.New(nil, 16).WriteNull().Bytes()
	if string(enc.Bytes()) != string(want) {
		t.Errorf("got %v want %v (a plain null marker)", enc.Bytes(), want)
	}
}

func TestWriteSQLValueNullableNullWithNullAsDefault(t *testing.T) {
	enc := wire.New(nil, 16)
	col := column.New("n", chtype.Int32, true)

	if err := writeSQLValue(enc, col, nil, queryparams.Params{NullAsDefault: true}); err != nil {
		t.Fatalf("writeSQLValue: %v", err)
	}

	want := wire.New(nil, 16)
	want.WriteNonNull()
	if err := want.WriteDefaultValue(col); err != nil {
		t.Fatalf("WriteDefaultValue: %v", err)
	}
	if string(enc.Bytes()) != string(want.Bytes()) {
		t.Errorf("got %v want %v (non-null marker + default value)", enc.Bytes(), want.Bytes())
	}
}
