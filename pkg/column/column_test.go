package column

import (
	"testing"

	"github.com/riverstonedata/ch-jdbc-bridge/pkg/chtype"
)

func TestListRoundTrip(t *testing.T) {
	l := List{Version: 1, Columns: []Info{
		NewWithPrecision("d", chtype.Decimal, true, 10, 3),
		New("a", chtype.UInt32, false),
	}}
	text := l.String()
	parsed, err := ParseList(text)
	if err != nil {
		t.Fatalf("ParseList: %v", err)
	}
	if parsed.String() != text {
		t.Errorf("round trip mismatch:\n%s\nvs\n%s", parsed.String(), text)
	}
}

func TestScenarioColumnHeader(t *testing.T) {
	cases := []string{
		"`d` Nullable(Decimal(10,3))",
		"`d` Nullable(Decimal32(3))",
	}
	for _, c := range cases {
		col, err := ParseColumn(c)
		if err != nil {
			t.Fatalf("ParseColumn(%q): %v", c, err)
		}
		if col.String() != c {
			t.Errorf("ParseColumn(%q).String() = %q", c, col.String())
		}
	}
}

func TestSetIndexOnce(t *testing.T) {
	c := New("a", chtype.Int32, false)
	if err := c.SetIndex(2); err != nil {
		t.Fatalf("first SetIndex: %v", err)
	}
	if err := c.SetIndex(3); err == nil {
		t.Error("second SetIndex should fail")
	}
	fresh := New("b", chtype.Int32, false)
	if err := fresh.SetIndex(-1); err == nil {
		t.Error("negative SetIndex should fail without prior set")
	}
}

func TestColumnsInfoScenario(t *testing.T) {
	l := List{Version: 1, Columns: []Info{New("a", chtype.UInt32, false)}}
	want := "columns format version: 1\n1 columns:\n`a` UInt32\n"
	if got := l.String(); got != want {
		t.Errorf("got %q want %q", got, want)
	}
}
