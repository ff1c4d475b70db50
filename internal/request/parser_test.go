package request

import "testing"

func TestNormalizeQuerySchemaTable(t *testing.T) {
	q := "SELECT `col1`, `col2` FROM `some_schema`.`select 1`"
	got := NormalizeQuery(q)
	want := "select 1"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestNormalizeQueryUnquotedPassthrough(t *testing.T) {
	q := "SELECT * FROM some_schema.some_table"
	got := NormalizeQuery(q)
	if got != q {
		t.Errorf("got %q want unchanged %q", got, q)
	}
}

func TestNormalizeQueryIdempotent(t *testing.T) {
	q := "SELECT `col1` FROM `some_schema`.`t`"
	once := NormalizeQuery(q)
	twice := NormalizeQuery(once)
	if once != twice {
		t.Errorf("not idempotent: %q vs %q", once, twice)
	}
}

func TestNormalizeQueryEscapes(t *testing.T) {
	q := `select 'a\tb'`
	got := NormalizeQuery(q)
	want := "select 'a\tb'"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestExtractTableNameSimple(t *testing.T) {
	q := "SELECT * FROM `mytable` WHERE 1=0"
	if got := ExtractTableName(q); got != "mytable" {
		t.Errorf("got %q want mytable", got)
	}
}

func TestExtractTableNameNoFrom(t *testing.T) {
	q := "mytable"
	if got := ExtractTableName(q); got != "mytable" {
		t.Errorf("got %q want mytable", got)
	}
}
