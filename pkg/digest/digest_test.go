package digest

import "testing"

func TestDigestStableAcrossFieldOrder(t *testing.T) {
	a := map[string]any{"id": "x", "port": 5432}
	b := map[string]any{"port": 5432, "id": "x"}
	da, err := Of(a)
	if err != nil {
		t.Fatal(err)
	}
	db, err := Of(b)
	if err != nil {
		t.Fatal(err)
	}
	if da != db {
		t.Errorf("digest differs across field order: %d vs %d", da, db)
	}
}

func TestDigestChangesOnContentChange(t *testing.T) {
	a := map[string]any{"id": "x"}
	b := map[string]any{"id": "y"}
	da, _ := Of(a)
	db, _ := Of(b)
	if da == db {
		t.Error("digest should differ for different content")
	}
}
