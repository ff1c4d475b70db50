package queryparams

import "testing"

func TestDebugEchoScenario(t *testing.T) {
	p := Defaults()
	want := "fetch_size=1000&max_rows=0&offset=0&position=0&null_as_default=false"
	if got := p.ToQueryString(); got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestMergeFromURI(t *testing.T) {
	p := Defaults()
	p, err := p.MergeFromURI("fetch_size=50&debug=true&show_custom_columns=true")
	if err != nil {
		t.Fatalf("MergeFromURI: %v", err)
	}
	if p.FetchSize != 50 || !p.Debug || !p.ShowCustomColumns {
		t.Errorf("unexpected merge result: %+v", p)
	}
}
