package clipboard

import "testing"

func TestMemoryCopy(t *testing.T) {
	var w Writer = &Memory{}
	if err := w.Copy("hello"); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	if got := w.(*Memory).Text; got != "hello" {
		t.Fatalf("unexpected text %q", got)
	}
}
