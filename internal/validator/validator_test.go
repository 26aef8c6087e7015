package validator

import "testing"

type sample struct {
	URL    string `json:"url" validate:"required"`
	APIKey string `json:"apiKey" validate:"required,max=8"`
	Style  string `json:"style,omitempty" validate:"omitempty,oneof=blue red"`
	Hidden string `json:"-" validate:"required"`
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	errs, ok := New().Validate(sample{APIKey: "too-long-key", Style: "purple", Hidden: "x"})
	if ok {
		t.Fatal("expected validation to fail")
	}
	if len(errs) != 3 {
		t.Fatalf("unexpected error count: got %d want 3 (%+v)", len(errs), errs)
	}

	want := []ValidationError{
		{Field: "url", Code: "REQUIRED", Message: "url is required"},
		{Field: "apiKey", Code: "MAX", Message: "apiKey must not exceed 8 characters"},
		{Field: "style", Code: "ONEOF", Message: "style must be one of blue red"},
	}
	for i := range want {
		if errs[i] != want[i] {
			t.Fatalf("unexpected error %d: got %+v want %+v", i, errs[i], want[i])
		}
	}
}

func TestValidateAcceptsValidStruct(t *testing.T) {
	errs, ok := New().Validate(sample{URL: "https://youtu.be/x", APIKey: "key", Hidden: "x"})
	if !ok || errs != nil {
		t.Fatalf("expected valid struct, got %+v", errs)
	}
}
