package slug_test

import (
	"strings"
	"testing"

	"hairly/internal/platform/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"4B Coily Hair Revival Plan": "4b-coily-hair-revival-plan",
		"  Moisturize & Seal ":       "moisturize-seal",
		"!!!":                        "untitled",
	}
	for in, want := range cases {
		if got := slug.Make(in); got != want {
			t.Fatalf("Make(%q) = %q, want %q", in, got, want)
		}
	}
	if got := slug.Make(strings.Repeat("a b ", 40)); len(got) > 64 || strings.HasSuffix(got, "-") {
		t.Fatalf("expected capped slug, got %q", got)
	}
}
