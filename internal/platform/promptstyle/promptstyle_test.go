package promptstyle

import (
	"strings"
	"testing"
)

func TestApplySystem(t *testing.T) {
	cases := []struct {
		name   string
		system string
		mode   string
		want   string
	}{
		{"json", "Rank these activities.", "json", "single JSON object"},
		{"text", "Explain the change.", "text", "three short sentences"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ApplySystem(tc.system, tc.mode)
			if !strings.HasPrefix(got, marker) {
				t.Fatalf("missing marker: %q", got)
			}
			if !strings.Contains(got, tc.want) || !strings.HasSuffix(got, tc.system) {
				t.Fatalf("unexpected prompt: %q", got)
			}
			if again := ApplySystem(got, tc.mode); again != got {
				t.Fatalf("not idempotent")
			}
		})
	}
	if got := ApplySystem("  ", "json"); got != "" {
		t.Fatalf("empty system should stay empty, got %q", got)
	}
}
