package fallback

import "testing"

func TestFirst(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"first non-zero wins", []string{"a", "b"}, "a"},
		{"skips zero values", []string{"", "b", "c"}, "b"},
		{"all zero", []string{"", ""}, ""},
		{"no values", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := First(tt.values...); got != tt.want {
				t.Errorf("First(%v) = %q, want %q", tt.values, got, tt.want)
			}
		})
	}
}

func TestFirstInts(t *testing.T) {
	if got := First(0, 7, 3); got != 7 {
		t.Errorf("First(0, 7, 3) = %d, want 7", got)
	}
}
