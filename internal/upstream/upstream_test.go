package upstream

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestErrorStringsCarryBodyExcerpt(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "request error with body",
			err:  &RequestError{Provider: ProviderGames, Status: 502, BodyExcerpt: "bad gateway"},
			want: []string{"games", "502", "bad gateway"},
		},
		{
			name: "request error without body",
			err:  &RequestError{Provider: ProviderBooks, Status: 429},
			want: []string{"books", "429"},
		},
		{
			name: "auth error with body",
			err:  &AuthError{Provider: ProviderMusic, Status: 403, Body: "invalid client"},
			want: []string{"music", "403", "invalid client"},
		},
		{
			name: "auth error without body",
			err:  &AuthError{Provider: ProviderGames, Status: 401},
			want: []string{"games", "401"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, want := range tt.want {
				if !strings.Contains(msg, want) {
					t.Errorf("error %q missing %q", msg, want)
				}
			}
		})
	}
}

func TestExcerptTruncation(t *testing.T) {
	short := "a short body"
	if got := excerpt([]byte(short)); got != short {
		t.Errorf("short body altered: %q", got)
	}

	long := strings.Repeat("x", 300)
	if got := excerpt([]byte(long)); len(got) != 256 {
		t.Errorf("expected 256 bytes, got %d", len(got))
	}

	// A multi-byte rune straddling the cut must be dropped whole, never split
	multi := strings.Repeat("x", 255) + "é" + strings.Repeat("y", 50)
	got := excerpt([]byte(multi))
	if !utf8.ValidString(got) {
		t.Fatalf("excerpt split a rune: %q", got[len(got)-4:])
	}
	if len(got) != 255 {
		t.Errorf("expected cut at 255, got %d", len(got))
	}
}
