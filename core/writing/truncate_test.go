package writing

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		s    string
		n    int
		want string
	}{
		{name: "short", s: "abc", n: 5, want: "abc"},
		{name: "exact", s: "abc", n: 3, want: "abc"},
		{name: "ascii", s: "abcdef", n: 3, want: "abc…"},
		{name: "inside a two-byte rune", s: "aéb", n: 2, want: "a…"},
		{name: "after a two-byte rune", s: "aéb", n: 3, want: "aé…"},
		{name: "inside a four-byte rune", s: "🦉🦉", n: 6, want: "🦉…"},
		{name: "first rune cut", s: "🦉", n: 2, want: "…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.s, tt.n)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
