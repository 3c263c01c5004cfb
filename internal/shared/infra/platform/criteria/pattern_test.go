package criteria

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLikeRegexp(t *testing.T) {
	cases := []struct {
		pattern string
		escape  rune
		want    string
		matches []string
		rejects []string
	}{
		{"%Grove", 0, `^.*Grove$`, []string{"Hemlock Grove", "Grove"}, []string{"Grove Street"}},
		{"B_t%", 0, `^B.t.*$`, []string{"Better Call Saul", "Bit"}, []string{"Bt"}},
		{`100\%%`, '\\', `^100%.*$`, []string{"100% Wolf"}, []string{"100 Wolves"}},
		{"a!_b", '!', `^a_b$`, []string{"a_b"}, []string{"axb"}},
		{"(1+1)", 0, `^\(1\+1\)$`, []string{"(1+1)"}, []string{"11"}},
	}

	for _, tc := range cases {
		t.Run(tc.pattern, func(t *testing.T) {
			got := LikeRegexp(tc.pattern, tc.escape)
			assert.Equal(t, tc.want, got)

			re := regexp.MustCompile("(?s)" + got)
			for _, s := range tc.matches {
				assert.True(t, re.MatchString(s), s)
			}
			for _, s := range tc.rejects {
				assert.False(t, re.MatchString(s), s)
			}
		})
	}
}
