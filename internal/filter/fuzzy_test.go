package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 100},
		{"abc", "abc", 100},
		{"abc", "xyz", 0},
		{"abc", "", 0},
		{"kitten", "sitting", 200.0 * 4 / 13},
		{"fobar", "foobar", 200.0 * 5 / 11},
		{"héllo", "hello", 80},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, Ratio(tt.a, tt.b), 0.001)
			assert.InDelta(t, tt.want, Ratio(tt.b, tt.a), 0.001)
		})
	}
}

func TestPartialRatio(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"Substring", "abc", "xxabcxx", 100},
		{"Symmetric", "xxabcxx", "abc", 100},
		{"BothEmpty", "", "", 100},
		{"OneEmpty", "", "abc", 0},
		{"EdgeWindow", "abcd", "zzzab", 200.0 * 2 / 6},
		{"NoOverlap", "abcd", "wxyz", 0},
		{"EqualLength", "abcd", "abce", 200.0 * 3 / 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, PartialRatio(tt.a, tt.b), 0.001)
		})
	}
}

func TestLCS(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, lcs(nil, []rune("abc")))
	assert.Equal(t, 3, lcs([]rune("abc"), []rune("aXbXc")))
	assert.Equal(t, 4, lcs([]rune("kitten"), []rune("sitting")))
}
