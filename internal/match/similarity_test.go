package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected float64
	}{
		{"identical", "koca", "koca", 1},
		{"both empty", "", "", 0},
		{"one empty", "koca", "", 0},
		{"disjoint", "abc", "xyz", 0},
		{"trailing typo", "goruntuleme", "goruntulem", 2.0 * 10 / 21},
		{"subsequence", "demir", "demirtas", 2.0 * 5 / 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Ratio(tt.a, tt.b), 0.0001)
		})
	}
}

func TestRatioSymmetry(t *testing.T) {
	assert.Equal(t, Ratio("cem koca", "ckoca"), Ratio("ckoca", "cem koca"))
}
