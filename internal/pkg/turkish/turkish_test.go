package turkish_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"raporbot/internal/pkg/turkish"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"Çağla Şükrü", "cagla sukru"},
		{"GÜNDEM", "gundem"},
		{"Işık", "isik"},
		{"İstanbul", "istanbul"},
		{"ascii only", "ascii only"},
		{"", ""},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, turkish.Normalize(tc.input), "input: %q", tc.input)
	}
}

func TestNormalizeSpace(t *testing.T) {
	assert.Equal(t, "a b c", turkish.NormalizeSpace("  a \t b\n c "))
	assert.Equal(t, "", turkish.NormalizeSpace("   "))
}
