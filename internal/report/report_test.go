package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDate(t *testing.T) {
	today := time.Date(2025, 12, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		value    string
		expected string
		wantErr  bool
	}{
		{"today", "today", "2025-12-15", false},
		{"yesterday", "yesterday", "2025-12-14", false},
		{"seven days ago", "7daysAgo", "2025-12-08", false},
		{"thirty days ago", "30daysAgo", "2025-11-15", false},
		{"iso date", "2025-01-31", "2025-01-31", false},
		{"garbage", "next tuesday", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, err := ResolveDate(tt.value, today)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, resolved.Format("2006-01-02"))
		})
	}
}
