package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestNextWeekend(t *testing.T) {
	tests := []struct {
		name    string
		now     time.Time
		wantSat string
		wantSun string
	}{
		{"monday", date(2026, time.August, 24), "2026-08-29", "2026-08-30"},
		{"friday", date(2026, time.August, 28), "2026-08-29", "2026-08-30"},
		{"saturday counts as this weekend", date(2026, time.August, 29), "2026-08-29", "2026-08-30"},
		{"sunday rolls to next weekend", date(2026, time.August, 30), "2026-09-05", "2026-09-06"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sat, sun := nextWeekend(tc.now)
			assert.Equal(t, tc.wantSat, sat)
			assert.Equal(t, tc.wantSun, sun)
		})
	}
}

func TestParsePriceBucket(t *testing.T) {
	t.Run("closed range", func(t *testing.T) {
		min, max, ok := parsePriceBucket("20-50")
		require.True(t, ok)
		require.NotNil(t, min)
		require.NotNil(t, max)
		assert.Equal(t, 20.0, *min)
		assert.Equal(t, 50.0, *max)
	})

	t.Run("open top bucket", func(t *testing.T) {
		min, max, ok := parsePriceBucket("100+")
		require.True(t, ok)
		require.NotNil(t, min)
		assert.Equal(t, 100.0, *min)
		assert.Nil(t, max, "no upper bound on the top bucket")
	})

	t.Run("zero floor", func(t *testing.T) {
		min, max, ok := parsePriceBucket("0-20")
		require.True(t, ok)
		assert.Equal(t, 0.0, *min)
		assert.Equal(t, 20.0, *max)
	})

	t.Run("garbage", func(t *testing.T) {
		for _, s := range []string{"", "cheap", "20-", "-50", "a-b", "+"} {
			_, _, ok := parsePriceBucket(s)
			assert.False(t, ok, "input %q", s)
		}
	})
}
