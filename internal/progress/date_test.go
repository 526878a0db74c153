package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-10")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2024, Month: time.January, Day: 10}, d)
	assert.Equal(t, "2024-01-10", d.String())

	zero, err := ParseDate("")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())
	assert.Equal(t, "", zero.String())

	_, err = ParseDate("10/01/2024")
	assert.Error(t, err)
}

func TestDaysSince(t *testing.T) {
	tests := []struct {
		from, to string
		want     int
	}{
		{"2024-01-10", "2024-01-10", 0},
		{"2024-01-10", "2024-01-11", 1},
		{"2024-01-10", "2024-01-20", 10},
		{"2024-01-11", "2024-01-10", -1},
		{"2024-03-09", "2024-03-11", 2}, // US DST change has no effect on calendar days
		{"2023-02-28", "2024-02-29", 366},
	}

	for _, tt := range tests {
		got := MustParseDate(tt.to).DaysSince(MustParseDate(tt.from))
		assert.Equal(t, tt.want, got, "%s -> %s", tt.from, tt.to)
	}
}

func TestToday(t *testing.T) {
	// 23:30 UTC on Jan 10 is already Jan 11 in UTC+3.
	now := time.Date(2024, time.January, 10, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, MustParseDate("2024-01-10"), Today(now, nil))
	assert.Equal(t, MustParseDate("2024-01-11"), Today(now, time.FixedZone("UTC+03:00", 3*3600)))
	assert.Equal(t, MustParseDate("2024-01-10"), Today(now, time.FixedZone("UTC-05:00", -5*3600)))
}

func TestAddDays(t *testing.T) {
	assert.Equal(t, MustParseDate("2024-03-01"), MustParseDate("2024-02-29").AddDays(1))
	assert.Equal(t, MustParseDate("2023-12-31"), MustParseDate("2024-01-01").AddDays(-1))
}
