package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYMDRoundTrip(t *testing.T) {
	tm := time.Date(2026, 3, 5, 15, 30, 0, 0, time.UTC)
	ymd := YMD(tm)
	assert.Equal(t, "2026-03-06", ymd) // KST is UTC+9, so 15:30 UTC is already the 6th

	parsed, err := ParseYMD(ymd)
	require.NoError(t, err)
	assert.Equal(t, ymd, YMD(parsed))
}

func TestWeekKeyFromYMD(t *testing.T) {
	wk, err := WeekKeyFromYMD("2026-03-02") // a Monday
	require.NoError(t, err)
	assert.Regexp(t, `^2026-W\d{2}$`, wk)
}

func TestWeekYMDsFromWeekKeyStartsOnMonday(t *testing.T) {
	wk, err := WeekKeyFromYMD("2026-03-05")
	require.NoError(t, err)

	days, err := WeekYMDsFromWeekKey(wk)
	require.NoError(t, err)

	mon, err := ParseYMD(days[0])
	require.NoError(t, err)
	assert.Equal(t, time.Monday, mon.Weekday())

	for i := 1; i < 7; i++ {
		prev, err := ParseYMD(days[i-1])
		require.NoError(t, err)
		cur, err := ParseYMD(days[i])
		require.NoError(t, err)
		assert.Equal(t, prev.AddDate(0, 0, 1), cur)
	}
}

func TestTimeBandBoundaries(t *testing.T) {
	mk := func(h int) time.Time { return time.Date(2026, 3, 5, h, 0, 0, 0, KST) }
	assert.Equal(t, BandNight, TimeBand(mk(0)))
	assert.Equal(t, BandNight, TimeBand(mk(6)))
	assert.Equal(t, BandMorning, TimeBand(mk(7)))
	assert.Equal(t, BandMorning, TimeBand(mk(11)))
	assert.Equal(t, BandDay, TimeBand(mk(12)))
	assert.Equal(t, BandDay, TimeBand(mk(17)))
	assert.Equal(t, BandEvening, TimeBand(mk(18)))
	assert.Equal(t, BandEvening, TimeBand(mk(23)))
}

func TestBandString(t *testing.T) {
	assert.Equal(t, "night", BandNight.String())
	assert.Equal(t, "morning", BandMorning.String())
	assert.Equal(t, "day", BandDay.String())
	assert.Equal(t, "evening", BandEvening.String())
	assert.Equal(t, "unknown", Band(99).String())
}

func TestIsMondayMaintenanceWindow(t *testing.T) {
	monday0005 := time.Date(2026, 3, 2, 0, 5, 0, 0, KST)
	assert.True(t, IsMondayMaintenanceWindow(monday0005))
	assert.True(t, IsMondayMaintenanceWindow(monday0005.Add(30*time.Minute)))
	assert.False(t, IsMondayMaintenanceWindow(monday0005.Add(2*time.Hour)))

	tuesday := time.Date(2026, 3, 3, 0, 5, 0, 0, KST)
	assert.False(t, IsMondayMaintenanceWindow(tuesday))
}

func TestPreviousWeekKey(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, KST)
	assert.Equal(t, WeekKey(now.AddDate(0, 0, -7)), PreviousWeekKey(now))
}
