package presence

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/abydos/internal/calendar"
)

type fakeSession struct {
	calls int
	last  discordgo.UpdateStatusData
}

func (f *fakeSession) UpdateStatusComplex(usd discordgo.UpdateStatusData) error {
	f.calls++
	f.last = usd
	return nil
}

func TestNewFallsBackToDefaultItems(t *testing.T) {
	r := New(&fakeSession{}, nil)
	assert.Equal(t, DefaultItems(), r.items)
}

func TestNextIntervalWithinBounds(t *testing.T) {
	r := New(&fakeSession{}, DefaultItems())
	for i := 0; i < 50; i++ {
		d := r.nextInterval()
		assert.GreaterOrEqual(t, d.Minutes(), float64(35))
		assert.LessOrEqual(t, d.Minutes(), float64(95))
	}
}

func TestBandAllowedMatchesExactBandsOnly(t *testing.T) {
	item := Item{Bands: []calendar.Band{calendar.BandNight}}
	assert.True(t, bandAllowed(item, calendar.BandNight))
	assert.False(t, bandAllowed(item, calendar.BandDay))
}

func TestApplyOnceUpdatesSessionStatus(t *testing.T) {
	fs := &fakeSession{}
	r := New(fs, []Item{{Type: discordgo.ActivityTypeGame, Text: "only-item", Bands: []calendar.Band{}}})
	r.applyOnce()
	require.Equal(t, 1, fs.calls)
	require.Len(t, fs.last.Activities, 1)
	assert.Equal(t, "only-item", fs.last.Activities[0].Name)
}

func TestApplyOnceFallsBackToAllItemsWhenNoneMatchBand(t *testing.T) {
	fs := &fakeSession{}
	// An item whose Bands never include the current real band still
	// fires, since applyOnce falls back to the full item list when no
	// candidate matches.
	r := New(fs, []Item{{Type: discordgo.ActivityTypeGame, Text: "fallback-item", Bands: nil}})
	r.applyOnce()
	assert.Equal(t, 1, fs.calls)
}
