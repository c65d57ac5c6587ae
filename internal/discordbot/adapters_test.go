package discordbot

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/abydos/internal/store"
	"github.com/talgya/abydos/internal/worldstate"
)

func TestAnnounceChannelKeyIsNamespacedPerGuild(t *testing.T) {
	assert.Equal(t, "announce_channel:guild-1", announceChannelKey("guild-1"))
	assert.NotEqual(t, announceChannelKey("guild-1"), announceChannelKey("guild-2"))
}

func TestWeatherTextCoversAllKnownWeathers(t *testing.T) {
	assert.Equal(t, "맑음", weatherText(worldstate.Clear))
	assert.Equal(t, "흐림", weatherText(worldstate.Cloudy))
	assert.Equal(t, "모래폭풍", weatherText(worldstate.Sandstorm))
}

func TestAbs64(t *testing.T) {
	assert.Equal(t, int64(5), abs64(-5))
	assert.Equal(t, int64(5), abs64(5))
	assert.Equal(t, int64(0), abs64(0))
}

func TestSetAndGetAnnounceChannelRoundTrips(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "abydos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	b := &Bot{store: st}
	_, ok := b.announceChannelFor("guild-1")
	assert.False(t, ok)

	require.NoError(t, b.SetAnnounceChannel("guild-1", "chan-1"))
	ch, ok := b.announceChannelFor("guild-1")
	assert.True(t, ok)
	assert.Equal(t, "chan-1", ch)
}
