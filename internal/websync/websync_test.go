package websync

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/abydos/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "abydos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

type fakeSource struct {
	bot    BotInfo
	guilds []GuildInfo
}

func (f fakeSource) SelfUser() BotInfo    { return f.bot }
func (f fakeSource) Guilds() []GuildInfo  { return f.guilds }

func TestBuildPayloadIncludesWorldAndIdentity(t *testing.T) {
	st := newTestStore(t)
	source := fakeSource{bot: BotInfo{UserID: "bot-1", Username: "Abydos"}, guilds: []GuildInfo{{GuildID: "g1", Name: "Colony"}}}
	s := New(st, source, "https://example.test/sync", "tok", time.Minute)

	payload, err := s.buildPayload()
	require.NoError(t, err)
	assert.Equal(t, "bot-1", payload.Bot.UserID)
	require.Len(t, payload.Guilds, 1)
	assert.Equal(t, "g1", payload.Guilds[0].GuildID)
	assert.NotEmpty(t, payload.World.Weather)
}

func TestRunIsNoopWithoutURLOrToken(t *testing.T) {
	st := newTestStore(t)
	s := New(st, fakeSource{}, "", "", time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	s.Run(ctx) // must return promptly instead of blocking on a ticker
}

func TestSyncOnceSendsAuthorizedJSONPost(t *testing.T) {
	received := make(chan *http.Request, 1)
	var bodyBytes []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		bodyBytes = buf
		received <- r
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	st := newTestStore(t)
	source := fakeSource{bot: BotInfo{UserID: "bot-2"}}
	s := New(st, source, srv.URL, "secret-token", time.Minute)

	s.syncOnce(context.Background())

	select {
	case r := <-received:
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
	default:
		t.Fatal("server never received a request")
	}

	var decoded Payload
	require.NoError(t, json.Unmarshal(bodyBytes, &decoded))
	assert.Equal(t, "bot-2", decoded.Bot.UserID)
}
