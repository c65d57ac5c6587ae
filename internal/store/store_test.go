package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "abydos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestOpenCreatesDataDirAndMigrates(t *testing.T) {
	st := newTestStore(t)
	var val string
	require.NoError(t, st.db.Get(&val, "SELECT value FROM schema_meta WHERE key='schema_version'"))
	assert.Equal(t, fmt.Sprintf("%d", schemaVersion), val)
}

func TestOpenIsIdempotentAcrossReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abydos.db")
	st1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, st1.SetBotConfig("k", "v"))
	require.NoError(t, st1.Close())

	st2, err := Open(path)
	require.NoError(t, err)
	defer st2.Close()

	v, ok, err := st2.GetBotConfig("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	sentinel := errors.New("boom")

	err := st.WithTx(ctx, func(tx *Tx) error {
		if err := tx.AddUserCredits("user-1", 500); err != nil {
			return err
		}
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	econ, err := st.GetOrCreateUserEconomy("user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), econ.Credits)
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	err := st.WithTx(ctx, func(tx *Tx) error {
		return tx.AddUserCredits("user-2", 750)
	})
	require.NoError(t, err)

	econ, err := st.GetOrCreateUserEconomy("user-2")
	require.NoError(t, err)
	assert.Equal(t, int64(750), econ.Credits)
}

func TestBotConfigRoundTripAndMissingKey(t *testing.T) {
	st := newTestStore(t)

	_, ok, err := st.GetBotConfig("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.SetBotConfig("announce_channel:guild-1", "chan-1"))
	v, ok, err := st.GetBotConfig("announce_channel:guild-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "chan-1", v)

	require.NoError(t, st.SetBotConfig("announce_channel:guild-1", "chan-2"))
	v, _, err = st.GetBotConfig("announce_channel:guild-1")
	require.NoError(t, err)
	assert.Equal(t, "chan-2", v)
}
