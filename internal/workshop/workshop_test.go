package workshop

import (
	"context"
	"path/filepath"
	"testing"

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

func TestResolveItemKey(t *testing.T) {
	assert.Equal(t, "mask", ResolveItemKey("방진마스크"))
	assert.Equal(t, "scrap", ResolveItemKey("고철"))
	assert.Equal(t, "", ResolveItemKey("없는아이템"))
}

func TestCraftDeductsCostAndMaterials(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	userID := "user-1"

	require.NoError(t, st.WithTx(ctx, func(tx *store.Tx) error {
		if err := tx.AddUserCredits(userID, 2_000); err != nil {
			return err
		}
		if err := tx.AddUserItem(userID, "cloth", 2); err != nil {
			return err
		}
		return tx.AddUserItem(userID, "filter", 1)
	}))

	w := New(st)
	res, err := w.Craft(ctx, userID, "mask")
	require.NoError(t, err)
	assert.Equal(t, "mask", res.Recipe.ID)
	assert.Equal(t, int64(0), res.CreditsAfter)

	qty, err := st.GetItemQty(userID, "mask")
	require.NoError(t, err)
	assert.Equal(t, int64(1), qty)
}

func TestCraftRejectsInsufficientCredits(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	w := New(st)

	_, err := w.Craft(ctx, "user-2", "mask")
	assert.Error(t, err)
}

func TestCraftRejectsUnknownRecipe(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	w := New(st)

	_, err := w.Craft(ctx, "user-3", "does-not-exist")
	assert.Error(t, err)
}

func TestSellAllStacksAndRejectsUnknownItem(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	userID := "user-4"

	require.NoError(t, st.WithTx(ctx, func(tx *store.Tx) error {
		return tx.AddUserItem(userID, "scrap", 5)
	}))

	w := New(st)
	res, err := w.Sell(ctx, userID, "scrap", -1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Qty)
	assert.Equal(t, SellPrices["scrap"]*5, res.CreditsGained)

	_, err = w.Sell(ctx, userID, "mask", 1)
	assert.Error(t, err) // mask has no sell price
}
