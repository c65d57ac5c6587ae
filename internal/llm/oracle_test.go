package llm

import (
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

func TestOracleDisabledWithoutClient(t *testing.T) {
	st := newTestStore(t)
	o := NewOracle(nil, st, 20, 0.001, 0.005)
	assert.False(t, o.Enabled())

	_, err := o.Generate("narration", "sys", "hi", 100)
	assert.Error(t, err)
}

func TestEstimatedCallCostUSDScalesWithPromptAndTokens(t *testing.T) {
	st := newTestStore(t)
	o := NewOracle(nil, st, 20, 0.001, 0.005)

	small := o.estimatedCallCostUSD(40, 100)
	large := o.estimatedCallCostUSD(4000, 1000)
	assert.Greater(t, large, small)
}

func TestGenerateRefusesWhenProjectedCostExceedsMonthlyCap(t *testing.T) {
	st := newTestStore(t)
	month := time.Now().UTC().Format("2006-01")
	require.NoError(t, st.AddLLMUsage(month, 19.999, 1000))

	o := NewOracle(NewClient("sk-test"), st, 20, 0.001, 0.005)
	_, err := o.Generate("narration", "sys", "input text", 100_000)
	assert.ErrorIs(t, err, ErrBudgetExceeded)
}
