package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avialab/toolkiosk/internal/confidence"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "kiosk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestConfidenceDefault(t *testing.T) {
	store := newTestStore(t)

	v, err := store.GetConfidence(context.Background())
	require.NoError(t, err)
	assert.Equal(t, confidence.Default, v)
}

func TestConfidenceRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetConfidence(ctx, 0.01))
	v, err := store.GetConfidence(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.01, v)

	// Last writer wins.
	require.NoError(t, store.SetConfidence(ctx, 0.99))
	v, err = store.GetConfidence(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.99, v)
}

func TestConfidenceValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetConfidence(ctx, 0.5))

	for _, v := range []float64{0, 1, -0.1, 1.5} {
		err := store.SetConfidence(ctx, v)
		require.Error(t, err, "value %v must be rejected", v)
		var verr *confidence.ValidationError
		assert.ErrorAs(t, err, &verr)
	}

	// Rejected writes leave the stored value untouched.
	v, err := store.GetConfidence(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.5, v)
}

func TestTransactionLog(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tx := &ReturnTransaction{
		SessionID:     "abc",
		ToolkitID:     1,
		TotalReturned: 10,
		MissingCount:  1,
		ExtraCount:    0,
		AllReturned:   false,
		HandCheck:     true,
	}
	require.NoError(t, store.SaveTransaction(ctx, tx))
	assert.NotZero(t, tx.ID)

	tx2 := &ReturnTransaction{SessionID: "def", ToolkitID: 1, TotalReturned: 11, AllReturned: true}
	require.NoError(t, store.SaveTransaction(ctx, tx2))

	txs, err := store.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	// Newest first.
	assert.Equal(t, "def", txs[0].SessionID)
	assert.True(t, txs[0].AllReturned)
	assert.Equal(t, "abc", txs[1].SessionID)
	assert.Equal(t, 1, txs[1].MissingCount)
	assert.True(t, txs[1].HandCheck)
	assert.False(t, txs[1].CreatedAt.IsZero())
}
