//go:build integration

package db_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakelab-io/stake-ledger/internal/db"
	"github.com/stakelab-io/stake-ledger/testutil"
)

func TestMaturity(t *testing.T) {
	ctx := t.Context()
	t.Cleanup(func() {
		resetDatabase(t)
	})

	now := time.Now().UTC().Truncate(time.Millisecond)

	t.Run("find matured", func(t *testing.T) {
		matured := testutil.RandomAddress(t)
		pending := testutil.RandomAddress(t)

		require.NoError(t, testDB.SaveMaturity(ctx, matured, now.Add(-time.Minute)))
		require.NoError(t, testDB.SaveMaturity(ctx, pending, now.Add(time.Hour)))

		items, err := testDB.FindMaturedStakes(ctx, now, 100)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, matured, items[0].Participant)

		resetDatabase(t)
	})

	t.Run("limit caps the batch", func(t *testing.T) {
		for range 5 {
			participant := testutil.RandomAddress(t)
			require.NoError(t, testDB.SaveMaturity(ctx, participant, now.Add(-time.Minute)))
		}

		items, err := testDB.FindMaturedStakes(ctx, now, 3)
		require.NoError(t, err)
		assert.Len(t, items, 3)

		resetDatabase(t)
	})

	t.Run("save is an upsert", func(t *testing.T) {
		participant := testutil.RandomAddress(t)
		require.NoError(t, testDB.SaveMaturity(ctx, participant, now.Add(time.Hour)))
		// re-staking pushes maturity out; the marker is replaced, not duplicated
		require.NoError(t, testDB.SaveMaturity(ctx, participant, now.Add(2*time.Hour)))

		items, err := testDB.FindMaturedStakes(ctx, now.Add(3*time.Hour), 100)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.True(t, items[0].MaturesAt.Equal(now.Add(2*time.Hour)))

		resetDatabase(t)
	})

	t.Run("delete", func(t *testing.T) {
		// deleting a missing marker returns not found
		err := testDB.DeleteMaturity(ctx, testutil.RandomAddress(t))
		require.Error(t, err)
		assert.True(t, db.IsNotFoundError(err))

		participant := testutil.RandomAddress(t)
		require.NoError(t, testDB.SaveMaturity(ctx, participant, now))
		require.NoError(t, testDB.DeleteMaturity(ctx, participant))

		items, err := testDB.FindMaturedStakes(ctx, now.Add(time.Minute), 100)
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}
