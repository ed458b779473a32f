package uniswapv2

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to find a pool by address in a slice, for testing assertions.
func findPoolByAddr(pools []Pool, addr common.Address) *Pool {
	for i := range pools {
		if pools[i].Addr == addr {
			return &pools[i]
		}
	}
	return nil
}

func TestPatcher(t *testing.T) {
	initialState := []Pool{
		poolAt("0xb1", 1000, 5000),
		poolAt("0xb2", 2000, 6000),
		poolAt("0xb3", 3000, 7000),
	}

	t.Run("should handle only additions", func(t *testing.T) {
		added := poolAt("0xb4", 4000, 1)
		newState, err := Patcher(initialState, PoolSetDiff{Additions: []Pool{added}})
		require.NoError(t, err)

		assert.Len(t, newState, 4, "Should have 4 pools after addition")
		newPool := findPoolByAddr(newState, added.Addr)
		require.NotNil(t, newPool)
		assert.Equal(t, int64(4000), newPool.Reserve0.Int64())
	})

	t.Run("should handle only deletions", func(t *testing.T) {
		newState, err := Patcher(initialState, PoolSetDiff{Deletions: []common.Address{common.HexToAddress("0xb2")}})
		require.NoError(t, err)

		assert.Len(t, newState, 2, "Should have 2 pools after deletion")
		assert.Nil(t, findPoolByAddr(newState, common.HexToAddress("0xb2")))
		assert.NotNil(t, findPoolByAddr(newState, common.HexToAddress("0xb1")))
	})

	t.Run("should handle only updates", func(t *testing.T) {
		updated := poolAt("0xb1", 1001, 5005)
		newState, err := Patcher(initialState, PoolSetDiff{Updates: []Pool{updated}})
		require.NoError(t, err)

		assert.Len(t, newState, 3, "Should still have 3 pools after update")
		updatedPool := findPoolByAddr(newState, updated.Addr)
		require.NotNil(t, updatedPool)
		assert.Equal(t, int64(1001), updatedPool.Reserve0.Int64())
		assert.Equal(t, int64(5005), updatedPool.Reserve1.Int64())
	})

	t.Run("should verify deep copy on update", func(t *testing.T) {
		localInitial := []Pool{poolAt("0xb1", 1000, 5000)}
		updated := poolAt("0xb1", 1001, 5005)

		newState, err := Patcher(localInitial, PoolSetDiff{Updates: []Pool{updated}})
		require.NoError(t, err)

		// Mutating the diff's pool after the patch must not leak into the new state.
		updated.Reserve0.SetInt64(42)
		patched := findPoolByAddr(newState, updated.Addr)
		require.NotNil(t, patched)
		assert.Equal(t, int64(1001), patched.Reserve0.Int64())
	})

	t.Run("round trip with differ restores the old state", func(t *testing.T) {
		moved := []Pool{
			poolAt("0xb1", 1111, 4444),
			poolAt("0xb3", 3000, 7000),
		}

		// Diff from the moved state back to the initial state, then patch.
		diff := Differ(moved, initialState)
		restored, err := Patcher(moved, diff)
		require.NoError(t, err)
		assert.True(t, Differ(restored, initialState).IsEmpty(), "patched state should equal the initial state")
	})
}
