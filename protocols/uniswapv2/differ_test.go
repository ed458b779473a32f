package uniswapv2

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func poolAt(hex string, r0, r1 int64) Pool {
	return Pool{
		Addr:     common.HexToAddress(hex),
		Token0:   tokenLow,
		Token1:   tokenHigh,
		Reserve0: big.NewInt(r0),
		Reserve1: big.NewInt(r1),
	}
}

func TestDiffer(t *testing.T) {
	pool1 := poolAt("0xa1", 1000, 5000)
	pool2 := poolAt("0xa2", 2000, 6000)

	t.Run("identical states produce an empty diff", func(t *testing.T) {
		diff := Differ([]Pool{pool1, pool2}, []Pool{pool1, pool2})
		assert.True(t, diff.IsEmpty())
	})

	t.Run("detects additions", func(t *testing.T) {
		pool3 := poolAt("0xa3", 1, 1)
		diff := Differ([]Pool{pool1}, []Pool{pool1, pool3})
		require.Len(t, diff.Additions, 1)
		assert.Equal(t, pool3.Addr, diff.Additions[0].Addr)
		assert.Empty(t, diff.Updates)
		assert.Empty(t, diff.Deletions)
	})

	t.Run("detects reserve updates", func(t *testing.T) {
		moved := poolAt("0xa1", 1234, 4900)
		diff := Differ([]Pool{pool1, pool2}, []Pool{moved, pool2})
		require.Len(t, diff.Updates, 1)
		assert.Equal(t, int64(1234), diff.Updates[0].Reserve0.Int64())
		assert.Empty(t, diff.Additions)
	})

	t.Run("detects deletions", func(t *testing.T) {
		diff := Differ([]Pool{pool1, pool2}, []Pool{pool1})
		require.Len(t, diff.Deletions, 1)
		assert.Equal(t, pool2.Addr, diff.Deletions[0])
	})
}
