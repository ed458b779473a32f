package routes

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	uniswapv2 "github.com/defistate/flasharb-go/protocols/uniswapv2"
)

func finderPool(addr string, tokenA, tokenB common.Address, reserveA, reserveB int64, feeBps uint16) uniswapv2.Pool {
	token0, token1 := uniswapv2.SortTokens(tokenA, tokenB)
	reserve0, reserve1 := reserveA, reserveB
	if token0 != tokenA {
		reserve0, reserve1 = reserveB, reserveA
	}
	return uniswapv2.Pool{
		Addr:     common.HexToAddress(addr),
		Token0:   token0,
		Token1:   token1,
		Reserve0: big.NewInt(reserve0),
		Reserve1: big.NewInt(reserve1),
		FeeBps:   feeBps,
	}
}

func TestFindBestCycle(t *testing.T) {
	tokenA := common.HexToAddress("0x0000000000000000000000000000000000000A01")
	tokenB := common.HexToAddress("0x0000000000000000000000000000000000000B01")
	tokenC := common.HexToAddress("0x0000000000000000000000000000000000000C01")
	tokenW := common.HexToAddress("0x0000000000000000000000000000000000000D01")

	t.Run("finds the skewed three hop cycle", func(t *testing.T) {
		finder := NewFinder([]uniswapv2.Pool{
			finderPool("0x01", tokenA, tokenW, 1_000_000, 1_000_000, 30),
			finderPool("0x02", tokenA, tokenB, 1_000_000, 1_060_000, 30),
			finderPool("0x03", tokenB, tokenC, 1_000_000, 1_060_000, 30),
			finderPool("0x04", tokenC, tokenA, 1_000_000, 1_060_000, 30),
		})

		hops, out, err := finder.FindBestCycle(tokenA, big.NewInt(1_000), 2)
		require.NoError(t, err)
		require.NotNil(t, hops)

		assert.Equal(t,
			[]common.Address{tokenA, tokenB, tokenC, tokenA},
			TokenPath(hops),
		)
		assert.Equal(t, 1, out.Cmp(big.NewInt(1_000)), "skewed cycle must beat the input")
	})

	t.Run("flat pools close an unprofitable cycle", func(t *testing.T) {
		finder := NewFinder([]uniswapv2.Pool{
			finderPool("0x01", tokenA, tokenB, 1_000_000, 1_000_000, 30),
			finderPool("0x02", tokenB, tokenC, 1_000_000, 1_000_000, 30),
			finderPool("0x03", tokenC, tokenA, 1_000_000, 1_000_000, 30),
		})

		hops, out, err := finder.FindBestCycle(tokenA, big.NewInt(1_000), 2)
		require.NoError(t, err)
		require.NotNil(t, hops, "an unprofitable best cycle is still reported")
		assert.Equal(t, -1, out.Cmp(big.NewInt(1_000)), "fees make the flat cycle lossy")
	})

	t.Run("two hop round trip counts as a cycle", func(t *testing.T) {
		finder := NewFinder([]uniswapv2.Pool{
			finderPool("0x01", tokenA, tokenB, 1_000_000, 1_000_000, 30),
		})

		hops, out, err := finder.FindBestCycle(tokenA, big.NewInt(1_000), 2)
		require.NoError(t, err)
		require.NotNil(t, hops)
		assert.Equal(t, []common.Address{tokenA, tokenB, tokenA}, TokenPath(hops))
		assert.Equal(t, -1, out.Cmp(big.NewInt(1_000)), "round trip pays the fee twice")
	})

	t.Run("drained pool yields no cycle", func(t *testing.T) {
		finder := NewFinder([]uniswapv2.Pool{
			finderPool("0x01", tokenA, tokenB, 0, 1_000_000, 30),
		})

		hops, out, err := finder.FindBestCycle(tokenA, big.NewInt(1_000), 2)
		require.NoError(t, err)
		assert.Nil(t, hops)
		assert.Nil(t, out)
	})

	t.Run("unknown start token", func(t *testing.T) {
		finder := NewFinder(nil)
		_, _, err := finder.FindBestCycle(tokenA, big.NewInt(1_000), 1)
		require.ErrorIs(t, err, ErrUnknownToken)
	})

	t.Run("zero runs rejected", func(t *testing.T) {
		finder := NewFinder(nil)
		_, _, err := finder.FindBestCycle(tokenA, big.NewInt(1_000), 0)
		require.ErrorIs(t, err, ErrInvalidRuns)
	})
}

func TestTokenPath(t *testing.T) {
	assert.Nil(t, TokenPath(nil))

	a := common.HexToAddress("0x01")
	b := common.HexToAddress("0x02")
	c := common.HexToAddress("0x03")
	path := TokenPath([]Hop{
		{TokenIn: a, TokenOut: b},
		{TokenIn: b, TokenOut: c},
		{TokenIn: c, TokenOut: a},
	})
	assert.Equal(t, []common.Address{a, b, c, a}, path)
}
