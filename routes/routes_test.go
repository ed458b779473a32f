package routes

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	uniswapv2 "github.com/defistate/flasharb-go/protocols/uniswapv2"
)

var (
	tokenA = common.HexToAddress("0x1000000000000000000000000000000000000001")
	tokenB = common.HexToAddress("0x2000000000000000000000000000000000000002")
	tokenC = common.HexToAddress("0x3000000000000000000000000000000000000003")
	tokenD = common.HexToAddress("0x4000000000000000000000000000000000000004")
)

func poolBetween(addrHex string, a, b common.Address) uniswapv2.Pool {
	t0, t1 := uniswapv2.SortTokens(a, b)
	return uniswapv2.Pool{
		Addr:     common.HexToAddress(addrHex),
		Token0:   t0,
		Token1:   t1,
		Reserve0: big.NewInt(1_000_000),
		Reserve1: big.NewInt(1_000_000),
		FeeBps:   30,
	}
}

func triangleGraph() *Graph {
	return NewGraph([]uniswapv2.Pool{
		poolBetween("0xab", tokenA, tokenB),
		poolBetween("0xbc", tokenB, tokenC),
		poolBetween("0xca", tokenC, tokenA),
	})
}

func TestPairBetween(t *testing.T) {
	g := triangleGraph()

	addr, ok := g.PairBetween(tokenA, tokenB)
	require.True(t, ok)
	assert.Equal(t, common.HexToAddress("0xab"), addr)

	// Order does not matter.
	reversed, ok := g.PairBetween(tokenB, tokenA)
	require.True(t, ok)
	assert.Equal(t, addr, reversed)

	_, ok = g.PairBetween(tokenA, tokenD)
	assert.False(t, ok)
}

func TestPoolsForToken(t *testing.T) {
	g := triangleGraph()

	pools, err := g.PoolsForToken(tokenA)
	require.NoError(t, err)
	assert.Len(t, pools, 2)

	_, err = g.PoolsForToken(tokenD)
	assert.ErrorIs(t, err, ErrUnknownToken)
}

func TestValidateCycle(t *testing.T) {
	g := triangleGraph()

	t.Run("valid triangle", func(t *testing.T) {
		assert.NoError(t, g.ValidateCycle([]common.Address{tokenA, tokenB, tokenC, tokenA}))
	})

	t.Run("too short", func(t *testing.T) {
		assert.ErrorIs(t, g.ValidateCycle([]common.Address{tokenA, tokenA}), ErrRouteTooShort)
	})

	t.Run("not cyclic", func(t *testing.T) {
		assert.ErrorIs(t, g.ValidateCycle([]common.Address{tokenA, tokenB, tokenC, tokenB}), ErrRouteNotCyclic)
	})

	t.Run("revisits intermediate token", func(t *testing.T) {
		err := g.ValidateCycle([]common.Address{tokenA, tokenB, tokenC, tokenB, tokenC, tokenA})
		assert.ErrorIs(t, err, ErrRouteRevisitsToken)
	})

	t.Run("missing pool for hop", func(t *testing.T) {
		sparse := NewGraph([]uniswapv2.Pool{
			poolBetween("0xab", tokenA, tokenB),
			poolBetween("0xca", tokenC, tokenA),
		})
		err := sparse.ValidateCycle([]common.Address{tokenA, tokenB, tokenC, tokenA})
		assert.ErrorIs(t, err, ErrNoPoolForHop)
	})

	t.Run("unknown token", func(t *testing.T) {
		err := g.ValidateCycle([]common.Address{tokenA, tokenD, tokenC, tokenA})
		assert.ErrorIs(t, err, ErrUnknownToken)
	})
}
