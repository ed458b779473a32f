package calculator

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
)

func newPool(r0, r1 int64, feeBps uint16) uniswapv2.Pool {
	return uniswapv2.Pool{
		Addr:     common.HexToAddress("0xp00l"),
		Token0:   tokenA,
		Token1:   tokenB,
		Reserve0: big.NewInt(r0),
		Reserve1: big.NewInt(r1),
		FeeBps:   feeBps,
	}
}

func TestGetAmountOut(t *testing.T) {
	t.Run("known value with 30 bps fee", func(t *testing.T) {
		pool := newPool(1_000_000, 1_000_000, 30)

		out, err := GetAmountOut(big.NewInt(1000), tokenA, tokenB, pool)
		require.NoError(t, err)

		// 1000*9970*1e6 / (1e6*10000 + 1000*9970) = 996
		assert.Equal(t, int64(996), out.Int64())
	})

	t.Run("reverse direction uses the other reserve", func(t *testing.T) {
		pool := newPool(1_000_000, 2_000_000, 30)

		forward, err := GetAmountOut(big.NewInt(1000), tokenA, tokenB, pool)
		require.NoError(t, err)
		reverse, err := GetAmountOut(big.NewInt(1000), tokenB, tokenA, pool)
		require.NoError(t, err)

		assert.Equal(t, 1, forward.Cmp(reverse), "selling the scarce side should pay more")
	})

	t.Run("zero reserves yield zero output", func(t *testing.T) {
		pool := newPool(0, 0, 30)
		out, err := GetAmountOut(big.NewInt(1000), tokenA, tokenB, pool)
		require.NoError(t, err)
		assert.Zero(t, out.Sign())
	})

	t.Run("nil amount", func(t *testing.T) {
		_, err := GetAmountOut(nil, tokenA, tokenB, newPool(1, 1, 30))
		assert.ErrorIs(t, err, ErrNilAmount)
	})

	t.Run("negative amount", func(t *testing.T) {
		_, err := GetAmountOut(big.NewInt(-5), tokenA, tokenB, newPool(1, 1, 30))
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("token not in pool", func(t *testing.T) {
		_, err := GetAmountOut(big.NewInt(5), tokenA, tokenC, newPool(1, 1, 30))
		assert.ErrorIs(t, err, ErrTokenMismatch)
	})
}

func TestGetAmountIn(t *testing.T) {
	t.Run("round trips above GetAmountOut", func(t *testing.T) {
		pool := newPool(1_000_000, 1_000_000, 30)

		out, err := GetAmountOut(big.NewInt(1000), tokenA, tokenB, pool)
		require.NoError(t, err)

		in, err := GetAmountIn(out, tokenA, tokenB, pool)
		require.NoError(t, err)

		// The +1 rounding means the required input never undershoots.
		assert.LessOrEqual(t, in.Int64(), int64(1001))
		assert.GreaterOrEqual(t, in.Int64(), int64(999))
	})

	t.Run("amountOut at or above reserve fails", func(t *testing.T) {
		pool := newPool(1_000_000, 1_000_000, 30)
		_, err := GetAmountIn(big.NewInt(1_000_000), tokenA, tokenB, pool)
		assert.ErrorIs(t, err, ErrInsufficientLiquidity)
	})
}

func TestSimulateSwap(t *testing.T) {
	pool := newPool(1_000_000, 1_000_000, 30)

	out, newState, err := SimulateSwap(big.NewInt(1000), tokenA, tokenB, pool)
	require.NoError(t, err)

	assert.Equal(t, int64(996), out.Int64())
	assert.Equal(t, int64(1_001_000), newState.Reserve0.Int64())
	assert.Equal(t, int64(999_004), newState.Reserve1.Int64())

	// The input pool must be untouched.
	assert.Equal(t, int64(1_000_000), pool.Reserve0.Int64())
	assert.Equal(t, int64(1_000_000), pool.Reserve1.Int64())
}
