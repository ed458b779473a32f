package calculator

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinAmountOut(t *testing.T) {
	t.Run("applies tolerance", func(t *testing.T) {
		minOut, err := MinAmountOut(big.NewInt(996), 500)
		require.NoError(t, err)
		// 996 * 9500 / 10000 = 946
		assert.Equal(t, int64(946), minOut.Int64())
	})

	t.Run("zero tolerance keeps the full expectation", func(t *testing.T) {
		minOut, err := MinAmountOut(big.NewInt(996), 0)
		require.NoError(t, err)
		assert.Equal(t, int64(996), minOut.Int64())
	})

	t.Run("tolerance above 10000 bps is rejected", func(t *testing.T) {
		_, err := MinAmountOut(big.NewInt(996), 10001)
		assert.ErrorIs(t, err, ErrInvalidSlippage)
	})
}

func TestPriceImpact(t *testing.T) {
	pool := newPool(1_000_000, 1_000_000, 30)

	t.Run("measures against the input reserve", func(t *testing.T) {
		impact, err := PriceImpactBps(big.NewInt(1000), tokenA, pool)
		require.NoError(t, err)
		assert.Equal(t, int64(10), impact.Int64())
	})

	t.Run("zero reserve fails cleanly", func(t *testing.T) {
		drained := newPool(0, 1_000_000, 30)
		_, err := PriceImpactBps(big.NewInt(1000), tokenA, drained)
		assert.ErrorIs(t, err, ErrInsufficientLiquidity)
	})

	t.Run("foreign token is rejected", func(t *testing.T) {
		_, err := PriceImpactBps(big.NewInt(1000), tokenC, pool)
		assert.ErrorIs(t, err, ErrTokenMismatch)
	})

	t.Run("check passes under the ceiling", func(t *testing.T) {
		assert.NoError(t, CheckPriceImpact(big.NewInt(1000), tokenA, pool, 1000))
	})

	t.Run("check fails above the ceiling", func(t *testing.T) {
		// 200_000 in against 1_000_000 reserve = 2000 bps impact.
		err := CheckPriceImpact(big.NewInt(200_000), tokenA, pool, 1000)
		assert.ErrorIs(t, err, ErrPriceImpactTooHigh)
	})

	t.Run("ceiling is inclusive", func(t *testing.T) {
		// Exactly 1000 bps is allowed; one unit beyond is not.
		assert.NoError(t, CheckPriceImpact(big.NewInt(100_000), tokenA, pool, 1000))
		err := CheckPriceImpact(big.NewInt(100_100), tokenA, pool, 1000)
		assert.ErrorIs(t, err, ErrPriceImpactTooHigh)
	})
}
