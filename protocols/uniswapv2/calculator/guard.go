package calculator

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	uniswapv2 "github.com/defistate/flasharb-go/protocols/uniswapv2"
)

// MinAmountOut applies a slippage tolerance to an expected output:
//
//	minOut = expected * (10000 - slippageBps) / 10000
func MinAmountOut(expectedOut *big.Int, slippageBps uint16) (*big.Int, error) {
	if expectedOut == nil {
		return nil, ErrNilAmount
	}
	if expectedOut.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	if int64(slippageBps) > basisPointDivisor.Int64() {
		return nil, fmt.Errorf("%w: %d bps", ErrInvalidSlippage, slippageBps)
	}

	minOut := new(big.Int).Mul(expectedOut, big.NewInt(basisPointDivisor.Int64()-int64(slippageBps)))
	return minOut.Div(minOut, basisPointDivisor), nil
}

// PriceImpactBps measures how far a trade of amountIn moves the pool,
// expressed against the input-side reserve:
//
//	impact = amountIn * 10000 / reserveIn
//
// A zero input-side reserve cannot price the trade at all and fails with
// ErrInsufficientLiquidity rather than dividing by zero.
func PriceImpactBps(amountIn *big.Int, tokenIn common.Address, pool uniswapv2.Pool) (*big.Int, error) {
	if amountIn == nil {
		return nil, ErrNilAmount
	}
	if amountIn.Sign() < 0 {
		return nil, ErrInvalidAmount
	}

	reserveIn, ok := pool.ReserveOf(tokenIn)
	if !ok {
		return nil, fmt.Errorf("%w: pool %s does not hold token %s", ErrTokenMismatch, pool.Addr, tokenIn)
	}
	if reserveIn == nil || reserveIn.Sign() <= 0 {
		return nil, fmt.Errorf("%w: zero reserve for token %s in pool %s", ErrInsufficientLiquidity, tokenIn, pool.Addr)
	}

	impact := new(big.Int).Mul(amountIn, basisPointDivisor)
	return impact.Div(impact, reserveIn), nil
}

// CheckPriceImpact rejects trades whose price impact exceeds ceilingBps.
// Reserves must be read immediately before the call: any external call in
// between is an opportunity for pool state to move.
func CheckPriceImpact(amountIn *big.Int, tokenIn common.Address, pool uniswapv2.Pool, ceilingBps uint16) error {
	impact, err := PriceImpactBps(amountIn, tokenIn, pool)
	if err != nil {
		return err
	}
	if impact.Cmp(big.NewInt(int64(ceilingBps))) > 0 {
		return fmt.Errorf("%w: %s bps against pool %s (ceiling %d)", ErrPriceImpactTooHigh, impact, pool.Addr, ceilingBps)
	}
	return nil
}
