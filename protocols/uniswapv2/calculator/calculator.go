package calculator

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	uniswapv2 "github.com/defistate/flasharb-go/protocols/uniswapv2"
)

var (
	// basisPointDivisor is a constant representing 100% in basis points (10000).
	basisPointDivisor = big.NewInt(10000)

	one = big.NewInt(1)

	// ErrInvalidAmount is returned when an input/output amount is nil, zero or negative.
	ErrInvalidAmount = errors.New("amount must be non-nil and non-negative")
	// ErrNilAmount is returned when a nil pointer is passed for an amount.
	ErrNilAmount = errors.New("nil pointer passed as amount")
	// ErrTokenMismatch is returned when the specified input/output tokens do not match the pool's tokens.
	ErrTokenMismatch = errors.New("token mismatch")
	// ErrInvalidState is returned for internal calculation errors, like division by zero.
	ErrInvalidState = errors.New("invalid internal state")
	// ErrInsufficientLiquidity is returned when a pool cannot serve the requested amount,
	// including the zero-reserve denominator case.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity for swap")
	// ErrInvalidSlippage is returned when a slippage tolerance exceeds 10000 bps.
	ErrInvalidSlippage = errors.New("slippage tolerance above 10000 bps")
	// ErrPriceImpactTooHigh is returned when a trade would move the pool beyond the configured ceiling.
	ErrPriceImpactTooHigh = errors.New("price impact above ceiling")
)

// Calculator holds reusable big.Int objects to avoid memory allocations during calculations.
// Instances of this struct are NOT safe for concurrent use by themselves.
// They are intended to be managed by the sync.Pool below.
type Calculator struct {
	// Reusable objects for GetAmountOut
	feeMultiplier   *big.Int
	amountInWithFee *big.Int
	numerator       *big.Int
	denominator     *big.Int

	// Reusable objects for GetAmountIn
	numeratorIn   *big.Int
	denominatorIn *big.Int

	// Reusable objects for SimulateSwap
	newReserve0 *big.Int
	newReserve1 *big.Int
}

// calculatorPool manages a pool of Calculator objects, allowing for safe concurrent use
// and drastically reducing memory allocations.
var calculatorPool = sync.Pool{
	New: func() any {
		return &Calculator{
			feeMultiplier:   new(big.Int),
			amountInWithFee: new(big.Int),
			numerator:       new(big.Int),
			denominator:     new(big.Int),
			numeratorIn:     new(big.Int),
			denominatorIn:   new(big.Int),
			newReserve0:     new(big.Int),
			newReserve1:     new(big.Int),
		}
	},
}

// GetAmountOut calculates the output amount for a swap, optimized to reduce allocations.
func GetAmountOut(
	amountIn *big.Int,
	tokenIn common.Address,
	tokenOut common.Address,
	pool uniswapv2.Pool,
) (*big.Int, error) {
	calc := calculatorPool.Get().(*Calculator)
	defer calculatorPool.Put(calc)
	return calc.getAmountOut(amountIn, tokenIn, tokenOut, pool)
}

// GetAmountIn calculates the required input amount for a desired output, optimized to reduce allocations.
func GetAmountIn(
	amountOut *big.Int,
	tokenIn common.Address,
	tokenOut common.Address,
	pool uniswapv2.Pool,
) (*big.Int, error) {
	calc := calculatorPool.Get().(*Calculator)
	defer calculatorPool.Put(calc)
	return calc.getAmountIn(amountOut, tokenIn, tokenOut, pool)
}

// SimulateSwap calculates the result of a swap and the pool state it leaves behind.
func SimulateSwap(
	amountIn *big.Int,
	tokenIn common.Address,
	tokenOut common.Address,
	pool uniswapv2.Pool,
) (*big.Int, uniswapv2.Pool, error) {
	calc := calculatorPool.Get().(*Calculator)
	defer calculatorPool.Put(calc)
	return calc.simulateSwap(amountIn, tokenIn, tokenOut, pool)
}

// getAmountOut is the internal calculation method that uses the pre-allocated fields.
func (c *Calculator) getAmountOut(
	amountIn *big.Int,
	tokenIn common.Address,
	tokenOut common.Address,
	pool uniswapv2.Pool,
) (*big.Int, error) {
	if amountIn == nil {
		return nil, ErrNilAmount
	}
	if amountIn.Sign() < 0 {
		return nil, ErrInvalidAmount
	}

	reserveIn, reserveOut, err := GetReserves(tokenIn, tokenOut, pool)
	if err != nil {
		return nil, err
	}

	if reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return new(big.Int), nil
	}

	c.feeMultiplier.Sub(basisPointDivisor, big.NewInt(int64(pool.FeeBps)))
	c.amountInWithFee.Mul(amountIn, c.feeMultiplier)
	c.numerator.Mul(reserveOut, c.amountInWithFee)
	c.denominator.Mul(reserveIn, basisPointDivisor)
	c.denominator.Add(c.denominator, c.amountInWithFee)

	if c.denominator.Sign() == 0 {
		return nil, fmt.Errorf("%w: pool denominator is zero", ErrInvalidState)
	}

	return new(big.Int).Div(c.numerator, c.denominator), nil
}

// getAmountIn is the internal calculation method for finding the required input for a desired output.
func (c *Calculator) getAmountIn(
	amountOut *big.Int,
	tokenIn common.Address,
	tokenOut common.Address,
	pool uniswapv2.Pool,
) (*big.Int, error) {
	if amountOut == nil {
		return nil, ErrNilAmount
	}
	if amountOut.Sign() < 0 {
		return nil, ErrInvalidAmount
	}

	reserveIn, reserveOut, err := GetReserves(tokenIn, tokenOut, pool)
	if err != nil {
		return nil, err
	}

	if reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 || amountOut.Cmp(reserveOut) >= 0 {
		return nil, fmt.Errorf("%w: requested amountOut (%s) is >= reserveOut (%s)", ErrInsufficientLiquidity, amountOut.String(), reserveOut.String())
	}

	c.numeratorIn.Mul(reserveIn, amountOut)
	c.numeratorIn.Mul(c.numeratorIn, basisPointDivisor)

	c.feeMultiplier.Sub(basisPointDivisor, big.NewInt(int64(pool.FeeBps)))
	c.denominatorIn.Sub(reserveOut, amountOut)
	c.denominatorIn.Mul(c.denominatorIn, c.feeMultiplier)

	if c.denominatorIn.Sign() == 0 {
		return nil, fmt.Errorf("%w: pool denominator is zero", ErrInvalidState)
	}

	// amountIn = (reserveIn * amountOut * 10000) / ((reserveOut - amountOut) * 9970) + 1
	amountIn := new(big.Int).Div(c.numeratorIn, c.denominatorIn)
	return amountIn.Add(amountIn, one), nil
}

// simulateSwap is the internal calculation method that uses pre-allocated fields.
func (c *Calculator) simulateSwap(
	amountIn *big.Int,
	tokenIn common.Address,
	tokenOut common.Address,
	pool uniswapv2.Pool,
) (*big.Int, uniswapv2.Pool, error) {
	amountOut, err := c.getAmountOut(amountIn, tokenIn, tokenOut, pool)
	if err != nil {
		return nil, uniswapv2.Pool{}, err
	}

	newPoolState := pool

	if tokenIn == pool.Token0 {
		c.newReserve0.Add(pool.Reserve0, amountIn)
		c.newReserve1.Sub(pool.Reserve1, amountOut)
	} else { // tokenIn == pool.Token1
		c.newReserve1.Add(pool.Reserve1, amountIn)
		c.newReserve0.Sub(pool.Reserve0, amountOut)
	}

	newPoolState.Reserve0 = new(big.Int).Set(c.newReserve0)
	newPoolState.Reserve1 = new(big.Int).Set(c.newReserve1)

	return amountOut, newPoolState, nil
}

// GetReserves returns the reserves for the given token pair. For V2, this is a direct lookup.
func GetReserves(tokenIn, tokenOut common.Address, pool uniswapv2.Pool) (reserveIn, reserveOut *big.Int, err error) {
	if tokenIn == pool.Token0 && tokenOut == pool.Token1 {
		return pool.Reserve0, pool.Reserve1, nil
	} else if tokenIn == pool.Token1 && tokenOut == pool.Token0 {
		return pool.Reserve1, pool.Reserve0, nil
	}
	return nil, nil, fmt.Errorf("%w: pool %s does not contain the pair %s -> %s", ErrTokenMismatch, pool.Addr, tokenIn, tokenOut)
}
