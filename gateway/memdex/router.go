package memdex

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	uniswapv2 "github.com/defistate/flasharb-go/protocols/uniswapv2"
	"github.com/defistate/flasharb-go/protocols/uniswapv2/calculator"
)

var (
	// ErrDeadlineExpired is returned when a swap arrives after its deadline.
	ErrDeadlineExpired = errors.New("memdex: deadline expired")
	// ErrInvalidPath is returned for paths shorter than two tokens.
	ErrInvalidPath = errors.New("memdex: path needs at least two tokens")
	// ErrPairNotFound is returned when a hop has no pool.
	ErrPairNotFound = errors.New("memdex: pair not found")
	// ErrSlippage is returned when the delivered output misses the minimum.
	ErrSlippage = errors.New("memdex: output below minimum")
)

// router executes multi-hop swaps against the host's pairs. It measures
// actual pair deposits rather than trusting nominal amounts, so it keeps
// working for fee-on-transfer tokens.
type router struct {
	host *Host
}

// GetAmountsOut quotes a path against current reserves without touching state.
func (r *router) GetAmountsOut(amountIn *big.Int, path []common.Address) ([]*big.Int, error) {
	if len(path) < 2 {
		return nil, ErrInvalidPath
	}

	amounts := make([]*big.Int, len(path))
	amounts[0] = new(big.Int).Set(amountIn)
	for i := 0; i < len(path)-1; i++ {
		p, ok := r.host.pairsByKey[keyForTokens(path[i], path[i+1])]
		if !ok {
			return nil, fmt.Errorf("%w: %s -> %s", ErrPairNotFound, path[i], path[i+1])
		}
		out, err := calculator.GetAmountOut(amounts[i], path[i], path[i+1], p.snapshot())
		if err != nil {
			return nil, err
		}
		amounts[i+1] = out
	}
	return amounts, nil
}

// SwapExactTokensForTokens moves amountIn from the sender into the first
// pair, swaps hop by hop routing intermediate output directly into the next
// pair, and fails unless the final recipient's measured balance delta reaches
// amountOutMin.
func (r *router) SwapExactTokensForTokens(
	from common.Address,
	amountIn *big.Int,
	amountOutMin *big.Int,
	path []common.Address,
	to common.Address,
	deadline time.Time,
) ([]*big.Int, error) {
	if len(path) < 2 {
		return nil, ErrInvalidPath
	}
	if r.host.clock().After(deadline) {
		return nil, fmt.Errorf("%w: deadline %s", ErrDeadlineExpired, deadline)
	}

	pairs := make([]*pair, len(path)-1)
	for i := 0; i < len(path)-1; i++ {
		p, ok := r.host.pairsByKey[keyForTokens(path[i], path[i+1])]
		if !ok {
			return nil, fmt.Errorf("%w: %s -> %s", ErrPairNotFound, path[i], path[i+1])
		}
		pairs[i] = p
	}

	balanceBefore := r.host.ledger.BalanceOf(path[len(path)-1], to)

	if err := r.host.ledger.Transfer(path[0], from, pairs[0].addr, amountIn); err != nil {
		return nil, err
	}

	amounts := make([]*big.Int, len(path))
	amounts[0] = new(big.Int).Set(amountIn)

	for i, p := range pairs {
		tokenIn, tokenOut := path[i], path[i+1]

		// Measure what actually reached the pair; fee-on-transfer tokens
		// deliver less than the nominal amount.
		reserveIn, _, err := calculator.GetReserves(tokenIn, tokenOut, p.snapshot())
		if err != nil {
			return nil, err
		}
		pairBalance := r.host.ledger.BalanceOf(tokenIn, p.addr)
		deposited := new(big.Int).Sub(pairBalance, reserveIn)

		out, err := calculator.GetAmountOut(deposited, tokenIn, tokenOut, p.snapshot())
		if err != nil {
			return nil, err
		}

		recipient := to
		if i < len(pairs)-1 {
			recipient = pairs[i+1].addr
		}

		amount0Out, amount1Out := new(big.Int), new(big.Int)
		if tokenOut == p.token0 {
			amount0Out = out
		} else {
			amount1Out = out
		}
		if err := p.Swap(amount0Out, amount1Out, recipient, nil); err != nil {
			return nil, err
		}
		amounts[i+1] = out
	}

	if amountOutMin != nil {
		received := new(big.Int).Sub(r.host.ledger.BalanceOf(path[len(path)-1], to), balanceBefore)
		if received.Cmp(amountOutMin) < 0 {
			return nil, fmt.Errorf("%w: got %s, want at least %s", ErrSlippage, received, amountOutMin)
		}
	}

	return amounts, nil
}

func keyForTokens(a, b common.Address) pairKey {
	token0, token1 := uniswapv2.SortTokens(a, b)
	return pairKey{token0: token0, token1: token1}
}
