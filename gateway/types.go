// Package gateway defines the interfaces through which the arbitrage engine
// talks to the AMM collaborators. Everything behind these interfaces is
// untrusted: any call can run arbitrary code and mutate shared pool state
// before returning.
package gateway

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Pair is a single liquidity pool. Reserves read through GetReserves are only
// valid until the next external call.
type Pair interface {
	Address() common.Address
	Token0() common.Address
	Token1() common.Address
	GetReserves() (reserve0, reserve1 *big.Int)
	FeeBps() uint16

	// Swap is the loan-granting primitive. Non-empty data triggers the
	// flash-swap callback on the recipient before the pair verifies its
	// invariant.
	Swap(amount0Out, amount1Out *big.Int, to common.Address, data []byte) error
}

// Factory resolves pairs. GetPair returns false for pairs that do not exist;
// callers must check before interpreting reserves.
type Factory interface {
	GetPair(tokenA, tokenB common.Address) (Pair, bool)
	PairAt(addr common.Address) (Pair, bool)
}

// Router executes multi-hop swaps on behalf of a sender. The deadline is
// enforced by the router: trades arriving after it fail wholesale.
type Router interface {
	GetAmountsOut(amountIn *big.Int, path []common.Address) ([]*big.Int, error)
	SwapExactTokensForTokens(
		from common.Address,
		amountIn *big.Int,
		amountOutMin *big.Int,
		path []common.Address,
		to common.Address,
		deadline time.Time,
	) ([]*big.Int, error)
}

// Ledger moves token balances. Transfer semantics are token-defined: a
// fee-on-transfer token may deliver less than the nominal amount, so callers
// that care about the delivered amount must measure balances around the call.
type Ledger interface {
	BalanceOf(token, holder common.Address) *big.Int
	Transfer(token, from, to common.Address, amount *big.Int) error
}

// FlashBorrower is the callback surface a borrower exposes to pairs.
// caller is the pair invoking the callback; sender is the account the pair
// reports as having initiated the swap. Both are attacker-controlled and must
// be authenticated by the receiver.
type FlashBorrower interface {
	OnFlashSwapCallback(caller, sender common.Address, amount0, amount1 *big.Int, data []byte) error
}
