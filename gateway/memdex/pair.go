package memdex

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	uniswapv2 "github.com/defistate/flasharb-go/protocols/uniswapv2"
)

var (
	// ErrInsufficientOutput is returned when a swap requests no output at all.
	ErrInsufficientOutput = errors.New("memdex: insufficient output amount")
	// ErrInsufficientReserve is returned when a swap requests more than a reserve holds.
	ErrInsufficientReserve = errors.New("memdex: output exceeds reserve")
	// ErrKInvariant is returned when post-swap balances violate the constant product.
	ErrKInvariant = errors.New("memdex: constant product invariant violated")
	// ErrUnknownBorrower is returned when flash-swap data targets an address
	// with no registered callback receiver.
	ErrUnknownBorrower = errors.New("memdex: no flash borrower registered at recipient")
)

var basisPointDivisor = big.NewInt(10_000)

// pair is a constant-product pool living inside the host. Its token balances
// are the ledger balances at its own address; reserves are the last balances
// the pair observed after a swap settled.
type pair struct {
	host   *Host
	addr   common.Address
	token0 common.Address
	token1 common.Address

	reserve0 *big.Int
	reserve1 *big.Int
	feeBps   uint16
}

func (p *pair) Address() common.Address { return p.addr }
func (p *pair) Token0() common.Address  { return p.token0 }
func (p *pair) Token1() common.Address  { return p.token1 }
func (p *pair) FeeBps() uint16          { return p.feeBps }

// GetReserves returns copies so callers cannot mutate pool state.
func (p *pair) GetReserves() (*big.Int, *big.Int) {
	return new(big.Int).Set(p.reserve0), new(big.Int).Set(p.reserve1)
}

// snapshot returns the pair as a protocol-level Pool value.
func (p *pair) snapshot() uniswapv2.Pool {
	return uniswapv2.Pool{
		Addr:     p.addr,
		Token0:   p.token0,
		Token1:   p.token1,
		Reserve0: new(big.Int).Set(p.reserve0),
		Reserve1: new(big.Int).Set(p.reserve1),
		FeeBps:   p.feeBps,
	}
}

// Swap pays out the requested amounts optimistically, runs the flash-swap
// callback when data is non-empty, then verifies the constant product against
// actual post-callback balances. The fee is charged on whatever came in, so a
// flash borrower repays principal plus the pool's fee or the swap fails.
func (p *pair) Swap(amount0Out, amount1Out *big.Int, to common.Address, data []byte) error {
	if amount0Out == nil {
		amount0Out = new(big.Int)
	}
	if amount1Out == nil {
		amount1Out = new(big.Int)
	}
	if amount0Out.Sign() <= 0 && amount1Out.Sign() <= 0 {
		return ErrInsufficientOutput
	}
	if amount0Out.Cmp(p.reserve0) >= 0 || amount1Out.Cmp(p.reserve1) >= 0 {
		return fmt.Errorf("%w: requested (%s, %s) of (%s, %s)", ErrInsufficientReserve, amount0Out, amount1Out, p.reserve0, p.reserve1)
	}

	// Optimistic transfer out, exactly like the reference pair.
	if amount0Out.Sign() > 0 {
		if err := p.host.ledger.Transfer(p.token0, p.addr, to, amount0Out); err != nil {
			return err
		}
	}
	if amount1Out.Sign() > 0 {
		if err := p.host.ledger.Transfer(p.token1, p.addr, to, amount1Out); err != nil {
			return err
		}
	}

	if len(data) > 0 {
		borrower, ok := p.host.borrower(to)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownBorrower, to)
		}
		// The recipient initiated this swap in the flash-loan flow, so the
		// pair reports it as the original sender.
		if err := borrower.OnFlashSwapCallback(p.addr, to, amount0Out, amount1Out, data); err != nil {
			return err
		}
	}

	balance0 := p.host.ledger.BalanceOf(p.token0, p.addr)
	balance1 := p.host.ledger.BalanceOf(p.token1, p.addr)

	amount0In := amountIn(balance0, p.reserve0, amount0Out)
	amount1In := amountIn(balance1, p.reserve1, amount1Out)
	if amount0In.Sign() <= 0 && amount1In.Sign() <= 0 {
		return fmt.Errorf("%w: nothing was paid in", ErrKInvariant)
	}

	// (balance0*10000 - in0*fee) * (balance1*10000 - in1*fee) >= r0*r1*10000^2
	adjusted0 := adjustedBalance(balance0, amount0In, p.feeBps)
	adjusted1 := adjustedBalance(balance1, amount1In, p.feeBps)

	kBefore := new(big.Int).Mul(p.reserve0, p.reserve1)
	kBefore.Mul(kBefore, basisPointDivisor)
	kBefore.Mul(kBefore, basisPointDivisor)

	if new(big.Int).Mul(adjusted0, adjusted1).Cmp(kBefore) < 0 {
		return fmt.Errorf("%w: pair %s", ErrKInvariant, p.addr)
	}

	p.reserve0.Set(balance0)
	p.reserve1.Set(balance1)
	return nil
}

// amountIn recovers how much of a token was paid in during the swap.
func amountIn(balance, reserve, amountOut *big.Int) *big.Int {
	expected := new(big.Int).Sub(reserve, amountOut)
	if balance.Cmp(expected) > 0 {
		return new(big.Int).Sub(balance, expected)
	}
	return new(big.Int)
}

func adjustedBalance(balance, in *big.Int, feeBps uint16) *big.Int {
	adjusted := new(big.Int).Mul(balance, basisPointDivisor)
	feeCut := new(big.Int).Mul(in, big.NewInt(int64(feeBps)))
	return adjusted.Sub(adjusted, feeCut)
}
