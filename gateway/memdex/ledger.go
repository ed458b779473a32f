package memdex

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInsufficientBalance is returned when a transfer exceeds the sender's balance.
	ErrInsufficientBalance = errors.New("memdex: insufficient balance")
	// ErrInvalidTransfer is returned for nil or negative transfer amounts.
	ErrInvalidTransfer = errors.New("memdex: invalid transfer amount")
)

// Ledger is an in-memory token balance book. It models ERC20 transfer
// semantics including fee-on-transfer tokens, which deliver less than the
// nominal amount; the skimmed cut is burned.
type Ledger struct {
	mu sync.Mutex

	// token -> holder -> balance
	balances map[common.Address]map[common.Address]*big.Int

	// token -> bps skimmed from every transfer
	transferFeeBps map[common.Address]uint16
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		balances:       make(map[common.Address]map[common.Address]*big.Int),
		transferFeeBps: make(map[common.Address]uint16),
	}
}

// SetTransferFee marks a token as fee-on-transfer.
func (l *Ledger) SetTransferFee(token common.Address, feeBps uint16) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.transferFeeBps[token] = feeBps
}

// Mint credits a holder out of thin air. Test and scenario setup only.
func (l *Ledger) Mint(token, to common.Address, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(token, to, amount)
}

// BalanceOf returns a copy of the holder's balance.
func (l *Ledger) BalanceOf(token, holder common.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if holders, ok := l.balances[token]; ok {
		if bal, ok := holders[holder]; ok {
			return new(big.Int).Set(bal)
		}
	}
	return new(big.Int)
}

// Transfer moves amount from one holder to another, applying the token's
// transfer fee if it has one.
func (l *Ledger) Transfer(token, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidTransfer
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	fromBal := l.balance(token, from)
	if fromBal.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s has %s of %s, needs %s", ErrInsufficientBalance, from, fromBal, token, amount)
	}
	fromBal.Sub(fromBal, amount)

	delivered := new(big.Int).Set(amount)
	if feeBps := l.transferFeeBps[token]; feeBps > 0 {
		fee := new(big.Int).Mul(delivered, big.NewInt(int64(feeBps)))
		fee.Div(fee, big.NewInt(10_000))
		delivered.Sub(delivered, fee)
	}

	l.credit(token, to, delivered)
	return nil
}

// balance returns the mutable balance entry, creating it if needed.
// Callers must hold l.mu.
func (l *Ledger) balance(token, holder common.Address) *big.Int {
	holders, ok := l.balances[token]
	if !ok {
		holders = make(map[common.Address]*big.Int)
		l.balances[token] = holders
	}
	bal, ok := holders[holder]
	if !ok {
		bal = new(big.Int)
		holders[holder] = bal
	}
	return bal
}

func (l *Ledger) credit(token, to common.Address, amount *big.Int) {
	bal := l.balance(token, to)
	bal.Add(bal, amount)
}

// snapshot deep-copies the entire balance book.
func (l *Ledger) snapshot() map[common.Address]map[common.Address]*big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := make(map[common.Address]map[common.Address]*big.Int, len(l.balances))
	for token, holders := range l.balances {
		holdersCopy := make(map[common.Address]*big.Int, len(holders))
		for holder, bal := range holders {
			holdersCopy[holder] = new(big.Int).Set(bal)
		}
		snap[token] = holdersCopy
	}
	return snap
}

// restore replaces the balance book with a snapshot.
func (l *Ledger) restore(snap map[common.Address]map[common.Address]*big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.balances = make(map[common.Address]map[common.Address]*big.Int, len(snap))
	for token, holders := range snap {
		holdersCopy := make(map[common.Address]*big.Int, len(holders))
		for holder, bal := range holders {
			holdersCopy[holder] = new(big.Int).Set(bal)
		}
		l.balances[token] = holdersCopy
	}
}
