// Package memdex is an in-memory UniswapV2-style execution environment: a
// token ledger, constant-product pairs with flash-swap callbacks, a router,
// and an all-or-nothing transaction wrapper. It stands in for the chain the
// real system runs on, so the engine's atomicity guarantees are testable.
package memdex

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/defistate/flasharb-go/gateway"
	uniswapv2 "github.com/defistate/flasharb-go/protocols/uniswapv2"
)

var (
	// ErrPairExists is returned when creating a pool that already exists.
	ErrPairExists = errors.New("memdex: pair already exists")
	// ErrIdenticalTokens is returned when both pool tokens are the same.
	ErrIdenticalTokens = errors.New("memdex: identical tokens")
)

type pairKey struct {
	token0 common.Address
	token1 common.Address
}

// Config holds construction parameters for the Host.
type Config struct {
	FactoryAddr  common.Address
	InitCodeHash common.Hash

	// Clock drives deadlines. Defaults to time.Now.
	Clock func() time.Time
}

// Host owns all simulated chain state. One Host models one chain; a Run call
// models one transaction.
type Host struct {
	mu sync.Mutex

	ledger     *Ledger
	deriver    uniswapv2.AddressDeriver
	pairs      map[common.Address]*pair
	pairsByKey map[pairKey]*pair
	borrowers  map[common.Address]gateway.FlashBorrower
	clock      func() time.Time
}

// New creates an empty Host.
func New(cfg Config) *Host {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	initCodeHash := cfg.InitCodeHash
	if initCodeHash == (common.Hash{}) {
		initCodeHash = uniswapv2.MainnetInitCodeHash
	}
	return &Host{
		ledger:     NewLedger(),
		deriver:    uniswapv2.AddressDeriver{Factory: cfg.FactoryAddr, InitCodeHash: initCodeHash},
		pairs:      make(map[common.Address]*pair),
		pairsByKey: make(map[pairKey]*pair),
		borrowers:  make(map[common.Address]gateway.FlashBorrower),
		clock:      clock,
	}
}

// Ledger exposes the balance book.
func (h *Host) Ledger() *Ledger { return h.ledger }

// Deriver exposes the CREATE2 address derivation the host deploys pairs with.
func (h *Host) Deriver() uniswapv2.AddressDeriver { return h.deriver }

// Now returns the host clock reading.
func (h *Host) Now() time.Time { return h.clock() }

// CreatePool deploys a pair at its CREATE2-derived address, funds it from
// thin air and sets its reserves. Setup only; the engine never creates pools.
func (h *Host) CreatePool(tokenA, tokenB common.Address, reserveA, reserveB *big.Int, feeBps uint16) (gateway.Pair, error) {
	if tokenA == tokenB {
		return nil, ErrIdenticalTokens
	}
	token0, token1 := uniswapv2.SortTokens(tokenA, tokenB)
	key := pairKey{token0: token0, token1: token1}
	if _, exists := h.pairsByKey[key]; exists {
		return nil, fmt.Errorf("%w: %s/%s", ErrPairExists, token0, token1)
	}

	reserve0, reserve1 := reserveA, reserveB
	if token0 != tokenA {
		reserve0, reserve1 = reserveB, reserveA
	}

	p := &pair{
		host:     h,
		addr:     h.deriver.PairFor(token0, token1),
		token0:   token0,
		token1:   token1,
		reserve0: new(big.Int).Set(reserve0),
		reserve1: new(big.Int).Set(reserve1),
		feeBps:   feeBps,
	}
	h.ledger.Mint(token0, p.addr, reserve0)
	h.ledger.Mint(token1, p.addr, reserve1)

	h.pairs[p.addr] = p
	h.pairsByKey[key] = p
	return p, nil
}

// RegisterBorrower installs a flash-swap callback receiver at an address.
func (h *Host) RegisterBorrower(addr common.Address, borrower gateway.FlashBorrower) {
	h.borrowers[addr] = borrower
}

func (h *Host) borrower(addr common.Address) (gateway.FlashBorrower, bool) {
	b, ok := h.borrowers[addr]
	return b, ok
}

// --- gateway.Factory ---

// GetPair resolves the pool for a token pair, in either token order.
func (h *Host) GetPair(tokenA, tokenB common.Address) (gateway.Pair, bool) {
	token0, token1 := uniswapv2.SortTokens(tokenA, tokenB)
	p, ok := h.pairsByKey[pairKey{token0: token0, token1: token1}]
	if !ok {
		return nil, false
	}
	return p, true
}

// PairAt resolves a pool by its address.
func (h *Host) PairAt(addr common.Address) (gateway.Pair, bool) {
	p, ok := h.pairs[addr]
	if !ok {
		return nil, false
	}
	return p, true
}

// Router returns a router bound to this host.
func (h *Host) Router() gateway.Router {
	return &router{host: h}
}

// Pools returns an independent snapshot of every pool.
func (h *Host) Pools() []uniswapv2.Pool {
	pools := make([]uniswapv2.Pool, 0, len(h.pairs))
	for _, p := range h.pairs {
		pools = append(pools, p.snapshot())
	}
	return pools
}

// Run executes fn as one transaction: if fn returns an error, every ledger
// balance and pool reserve is restored to its pre-transaction state and the
// error is returned. This is the host-environment atomicity the engine's
// all-or-nothing semantics lean on.
func (h *Host) Run(fn func() error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	ledgerSnap := h.ledger.snapshot()
	poolSnap := h.Pools()

	err := fn()
	if err == nil {
		return nil
	}

	h.ledger.restore(ledgerSnap)
	h.restorePools(poolSnap)
	return err
}

func (h *Host) restorePools(snapshot []uniswapv2.Pool) {
	// Only pools the transaction actually touched need their reserves
	// written back.
	diff := uniswapv2.Differ(h.Pools(), snapshot)
	for _, moved := range diff.Updates {
		if p, ok := h.pairs[moved.Addr]; ok {
			p.reserve0.Set(moved.Reserve0)
			p.reserve1.Set(moved.Reserve1)
		}
	}
}
