package uniswapv2

import (
	"bytes"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Pool is a snapshot of a Uniswap V2 style constant-product pool.
// Token0 and Token1 are always in canonical order (see SortTokens);
// reserves must be interpreted against that ordering.
type Pool struct {
	Addr     common.Address `json:"addr"`
	Token0   common.Address `json:"token0"`
	Token1   common.Address `json:"token1"`
	Reserve0 *big.Int       `json:"reserve0"`
	Reserve1 *big.Int       `json:"reserve1"`
	FeeBps   uint16         `json:"feeBps"` // i.e 30 for 0.3%
}

// SortTokens returns the pair in canonical order (ascending byte order),
// matching the ordering the factory uses when deploying pairs.
func SortTokens(tokenA, tokenB common.Address) (token0, token1 common.Address) {
	if bytes.Compare(tokenA.Bytes(), tokenB.Bytes()) < 0 {
		return tokenA, tokenB
	}
	return tokenB, tokenA
}

// Contains reports whether the pool is a market for the given token.
func (p Pool) Contains(token common.Address) bool {
	return token == p.Token0 || token == p.Token1
}

// ReserveOf returns the reserve slot for the given token and true when the
// token belongs to the pool.
func (p Pool) ReserveOf(token common.Address) (*big.Int, bool) {
	switch token {
	case p.Token0:
		return p.Reserve0, true
	case p.Token1:
		return p.Reserve1, true
	}
	return nil, false
}

// deepCopyPool creates a new Pool with its own memory for pointer types like *big.Int.
// This is essential to prevent the new state from sharing memory with the old state.
func deepCopyPool(p Pool) Pool {
	newPool := p
	if p.Reserve0 != nil {
		newPool.Reserve0 = new(big.Int).Set(p.Reserve0)
	}
	if p.Reserve1 != nil {
		newPool.Reserve1 = new(big.Int).Set(p.Reserve1)
	}
	return newPool
}

// DeepCopy returns an independent copy of the pool.
func (p Pool) DeepCopy() Pool {
	return deepCopyPool(p)
}
