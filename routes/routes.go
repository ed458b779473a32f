// Package routes maintains the token-to-pool adjacency used to resolve and
// validate the cyclic trade route before any capital is committed.
package routes

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/defistate/flasharb-go/bitset"
	uniswapv2 "github.com/defistate/flasharb-go/protocols/uniswapv2"
)

var (
	// ErrRouteNotCyclic is returned when a route does not start and end on the borrow asset.
	ErrRouteNotCyclic = errors.New("route must start and end on the borrow asset")
	// ErrRouteTooShort is returned when a route has fewer than two hops.
	ErrRouteTooShort = errors.New("route needs at least two hops")
	// ErrRouteRevisitsToken is returned when an intermediate token appears twice.
	ErrRouteRevisitsToken = errors.New("route revisits an intermediate token")
	// ErrNoPoolForHop is returned when no pool exists for a consecutive token pair.
	ErrNoPoolForHop = errors.New("no pool for hop")
	// ErrUnknownToken is returned for tokens absent from the graph.
	ErrUnknownToken = errors.New("token not present in route graph")
)

type pairKey struct {
	token0 common.Address
	token1 common.Address
}

func keyFor(a, b common.Address) pairKey {
	t0, t1 := uniswapv2.SortTokens(a, b)
	return pairKey{token0: t0, token1: t1}
}

// Graph is an immutable adjacency of tokens and the pools connecting them.
// Build it once from the pool set; it is safe for concurrent readers.
type Graph struct {
	tokenToIndex map[common.Address]uint64
	tokens       []common.Address
	poolsByToken map[common.Address][]common.Address
	pairToPool   map[pairKey]common.Address
}

// NewGraph indexes the given pools by token pair.
func NewGraph(pools []uniswapv2.Pool) *Graph {
	g := &Graph{
		tokenToIndex: make(map[common.Address]uint64),
		poolsByToken: make(map[common.Address][]common.Address),
		pairToPool:   make(map[pairKey]common.Address, len(pools)),
	}

	addToken := func(token common.Address) {
		if _, exists := g.tokenToIndex[token]; !exists {
			g.tokenToIndex[token] = uint64(len(g.tokens))
			g.tokens = append(g.tokens, token)
		}
	}

	for _, pool := range pools {
		addToken(pool.Token0)
		addToken(pool.Token1)
		g.poolsByToken[pool.Token0] = append(g.poolsByToken[pool.Token0], pool.Addr)
		g.poolsByToken[pool.Token1] = append(g.poolsByToken[pool.Token1], pool.Addr)
		g.pairToPool[keyFor(pool.Token0, pool.Token1)] = pool.Addr
	}

	return g
}

// PoolsForToken returns the pools that trade the given token.
func (g *Graph) PoolsForToken(token common.Address) ([]common.Address, error) {
	pools, ok := g.poolsByToken[token]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownToken, token)
	}
	out := make([]common.Address, len(pools))
	copy(out, pools)
	return out, nil
}

// PairBetween returns the pool connecting the two tokens, in either order.
func (g *Graph) PairBetween(a, b common.Address) (common.Address, bool) {
	addr, ok := g.pairToPool[keyFor(a, b)]
	return addr, ok
}

// ValidateCycle checks that path is a usable cyclic route: it starts and ends
// on the same asset, has at least two hops, never revisits an intermediate
// token, and every consecutive pair is connected by a known pool.
func (g *Graph) ValidateCycle(path []common.Address) error {
	if len(path) < 3 {
		return ErrRouteTooShort
	}
	if path[0] != path[len(path)-1] {
		return ErrRouteNotCyclic
	}

	for _, token := range path {
		if _, ok := g.tokenToIndex[token]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownToken, token)
		}
	}

	visited := bitset.NewBitSet(uint64(len(g.tokens)))
	for i, token := range path[:len(path)-1] {
		index := g.tokenToIndex[token]
		if visited.IsSet(index) {
			return fmt.Errorf("%w: %s", ErrRouteRevisitsToken, token)
		}
		visited.Set(index)

		next := path[i+1]
		if _, ok := g.PairBetween(token, next); !ok {
			return fmt.Errorf("%w: %s -> %s", ErrNoPoolForHop, token, next)
		}
	}

	return nil
}
