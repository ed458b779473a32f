package routes

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/defistate/flasharb-go/bitset"
	uniswapv2 "github.com/defistate/flasharb-go/protocols/uniswapv2"
	"github.com/defistate/flasharb-go/protocols/uniswapv2/calculator"
)

// ErrInvalidRuns is returned when a cycle search is asked for zero passes.
var ErrInvalidRuns = errors.New("cycle search needs at least one run")

// bigIntPool is a package-level pool for reusing *big.Int objects.
var bigIntPool = sync.Pool{
	New: func() any {
		return new(big.Int)
	},
}

// Hop is one edge of a discovered route.
type Hop struct {
	TokenIn  common.Address
	TokenOut common.Address
	Pool     common.Address
}

// TokenPath flattens hops into the cyclic token path the engine consumes.
func TokenPath(hops []Hop) []common.Address {
	if len(hops) == 0 {
		return nil
	}
	path := make([]common.Address, 0, len(hops)+1)
	path = append(path, hops[0].TokenIn)
	for _, hop := range hops {
		path = append(path, hop.TokenOut)
	}
	return path
}

// Finder searches a pool snapshot for the cycle that turns the most output
// from a given input, using a king-of-the-hill relaxation: each pass keeps
// only the best-known amount per token, so a single winning cycle emerges
// instead of an exhaustive enumeration. Callers judge profitability; an
// unprofitable best cycle is still returned.
type Finder struct {
	tokens       []common.Address
	tokenToIndex map[common.Address]int
	adjacency    [][]int
	edgePools    map[[2]int]uniswapv2.Pool
}

// NewFinder indexes a snapshot of pools for cycle searches. The snapshot is
// copied; later pool mutations do not affect the finder.
func NewFinder(pools []uniswapv2.Pool) *Finder {
	f := &Finder{
		tokenToIndex: make(map[common.Address]int),
		edgePools:    make(map[[2]int]uniswapv2.Pool, 2*len(pools)),
	}

	index := func(token common.Address) int {
		if i, ok := f.tokenToIndex[token]; ok {
			return i
		}
		i := len(f.tokens)
		f.tokenToIndex[token] = i
		f.tokens = append(f.tokens, token)
		f.adjacency = append(f.adjacency, nil)
		return i
	}

	for _, pool := range pools {
		i0, i1 := index(pool.Token0), index(pool.Token1)
		snap := pool.DeepCopy()
		f.adjacency[i0] = append(f.adjacency[i0], i1)
		f.adjacency[i1] = append(f.adjacency[i1], i0)
		f.edgePools[[2]int{i0, i1}] = snap
		f.edgePools[[2]int{i1, i0}] = snap
	}
	return f
}

type cycleSearchState struct {
	start    int
	current  int
	paths    [][]Hop
	costs    []*big.Int
	known    []bitset.BitSet
	bestOut  *big.Int
	bestPath []Hop
	temp     *big.Int
}

// FindBestCycle runs the relaxation for the given number of passes and
// returns the best cycle found from start, with its final output. A nil hop
// slice means no cycle closes back to start at all.
func (f *Finder) FindBestCycle(start common.Address, amountIn *big.Int, runs int) ([]Hop, *big.Int, error) {
	if runs <= 0 {
		return nil, nil, ErrInvalidRuns
	}
	startIndex, ok := f.tokenToIndex[start]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownToken, start)
	}
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, nil, calculator.ErrInvalidAmount
	}

	numTokens := len(f.tokens)
	state := &cycleSearchState{
		start:   startIndex,
		paths:   make([][]Hop, numTokens),
		costs:   make([]*big.Int, numTokens),
		known:   make([]bitset.BitSet, numTokens),
		bestOut: new(big.Int),
		temp:    bigIntPool.Get().(*big.Int).SetUint64(0),
	}
	defer func() {
		bigIntPool.Put(state.temp.SetUint64(0))
		for _, cost := range state.costs {
			if cost != nil {
				bigIntPool.Put(cost.SetUint64(0))
			}
		}
	}()

	for i := 0; i < numTokens; i++ {
		state.known[i] = bitset.NewBitSet(uint64(numTokens))
		state.costs[i] = bigIntPool.Get().(*big.Int).SetUint64(0)
	}
	state.costs[startIndex].Set(amountIn)

	for r := 0; r < runs; r++ {
		for j := 0; j < numTokens; j++ {
			if state.costs[j].Sign() == 0 {
				continue
			}
			state.current = j
			f.relax(state)
		}
	}

	if state.bestPath == nil {
		return nil, nil, nil
	}
	return state.bestPath, new(big.Int).Set(state.bestOut), nil
}

// relax is the core relaxation step: from the current token, quote every
// neighbor and keep the improvement, closing back to start when possible.
func (f *Finder) relax(state *cycleSearchState) {
	currentIndex := state.current
	currentCost := state.costs[currentIndex]
	currentKnown := state.known[currentIndex]
	currentPath := state.paths[currentIndex]
	currentToken := f.tokens[currentIndex]

	if currentKnown.IsSet(uint64(currentIndex)) {
		return
	}

	amountOut := state.temp
	for _, targetIndex := range f.adjacency[currentIndex] {
		if currentKnown.IsSet(uint64(targetIndex)) && targetIndex != state.start {
			continue
		}
		targetToken := f.tokens[targetIndex]
		pool := f.edgePools[[2]int{currentIndex, targetIndex}]

		out, err := calculator.GetAmountOut(currentCost, currentToken, targetToken, pool)
		if err != nil || out.Sign() == 0 {
			continue
		}
		amountOut.Set(out)

		if targetIndex == state.start {
			// Unprofitable cycles are still collected; profitability is the
			// caller's call.
			if amountOut.Cmp(state.bestOut) == 1 {
				state.bestPath = appendHop(currentPath, currentToken, targetToken, pool.Addr)
				state.bestOut.Set(amountOut)
			}
			continue
		}

		if amountOut.Cmp(state.costs[targetIndex]) == 1 {
			state.paths[targetIndex] = appendHop(currentPath, currentToken, targetToken, pool.Addr)
			state.known[targetIndex].SetFrom(currentKnown)
			state.known[targetIndex].Set(uint64(currentIndex))
			state.costs[targetIndex].Set(amountOut)
		}
	}
}

func appendHop(path []Hop, tokenIn, tokenOut, pool common.Address) []Hop {
	next := make([]Hop, len(path)+1)
	copy(next, path)
	next[len(path)] = Hop{TokenIn: tokenIn, TokenOut: tokenOut, Pool: pool}
	return next
}
