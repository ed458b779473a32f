package uniswapv2

import "github.com/ethereum/go-ethereum/common"

// Patcher constructs a new pool-set state by applying a diff to a previous
// state. It never mutates prevState: every pool carried over or applied is
// deep-copied so the output owns all of its memory. The memdex host relies on
// this to restore a pre-transaction snapshot after a failed unit of work.
func Patcher(prevState []Pool, diff PoolSetDiff) ([]Pool, error) {
	newStateMap := make(map[common.Address]Pool, len(prevState))
	for _, pool := range prevState {
		newStateMap[pool.Addr] = deepCopyPool(pool)
	}

	for _, addrToDelete := range diff.Deletions {
		delete(newStateMap, addrToDelete)
	}

	for _, updatedPool := range diff.Updates {
		newStateMap[updatedPool.Addr] = deepCopyPool(updatedPool)
	}

	for _, addedPool := range diff.Additions {
		newStateMap[addedPool.Addr] = deepCopyPool(addedPool)
	}

	finalState := make([]Pool, 0, len(newStateMap))
	for _, pool := range newStateMap {
		finalState = append(finalState, pool)
	}

	return finalState, nil
}
