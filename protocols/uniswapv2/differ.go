package uniswapv2

import "github.com/ethereum/go-ethereum/common"

// PoolSetDiff summarizes reserve changes between two pool-set snapshots.
// The memdex host and its tests use it to verify that a rolled-back
// transaction left no trace in pool state.
type PoolSetDiff struct {
	Additions []Pool           `json:"additions,omitempty"`
	Updates   []Pool           `json:"updates,omitempty"`
	Deletions []common.Address `json:"deletions,omitempty"`
}

// IsEmpty returns true if the diff contains no changes.
func (d PoolSetDiff) IsEmpty() bool {
	return len(d.Additions) == 0 && len(d.Updates) == 0 && len(d.Deletions) == 0
}

// Differ calculates the difference between two states of Uniswap V2 pools.
// It follows a standard, high-performance pattern for diffing lists of objects:
// 1. Convert both the old and new lists into maps for O(1) average time complexity lookups.
// 2. Iterate through the new map to identify additions and updates.
// 3. Iterate through the old map to identify deletions.
func Differ(old, new []Pool) PoolSetDiff {
	oldPoolsMap := make(map[common.Address]Pool, len(old))
	for _, pool := range old {
		oldPoolsMap[pool.Addr] = pool
	}

	newPoolsMap := make(map[common.Address]Pool, len(new))
	for _, pool := range new {
		newPoolsMap[pool.Addr] = pool
	}

	var additions []Pool
	var updates []Pool
	var deletions []common.Address

	for newAddr, newPool := range newPoolsMap {
		oldPool, exists := oldPoolsMap[newAddr]

		if !exists {
			additions = append(additions, newPool)
			continue
		}

		// Only the reserves are expected to change for an existing pool.
		// A manual Cmp is significantly faster than reflect.DeepEqual.
		if oldPool.Reserve0.Cmp(newPool.Reserve0) != 0 || oldPool.Reserve1.Cmp(newPool.Reserve1) != 0 {
			updates = append(updates, newPool)
		}
	}

	for oldAddr := range oldPoolsMap {
		if _, exists := newPoolsMap[oldAddr]; !exists {
			deletions = append(deletions, oldAddr)
		}
	}

	return PoolSetDiff{
		Additions: additions,
		Updates:   updates,
		Deletions: deletions,
	}
}
