package bitset

import (
	"fmt"
	"math/bits"
)

// BitSet is a fixed-size set of bit flags backed by a []uint64.
// The route graph uses it as a visited-token marker during cycle validation.
type BitSet []uint64

func NewBitSet(len uint64) BitSet {
	words := (len + 63) / 64
	return make(BitSet, words)
}

func (b BitSet) IsSet(index uint64) bool {
	wordPosition := index / 64
	bitPosition := index % 64
	mask := uint64(1) << bitPosition

	return (b[wordPosition] & mask) != 0
}

func (b BitSet) Set(index uint64) {
	wordPosition := index / 64
	bitPosition := index % 64
	mask := uint64(1) << bitPosition

	b[wordPosition] |= mask
}

func (b BitSet) Unset(index uint64) {
	wordPosition := index / 64
	bitPosition := index % 64
	mask := uint64(1) << bitPosition

	b[wordPosition] = b[wordPosition] &^ mask
}

// Count returns the number of set bits.
func (b BitSet) Count() int {
	count := 0
	for _, word := range b {
		count += bits.OnesCount64(word)
	}
	return count
}

func (b BitSet) Clear() {
	for i := range b {
		b[i] = 0
	}
}

func (b BitSet) SetFrom(o BitSet) {
	if len(b) != len(o) {
		panic(fmt.Sprintf("bitsets must be same size: got %d vs %d", len(b), len(o)))
	}
	copy(b, o)
}
