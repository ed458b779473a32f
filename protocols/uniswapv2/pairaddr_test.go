package uniswapv2

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func TestAddressDeriverPairFor(t *testing.T) {
	deriver := AddressDeriver{
		Factory:      common.HexToAddress("0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f"),
		InitCodeHash: MainnetInitCodeHash,
	}

	t.Run("order independent", func(t *testing.T) {
		ab := deriver.PairFor(tokenLow, tokenHigh)
		ba := deriver.PairFor(tokenHigh, tokenLow)
		assert.Equal(t, ab, ba)
	})

	t.Run("deterministic", func(t *testing.T) {
		first := deriver.PairFor(tokenLow, tokenHigh)
		second := deriver.PairFor(tokenLow, tokenHigh)
		assert.Equal(t, first, second)
	})

	t.Run("distinct factories yield distinct pairs", func(t *testing.T) {
		other := AddressDeriver{
			Factory:      common.HexToAddress("0x000000000000000000000000000000000000beef"),
			InitCodeHash: MainnetInitCodeHash,
		}
		assert.NotEqual(t, deriver.PairFor(tokenLow, tokenHigh), other.PairFor(tokenLow, tokenHigh))
	})

	t.Run("distinct pairs per token set", func(t *testing.T) {
		third := common.HexToAddress("0x3000000000000000000000000000000000000003")
		assert.NotEqual(t, deriver.PairFor(tokenLow, tokenHigh), deriver.PairFor(tokenLow, third))
	})
}
