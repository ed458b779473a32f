package tokenregistry

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	weth := Token{Address: common.HexToAddress("0x1"), Name: "Wrapped Ether", Symbol: "WETH", Decimals: 18}
	usdc := Token{Address: common.HexToAddress("0x2"), Name: "USD Coin", Symbol: "USDC", Decimals: 6}

	t.Run("indexes by address and symbol", func(t *testing.T) {
		reg, err := NewRegistry([]Token{weth, usdc})
		require.NoError(t, err)

		got, ok := reg.ByAddress(weth.Address)
		require.True(t, ok)
		assert.Equal(t, "WETH", got.Symbol)

		got, ok = reg.BySymbol("usdc")
		require.True(t, ok)
		assert.Equal(t, usdc.Address, got.Address)

		_, ok = reg.BySymbol("DAI")
		assert.False(t, ok)

		assert.Len(t, reg.All(), 2)
	})

	t.Run("rejects duplicate addresses", func(t *testing.T) {
		dup := Token{Address: weth.Address, Symbol: "WETH2"}
		_, err := NewRegistry([]Token{weth, dup})
		assert.ErrorContains(t, err, "duplicate token address")
	})

	t.Run("rejects duplicate symbols", func(t *testing.T) {
		dup := Token{Address: common.HexToAddress("0x3"), Symbol: "weth"}
		_, err := NewRegistry([]Token{weth, dup})
		assert.ErrorContains(t, err, "duplicate token symbol")
	})

	t.Run("rejects zero address", func(t *testing.T) {
		_, err := NewRegistry([]Token{{Symbol: "BAD"}})
		assert.ErrorContains(t, err, "zero address")
	})

	t.Run("fee on transfer flag", func(t *testing.T) {
		fot := Token{Address: common.HexToAddress("0x4"), Symbol: "FOT", FeeOnTransferBps: 100}
		assert.True(t, fot.TakesTransferFee())
		assert.False(t, weth.TakesTransferFee())
	})
}
