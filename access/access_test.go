package access

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = common.HexToAddress("0xa11ce")
	bob   = common.HexToAddress("0xb0b")
	carol = common.HexToAddress("0xca201")
)

func TestNewAuthority(t *testing.T) {
	_, err := NewAuthority(common.Address{})
	assert.ErrorIs(t, err, ErrZeroAddress)

	a, err := NewAuthority(alice)
	require.NoError(t, err)
	assert.Equal(t, alice, a.Owner())
}

func TestRequireOwner(t *testing.T) {
	a, err := NewAuthority(alice)
	require.NoError(t, err)

	assert.NoError(t, a.RequireOwner(alice))
	assert.ErrorIs(t, a.RequireOwner(bob), ErrUnauthorized)
}

func TestTwoStepTransfer(t *testing.T) {
	a, err := NewAuthority(alice)
	require.NoError(t, err)

	t.Run("only owner can propose", func(t *testing.T) {
		assert.ErrorIs(t, a.ProposeOwner(bob, bob), ErrUnauthorized)
	})

	t.Run("zero candidate rejected", func(t *testing.T) {
		assert.ErrorIs(t, a.ProposeOwner(alice, common.Address{}), ErrZeroAddress)
	})

	t.Run("accept before propose fails", func(t *testing.T) {
		assert.ErrorIs(t, a.AcceptOwnership(bob), ErrNotPendingOwner)
	})

	t.Run("full handover", func(t *testing.T) {
		require.NoError(t, a.ProposeOwner(alice, bob))
		assert.Equal(t, bob, a.PendingOwner())

		// The wrong account cannot accept.
		assert.ErrorIs(t, a.AcceptOwnership(carol), ErrNotPendingOwner)

		require.NoError(t, a.AcceptOwnership(bob))
		assert.Equal(t, bob, a.Owner())
		assert.Equal(t, common.Address{}, a.PendingOwner())

		// Old owner lost its rights; pending slot cleared.
		assert.ErrorIs(t, a.RequireOwner(alice), ErrUnauthorized)
		assert.ErrorIs(t, a.AcceptOwnership(bob), ErrNotPendingOwner)
	})
}
