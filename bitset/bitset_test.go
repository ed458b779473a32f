package bitset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitSet(t *testing.T) {
	t.Run("set and check", func(t *testing.T) {
		b := NewBitSet(128)
		assert.False(t, b.IsSet(0))
		assert.False(t, b.IsSet(127))

		b.Set(0)
		b.Set(63)
		b.Set(64)
		b.Set(127)

		assert.True(t, b.IsSet(0))
		assert.True(t, b.IsSet(63))
		assert.True(t, b.IsSet(64))
		assert.True(t, b.IsSet(127))
		assert.False(t, b.IsSet(1))
		assert.Equal(t, 4, b.Count())
	})

	t.Run("unset", func(t *testing.T) {
		b := NewBitSet(64)
		b.Set(10)
		b.Unset(10)
		assert.False(t, b.IsSet(10))
		assert.Zero(t, b.Count())
	})

	t.Run("clear", func(t *testing.T) {
		b := NewBitSet(128)
		b.Set(3)
		b.Set(100)
		b.Clear()
		assert.Zero(t, b.Count())
	})

	t.Run("set from", func(t *testing.T) {
		a := NewBitSet(64)
		a.Set(7)
		b := NewBitSet(64)
		b.SetFrom(a)
		assert.True(t, b.IsSet(7))

		mismatched := NewBitSet(128)
		assert.Panics(t, func() { mismatched.SetFrom(a) })
	})
}
