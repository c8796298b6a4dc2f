package set

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBits(t *testing.T) {
	s := MakeBits(0)

	for _, k := range []int{0, 3, 63, 64, 200} {
		s.Set(k)
	}

	assert.Equal(t, 5, s.Size())
	assert.True(t, s.IsSet(63))
	assert.True(t, s.IsSet(200))
	assert.False(t, s.IsSet(1))
	assert.False(t, s.IsSet(1000))
	assert.False(t, s.IsSet(-1))

	var got []int

	s.Range(func(k int) bool {
		got = append(got, k)
		return true
	})

	assert.Equal(t, []int{0, 3, 63, 64, 200}, got)
}

func TestBitsBase(t *testing.T) {
	s := MakeBits(10)

	s.Set(10)
	s.Set(75)

	assert.True(t, s.IsSet(10))
	assert.True(t, s.IsSet(75))
	assert.False(t, s.IsSet(9))
	assert.Equal(t, 2, s.Size())
}
