package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocate_SequenceIsDistinct(t *testing.T) {
	a := New(Options{Strategy: StrategySequence})

	seen := make(map[int]bool)
	for i := 0; i < 5000; i++ {
		id, err := a.Allocate()
		require.NoError(t, err)
		require.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}

	assert.Equal(t, 5000, a.Len())
}

func TestAllocate_SequenceContinuesAfterRestore(t *testing.T) {
	a := New(Options{})
	a.Restore([]int{4, 17, 9})

	id, err := a.Allocate()
	require.NoError(t, err)
	assert.Equal(t, 18, id)
	assert.Equal(t, []int{4, 9, 17, 18}, a.Issued())
}

func TestAllocate_RandomIsDistinctBelowRange(t *testing.T) {
	a := New(Options{Strategy: StrategyRandom, Range: 1000, MaxRetries: 10_000})

	seen := make(map[int]bool)
	for i := 0; i < 500; i++ {
		id, err := a.Allocate()
		require.NoError(t, err)
		require.GreaterOrEqual(t, id, 0)
		require.Less(t, id, 1000)
		require.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
}

func TestAllocate_RandomRetriesOnCollision(t *testing.T) {
	draws := []int{3, 3, 3, 7}
	a := New(Options{
		Strategy: StrategyRandom,
		Range:    10,
		IntN: func(int) int {
			n := draws[0]
			draws = draws[1:]
			return n
		},
	})

	first, err := a.Allocate()
	require.NoError(t, err)
	assert.Equal(t, 3, first)

	second, err := a.Allocate()
	require.NoError(t, err)
	assert.Equal(t, 7, second)
	assert.Empty(t, draws)
}

func TestAllocate_RandomBoundedRetries(t *testing.T) {
	a := New(Options{
		Strategy:   StrategyRandom,
		Range:      10,
		MaxRetries: 5,
		IntN:       func(int) int { return 1 },
	})
	a.Reserve(1)

	_, err := a.Allocate()
	require.ErrorIs(t, err, ErrIDExhausted)
	assert.Equal(t, 1, a.Len())
}

func TestAllocate_RandomFullRange(t *testing.T) {
	a := New(Options{Strategy: StrategyRandom, Range: 3})
	a.Restore([]int{0, 1, 2})

	_, err := a.Allocate()
	assert.ErrorIs(t, err, ErrIDExhausted)
}

func TestAllocate_UnknownStrategy(t *testing.T) {
	a := New(Options{Strategy: "dice"})

	_, err := a.Allocate()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrIDExhausted)
}

func TestReset(t *testing.T) {
	a := New(Options{})
	_, _ = a.Allocate()
	_, _ = a.Allocate()

	a.Reset()

	assert.Equal(t, 0, a.Len())
	id, err := a.Allocate()
	require.NoError(t, err)
	assert.Equal(t, 0, id)
	assert.True(t, a.IsIssued(0))
}
