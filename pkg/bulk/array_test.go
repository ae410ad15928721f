package bulk

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sparse() *Array[int] {
	a := New[int](0)
	a.Set(0, 10)
	a.Set(2, 20)
	a.Set(5, 50)
	return a
}

func TestSparseIndices(t *testing.T) {
	a := sparse()

	assert.Equal(t, 6, a.Len())
	assert.Equal(t, 3, a.Count())
	assert.Equal(t, []int{0, 2, 5}, a.Indices())
	assert.True(t, a.Has(2))
	assert.False(t, a.Has(3))

	_, ok := a.Get(3)
	assert.False(t, ok)
	v, ok := a.Get(5)
	assert.True(t, ok)
	assert.Equal(t, 50, v)
}

func TestPresentZeroValueIsNotAbsent(t *testing.T) {
	a := New[int](0)
	a.Set(1, 0)

	v, ok := a.Get(1)
	assert.True(t, ok)
	assert.Equal(t, 0, v)
	assert.False(t, a.Has(0))
}

func TestBroadcastPreservesIndexSet(t *testing.T) {
	tests := []struct {
		name string
		fn   func(int) (string, error)
	}{
		{"format", func(v int) (string, error) { return strconv.Itoa(v), nil }},
		{"constant", func(int) (string, error) { return "x", nil }},
		{"empty", func(int) (string, error) { return "", nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Broadcast(sparse(), tt.fn)
			require.NoError(t, err)
			assert.Equal(t, []int{0, 2, 5}, out.Indices())
			assert.Equal(t, 6, out.Len())
		})
	}
}

func TestBroadcastValues(t *testing.T) {
	out, err := Broadcast(sparse(), func(v int) (int, error) { return v * 2, nil })
	require.NoError(t, err)
	assert.Equal(t, []int{20, 40, 100}, out.Values())
}

func TestBroadcastSkip(t *testing.T) {
	out, err := Broadcast(sparse(), func(v int) (int, error) {
		if v == 20 {
			return 0, ErrSkip
		}
		return v, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 5}, out.Indices())
}

func TestBroadcastStopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	_, err := Broadcast(sparse(), func(v int) (int, error) {
		calls++
		if v >= 20 {
			return 0, boom
		}
		return v, nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	var elemErr *ElementError
	require.ErrorAs(t, err, &elemErr)
	assert.Equal(t, 2, elemErr.Index)
	assert.Equal(t, 2, calls)
}

func TestBroadcastBestEffort(t *testing.T) {
	boom := errors.New("boom")
	out, failures := BroadcastBestEffort(sparse(), func(v int) (int, error) {
		if v == 20 {
			return 0, boom
		}
		return v + 1, nil
	})

	assert.Equal(t, []int{0, 5}, out.Indices())
	assert.Equal(t, []int{11, 51}, out.Values())
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[2], boom)
}

func TestBroadcastBestEffortNoFailures(t *testing.T) {
	_, failures := BroadcastBestEffort(sparse(), func(v int) (int, error) { return v, nil })
	assert.Nil(t, failures)
}

func TestFixedLength(t *testing.T) {
	a := New[string](4)
	a.Set(1, "b")

	assert.Equal(t, 4, a.Len())
	assert.Equal(t, 1, a.Count())
	assert.Panics(t, func() { a.Set(4, "e") })

	out, err := Broadcast(a, func(s string) (string, error) { return s + s, nil })
	require.NoError(t, err)
	assert.Equal(t, 4, out.Len())
	assert.Equal(t, []int{1}, out.Indices())
}

func TestDeleteKeepsLength(t *testing.T) {
	a := FromSlice([]string{"a", "b", "c"})
	a.Delete(2)

	assert.Equal(t, 3, a.Len())
	assert.Equal(t, []int{0, 1}, a.Indices())
}

func TestZeroValueArray(t *testing.T) {
	var a Array[int]
	a.Set(3, 1)
	assert.Equal(t, 4, a.Len())
	assert.Equal(t, []int{3}, a.Indices())
}
