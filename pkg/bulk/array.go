// Package bulk provides a sparse, index-addressable container with
// broadcast application of a per-element function.
//
// An Array distinguishes "index present" from "index absent". Broadcasting
// never densifies: the result holds exactly the indices of the input whose
// function call produced a value.
package bulk

import (
	"errors"
	"fmt"
	"sort"
)

// ErrSkip may be returned by a broadcast function to leave the element's
// index absent in the result. It is not treated as a failure.
var ErrSkip = errors.New("bulk: skip element")

// ElementError reports the failure of a broadcast function at one index.
type ElementError struct {
	Index int
	Err   error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("element %d: %v", e.Index, e.Err)
}

func (e *ElementError) Unwrap() error {
	return e.Err
}

// Array is a sparse ordered collection. The zero value is an empty,
// growable array.
type Array[T any] struct {
	items  map[int]T
	length int
	fixed  bool
}

// New returns an array. A positive length fixes the array's length;
// Set outside [0, length) then panics. A zero length yields an array whose
// length grows to one past the highest index set.
func New[T any](length int) *Array[T] {
	if length < 0 {
		panic("bulk: negative length")
	}
	return &Array[T]{
		items:  make(map[int]T),
		length: length,
		fixed:  length > 0,
	}
}

// FromSlice returns a dense array holding values at indices 0..len-1.
func FromSlice[T any](values []T) *Array[T] {
	a := New[T](0)
	for i, v := range values {
		a.Set(i, v)
	}
	return a
}

// Set stores v at index i.
func (a *Array[T]) Set(i int, v T) {
	if i < 0 {
		panic(fmt.Sprintf("bulk: negative index %d", i))
	}
	if a.fixed && i >= a.length {
		panic(fmt.Sprintf("bulk: index %d out of range [0, %d)", i, a.length))
	}
	if a.items == nil {
		a.items = make(map[int]T)
	}
	a.items[i] = v
	if i >= a.length {
		a.length = i + 1
	}
}

// Get returns the value at index i and whether the index is present.
func (a *Array[T]) Get(i int) (T, bool) {
	v, ok := a.items[i]
	return v, ok
}

// Has reports whether index i is present.
func (a *Array[T]) Has(i int) bool {
	_, ok := a.items[i]
	return ok
}

// Delete makes index i absent. The length is unchanged.
func (a *Array[T]) Delete(i int) {
	delete(a.items, i)
}

// Len returns the logical length, including absent trailing indices of a
// fixed-length array.
func (a *Array[T]) Len() int {
	return a.length
}

// Count returns the number of present indices.
func (a *Array[T]) Count() int {
	return len(a.items)
}

// Indices returns the present indices in ascending order.
func (a *Array[T]) Indices() []int {
	idx := make([]int, 0, len(a.items))
	for i := range a.items {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// Each calls fn for every present index in ascending order.
func (a *Array[T]) Each(fn func(i int, v T)) {
	for _, i := range a.Indices() {
		fn(i, a.items[i])
	}
}

// Values returns the present values in index order.
func (a *Array[T]) Values() []T {
	out := make([]T, 0, len(a.items))
	a.Each(func(_ int, v T) { out = append(out, v) })
	return out
}

// derive returns an empty array with the same length semantics as a.
func derive[T, U any](a *Array[T]) *Array[U] {
	return &Array[U]{
		items:  make(map[int]U, len(a.items)),
		length: a.length,
		fixed:  a.fixed,
	}
}

// Broadcast applies fn to every present element and returns an array with
// the same index set. Elements for which fn returns ErrSkip are left
// absent. Any other error stops the broadcast and is returned as an
// *ElementError for the lowest failing index.
func Broadcast[T, U any](a *Array[T], fn func(T) (U, error)) (*Array[U], error) {
	out := derive[T, U](a)
	for _, i := range a.Indices() {
		v, err := fn(a.items[i])
		if errors.Is(err, ErrSkip) {
			continue
		}
		if err != nil {
			return nil, &ElementError{Index: i, Err: err}
		}
		out.items[i] = v
	}
	return out, nil
}

// BroadcastBestEffort is like Broadcast but keeps going after a failure.
// Failed elements are absent from the result and their errors are returned
// keyed by index; the map is nil when nothing failed.
func BroadcastBestEffort[T, U any](a *Array[T], fn func(T) (U, error)) (*Array[U], map[int]error) {
	out := derive[T, U](a)
	var failures map[int]error
	for _, i := range a.Indices() {
		v, err := fn(a.items[i])
		if errors.Is(err, ErrSkip) {
			continue
		}
		if err != nil {
			if failures == nil {
				failures = make(map[int]error)
			}
			failures[i] = err
			continue
		}
		out.items[i] = v
	}
	return out, failures
}
