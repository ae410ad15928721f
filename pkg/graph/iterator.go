package graph

import (
	"context"

	"github.com/ritzau/docgraph/pkg/docstore"
)

// Iterator yields graph objects from a store cursor one at a time. It
// holds at most one pending document and cannot be restarted; once
// exhausted it stays exhausted. Dropping an unfinished iterator is enough
// to abandon it.
type Iterator[T any] struct {
	cursor  docstore.Cursor
	resolve func(context.Context, *docstore.Document) (T, error)
	desc    string
}

func newIterator[T any](cursor docstore.Cursor, resolve func(context.Context, *docstore.Document) (T, error), desc string) *Iterator[T] {
	return &Iterator[T]{cursor: cursor, resolve: resolve, desc: desc}
}

// HasNext reports whether Next would produce another object.
func (it *Iterator[T]) HasNext() bool {
	if it.cursor == nil {
		return false
	}
	if !it.cursor.HasNext() {
		it.cursor = nil
		return false
	}
	return true
}

// Next returns the next object. ok is false once the sequence is exhausted.
func (it *Iterator[T]) Next(ctx context.Context) (obj T, ok bool, err error) {
	if !it.HasNext() {
		return obj, false, nil
	}
	doc, err := it.cursor.Next()
	if err != nil {
		return obj, false, err
	}
	obj, err = it.resolve(ctx, doc)
	if err != nil {
		return obj, false, err
	}
	return obj, true, nil
}

func (it *Iterator[T]) String() string {
	return it.desc
}
