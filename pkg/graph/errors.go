package graph

import (
	"errors"
	"fmt"

	"github.com/ritzau/docgraph/pkg/docstore"
)

var (
	// ErrNotFound matches lookups of ids without a backing document.
	ErrNotFound = docstore.ErrNotFound

	// ErrInvalidReference matches edges whose endpoint id does not resolve.
	ErrInvalidReference = errors.New("invalid endpoint reference")

	// ErrNoEdgeIndex is returned for incident-edge queries when the edge
	// collection cannot look edges up by vertex.
	ErrNoEdgeIndex = errors.New("edge collection has no vertex index")

	// ErrNotScannable is returned by Vertices/Edges when the collection
	// cannot be iterated.
	ErrNotScannable = errors.New("collection cannot be scanned")
)

// NotFoundError reports access to a vertex or edge that does not exist,
// typically one that was deleted.
type NotFoundError struct {
	Kind docstore.Kind
	ID   string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("accessing a deleted %s %q", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err == nil {
		return ErrNotFound
	}
	return e.Err
}

// InvalidReferenceError reports an edge endpoint that does not resolve to a
// vertex. It is raised when the endpoint is resolved, not when the edge is
// created.
type InvalidReferenceError struct {
	EdgeID   string
	Endpoint string // "from" or "to"
	VertexID string
	Err      error
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("edge %q: %s vertex %q does not resolve: %v", e.EdgeID, e.Endpoint, e.VertexID, e.Err)
}

// Is makes errors.Is(err, ErrInvalidReference) hold while Unwrap still
// exposes the underlying lookup failure.
func (e *InvalidReferenceError) Is(target error) bool {
	return target == ErrInvalidReference
}

func (e *InvalidReferenceError) Unwrap() error {
	return e.Err
}
