package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ritzau/docgraph/pkg/bulk"
	"github.com/ritzau/docgraph/pkg/config"
	"github.com/ritzau/docgraph/pkg/cycles"
	"github.com/ritzau/docgraph/pkg/graph"
	"github.com/ritzau/docgraph/pkg/logging"
	"github.com/ritzau/docgraph/pkg/output"
	"github.com/ritzau/docgraph/pkg/view"
	"github.com/ritzau/docgraph/pkg/watcher"
)

func (s *session) dispatch(ctx context.Context, cmd string, args []string, w io.Writer) error {
	switch cmd {
	case "stats":
		return s.stats(ctx, w)
	case "add-vertex":
		return s.addVertex(ctx, args, w)
	case "add-edge":
		return s.addEdge(ctx, args, w)
	case "vertex":
		return s.showVertex(ctx, args, w)
	case "edge":
		return s.showEdge(ctx, args, w)
	case "set":
		return s.setProperties(ctx, args, w)
	case "remove-vertex":
		return s.removeVertex(ctx, args, w)
	case "remove-edge":
		return s.removeEdge(ctx, args, w)
	case "neighbors":
		return s.neighbors(ctx, args, w)
	case "cycles":
		return s.findCycles(ctx, w)
	case "watch":
		return s.watch(ctx, w)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func wantArgs(cmd string, args []string, n int) error {
	if len(args) < n {
		return fmt.Errorf("%s: expected at least %d argument(s), got %d", cmd, n, len(args))
	}
	return nil
}

func (s *session) stats(ctx context.Context, w io.Writer) error {
	order, err := s.graph.Order(ctx)
	if err != nil {
		return err
	}
	size, err := s.graph.Size(ctx)
	if err != nil {
		return err
	}
	output.PrintStats(w, s.graph, order, size)
	return nil
}

func (s *session) addVertex(ctx context.Context, args []string, w io.Writer) error {
	if err := wantArgs("add-vertex", args, 1); err != nil {
		return err
	}
	props, err := parseProperties(args[1:])
	if err != nil {
		return err
	}
	v, err := s.graph.AddVertex(ctx, autoKey(args[0]), props)
	if err != nil {
		return err
	}
	logging.InfoContext(ctx, "added vertex", "id", v.ID(), "rev", v.Revision())
	output.PrintVertex(w, v)
	return nil
}

func (s *session) addEdge(ctx context.Context, args []string, w io.Writer) error {
	if err := wantArgs("add-edge", args, 3); err != nil {
		return err
	}
	rest := args[3:]
	var label string
	if len(rest) > 0 && !strings.Contains(rest[0], "=") {
		label, rest = rest[0], rest[1:]
	}
	props, err := parseProperties(rest)
	if err != nil {
		return err
	}

	e, err := s.graph.AddEdge(ctx, graph.ByID(args[0]), graph.ByID(args[1]), autoKey(args[2]), label, props)
	if err != nil {
		return err
	}
	logging.InfoContext(ctx, "added edge", "id", e.ID(), "from", e.FromID(), "to", e.ToID())
	output.PrintEdge(w, e)
	return nil
}

func (s *session) showVertex(ctx context.Context, args []string, w io.Writer) error {
	if err := wantArgs("vertex", args, 1); err != nil {
		return err
	}
	v, err := s.graph.Vertex(ctx, args[0])
	if err != nil {
		return err
	}
	output.PrintVertex(w, v)
	return nil
}

func (s *session) showEdge(ctx context.Context, args []string, w io.Writer) error {
	if err := wantArgs("edge", args, 1); err != nil {
		return err
	}
	e, err := s.graph.Edge(ctx, args[0])
	if err != nil {
		return err
	}
	output.PrintEdge(w, e)
	return nil
}

func (s *session) setProperties(ctx context.Context, args []string, w io.Writer) error {
	if err := wantArgs("set", args, 2); err != nil {
		return err
	}
	updates, err := parseProperties(args[1:])
	if err != nil {
		return err
	}
	v, err := s.graph.Vertex(ctx, args[0])
	if err != nil {
		return err
	}
	props := v.Properties()
	for k, val := range updates {
		props[k] = val
	}
	v, err = s.graph.ReplaceVertex(ctx, v.ID(), props)
	if err != nil {
		return err
	}
	output.PrintVertex(w, v)
	return nil
}

func (s *session) removeVertex(ctx context.Context, args []string, w io.Writer) error {
	if err := wantArgs("remove-vertex", args, 1); err != nil {
		return err
	}
	v, err := s.graph.Vertex(ctx, args[0])
	if err != nil {
		return err
	}
	id := v.ID()
	if err := s.graph.RemoveVertex(ctx, v); err != nil {
		return err
	}
	fmt.Fprintf(w, "removed %s\n", id)
	return nil
}

func (s *session) removeEdge(ctx context.Context, args []string, w io.Writer) error {
	if err := wantArgs("remove-edge", args, 1); err != nil {
		return err
	}
	e, err := s.graph.Edge(ctx, args[0])
	if err != nil {
		return err
	}
	id := e.ID()
	if err := s.graph.RemoveEdge(ctx, e); err != nil {
		return err
	}
	fmt.Fprintf(w, "removed %s\n", id)
	return nil
}

// neighbors resolves the targets of all outgoing edges in one broadcast.
// Dangling targets are reported rather than failing the command.
func (s *session) neighbors(ctx context.Context, args []string, w io.Writer) error {
	if err := wantArgs("neighbors", args, 1); err != nil {
		return err
	}
	v, err := s.graph.Vertex(ctx, args[0])
	if err != nil {
		return err
	}
	out, err := v.OutEdges(ctx)
	if err != nil {
		return err
	}

	edges := bulk.FromSlice(out)
	targets, failures := bulk.BroadcastBestEffort(edges, func(e *graph.Edge) (*graph.Vertex, error) {
		return e.InVertex(ctx)
	})
	for i, ferr := range failures {
		if !errors.Is(ferr, graph.ErrInvalidReference) {
			return &bulk.ElementError{Index: i, Err: ferr}
		}
		logging.WarnContext(ctx, "dangling edge", "edge", out[i].ID(), "error", ferr)
	}

	neighbors := make([]output.Neighbor, 0, len(out))
	edges.Each(func(i int, e *graph.Edge) {
		target, _ := targets.Get(i)
		neighbors = append(neighbors, output.Neighbor{Edge: e, Vertex: target})
	})
	output.PrintNeighbors(w, v, neighbors)
	return nil
}

func (s *session) findCycles(ctx context.Context, w io.Writer) error {
	snap, err := view.Build(ctx, s.graph)
	if err != nil {
		return err
	}
	output.PrintCycles(w, cycles.Find(snap))
	return nil
}

// watch follows writes made to the sqlite store by other processes. The
// predecessor table is only valid for the data it was computed from, so it
// is cleared whenever committed data may have changed.
func (s *session) watch(ctx context.Context, w io.Writer) error {
	if s.cfg.Backend != config.BackendSQLite {
		return fmt.Errorf("watch needs the %s backend", config.BackendSQLite)
	}

	sw, err := watcher.NewStoreWatcher(s.db.Path())
	if err != nil {
		return err
	}
	if err := sw.Start(ctx); err != nil {
		return err
	}
	defer sw.Stop()

	debouncer := watcher.NewDebouncer(sw.Events(), s.cfg.QuietPeriod, s.cfg.MaxWait)
	debouncer.Start(ctx)

	fmt.Fprintf(w, "watching %s (Ctrl-C to stop)\n", sw.Path())
	for event := range debouncer.Output() {
		analysis := watcher.AnalyzeChanges(event, sw.Path())
		if !analysis.DataChanged {
			logging.DebugContext(ctx, "ignoring index-only change", "files", len(analysis.ChangedFiles))
			continue
		}

		s.graph.ClearPredecessors()
		if err := s.stats(ctx, w); err != nil {
			logging.ErrorContext(ctx, "failed to read store after change", "error", err)
		}
		logging.InfoContext(ctx, "store changed", "files", len(analysis.ChangedFiles), "checkpointed", analysis.Checkpointed)
	}
	return nil
}
