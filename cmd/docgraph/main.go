package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ritzau/docgraph/pkg/config"
	"github.com/ritzau/docgraph/pkg/docstore"
	"github.com/ritzau/docgraph/pkg/docstore/memory"
	"github.com/ritzau/docgraph/pkg/docstore/sqlite"
	"github.com/ritzau/docgraph/pkg/graph"
	"github.com/ritzau/docgraph/pkg/logging"
	"github.com/spf13/pflag"
)

const usage = `Usage: docgraph [flags] <command> [args]

Commands:
  stats                                   vertex and edge counts
  add-vertex <key> [k=v...]               store a vertex ("-" picks a key)
  add-edge <from> <to> <key> [label] [k=v...]
                                          store an edge
  vertex <id>                             print a vertex
  edge <id>                               print an edge
  set <id> k=v...                         update vertex properties
  remove-vertex <id>                      delete a vertex and its edges
  remove-edge <id>                        delete an edge
  neighbors <id>                          outgoing edges and their targets
  cycles                                  report cycles
  watch                                   follow writes to a sqlite store

Flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newFlagSet(stderr io.Writer) *pflag.FlagSet {
	f := pflag.NewFlagSet("docgraph", pflag.ContinueOnError)
	f.SetOutput(stderr)
	f.SetInterspersed(false)
	f.Usage = func() {
		fmt.Fprint(stderr, usage)
		f.PrintDefaults()
	}

	f.String("config", config.FileName, "Path to the config file")
	f.String("backend", config.BackendSQLite, "Document store backend (memory or sqlite)")
	f.StringP("database", "d", "docgraph.db", "Path to the sqlite database")
	f.String("graph", "graph", "Graph name")
	f.String("vertices", "vertices", "Vertex collection name")
	f.String("edges", "edges", "Edge collection name")
	f.String("verbosity", "", "Log level (trace, debug, info, warn, error)")
	f.CountP("verbose", "v", "Increase log verbosity (-v debug, -vv trace)")
	f.Bool("json", false, "Log as JSON")
	f.Duration("quiet-period", 0, "Watch: quiet time before reacting to writes")
	f.Duration("max-wait", 0, "Watch: longest delay before reacting to writes")
	return f
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	flags := newFlagSet(stderr)
	if err := flags.Parse(args); err != nil {
		return err
	}

	path, _ := flags.GetString("config")
	cfg, err := config.LoadFile(path, flags)
	if err != nil {
		return err
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}

	rest := flags.Args()
	if len(rest) == 0 {
		flags.Usage()
		return fmt.Errorf("no command given")
	}

	ctx = logging.NewSessionContext(ctx)
	s, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	logging.DebugContext(ctx, "session opened", "graph", s.graph.Name(), "backend", cfg.Backend, "command", rest[0])
	return s.dispatch(ctx, rest[0], rest[1:], stdout)
}

func setupLogging(cfg *config.Config) error {
	level, err := logging.ParseLevel(cfg.Verbosity, cfg.VerboseCnt)
	if err != nil {
		return err
	}
	if cfg.JSONLogs {
		logging.SetJSONOutput(level)
	} else {
		logging.SetLevel(level)
	}
	return nil
}

// session is one graph facade over the configured store.
type session struct {
	cfg   *config.Config
	graph *graph.Graph
	db    *sqlite.DB // nil for the memory backend
}

func openSession(ctx context.Context, cfg *config.Config) (*session, error) {
	s := &session{cfg: cfg}

	var vertices, edges docstore.Collection
	switch cfg.Backend {
	case config.BackendMemory:
		vertices = memory.NewCollection(cfg.Vertices, docstore.KindVertex)
		edges = memory.NewCollection(cfg.Edges, docstore.KindEdge)
	case config.BackendSQLite:
		db, err := sqlite.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		s.db = db
		vertices = db.Collection(cfg.Vertices, docstore.KindVertex)
		edges = db.Collection(cfg.Edges, docstore.KindEdge)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	g, err := graph.New(cfg.Graph, vertices, edges)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.graph = g
	return s, nil
}

func (s *session) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
