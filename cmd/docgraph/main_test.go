package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/ritzau/docgraph/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

type cli struct {
	t    *testing.T
	base []string
}

func newCLI(t *testing.T) *cli {
	dir := t.TempDir()
	return &cli{t: t, base: []string{
		"--config", filepath.Join(dir, "none.toml"),
		"--database", filepath.Join(dir, "graph.db"),
		"--verbosity", "error",
	}}
}

func (c *cli) run(args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), append(append([]string{}, c.base...), args...), &stdout, &stderr)
	return stdout.String(), err
}

func (c *cli) ok(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, "docgraph %v", args)
	return out
}

func TestParseProperties(t *testing.T) {
	props, err := parseProperties([]string{"n=1", "s=hello", "q=\"quoted\"", "b=true", "l=[1,2]", "e="})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"n": float64(1),
		"s": "hello",
		"q": "quoted",
		"b": true,
		"l": []any{float64(1), float64(2)},
		"e": "",
	}, props)

	_, err = parseProperties([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseProperties([]string{"=x"})
	assert.Error(t, err)
}

func TestCommandsAcrossRuns(t *testing.T) {
	c := newCLI(t)

	out := c.ok("add-vertex", "alice", "age=30", "name=Alice")
	assert.Contains(t, out, `Vertex("alice")`)
	c.ok("add-vertex", "bob")

	out = c.ok("add-edge", "alice", "bob", "ab", "knows", "since=2020")
	assert.Contains(t, out, "vertices/alice -> vertices/bob")
	assert.Contains(t, out, "label: knows")

	out = c.ok("vertex", "alice")
	assert.Contains(t, out, "age = 30")
	assert.Contains(t, out, `name = "Alice"`)

	out = c.ok("edge", "ab")
	assert.Contains(t, out, "since = 2020")

	out = c.ok("set", "bob", "age=41")
	assert.Contains(t, out, "age = 41")

	out = c.ok("stats")
	assert.Contains(t, out, "Vertices: 2")
	assert.Contains(t, out, "Edges: 1")

	out = c.ok("cycles")
	assert.Contains(t, out, "No cycles found")

	c.ok("add-edge", "bob", "alice", "ba")
	out = c.ok("cycles")
	assert.Contains(t, out, "CYCLES: 1")

	c.ok("add-edge", "alice", "ghost", "ag", "likes")
	out = c.ok("neighbors", "alice")
	assert.Contains(t, out, "[knows] ab -> vertices/bob")
	assert.Contains(t, out, "[likes] ag -> vertices/ghost (missing)")

	out = c.ok("remove-vertex", "alice")
	assert.Contains(t, out, "removed vertices/alice")

	_, err := c.run("vertex", "alice")
	assert.ErrorIs(t, err, graph.ErrNotFound)
	_, err = c.run("edge", "ab")
	assert.ErrorIs(t, err, graph.ErrNotFound)

	out = c.ok("stats")
	assert.Contains(t, out, "Vertices: 1")
	assert.Contains(t, out, "Edges: 0")
}

func TestCommandErrors(t *testing.T) {
	c := newCLI(t)

	_, err := c.run()
	assert.EqualError(t, err, "no command given")

	_, err = c.run("frobnicate")
	assert.ErrorContains(t, err, "unknown command")

	_, err = c.run("add-edge", "a")
	assert.ErrorContains(t, err, "expected at least 3")

	_, err = c.run("add-vertex", "x", "broken")
	assert.ErrorContains(t, err, "expected key=value")

	_, err = c.run("--backend", "memory", "watch")
	assert.ErrorContains(t, err, "needs the sqlite backend")

	_, err = c.run("--backend", "postgres", "stats")
	assert.ErrorContains(t, err, "unknown backend")
}

func TestMemoryBackendIsPerRun(t *testing.T) {
	c := newCLI(t)
	c.ok("--backend", "memory", "add-vertex", "a")

	out := c.ok("--backend", "memory", "stats")
	assert.Contains(t, out, "Vertices: 0")
}
