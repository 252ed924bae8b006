// Package script embeds a gopher-lua interpreter and exposes the node
// graph to it: constructors for each dsp node kind, per-node method
// handles, and a chaining sound-builder, built on gopher-lua's
// LUserData/LTable types.
package script

import (
	"bufio"
	"fmt"
	"io"
	"os"

	lua "github.com/yuin/gopher-lua"

	"github.com/aaratha/takyon/graph"
)

// Host owns one Lua interpreter bound to a single Graph.
type Host struct {
	L     *lua.LState
	graph *graph.Graph
}

// NewHost creates an interpreter, registers the node-graph global surface,
// and — if present — runs lua/runtime.lua.
func NewHost(g *graph.Graph) *Host {
	h := &Host{L: lua.NewState(), graph: g}
	h.register()

	const runtimePath = "lua/runtime.lua"
	if _, err := os.Stat(runtimePath); err == nil {
		if err := h.RunFile(runtimePath); err != nil {
			fmt.Fprintf(os.Stderr, "lua runtime error: %v\n", err)
		}
	}
	return h
}

// Close releases the interpreter. The Host is unusable afterward.
func (h *Host) Close() {
	h.L.Close()
}

// RunString compiles and executes one chunk of Lua source, reporting (not
// panicking on) any error — matching runString's "log and continue"
// behavior so one bad line in the REPL or watched file doesn't bring the
// engine down.
func (h *Host) RunString(code string) error {
	if err := h.L.DoString(code); err != nil {
		fmt.Fprintf(os.Stderr, "lua error: %v\n", err)
		return err
	}
	return nil
}

// RunFile loads and executes path.
func (h *Host) RunFile(path string) error {
	if err := h.L.DoFile(path); err != nil {
		fmt.Fprintf(os.Stderr, "lua error: %v\n", err)
		return err
	}
	return nil
}

// Loop reads one script expression per line from r until EOF or a line
// reading "exit", echoing a "-> " prompt to w between lines.
func (h *Host) Loop(r io.Reader, w io.Writer) {
	scanner := bufio.NewScanner(r)
	for {
		fmt.Fprint(w, "-> ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		if line == "exit" {
			return
		}
		h.RunString(line)
	}
}
