package diagram

import (
	"fmt"
	"strings"
)

type node struct {
	id    string
	label string
	shape string // "box" or "db"
}

func box(id, label string) node { return node{id: id, label: label, shape: "box"} }
func store(id, label string) node { return node{id: id, label: label, shape: "db"} }

func (n node) String() string {
	if n.shape == "db" {
		return fmt.Sprintf("%s[(%s)]", n.id, n.label)
	}
	return fmt.Sprintf("%s[%s]", n.id, n.label)
}

// graph accumulates Mermaid flowchart markup.
type graph struct {
	b strings.Builder
}

func newGraph(direction string) *graph {
	g := &graph{}
	g.line("graph %s", direction)
	return g
}

func (g *graph) line(format string, args ...any) {
	fmt.Fprintf(&g.b, format, args...)
	g.b.WriteByte('\n')
}

// subgraph writes a named group. Empty groups are skipped.
func (g *graph) subgraph(name string, nodes ...node) {
	if len(nodes) == 0 {
		return
	}
	g.line("    subgraph %q", name)
	for _, n := range nodes {
		g.line("        %s", n)
	}
	g.line("    end")
}

func (g *graph) edge(from, to string) {
	g.line("    %s --> %s", from, to)
}

func (g *graph) labelled(from, to, label string) {
	g.line("    %s -->|%s| %s", from, label, to)
}

func (g *graph) dotted(from, to, label string) {
	g.line("    %s -.->|%s| %s", from, label, to)
}

func (g *graph) classDef(name, fill string) {
	g.line("    classDef %s fill:%s", name, fill)
}

// class assigns ids to a class. Ids that were never declared are dropped so
// the markup stays valid.
func (g *graph) class(name string, declared map[string]bool, ids ...string) {
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if declared == nil || declared[id] {
			kept = append(kept, id)
		}
	}
	if len(kept) == 0 {
		return
	}
	g.line("    class %s %s", strings.Join(kept, ","), name)
}

func (g *graph) String() string {
	return g.b.String()
}
