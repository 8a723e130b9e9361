// Package render draws the compressed tree-space DAG.
//
// The DAG produced by the compressed enumeration mixes concrete topology
// (leaves, inner nodes) with symbolic nodes standing for whole families of
// trees. Rendering it makes the structure of a terrace visible without
// expanding a single tree: symbolic "all trees over {...}" nodes show
// where the constraints run out, alternation nodes show where the terrace
// branches.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/RCBiczok/terraces/pkg/terrace"
)

// ToDOT returns a Graphviz DOT representation of the tree DAG.
//
// Node representation:
//   - leaves: rounded boxes labeled with the species name
//   - inner nodes: points
//   - all-binary-trees nodes: boxes labeled "ALL{...}" over the leaf labels
//   - alternation nodes: diamonds labeled "ANY"
//   - unrooted wrappers: ellipses labeled "unrooted"
//
// Leaf ids are rendered through labels when present, falling back to the
// numeric id. Shared subterms are emitted once and referenced by every
// parent, so the output mirrors the sharing of the DAG itself.
func ToDOT(t *terrace.Tree, labels []string) string {
	var buf bytes.Buffer
	buf.WriteString("digraph terrace {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"SF Mono, Menlo, monospace\", fontsize=12, style=filled, fillcolor=white];\n")
	buf.WriteString("  edge [arrowhead=none];\n\n")

	w := &dotWriter{buf: &buf, labels: labels, ids: make(map[*terrace.Tree]string)}
	w.node(t)

	buf.WriteString("}\n")
	return buf.String()
}

type dotWriter struct {
	buf    *bytes.Buffer
	labels []string
	ids    map[*terrace.Tree]string
	next   int
}

// node emits the subtree rooted at t once and returns its DOT id.
func (w *dotWriter) node(t *terrace.Tree) string {
	if id, ok := w.ids[t]; ok {
		return id
	}
	id := fmt.Sprintf("n%d", w.next)
	w.next++
	w.ids[t] = id

	switch t.Kind() {
	case terrace.KindLeaf:
		fmt.Fprintf(w.buf, "  %s [label=%q, shape=box, style=\"filled,rounded\"];\n", id, w.leafLabel(t.LeafID()))
	case terrace.KindInner:
		fmt.Fprintf(w.buf, "  %s [label=\"\", shape=point, width=0.12];\n", id)
		left, right := t.Children()
		fmt.Fprintf(w.buf, "  %s -> %s;\n", id, w.node(left))
		fmt.Fprintf(w.buf, "  %s -> %s;\n", id, w.node(right))
	case terrace.KindAllBinaryTrees:
		names := make([]string, len(t.Leaves()))
		for i, leaf := range t.Leaves() {
			names[i] = w.leafLabel(leaf)
		}
		fmt.Fprintf(w.buf, "  %s [label=\"ALL{%s}\", shape=box];\n", id, strings.Join(names, ","))
	case terrace.KindAllCombinations:
		fmt.Fprintf(w.buf, "  %s [label=\"ANY\", shape=diamond];\n", id)
		for _, choice := range allChoices(t) {
			fmt.Fprintf(w.buf, "  %s -> %s [style=dashed];\n", id, w.node(choice))
		}
	case terrace.KindUnrooted:
		fmt.Fprintf(w.buf, "  %s [label=\"unrooted\", shape=ellipse];\n", id)
		for _, choice := range allChoices(t) {
			fmt.Fprintf(w.buf, "  %s -> %s;\n", id, w.node(choice))
		}
	}
	return id
}

func (w *dotWriter) leafLabel(id int) string {
	if id >= 0 && id < len(w.labels) {
		return w.labels[id]
	}
	return fmt.Sprintf("%d", id)
}

// allChoices returns the direct alternatives of a combination or the
// single wrapped tree of an unrooted node.
func allChoices(t *terrace.Tree) []*terrace.Tree {
	switch t.Kind() {
	case terrace.KindAllCombinations:
		return t.Choices()
	case terrace.KindUnrooted:
		return []*terrace.Tree{t.Inner()}
	}
	return nil
}

// RenderSVG renders the tree DAG as an SVG image via Graphviz.
func RenderSVG(t *terrace.Tree, labels []string) ([]byte, error) {
	return renderFormat(t, labels, graphviz.SVG)
}

// RenderPNG renders the tree DAG as a PNG image via Graphviz.
func RenderPNG(t *terrace.Tree, labels []string) ([]byte, error) {
	return renderFormat(t, labels, graphviz.PNG)
}

func renderFormat(t *terrace.Tree, labels []string, format graphviz.Format) ([]byte, error) {
	dot := ToDOT(t, labels)

	gv, err := graphviz.New(context.Background())
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(context.Background(), g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
