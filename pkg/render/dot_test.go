package render

import (
	"strings"
	"testing"

	"github.com/RCBiczok/terraces/pkg/terrace"
)

func TestToDOTLeafAndInner(t *testing.T) {
	tree := terrace.NewInner(terrace.NewLeaf(0), terrace.NewLeaf(1))
	dot := ToDOT(tree, []string{"s1", "s2"})

	for _, want := range []string{"digraph terrace", `label="s1"`, `label="s2"`, "shape=point"} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTSymbolicNodes(t *testing.T) {
	dag := terrace.NewAllCombinations([]*terrace.Tree{
		terrace.NewInner(terrace.NewAllBinaryTrees([]int{0, 1, 2}), terrace.NewLeaf(3)),
		terrace.NewInner(terrace.NewLeaf(0), terrace.NewAllBinaryTrees([]int{1, 2, 3})),
	})
	dot := ToDOT(dag, []string{"a", "b", "c", "d"})

	if !strings.Contains(dot, `label="ANY"`) {
		t.Errorf("DOT output missing the alternation node:\n%s", dot)
	}
	if !strings.Contains(dot, "ALL{a,b,c}") || !strings.Contains(dot, "ALL{b,c,d}") {
		t.Errorf("DOT output missing the all-binary-trees nodes:\n%s", dot)
	}
	if !strings.Contains(dot, "style=dashed") {
		t.Errorf("alternation edges should be dashed:\n%s", dot)
	}
}

func TestToDOTSharedSubterm(t *testing.T) {
	shared := terrace.NewAllBinaryTrees([]int{0, 1})
	dag := terrace.NewAllCombinations([]*terrace.Tree{
		terrace.NewInner(shared, terrace.NewLeaf(2)),
		terrace.NewInner(shared, terrace.NewLeaf(3)),
	})
	dot := ToDOT(dag, nil)

	if got := strings.Count(dot, "ALL{0,1}"); got != 1 {
		t.Errorf("shared subterm emitted %d times, want 1:\n%s", got, dot)
	}
}

func TestToDOTUnrooted(t *testing.T) {
	dag := terrace.NewUnrooted(terrace.NewAllBinaryTrees([]int{0, 1, 2}))
	dot := ToDOT(dag, nil)
	if !strings.Contains(dot, `label="unrooted"`) {
		t.Errorf("DOT output missing the unrooted wrapper:\n%s", dot)
	}
}
