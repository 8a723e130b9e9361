package terrace

import (
	"fmt"
	"math/big"
	"strings"
)

// TreeKind tags the variants of a tree value.
type TreeKind int

const (
	// KindLeaf is a single leaf.
	KindLeaf TreeKind = iota
	// KindInner is an ordinary binary internal node.
	KindInner
	// KindAllBinaryTrees stands for the set of all rooted binary trees
	// over a leaf set, without materializing them.
	KindAllBinaryTrees
	// KindAllCombinations stands for the union of its alternatives, one
	// per bipartition tuple of a recursion step.
	KindAllCombinations
	// KindUnrooted marks a rooted tree viewed as unrooted; printing emits
	// a trifurcation at the top.
	KindUnrooted
)

// Tree is a tagged tree node. Concrete trees use only Leaf and Inner (plus
// an optional outermost Unrooted wrapper); the compressed enumeration
// produces a DAG that additionally uses the two symbolic kinds and shares
// subterms by pointer. Tree values are immutable after construction.
type Tree struct {
	kind    TreeKind
	leaf    int
	left    *Tree
	right   *Tree
	leaves  []int
	choices []*Tree
	inner   *Tree
}

// NewLeaf creates a leaf node for the given id.
func NewLeaf(id int) *Tree { return &Tree{kind: KindLeaf, leaf: id} }

// NewInner creates a binary internal node.
func NewInner(left, right *Tree) *Tree {
	return &Tree{kind: KindInner, left: left, right: right}
}

// NewAllBinaryTrees creates a symbolic node standing for every rooted
// binary tree over the given leaves.
func NewAllBinaryTrees(leaves []int) *Tree {
	return &Tree{kind: KindAllBinaryTrees, leaves: append([]int(nil), leaves...)}
}

// NewAllCombinations creates a symbolic node standing for the union of the
// given alternatives.
func NewAllCombinations(choices []*Tree) *Tree {
	return &Tree{kind: KindAllCombinations, choices: choices}
}

// NewUnrooted wraps a rooted tree for unrooted output.
func NewUnrooted(inner *Tree) *Tree { return &Tree{kind: KindUnrooted, inner: inner} }

// Kind returns the variant tag.
func (t *Tree) Kind() TreeKind { return t.kind }

// Children returns the two children of an Inner node.
func (t *Tree) Children() (*Tree, *Tree) { return t.left, t.right }

// LeafID returns the id of a Leaf node.
func (t *Tree) LeafID() int { return t.leaf }

// Choices returns the alternatives of an AllCombinations node.
// The returned slice must not be modified.
func (t *Tree) Choices() []*Tree { return t.choices }

// Inner returns the tree wrapped by an Unrooted node.
func (t *Tree) Inner() *Tree { return t.inner }

// IsConcrete reports whether the tree contains no symbolic nodes.
func (t *Tree) IsConcrete() bool {
	switch t.kind {
	case KindLeaf:
		return true
	case KindInner:
		return t.left.IsConcrete() && t.right.IsConcrete()
	case KindUnrooted:
		return t.inner.IsConcrete()
	default:
		return false
	}
}

// Leaves returns the distinct leaf ids under the tree, in first-seen
// left-to-right order.
func (t *Tree) Leaves() []int {
	seen := make(map[int]struct{})
	var ids []int
	var walk func(*Tree)
	walk = func(n *Tree) {
		switch n.kind {
		case KindLeaf:
			if _, ok := seen[n.leaf]; !ok {
				seen[n.leaf] = struct{}{}
				ids = append(ids, n.leaf)
			}
		case KindInner:
			walk(n.left)
			walk(n.right)
		case KindAllBinaryTrees:
			for _, id := range n.leaves {
				if _, ok := seen[id]; !ok {
					seen[id] = struct{}{}
					ids = append(ids, id)
				}
			}
		case KindAllCombinations:
			for _, c := range n.choices {
				walk(c)
			}
		case KindUnrooted:
			walk(n.inner)
		}
	}
	walk(t)
	return ids
}

// CountTrees returns the number of concrete trees the value stands for,
// without expanding them. A concrete tree counts 1.
func (t *Tree) CountTrees() *big.Int {
	switch t.kind {
	case KindLeaf:
		return big.NewInt(1)
	case KindInner:
		return new(big.Int).Mul(t.left.CountTrees(), t.right.CountTrees())
	case KindAllBinaryTrees:
		return NumberOfBinaryTrees(len(t.leaves))
	case KindAllCombinations:
		sum := big.NewInt(0)
		for _, c := range t.choices {
			sum.Add(sum, c.CountTrees())
		}
		return sum
	case KindUnrooted:
		return t.inner.CountTrees()
	}
	panic(fmt.Sprintf("terrace: unknown tree kind %d", t.kind))
}

// Expand calls fn for every concrete tree the value stands for, in a
// deterministic order, until fn returns false or the expansion is
// exhausted. A concrete tree yields itself. Expand returns false if fn
// signaled stop.
func (t *Tree) Expand(fn func(*Tree) bool) bool {
	switch t.kind {
	case KindLeaf:
		return fn(t)
	case KindInner:
		return t.left.Expand(func(l *Tree) bool {
			return t.right.Expand(func(r *Tree) bool {
				return fn(NewInner(l, r))
			})
		})
	case KindAllBinaryTrees:
		for _, bt := range AllBinaryTreesOver(t.leaves) {
			if !fn(bt) {
				return false
			}
		}
		return true
	case KindAllCombinations:
		for _, c := range t.choices {
			if !c.Expand(fn) {
				return false
			}
		}
		return true
	case KindUnrooted:
		return t.inner.Expand(func(c *Tree) bool {
			return fn(NewUnrooted(c))
		})
	}
	panic(fmt.Sprintf("terrace: unknown tree kind %d", t.kind))
}

// Newick renders a concrete tree as a Newick string terminated by ";".
// Leaf ids are rendered through labels when present, falling back to the
// numeric id. An Unrooted wrapper is rendered as a trifurcation obtained
// by splitting the left child of the wrapped root, or the right child when
// the left one is a leaf. Newick panics on
// symbolic nodes; expand the value first.
func (t *Tree) Newick(labels []string) string {
	var b strings.Builder
	t.newick(&b, labels)
	b.WriteByte(';')
	return b.String()
}

// NewickWithRoot renders the tree with an extra top-level sibling, the
// root species re-attached at output time: "(left,right,root);" for an
// inner tree and "(leaf,root);" for a single leaf.
func (t *Tree) NewickWithRoot(labels []string, rootLabel string) string {
	var b strings.Builder
	b.WriteByte('(')
	n := t
	if n.kind == KindUnrooted {
		n = n.inner
	}
	switch n.kind {
	case KindLeaf:
		n.newick(&b, labels)
	case KindInner:
		n.left.newick(&b, labels)
		b.WriteByte(',')
		n.right.newick(&b, labels)
	default:
		panic("terrace: Newick output of a symbolic tree node")
	}
	b.WriteByte(',')
	b.WriteString(rootLabel)
	b.WriteString(");")
	return b.String()
}

func (t *Tree) newick(b *strings.Builder, labels []string) {
	switch t.kind {
	case KindLeaf:
		if t.leaf >= 0 && t.leaf < len(labels) {
			b.WriteString(labels[t.leaf])
		} else {
			fmt.Fprintf(b, "%d", t.leaf)
		}
	case KindInner:
		b.WriteByte('(')
		t.left.newick(b, labels)
		b.WriteByte(',')
		t.right.newick(b, labels)
		b.WriteByte(')')
	case KindUnrooted:
		t.newickUnrooted(b, labels)
	default:
		panic("terrace: Newick output of a symbolic tree node")
	}
}

// newickUnrooted emits the wrapped tree with a trifurcation at the top:
// one child of the root is split into its two children so the root gains
// three siblings.
func (t *Tree) newickUnrooted(b *strings.Builder, labels []string) {
	n := t.inner
	b.WriteByte('(')
	switch {
	case n.kind == KindLeaf:
		n.newick(b, labels)
	case n.left.kind == KindLeaf && n.right.kind == KindLeaf:
		n.left.newick(b, labels)
		b.WriteByte(',')
		n.right.newick(b, labels)
	case n.left.kind == KindLeaf:
		n.left.newick(b, labels)
		b.WriteByte(',')
		n.right.left.newick(b, labels)
		b.WriteByte(',')
		n.right.right.newick(b, labels)
	default:
		n.left.left.newick(b, labels)
		b.WriteByte(',')
		n.left.right.newick(b, labels)
		b.WriteByte(',')
		n.right.newick(b, labels)
	}
	b.WriteByte(')')
}

// NumberOfBinaryTrees returns (2k-3)!!, the number of rooted binary trees
// over k labeled leaves: 1, 1, 3, 15, 105, ... for k = 1, 2, 3, 4, 5.
func NumberOfBinaryTrees(k int) *big.Int {
	result := big.NewInt(1)
	factor := new(big.Int)
	for i := 4; i <= k+1; i++ {
		result.Mul(result, factor.SetInt64(int64(2*i-5)))
	}
	return result
}

// AllBinaryTreesOver materializes every rooted binary tree over the given
// leaves by inserting each leaf, in iteration order, into every edge
// (including above the root) of every tree over the remaining leaves.
func AllBinaryTreesOver(leaves []int) []*Tree {
	if len(leaves) == 0 {
		return nil
	}
	if len(leaves) == 1 {
		return []*Tree{NewLeaf(leaves[0])}
	}
	var result []*Tree
	for _, t := range AllBinaryTreesOver(leaves[1:]) {
		result = append(result, insertLeaf(t, leaves[0])...)
	}
	return result
}

// insertLeaf returns one tree per edge of t (plus one for the position
// above its root), each with the new leaf grafted onto that edge.
func insertLeaf(t *Tree, leaf int) []*Tree {
	var result []*Tree
	if t.kind == KindInner {
		for _, l := range insertLeaf(t.left, leaf) {
			result = append(result, NewInner(l, t.right))
		}
		for _, r := range insertLeaf(t.right, leaf) {
			result = append(result, NewInner(t.left, r))
		}
	}
	result = append(result, NewInner(t, NewLeaf(leaf)))
	return result
}
