// Package supertree turns a Newick supertree and a presence/absence
// matrix into the inputs of the terrace engine: a dense leaf id
// directory, a rooted binary topology over the non-root species, and the
// rooted-triple constraints induced by each partition.
//
// Newick parsing is delegated to gotree; everything downstream works on
// the package's own Node, a plain binary topology with leaf ids assigned
// by the Directory.
package supertree

import (
	"strings"

	"github.com/evolbioinfo/gotree/io/newick"
	"github.com/evolbioinfo/gotree/tree"

	"github.com/RCBiczok/terraces/pkg/errors"
	"github.com/RCBiczok/terraces/pkg/matrix"
	"github.com/RCBiczok/terraces/pkg/terrace"
)

// Directory maps species labels to the dense leaf ids used by the terrace
// engine and back. The root species is excluded from the id space and kept
// separately; it exists only to orient the supertree and is re-attached at
// output time. A Directory is read-only once built; concurrent analyses
// use independent instances.
type Directory struct {
	labels    []string
	index     map[string]int
	rootLabel string
}

// Len returns the number of mapped species (root species excluded).
func (d *Directory) Len() int { return len(d.labels) }

// Label returns the species label for a leaf id.
func (d *Directory) Label(id int) string { return d.labels[id] }

// Labels returns the id-ordered label slice.
// The returned slice must not be modified.
func (d *Directory) Labels() []string { return d.labels }

// ID returns the leaf id of a label.
func (d *Directory) ID(label string) (int, bool) {
	id, ok := d.index[label]
	return id, ok
}

// RootLabel returns the label of the root species.
func (d *Directory) RootLabel() string { return d.rootLabel }

func (d *Directory) add(label string) int {
	id := len(d.labels)
	d.labels = append(d.labels, label)
	d.index[label] = id
	return id
}

// Node is a rooted binary supertree node. Leaf nodes carry the Directory
// id in Leaf; inner nodes have both children set and Leaf == -1.
type Node struct {
	Left  *Node
	Right *Node
	Leaf  int
}

// IsLeaf reports whether the node is a leaf.
func (n *Node) IsLeaf() bool { return n.Left == nil && n.Right == nil }

// Parse reads a single Newick tree from the given string.
func Parse(newickString string) (*tree.Tree, error) {
	t, err := newick.NewParser(strings.NewReader(newickString)).Parse()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNewickParse, err, "parse newick tree")
	}
	return t, nil
}

// Root orients the supertree at the root species and builds the rooted
// binary topology over all other species.
//
// The root species is the first matrix row with data in every partition.
// Its tip is removed from the topology; the subtree hanging off its
// attachment point becomes the rooted supertree, with degree-2 nodes
// contracted. Leaf ids are assigned in depth-first order.
//
// Root validates that tree tips and matrix species agree exactly and that
// every node of the resulting topology is binary.
func Root(t *tree.Tree, m *matrix.Matrix) (*Node, *Directory, error) {
	tips := t.Tips()
	if len(tips) != m.Rows() {
		return nil, nil, errors.New(errors.ErrCodeSpeciesCountMismatch,
			"newick tree has %d species, matrix has %d", len(tips), m.Rows())
	}
	inTree := make(map[string]*tree.Node, len(tips))
	for _, tip := range tips {
		if tip.Name() == "" {
			return nil, nil, errors.New(errors.ErrCodeSpeciesMismatch, "newick tree has an unnamed leaf")
		}
		if m.SpeciesIndex(tip.Name()) < 0 {
			return nil, nil, errors.New(errors.ErrCodeSpeciesMismatch,
				"species %q appears in the newick tree but not in the data matrix", tip.Name())
		}
		inTree[tip.Name()] = tip
	}
	for _, name := range m.Species() {
		if _, ok := inTree[name]; !ok {
			return nil, nil, errors.New(errors.ErrCodeSpeciesMismatch,
				"species %q appears in the data matrix but not in the newick tree", name)
		}
	}

	rootRow := m.FullDataSpecies()
	if rootRow < 0 {
		return nil, nil, errors.New(errors.ErrCodeNoFullDataSpecies,
			"no species has data in every partition, cannot root the supertree")
	}
	rootTip := inTree[m.Species()[rootRow]]
	if len(rootTip.Neigh()) != 1 {
		return nil, nil, errors.New(errors.ErrCodeTreeNotBinary,
			"root species %q is not a simple leaf", rootTip.Name())
	}

	dir := &Directory{
		index:     make(map[string]int, m.Rows()-1),
		rootLabel: rootTip.Name(),
	}
	root, err := build(rootTip.Neigh()[0], rootTip, dir)
	if err != nil {
		return nil, nil, err
	}
	if root.IsLeaf() {
		return nil, nil, errors.New(errors.ErrCodeTreeNotBinary,
			"supertree collapses to a single leaf after rooting")
	}
	return root, dir, nil
}

// build converts the unrooted gotree topology into a rooted binary Node,
// walking away from parent and contracting pass-through nodes.
func build(n, parent *tree.Node, dir *Directory) (*Node, error) {
	var children []*tree.Node
	for _, neighbor := range n.Neigh() {
		if neighbor != parent {
			children = append(children, neighbor)
		}
	}
	switch len(children) {
	case 0:
		if n.Name() == "" {
			return nil, errors.New(errors.ErrCodeSpeciesMismatch, "newick tree has an unnamed leaf")
		}
		return &Node{Leaf: dir.add(n.Name())}, nil
	case 1:
		return build(children[0], n, dir)
	case 2:
		left, err := build(children[0], n, dir)
		if err != nil {
			return nil, err
		}
		right, err := build(children[1], n, dir)
		if err != nil {
			return nil, err
		}
		return &Node{Left: left, Right: right, Leaf: -1}, nil
	default:
		return nil, errors.New(errors.ErrCodeTreeNotBinary,
			"supertree node has %d children", len(children))
	}
}

// Induced returns the subtree induced by the leaves selected by keep, with
// degree-2 nodes contracted. Returns nil when no selected leaf remains.
func Induced(n *Node, keep func(id int) bool) *Node {
	if n.IsLeaf() {
		if keep(n.Leaf) {
			return n
		}
		return nil
	}
	left := Induced(n.Left, keep)
	right := Induced(n.Right, keep)
	switch {
	case left != nil && right != nil:
		return &Node{Left: left, Right: right, Leaf: -1}
	case left != nil:
		return left
	default:
		return right
	}
}

// ConstraintsFromTree emits the rooted-triple constraints implied by a
// rooted binary tree. At each inner node whose child spans more than one
// leaf, the child's outermost leaf pair must join strictly below the node
// itself, witnessed against the node's own outermost pair.
func ConstraintsFromTree(root *Node) []terrace.Constraint {
	var constraints []terrace.Constraint
	walkConstraints(root, &constraints)
	return constraints
}

// walkConstraints returns the leftmost and rightmost leaf of the subtree.
func walkConstraints(n *Node, out *[]terrace.Constraint) (int, int) {
	if n.IsLeaf() {
		return n.Leaf, n.Leaf
	}
	leftMostL, rightMostL := walkConstraints(n.Left, out)
	leftMostR, rightMostR := walkConstraints(n.Right, out)

	if leftMostL != rightMostL {
		*out = append(*out, terrace.Constraint{
			SmallerLeft:  leftMostL,
			SmallerRight: rightMostL,
			BiggerLeft:   leftMostL,
			BiggerRight:  rightMostR,
		})
	}
	if leftMostR != rightMostR {
		*out = append(*out, terrace.Constraint{
			SmallerLeft:  leftMostR,
			SmallerRight: rightMostR,
			BiggerLeft:   leftMostL,
			BiggerRight:  rightMostR,
		})
	}
	return leftMostL, rightMostR
}

// ExtractConstraints builds the per-partition induced subtrees of the
// rooted supertree and collects their constraints, deduplicated across
// partitions in first-seen order.
func ExtractConstraints(root *Node, m *matrix.Matrix, dir *Directory) []terrace.Constraint {
	rowOf := make([]int, dir.Len())
	for id := range rowOf {
		rowOf[id] = m.SpeciesIndex(dir.Label(id))
	}

	seen := make(map[terrace.Constraint]struct{})
	var result []terrace.Constraint
	for p := 0; p < m.Cols(); p++ {
		induced := Induced(root, func(id int) bool { return m.HasData(rowOf[id], p) })
		if induced == nil || induced.IsLeaf() {
			continue
		}
		for _, c := range ConstraintsFromTree(induced) {
			if _, dup := seen[c]; !dup {
				seen[c] = struct{}{}
				result = append(result, c)
			}
		}
	}
	return result
}
