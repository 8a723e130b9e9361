package terrace

import "math/big"

// Count computes the terrace size as an arbitrary-precision integer.
type Count struct{}

// CountTerrace counts the trees compatible with the constraints.
func CountTerrace(leaves *LeafSet, constraints []Constraint, opts Options) *big.Int {
	return Scan[*big.Int, *big.Int](Count{}, leaves, constraints, opts)
}

func (Count) InitAccumulator() *big.Int { return big.NewInt(0) }

func (Count) LeavesOnly(leaves *LeafSet, unrooted bool) *big.Int {
	return NumberOfBinaryTrees(leaves.Size())
}

func (Count) CombineParts(left, right *big.Int) *big.Int {
	return new(big.Int).Mul(left, right)
}

func (Count) Fold(acc *big.Int, result *big.Int) (*big.Int, bool) {
	return acc.Add(acc, result), true
}

func (Count) Finalize(acc *big.Int, unrooted bool) *big.Int { return acc }

func (Count) ShortCircuit(tuples int) (*big.Int, bool) { return nil, false }

// Enumerate materializes every compatible tree.
type Enumerate struct{}

// EnumerateTerrace lists the trees compatible with the constraints.
func EnumerateTerrace(leaves *LeafSet, constraints []Constraint, opts Options) []*Tree {
	return Scan[[]*Tree, []*Tree](Enumerate{}, leaves, constraints, opts)
}

func (Enumerate) InitAccumulator() []*Tree { return nil }

func (Enumerate) LeavesOnly(leaves *LeafSet, unrooted bool) []*Tree {
	trees := AllBinaryTreesOver(leaves.Leaves())
	if unrooted {
		for i, t := range trees {
			trees[i] = NewUnrooted(t)
		}
	}
	return trees
}

func (Enumerate) CombineParts(left, right []*Tree) []*Tree {
	merged := make([]*Tree, 0, len(left)*len(right))
	for _, l := range left {
		for _, r := range right {
			merged = append(merged, NewInner(l, r))
		}
	}
	return merged
}

func (Enumerate) Fold(acc []*Tree, result []*Tree) ([]*Tree, bool) {
	return append(acc, result...), true
}

func (Enumerate) Finalize(acc []*Tree, unrooted bool) []*Tree {
	if unrooted {
		for i, t := range acc {
			acc[i] = NewUnrooted(t)
		}
	}
	return acc
}

func (Enumerate) ShortCircuit(tuples int) ([]*Tree, bool) { return nil, false }

// EnumerateCompressed builds one tree DAG standing for every compatible
// tree, sharing subterms instead of materializing the full list.
type EnumerateCompressed struct{}

// EnumerateTerraceCompressed returns the compressed tree DAG for the
// constraints. Expand the result to obtain concrete trees.
func EnumerateTerraceCompressed(leaves *LeafSet, constraints []Constraint, opts Options) *Tree {
	return Scan[*Tree, []*Tree](EnumerateCompressed{}, leaves, constraints, opts)
}

func (EnumerateCompressed) InitAccumulator() []*Tree { return nil }

func (EnumerateCompressed) LeavesOnly(leaves *LeafSet, unrooted bool) *Tree {
	t := NewAllBinaryTrees(leaves.Leaves())
	if unrooted {
		return NewUnrooted(t)
	}
	return t
}

func (EnumerateCompressed) CombineParts(left, right *Tree) *Tree {
	return NewInner(left, right)
}

func (EnumerateCompressed) Fold(acc []*Tree, result *Tree) ([]*Tree, bool) {
	return append(acc, result), true
}

func (EnumerateCompressed) Finalize(acc []*Tree, unrooted bool) *Tree {
	final := acc[0]
	if len(acc) > 1 {
		final = NewAllCombinations(acc)
	}
	if unrooted {
		return NewUnrooted(final)
	}
	return final
}

func (EnumerateCompressed) ShortCircuit(tuples int) (*Tree, bool) { return nil, false }

// Detect answers whether more than one compatible tree exists, exiting as
// soon as the answer is known.
type Detect struct{}

// DetectTerrace reports whether the constraints admit at least two trees.
func DetectTerrace(leaves *LeafSet, constraints []Constraint, opts Options) bool {
	return Scan[bool, bool](Detect{}, leaves, constraints, opts)
}

func (Detect) InitAccumulator() bool { return false }

func (Detect) LeavesOnly(leaves *LeafSet, unrooted bool) bool {
	return leaves.Size() >= 3
}

func (Detect) CombineParts(left, right bool) bool { return left || right }

func (Detect) Fold(acc bool, result bool) (bool, bool) {
	acc = acc || result
	return acc, !acc
}

func (Detect) Finalize(acc bool, unrooted bool) bool { return acc }

// ShortCircuit answers true as soon as a recursion step has more than one
// bipartition tuple: every extra tuple contributes at least one distinct
// tree.
func (Detect) ShortCircuit(tuples int) (bool, bool) {
	if tuples > 1 {
		return true, true
	}
	return false, false
}
