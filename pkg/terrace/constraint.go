// Package terrace implements the constraint-driven tree-space engine
// behind phylogenetic terrace analysis.
//
// The engine answers three questions about the set of rooted binary trees
// compatible with a collection of rooted-triple constraints: how many
// trees are there (Count), what are they (Enumerate, EnumerateCompressed),
// and is there more than one (Detect). All four share one recursive
// scheme: partition the leaf set into connected components under the
// applicable constraints, enumerate every bipartition of those components,
// and combine the recursive results for the two sides.
//
// Leaves are dense non-negative ids. Translating ids back to species
// labels is the caller's concern; Newick printing accepts a label slice.
package terrace

import (
	"fmt"
	"sort"
)

// Constraint encodes the rooted-triple inequality
// lca(SmallerLeft, SmallerRight) < lca(BiggerLeft, BiggerRight),
// "strictly deeper than". The shallower pair always shares exactly one
// endpoint with the deeper pair, so a constraint mentions three distinct
// leaves.
type Constraint struct {
	SmallerLeft  int
	SmallerRight int
	BiggerLeft   int
	BiggerRight  int
}

// String renders the constraint in lca notation.
func (c Constraint) String() string {
	return fmt.Sprintf("lca(%d,%d) < lca(%d,%d)",
		c.SmallerLeft, c.SmallerRight, c.BiggerLeft, c.BiggerRight)
}

// leaves returns the three distinct leaf ids the constraint mentions.
func (c Constraint) leaves() (int, int, int) {
	if c.SmallerLeft == c.BiggerLeft {
		return c.SmallerLeft, c.SmallerRight, c.BiggerRight
	}
	// SmallerRight == BiggerRight
	return c.SmallerLeft, c.SmallerRight, c.BiggerLeft
}

// Restrict returns the constraints applicable to the given leaf set: those
// whose leaves all lie in it. The result preserves input order and is a
// fresh slice.
func Restrict(constraints []Constraint, leaves *LeafSet) []Constraint {
	var valid []Constraint
	for _, c := range constraints {
		a, b, x := c.leaves()
		if leaves.Contains(a) && leaves.Contains(b) && leaves.Contains(x) {
			valid = append(valid, c)
		}
	}
	return valid
}

// MapConstraints rewrites every leaf id in constraints through the
// renumbering produced by LeafSet.Compress: mapping is the ascending
// vector of old ids, and an old id maps to its index. Ids are located by
// binary search; every id must be present in mapping.
func MapConstraints(constraints []Constraint, mapping []int) []Constraint {
	mapped := make([]Constraint, len(constraints))
	for i, c := range constraints {
		mapped[i] = Constraint{
			SmallerLeft:  sort.SearchInts(mapping, c.SmallerLeft),
			SmallerRight: sort.SearchInts(mapping, c.SmallerRight),
			BiggerLeft:   sort.SearchInts(mapping, c.BiggerLeft),
			BiggerRight:  sort.SearchInts(mapping, c.BiggerRight),
		}
	}
	return mapped
}
