package terrace

import (
	"sort"
	"testing"
)

func TestApplyConstraintsPartitions(t *testing.T) {
	leaves := RangeLeafSet(5)
	leaves.ApplyConstraints([]Constraint{
		{SmallerLeft: 0, SmallerRight: 1, BiggerLeft: 0, BiggerRight: 2},
		{SmallerLeft: 3, SmallerRight: 4, BiggerLeft: 2, BiggerRight: 4},
	})

	if got := leaves.PartitionCount(); got != 3 {
		t.Fatalf("PartitionCount = %d, want 3 ({0,1}, {2}, {3,4})", got)
	}
	if got := leaves.NumberPartitionTuples(); got != 3 {
		t.Errorf("NumberPartitionTuples = %d, want 2^(3-1)-1 = 3", got)
	}
}

func TestApplyConstraintsMergesShallowPairOnly(t *testing.T) {
	leaves := RangeLeafSet(3)
	leaves.ApplyConstraints([]Constraint{
		{SmallerLeft: 0, SmallerRight: 1, BiggerLeft: 0, BiggerRight: 2},
	})

	// Leaf 2 only appears as the deeper pair's endpoint; it may still sit
	// on the other side of the root, so it must stay a separate component.
	if got := leaves.PartitionCount(); got != 2 {
		t.Fatalf("PartitionCount = %d, want 2", got)
	}
}

func TestNthPartitionTuple(t *testing.T) {
	leaves := RangeLeafSet(4)
	leaves.ApplyConstraints([]Constraint{
		{SmallerLeft: 0, SmallerRight: 1, BiggerLeft: 0, BiggerRight: 2},
	})
	// Components: {0,1}, {2}, {3}
	tuples := leaves.NumberPartitionTuples()
	if tuples != 3 {
		t.Fatalf("NumberPartitionTuples = %d, want 3", tuples)
	}

	seen := make(map[string]bool)
	for n := 1; n <= tuples; n++ {
		left, right := leaves.NthPartitionTuple(n)

		if left.Size() == 0 || right.Size() == 0 {
			t.Fatalf("tuple %d has an empty side", n)
		}
		if left.Size()+right.Size() != leaves.Size() {
			t.Fatalf("tuple %d loses leaves: %d + %d != %d", n, left.Size(), right.Size(), leaves.Size())
		}
		for _, id := range left.Leaves() {
			if right.Contains(id) {
				t.Fatalf("tuple %d: leaf %d on both sides", n, id)
			}
		}
		// Component 0 is pinned to the left side.
		if !left.Contains(0) || !left.Contains(1) {
			t.Errorf("tuple %d: component {0,1} not on the left side", n)
		}
		// Components stay whole.
		if left.Contains(0) != left.Contains(1) {
			t.Errorf("tuple %d splits component {0,1}", n)
		}

		key := ""
		ids := append([]int(nil), right.Leaves()...)
		sort.Ints(ids)
		for _, id := range ids {
			key += string(rune('a' + id))
		}
		if seen[key] {
			t.Errorf("tuple %d repeats right side %q", n, key)
		}
		seen[key] = true
	}
}

func TestCompressionWorth(t *testing.T) {
	dense := NewLeafSet([]int{0, 1, 2, 3})
	if dense.CompressionWorth() {
		t.Error("dense set should not be worth compressing")
	}
	sparse := NewLeafSet([]int{5, 17, 40})
	if !sparse.CompressionWorth() {
		t.Error("sparse set should be worth compressing")
	}
}

func TestCompress(t *testing.T) {
	leaves := NewLeafSet([]int{17, 5, 40})
	mapping := leaves.Compress()

	wantMapping := []int{5, 17, 40}
	for i, id := range wantMapping {
		if mapping[i] != id {
			t.Fatalf("mapping = %v, want %v", mapping, wantMapping)
		}
	}
	// Renumbering is monotone: 5 -> 0, 17 -> 1, 40 -> 2, preserving the
	// set's own iteration order.
	wantLeaves := []int{1, 0, 2}
	for i, id := range leaves.Leaves() {
		if id != wantLeaves[i] {
			t.Fatalf("leaves after compress = %v, want %v", leaves.Leaves(), wantLeaves)
		}
	}

	constraints := MapConstraints([]Constraint{
		{SmallerLeft: 5, SmallerRight: 17, BiggerLeft: 5, BiggerRight: 40},
	}, mapping)
	want := Constraint{SmallerLeft: 0, SmallerRight: 1, BiggerLeft: 0, BiggerRight: 2}
	if constraints[0] != want {
		t.Errorf("mapped constraint = %v, want %v", constraints[0], want)
	}
}

func TestRestrict(t *testing.T) {
	constraints := []Constraint{
		{SmallerLeft: 0, SmallerRight: 1, BiggerLeft: 0, BiggerRight: 2},
		{SmallerLeft: 3, SmallerRight: 4, BiggerLeft: 2, BiggerRight: 4},
	}
	leaves := NewLeafSet([]int{0, 1, 2})

	valid := Restrict(constraints, leaves)
	if len(valid) != 1 || valid[0] != constraints[0] {
		t.Errorf("Restrict = %v, want only the first constraint", valid)
	}
}
