package terrace

// Combiner supplies the hooks that specialize the recursive scan to one of
// the four analysis modes. R is the per-subproblem result type, A the
// accumulator aggregated across the bipartition tuples of one recursion
// step.
type Combiner[R any, A any] interface {
	// InitAccumulator returns the empty aggregation for one recursion step.
	InitAccumulator() A

	// LeavesOnly produces the result for an unconstrained leaf set, the
	// recursion's base case. The unrooted flag is set only at the
	// outermost call.
	LeavesOnly(leaves *LeafSet, unrooted bool) R

	// CombineParts merges the results of the two sides of a bipartition.
	CombineParts(left, right R) R

	// Fold aggregates one bipartition result. Returning false stops the
	// tuple iteration early.
	Fold(acc A, result R) (A, bool)

	// Finalize converts the aggregation into the step's result.
	Finalize(acc A, unrooted bool) R

	// ShortCircuit lets a combiner answer from the tuple count alone,
	// before any tuple is evaluated. Combiners without a fast path return
	// ok == false.
	ShortCircuit(tuples int) (result R, ok bool)
}

// DefaultCompressThreshold gates leaf-set compression: a bipartition side
// is renumbered only when it still carries more than this many
// constraints. Tunable via Options, not part of the result contract.
const DefaultCompressThreshold = 10

// Options configures a scan.
type Options struct {
	// Unrooted requests unrooted results at the outermost level. Child
	// recursions always run rooted.
	Unrooted bool

	// CompressThreshold overrides DefaultCompressThreshold when > 0.
	CompressThreshold int
}

// Scan runs the recursive terrace scan over the leaf set under the given
// constraints, combining results with cb. The constraint list must be
// exactly the constraints applicable to the leaf set; the leaf set is
// mutated in place and must not be reused afterwards.
func Scan[R any, A any](cb Combiner[R, A], leaves *LeafSet, constraints []Constraint, opts Options) R {
	threshold := opts.CompressThreshold
	if threshold <= 0 {
		threshold = DefaultCompressThreshold
	}
	return scan(cb, leaves, constraints, opts.Unrooted, threshold)
}

func scan[R any, A any](cb Combiner[R, A], leaves *LeafSet, constraints []Constraint, unrooted bool, threshold int) R {
	if len(constraints) == 0 {
		return cb.LeavesOnly(leaves, unrooted)
	}

	leaves.ApplyConstraints(constraints)
	if leaves.PartitionCount() == 1 {
		// A consistent constraint set always separates the two subtrees
		// below the root, so a single component means the constraints
		// carry no information on this subset.
		return cb.LeavesOnly(leaves, unrooted)
	}
	if r, ok := cb.ShortCircuit(leaves.NumberPartitionTuples()); ok {
		return r
	}

	acc := cb.InitAccumulator()
	cont := true
	for n := 1; cont && n <= leaves.NumberPartitionTuples(); n++ {
		left, right := leaves.NthPartitionTuple(n)

		constraintsLeft := Restrict(constraints, left)
		constraintsRight := Restrict(constraints, right)

		if left.CompressionWorth() && len(constraintsLeft) > threshold {
			constraintsLeft = MapConstraints(constraintsLeft, left.Compress())
		}
		if right.CompressionWorth() && len(constraintsRight) > threshold {
			constraintsRight = MapConstraints(constraintsRight, right.Compress())
		}

		resultLeft := scan(cb, left, constraintsLeft, false, threshold)
		resultRight := scan(cb, right, constraintsRight, false, threshold)

		acc, cont = cb.Fold(acc, cb.CombineParts(resultLeft, resultRight))
	}
	return cb.Finalize(acc, unrooted)
}
