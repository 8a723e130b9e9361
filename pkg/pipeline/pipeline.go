// Package pipeline orchestrates a complete terrace analysis: input
// validation, supertree rooting, constraint extraction, and one scan per
// requested output mode.
//
// The package exposes the single analysis entry point of the tool. The
// zero-dependency path is the free Analyze function; Runner adds result
// caching and run history on top without changing the analysis itself.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/RCBiczok/terraces/pkg/errors"
	"github.com/RCBiczok/terraces/pkg/matrix"
	"github.com/RCBiczok/terraces/pkg/observability"
	"github.com/RCBiczok/terraces/pkg/supertree"
	"github.com/RCBiczok/terraces/pkg/terrace"
)

// Output mode flags, combined with bitwise OR.
const (
	// FlagCount computes the terrace size.
	FlagCount = 1 << iota
	// FlagEnumerate writes every tree on the terrace, one Newick per line.
	FlagEnumerate
	// FlagEnumerateCompressed writes the same trees by expanding the
	// compressed tree DAG instead of materializing the list.
	FlagEnumerateCompressed
	// FlagDetect only answers whether the terrace holds more than one tree.
	FlagDetect
)

// Options tunes an analysis.
type Options struct {
	// CompressThreshold overrides the leaf-set compression gate.
	// Zero keeps the default.
	CompressThreshold int
}

// Result carries the outputs of one analysis.
type Result struct {
	// TerraceSize is the number of unrooted trees on the terrace when
	// counting was requested; 2 or 0 when only detection was requested;
	// 0 otherwise.
	TerraceSize *big.Int

	// OnTerrace reports the detection answer when FlagDetect was set.
	OnTerrace bool

	// TreesWritten is the number of Newick lines written by the
	// enumeration modes.
	TreesWritten int64

	// Constraints is the size of the deduplicated constraint set.
	Constraints int

	// Duration is the wall time of the analysis.
	Duration time.Duration
}

// Analyze validates the inputs, extracts the terrace constraints, and runs
// every requested output mode.
//
// The newick string must hold a tree over exactly the matrix species; out
// receives one Newick line per tree and is required iff an enumeration
// flag is set. The returned error, if any, carries one of the structured
// analysis codes; errors.ExitCode maps it to the legacy integer contract.
func Analyze(ctx context.Context, m *matrix.Matrix, newickString string, flags int, out io.Writer, opts Options) (*Result, error) {
	start := time.Now()
	hooks := observability.Analysis()
	hooks.OnAnalysisStart(ctx, m.Rows(), m.Cols())

	result := &Result{TerraceSize: big.NewInt(0)}
	err := analyze(ctx, m, newickString, flags, out, opts, result)
	result.Duration = time.Since(start)
	hooks.OnAnalysisComplete(ctx, result.Duration, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func analyze(ctx context.Context, m *matrix.Matrix, newickString string, flags int, out io.Writer, opts Options, result *Result) error {
	if m.Rows() < 4 {
		return errors.New(errors.ErrCodeTooFewSpecies,
			"analysis needs at least 4 species, matrix has %d", m.Rows())
	}
	if m.Cols() < 2 {
		return errors.New(errors.ErrCodeTooFewPartitions,
			"analysis needs at least 2 partitions, matrix has %d", m.Cols())
	}
	if err := m.Validate(); err != nil {
		return err
	}
	enumerating := flags&(FlagEnumerate|FlagEnumerateCompressed) != 0
	if enumerating && out == nil {
		return errors.New(errors.ErrCodeNoOutputStream,
			"tree enumeration requested without an output stream")
	}

	parsed, err := supertree.Parse(newickString)
	if err != nil {
		return err
	}
	root, dir, err := supertree.Root(parsed, m)
	if err != nil {
		return err
	}

	constraints := supertree.ExtractConstraints(root, m, dir)
	result.Constraints = len(constraints)
	observability.Analysis().OnConstraintsExtracted(ctx, len(constraints))

	scanOpts := terrace.Options{CompressThreshold: opts.CompressThreshold}
	leaves := func() *terrace.LeafSet { return terrace.RangeLeafSet(dir.Len()) }

	if flags&FlagCount != 0 {
		result.TerraceSize = runScan(ctx, "count", func() *big.Int {
			return terrace.CountTerrace(leaves(), constraints, scanOpts)
		})
	}
	if flags&FlagDetect != 0 {
		result.OnTerrace = runScan(ctx, "detect", func() bool {
			return terrace.DetectTerrace(leaves(), constraints, scanOpts)
		})
		if flags&FlagCount == 0 {
			if result.OnTerrace {
				result.TerraceSize = big.NewInt(2)
			} else {
				result.TerraceSize = big.NewInt(0)
			}
		}
	}

	switch {
	case flags&FlagEnumerate != 0:
		written, err := runScanErr(ctx, "enumerate", func() (int64, error) {
			return writeMaterialized(out, leaves(), constraints, scanOpts, dir)
		})
		if err != nil {
			return err
		}
		result.TreesWritten = written
	case flags&FlagEnumerateCompressed != 0:
		written, err := runScanErr(ctx, "enumerate-compressed", func() (int64, error) {
			return writeCompressed(out, leaves(), constraints, scanOpts, dir)
		})
		if err != nil {
			return err
		}
		result.TreesWritten = written
	}
	return nil
}

func runScan[R any](ctx context.Context, mode string, fn func() R) R {
	hooks := observability.Analysis()
	hooks.OnScanStart(ctx, mode)
	start := time.Now()
	r := fn()
	hooks.OnScanComplete(ctx, mode, time.Since(start))
	return r
}

func runScanErr[R any](ctx context.Context, mode string, fn func() (R, error)) (R, error) {
	hooks := observability.Analysis()
	hooks.OnScanStart(ctx, mode)
	start := time.Now()
	r, err := fn()
	hooks.OnScanComplete(ctx, mode, time.Since(start))
	return r, err
}

func writeMaterialized(out io.Writer, leaves *terrace.LeafSet, constraints []terrace.Constraint, opts terrace.Options, dir *supertree.Directory) (int64, error) {
	var written int64
	for _, t := range terrace.EnumerateTerrace(leaves, constraints, opts) {
		if _, err := fmt.Fprintln(out, t.NewickWithRoot(dir.Labels(), dir.RootLabel())); err != nil {
			return written, errors.Wrap(errors.ErrCodeNoOutputStream, err, "write tree")
		}
		written++
	}
	return written, nil
}

func writeCompressed(out io.Writer, leaves *terrace.LeafSet, constraints []terrace.Constraint, opts terrace.Options, dir *supertree.Directory) (int64, error) {
	dag := terrace.EnumerateTerraceCompressed(leaves, constraints, opts)
	var written int64
	var writeErr error
	dag.Expand(func(t *terrace.Tree) bool {
		if _, err := fmt.Fprintln(out, t.NewickWithRoot(dir.Labels(), dir.RootLabel())); err != nil {
			writeErr = errors.Wrap(errors.ErrCodeNoOutputStream, err, "write tree")
			return false
		}
		written++
		return true
	})
	return written, writeErr
}

// CompressedDAG runs the validation and extraction stages and returns the
// compressed tree DAG together with the leaf directory, without writing
// any output. Rendering tools build on this.
func CompressedDAG(ctx context.Context, m *matrix.Matrix, newickString string, opts Options) (*terrace.Tree, *supertree.Directory, error) {
	if err := m.Validate(); err != nil {
		return nil, nil, err
	}
	parsed, err := supertree.Parse(newickString)
	if err != nil {
		return nil, nil, err
	}
	root, dir, err := supertree.Root(parsed, m)
	if err != nil {
		return nil, nil, err
	}
	constraints := supertree.ExtractConstraints(root, m, dir)
	dag := terrace.EnumerateTerraceCompressed(
		terrace.RangeLeafSet(dir.Len()), constraints,
		terrace.Options{CompressThreshold: opts.CompressThreshold})
	return dag, dir, nil
}

// MatrixHash returns the cache hash of a matrix's content.
func MatrixHash(m *matrix.Matrix) string {
	payload := struct {
		Species    []string `json:"species"`
		Partitions int      `json:"partitions"`
		Rows       []string `json:"rows"`
	}{Species: m.Species(), Partitions: m.Cols()}
	for i := 0; i < m.Rows(); i++ {
		row := make([]byte, m.Cols())
		for j := 0; j < m.Cols(); j++ {
			row[j] = '0' + m.Get(i, j)
		}
		payload.Rows = append(payload.Rows, string(row))
	}
	data, _ := json.Marshal(payload)
	return hashBytes(data)
}
