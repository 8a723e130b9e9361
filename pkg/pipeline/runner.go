package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"math/big"
	"time"

	"github.com/charmbracelet/log"

	"github.com/RCBiczok/terraces/pkg/cache"
	"github.com/RCBiczok/terraces/pkg/errors"
	"github.com/RCBiczok/terraces/pkg/matrix"
	"github.com/RCBiczok/terraces/pkg/observability"
	"github.com/RCBiczok/terraces/pkg/session"
)

// Runner wraps Analyze with result caching and run history.
// Both CLI and API use it to avoid duplicating that logic.
//
// The Runner is stateless except for the cache, store, and logger - it
// doesn't keep analysis results. Multiple goroutines can safely share one
// Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  session.Store
	Logger *log.Logger
}

// NewRunner creates a runner with the given collaborators.
// A nil cache disables caching, a nil store disables history, a nil keyer
// selects the default keyer, and a nil logger selects log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, store session.Store, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Store: store, Logger: logger}
}

// cachedResult is the cache wire format for count/detect results.
type cachedResult struct {
	TerraceSize string `json:"terrace_size"`
	OnTerrace   bool   `json:"on_terrace"`
	Constraints int    `json:"constraints"`
}

// Execute runs a full analysis. Pure count/detect requests are answered
// from the cache when possible; enumeration always runs, since its output
// stream cannot be replayed from a cache entry. Completed runs are
// recorded in the history store.
func (r *Runner) Execute(ctx context.Context, m *matrix.Matrix, newickString string, flags int, out io.Writer, opts Options) (*Result, error) {
	newickHash := hashBytes([]byte(newickString))
	matrixHash := MatrixHash(m)
	key := r.Keyer.AnalysisKey(newickHash, matrixHash, flags)

	cacheable := flags&(FlagEnumerate|FlagEnumerateCompressed) == 0
	if cacheable {
		if result, ok := r.lookup(ctx, key); ok {
			r.Logger.Debug("analysis cache hit", "key", key)
			return result, nil
		}
		observability.Cache().OnCacheMiss(ctx, "analysis")
	}

	start := time.Now()
	result, err := Analyze(ctx, m, newickString, flags, out, opts)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("analysis complete",
		"species", m.Rows(),
		"partitions", m.Cols(),
		"constraints", result.Constraints,
		"duration", time.Since(start).Round(time.Millisecond))

	if cacheable {
		r.store(ctx, key, result)
	}
	r.record(ctx, newickHash, matrixHash, flags, result)
	return result, nil
}

func (r *Runner) lookup(ctx context.Context, key string) (*Result, bool) {
	data, ok, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("analysis cache read failed", "err", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var entry cachedResult
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	size, ok := new(big.Int).SetString(entry.TerraceSize, 10)
	if !ok {
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "analysis")
	return &Result{
		TerraceSize: size,
		OnTerrace:   entry.OnTerrace,
		Constraints: entry.Constraints,
	}, true
}

func (r *Runner) store(ctx context.Context, key string, result *Result) {
	data, err := json.Marshal(cachedResult{
		TerraceSize: result.TerraceSize.String(),
		OnTerrace:   result.OnTerrace,
		Constraints: result.Constraints,
	})
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, 0); err != nil {
		r.Logger.Warn("analysis cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "analysis", len(data))
}

func (r *Runner) record(ctx context.Context, newickHash, matrixHash string, flags int, result *Result) {
	if r.Store == nil {
		return
	}
	run := session.NewRun()
	run.NewickHash = newickHash
	run.MatrixHash = matrixHash
	run.Flags = flags
	run.TerraceSize = result.TerraceSize.String()
	run.TreesWritten = result.TreesWritten
	run.Duration = result.Duration
	if err := r.Store.Save(ctx, run); err != nil {
		r.Logger.Warn("record run failed", "err", err)
	}
}

// ExitCode maps an analysis error to the legacy integer contract.
func ExitCode(err error) int { return errors.ExitCode(err) }

func hashBytes(data []byte) string { return cache.Hash(data) }
