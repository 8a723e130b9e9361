// Package session records terrace analysis runs.
//
// A Run captures what was analyzed (input hashes, requested modes) and
// what came out (terrace size, number of trees written, duration). Stores
// persist runs so the CLI can show history and the HTTP API can expose it.
//
// Two backends are provided:
//   - file: JSON files in a config directory, for CLI usage
//   - mongo: a MongoDB collection, for shared deployments
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a run does not exist.
	ErrNotFound = errors.New("run not found")
)

// Run describes one completed analysis.
type Run struct {
	ID           string        `json:"id" bson:"_id"`
	NewickHash   string        `json:"newick_hash" bson:"newick_hash"`
	MatrixHash   string        `json:"matrix_hash" bson:"matrix_hash"`
	Flags        int           `json:"flags" bson:"flags"`
	TerraceSize  string        `json:"terrace_size" bson:"terrace_size"` // decimal string
	TreesWritten int64         `json:"trees_written" bson:"trees_written"`
	Duration     time.Duration `json:"duration" bson:"duration"`
	CreatedAt    time.Time     `json:"created_at" bson:"created_at"`
}

// NewRun creates a run with a fresh id and the current timestamp.
func NewRun() *Run {
	return &Run{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
}

// Store persists analysis runs.
type Store interface {
	// Save writes a run.
	Save(ctx context.Context, run *Run) error

	// Get retrieves a run by id. Returns ErrNotFound if missing.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns runs in reverse chronological order, at most limit
	// entries (all for limit <= 0).
	List(ctx context.Context, limit int) ([]*Run, error)

	// Delete removes a run. Deleting a missing run is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}
