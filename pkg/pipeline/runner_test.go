package pipeline

import (
	"context"
	"testing"

	"github.com/RCBiczok/terraces/pkg/cache"
	"github.com/RCBiczok/terraces/pkg/session"
)

func TestRunnerCachesCountResults(t *testing.T) {
	fileCache, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fileCache, nil, nil, nil)

	first, err := runner.Execute(context.Background(), scenarioMatrix(t), scenarioTree, FlagCount, nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := runner.Execute(context.Background(), scenarioMatrix(t), scenarioTree, FlagCount, nil, Options{})
	if err != nil {
		t.Fatal(err)
	}

	if first.TerraceSize.Cmp(second.TerraceSize) != 0 {
		t.Errorf("cached result %s differs from fresh result %s", second.TerraceSize, first.TerraceSize)
	}
	if second.TerraceSize.Int64() != 15 {
		t.Errorf("cached terrace size = %s, want 15", second.TerraceSize)
	}
}

func TestRunnerRecordsRuns(t *testing.T) {
	store, err := session.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(nil, nil, store, nil)

	if _, err := runner.Execute(context.Background(), scenarioMatrix(t), scenarioTree, FlagCount, nil, Options{}); err != nil {
		t.Fatal(err)
	}

	runs, err := store.List(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("recorded %d runs, want 1", len(runs))
	}
	if runs[0].TerraceSize != "15" {
		t.Errorf("recorded terrace size = %q, want 15", runs[0].TerraceSize)
	}
	if runs[0].Flags != FlagCount {
		t.Errorf("recorded flags = %d, want %d", runs[0].Flags, FlagCount)
	}
}

func TestExitCodes(t *testing.T) {
	m := buildMatrix(t, []string{"s1", "s2", "s3", "s4", "s5"},
		[][]uint8{{1}, {1}, {1}, {1}, {1}})
	_, err := Analyze(context.Background(), m, scenarioTree, FlagCount, nil, Options{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if code := ExitCode(err); code != 5 {
		t.Errorf("exit code = %d, want 5 (TOO_FEW_PARTITIONS)", code)
	}
	if code := ExitCode(nil); code != 0 {
		t.Errorf("exit code of success = %d, want 0", code)
	}
}
