package main

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/ChicagoDave/citadel/pkg/export"
	"github.com/ChicagoDave/citadel/pkg/store"
)

const testSettlement = `version: "1"
seed: 5
city:
  levels: 2
terrain:
  width: 24
  depth: 24
placement:
  target_buildings: 3
`

func testProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "settlement.yaml"), []byte(testSettlement), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestProjectArg(t *testing.T) {
	if got := projectArg(nil); got != "" {
		t.Errorf("projectArg(nil) = %q, want empty", got)
	}
	if got := projectArg([]string{"a"}); got != "a" {
		t.Errorf("projectArg([a]) = %q, want a", got)
	}
}

func TestLoadAndGenerateSeedOverride(t *testing.T) {
	seed := 9.0
	set, g, report, err := loadAndGenerate(testProject(t), &seed)
	if err != nil {
		t.Fatalf("loadAndGenerate failed: %v", err)
	}
	if set.Seed != 9 || g.Metadata.Seed != 9 {
		t.Errorf("seed = %v / %v, want 9", set.Seed, g.Metadata.Seed)
	}
	if !report.Valid {
		t.Errorf("report invalid: %s", report.Summary)
	}
}

func TestRunExport(t *testing.T) {
	logger := log.New(io.Discard, "", 0)
	out := filepath.Join(t.TempDir(), "scene.jsonl.zst")

	if err := runExport(logger, testProject(t), out); err != nil {
		t.Fatalf("runExport failed: %v", err)
	}
	g, err := export.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if g.Metadata.Levels != 2 {
		t.Errorf("levels = %d, want 2", g.Metadata.Levels)
	}
}

func TestRunStore(t *testing.T) {
	logger := log.New(io.Discard, "", 0)
	db := filepath.Join(t.TempDir(), "runs.db")
	project := testProject(t)

	for i := 0; i < 2; i++ {
		if err := runStore(context.Background(), logger, project, db); err != nil {
			t.Fatalf("runStore #%d failed: %v", i, err)
		}
	}

	st, err := store.Open(db)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	runs, err := st.ListRuns(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("runs = %d, want 2", len(runs))
	}
	if runs[0].Digest != runs[1].Digest {
		t.Errorf("identical settlements stored different digests")
	}
}

func TestRunMeshRejectsBadIndex(t *testing.T) {
	logger := log.New(io.Discard, "", 0)
	out := filepath.Join(t.TempDir(), "b.stl")
	if err := runMesh(logger, testProject(t), out, 99, 24); err == nil {
		t.Error("expected out-of-range error")
	}
}
