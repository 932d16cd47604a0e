package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/ballsim/internal/dynamo"
	"github.com/san-kum/ballsim/internal/sim"
)

func sampleResult() *sim.Result {
	return &sim.Result{
		Frames: []sim.Frame{
			{Time: 0, Count: 2, Energy: 10, Momentum: 1},
			{Time: 16.5, Count: 2, Energy: 10.5, Momentum: 1, Contacts: 2, WallHits: 1},
		},
		Final: []sim.Snapshot{
			{X: 1, Y: 2, VX: 3, VY: -4, Radius: 20, CurrentRadius: 20, Mass: 5, Phase: "steady", Color: dynamo.RGB(1, 2, 3)},
			{X: 10, Y: 20, Radius: 30, CurrentRadius: 12.5, Mass: 7, Phase: "growing", Color: dynamo.RGB(200, 100, 0)},
		},
		Metrics:     map[string]float64{"energy": 1.5},
		StepsTaken:  1,
		EnergyDrift: 0.05,
		Errors:      []error{errors.New("boom")},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(RunMetadata{Scenario: "test", Seed: 42, Dt: 16.5, Duration: 1}, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "test_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Scenario != "test" || meta.Seed != 42 || meta.Steps != 1 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Metrics["energy"] != 1.5 || meta.EnergyDrift != 0.05 {
		t.Errorf("metrics not persisted: %+v", meta)
	}
	if len(meta.Errors) != 1 || meta.Errors[0] != "boom" {
		t.Errorf("errors not persisted: %v", meta.Errors)
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames: %v", err)
	}
	if len(frames) != 2 || frames[1] != sampleResult().Frames[1] {
		t.Errorf("unexpected frames %+v", frames)
	}

	balls, err := st.LoadSnapshot(runID)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	want := sampleResult().Final
	if len(balls) != len(want) {
		t.Fatalf("expected %d balls, got %d", len(want), len(balls))
	}
	for i := range want {
		if balls[i] != want[i] {
			t.Errorf("ball %d: got %+v, want %+v", i, balls[i], want[i])
		}
	}
}

func TestStoreUniqueIDs(t *testing.T) {
	st := New(t.TempDir())
	a, err := st.Save(RunMetadata{Scenario: "x"}, sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	b, err := st.Save(RunMetadata{Scenario: "x"}, sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Errorf("two saves produced the same id %q", a)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "nope")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v %v", runs, err)
	}
}

func TestLoadFramesMalformed(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	os.MkdirAll(filepath.Join(dir, "bad"), 0755)
	os.WriteFile(filepath.Join(dir, "bad", "frames.csv"), []byte("time_ms,count,energy,momentum,contacts,wall_hits\n1,x,2,3,4,5\n"), 0644)

	if _, err := st.LoadFrames("bad"); err == nil {
		t.Error("expected error for malformed row")
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	meta := RunMetadata{Scenario: "gas", Dt: 10, Width: 800, Height: 600}
	if err := ExportJSON(&buf, meta, sampleResult()); err != nil {
		t.Fatalf("export: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.Scenario != "gas" || len(data.Frames) != 2 || len(data.Final) != 2 {
		t.Errorf("unexpected export %+v", data)
	}
	if data.Final[0].Color != dynamo.RGB(1, 2, 3) {
		t.Errorf("color lost in export: %v", data.Final[0].Color)
	}
}
