package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/blochsim/internal/config"
	"github.com/san-kum/blochsim/internal/dynamo"
	"github.com/san-kum/blochsim/internal/pulse"
)

func sampleResult() *dynamo.Result {
	return &dynamo.Result{
		States: []dynamo.State{
			{0, 0, -1},
			{0.1, 0.9949828175934733, -3.747650146675708e-06},
		},
		Times:      []float64{0, 0.001},
		StepsTaken: 1,
		Metrics: map[string]float64{
			"inversion": 0.5,
		},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.GetPreset("chirped_sweep")
	runID, err := st.Save(cfg, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "chirped_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Envelope != pulse.Chirped {
		t.Errorf("expected chirped envelope, got %s", meta.Envelope)
	}
	if meta.Pulse != cfg.Pulse || meta.Constants != cfg.Constants {
		t.Errorf("parameters not preserved: %+v", meta)
	}
	if meta.Metrics["inversion"] != 0.5 {
		t.Errorf("expected inversion 0.5, got %f", meta.Metrics["inversion"])
	}

	states, times, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}
	if len(states) != 2 || len(times) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(states))
	}
	want := sampleResult().States[1]
	for i := range want {
		if states[1][i] != want[i] {
			t.Errorf("component %d: expected %v, got %v", i, want[i], states[1][i])
		}
	}
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Fatalf("expected empty list, got %v, %v", runs, err)
	}

	if _, err := st.Save(config.DefaultConfig(), sampleResult()); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Save(config.GetPreset("square"), sampleResult()); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Envelope != pulse.Gaussian || runs[1].Envelope != pulse.Square {
		t.Errorf("runs not ordered by time: %s, %s", runs[0].Envelope, runs[1].Envelope)
	}
}

func TestLoadMissingRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("missing"); err == nil {
		t.Error("expected error for missing run")
	}
	if _, _, err := st.LoadStates("missing"); err == nil {
		t.Error("expected error for missing states")
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleResult()); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "time,u,v,w" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if lines[1] != "0,0,0,-1" {
		t.Errorf("unexpected first row %q", lines[1])
	}
}

func TestExportJSON(t *testing.T) {
	cfg := config.DefaultConfig()
	result := sampleResult()

	var buf bytes.Buffer
	if err := ExportJSON(&buf, NewMetadata(cfg, result), result); err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got["envelope"] != "gaussian" {
		t.Errorf("expected envelope gaussian, got %v", got["envelope"])
	}
	if states, ok := got["states"].([]any); !ok || len(states) != 2 {
		t.Errorf("expected 2 states, got %v", got["states"])
	}
	if _, ok := got["pulse"].(map[string]any)["chirp_rate"]; !ok {
		t.Error("pulse parameters missing from export")
	}
}
