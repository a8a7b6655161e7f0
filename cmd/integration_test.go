package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runCmd executes the root command with args against an isolated HOME.
func runCmd(t *testing.T, args ...string) {
	t.Helper()
	cfg = nil
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
}

func isolateHome(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	oldHome := os.Getenv("HOME")
	t.Cleanup(func() { os.Setenv("HOME", oldHome) })
	os.Setenv("HOME", home)
}

func TestCLI_GenerateMissingSources(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	out := filepath.Join(dir, "assets")

	runCmd(t, "generate",
		"--observations", filepath.Join(dir, "observations.csv"),
		"--incidents", filepath.Join(dir, "incidents.csv"),
		"--outdir", out,
	)

	raw, err := os.ReadFile(filepath.Join(out, "summary.json"))
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	var sum map[string]any
	if err := json.Unmarshal(raw, &sum); err != nil {
		t.Fatalf("parse summary: %v", err)
	}
	obs, _ := sum["observations"].(map[string]any)
	if obs["rows"] != float64(0) || obs["note"] == nil {
		t.Fatalf("observations block = %#v", obs)
	}
	model, _ := sum["model"].(map[string]any)
	if model["enabled"] != false {
		t.Fatalf("model block = %#v", model)
	}
}

func TestCLI_GenerateEndToEnd(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	out := filepath.Join(dir, "assets")

	obsPath := filepath.Join(dir, "observations.csv")
	obs := []string{
		"Observation Type,Site / Location,Action Taken",
		"Near Miss,Warehouse,",
		"Hazard,Yard,done",
	}
	if err := os.WriteFile(obsPath, []byte(strings.Join(obs, "\n")), 0o644); err != nil {
		t.Fatalf("write observations: %v", err)
	}

	incPath := filepath.Join(dir, "incidents.csv")
	inc := []string{"Incident Date,Severity"}
	for i := 0; i < 20; i++ {
		inc = append(inc, fmt.Sprintf("2024-03-%02d,3", 1+i%28))
	}
	for i := 0; i < 20; i++ {
		inc = append(inc, fmt.Sprintf("2024-04-%02d,8", 1+i%28))
	}
	if err := os.WriteFile(incPath, []byte(strings.Join(inc, "\n")), 0o644); err != nil {
		t.Fatalf("write incidents: %v", err)
	}

	runCmd(t, "generate", "--observations", obsPath, "--incidents", incPath, "--outdir", out)

	for _, f := range []string{"summary.json", "observations_by_type.png", "observations_by_site.png", "incidents_over_time.png"} {
		if _, err := os.Stat(filepath.Join(out, f)); err != nil {
			t.Fatalf("missing output %s: %v", f, err)
		}
	}
}

func TestCLI_Inspect(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(csvPath, []byte("Severity\n3\n8\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	outPath := filepath.Join(dir, "profile.md")

	runCmd(t, "inspect", csvPath, "--output", outPath)

	b, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read profile: %v", err)
	}
	if !strings.Contains(string(b), "[DATASET PROFILE]") || !strings.Contains(string(b), "Severity: numeric") {
		t.Fatalf("unexpected profile output:\n%s", b)
	}
}
