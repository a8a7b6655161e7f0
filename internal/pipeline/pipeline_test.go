package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/safetystack/dashgen/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Observations: filepath.Join(dir, "observations.csv"),
		Incidents:    filepath.Join(dir, "incidents.csv"),
		OutDir:       filepath.Join(dir, "out"),
		AssetBase:    "/dashboard-assets",
		TopN:         10,
		Aliases:      config.DefaultAliases(),
	}
}

func writeLines(t *testing.T, path string, lines []string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestRunBothSourcesMissing(t *testing.T) {
	cfg := testConfig(t)
	sum, err := Run(cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Observations.Rows != 0 || sum.Observations.Note == "" {
		t.Fatalf("observations block = %+v", sum.Observations)
	}
	if sum.Incidents.Rows != 0 || sum.Incidents.Note == "" {
		t.Fatalf("incidents block = %+v", sum.Incidents)
	}
	if sum.Model.Enabled {
		t.Fatal("model should be disabled")
	}
	if len(sum.Assets) != 0 {
		t.Fatalf("assets = %#v, want empty", sum.Assets)
	}

	entries, err := os.ReadDir(cfg.OutDir)
	if err != nil {
		t.Fatalf("read outdir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".png") {
			t.Fatalf("no images expected, found %s", e.Name())
		}
	}

	raw, err := os.ReadFile(SummaryPath(cfg))
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if !strings.Contains(string(raw), `"assets": {}`) {
		t.Fatalf("assets should serialize as an empty object:\n%s", raw)
	}
	if !strings.Contains(string(raw), `"accuracy": null`) {
		t.Fatalf("disabled model should carry a null accuracy:\n%s", raw)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("summary is not valid json: %v", err)
	}
	gen, _ := decoded["generatedAt"].(string)
	if !strings.HasSuffix(gen, "Z") {
		t.Fatalf("generatedAt = %q, want UTC with trailing Z", gen)
	}
}

func TestRunEndToEnd(t *testing.T) {
	cfg := testConfig(t)

	obs := []string{
		"Observation Type,Site / Location,Action Taken",
		"Near Miss,Warehouse,",
		"Near Miss,Warehouse,resolved same day",
		"Hazard,Yard,",
		"Hazard,Warehouse,spoke to crew",
		"Housekeeping,Office,",
	}
	writeLines(t, cfg.Observations, obs)

	inc := []string{"Incident Date,Severity,Category"}
	for i := 0; i < 24; i++ {
		inc = append(inc, fmt.Sprintf("2024-01-%02d,%d,Slip", 1+i%28, 2+i%4))
	}
	for i := 0; i < 24; i++ {
		inc = append(inc, fmt.Sprintf("2024-02-%02d,%d,Fall", 1+i%28, 7+i%3))
	}
	writeLines(t, cfg.Incidents, inc)

	sum, err := Run(cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if sum.Observations.Rows != 5 {
		t.Fatalf("observation rows = %d, want 5", sum.Observations.Rows)
	}
	if *sum.Observations.Closed != 2 || *sum.Observations.Open != 3 {
		t.Fatalf("open/closed = %d/%d, want 3/2", *sum.Observations.Open, *sum.Observations.Closed)
	}
	if sum.Incidents.Rows != 48 {
		t.Fatalf("incident rows = %d, want 48", sum.Incidents.Rows)
	}
	if !sum.Model.Enabled || sum.Model.Accuracy == nil {
		t.Fatalf("model = %+v, want enabled with accuracy", sum.Model)
	}
	if *sum.Model.Accuracy < 0 || *sum.Model.Accuracy > 1 {
		t.Fatalf("accuracy = %v", *sum.Model.Accuracy)
	}

	wantAssets := map[string]string{
		"observationsByType": "/dashboard-assets/observations_by_type.png",
		"observationsBySite": "/dashboard-assets/observations_by_site.png",
		"incidentsOverTime":  "/dashboard-assets/incidents_over_time.png",
	}
	for name, url := range wantAssets {
		if sum.Assets[name] != url {
			t.Fatalf("asset %s = %q, want %q", name, sum.Assets[name], url)
		}
	}
	for _, file := range []string{byTypeImage, bySiteImage, overTimeImage, summaryFile} {
		if _, err := os.Stat(filepath.Join(cfg.OutDir, file)); err != nil {
			t.Fatalf("expected output %s: %v", file, err)
		}
	}
}

func TestRunObservationsWithoutOptionalColumns(t *testing.T) {
	cfg := testConfig(t)
	writeLines(t, cfg.Observations, []string{
		"Notes",
		"no structured columns at all",
	})
	sum, err := Run(cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// No action-taken column: everything open, charts skipped, nothing
	// registered for assets that never rendered.
	if *sum.Observations.Open != 1 || *sum.Observations.Closed != 0 {
		t.Fatalf("open/closed = %d/%d", *sum.Observations.Open, *sum.Observations.Closed)
	}
	if _, ok := sum.Assets["observationsByType"]; ok {
		t.Fatal("observationsByType should not be registered")
	}
	if _, ok := sum.Assets["observationsBySite"]; ok {
		t.Fatal("observationsBySite should not be registered")
	}
}

func TestRunMalformedObservationsAborts(t *testing.T) {
	cfg := testConfig(t)
	writeLines(t, cfg.Observations, []string{
		"A,B",
		`"unterminated,1`,
	})
	if _, err := Run(cfg); err == nil {
		t.Fatal("malformed CSV should abort the run")
	}
	if _, err := os.Stat(SummaryPath(cfg)); err == nil {
		t.Fatal("no summary should be written for an aborted run")
	}
}
