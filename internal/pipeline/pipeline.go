// Package pipeline runs the batch job end to end: load the two source
// tables, compute descriptive stats, render charts, train the risk model
// and persist one summary document. Stages run strictly in that order;
// the summary is written exactly once, at the end.
package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/safetystack/dashgen/internal/analytics"
	"github.com/safetystack/dashgen/internal/chart"
	"github.com/safetystack/dashgen/internal/config"
	"github.com/safetystack/dashgen/internal/dataset"
	"github.com/safetystack/dashgen/internal/model"
	"github.com/safetystack/dashgen/internal/utils"
)

const (
	summaryFile   = "summary.json"
	byTypeImage   = "observations_by_type.png"
	bySiteImage   = "observations_by_site.png"
	overTimeImage = "incidents_over_time.png"
)

// Summary is the single JSON document consumed by the web dashboard.
type Summary struct {
	GeneratedAt  string            `json:"generatedAt"`
	RunID        string            `json:"runId"`
	Sources      Sources           `json:"sources"`
	Observations ObservationsBlock `json:"observations"`
	Incidents    IncidentsBlock    `json:"incidents"`
	Model        model.Metrics     `json:"model"`
	Assets       map[string]string `json:"assets"`
}

// Sources records the resolved input paths for traceability.
type Sources struct {
	Observations string `json:"observations"`
	Incidents    string `json:"incidents"`
}

// ObservationsBlock reports observation stats, or a zero-row note when
// the source file was missing.
type ObservationsBlock struct {
	Rows   int    `json:"rows"`
	Total  *int   `json:"total,omitempty"`
	Open   *int   `json:"open,omitempty"`
	Closed *int   `json:"closed,omitempty"`
	Note   string `json:"note,omitempty"`
}

// IncidentsBlock reports the incident row count, or a zero-row note when
// the source file was missing.
type IncidentsBlock struct {
	Rows int    `json:"rows"`
	Note string `json:"note,omitempty"`
}

// Run executes the pipeline with the given configuration and returns the
// summary it persisted. A missing source file degrades the matching
// summary block; a malformed source aborts the run with no output.
func Run(cfg *config.Config) (*Summary, error) {
	if err := utils.EnsureDir(cfg.OutDir); err != nil {
		return nil, fmt.Errorf("ensure outdir: %w", err)
	}

	resolver := dataset.Resolver(cfg.Aliases)
	renderer := chart.NewRenderer()

	sum := &Summary{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		RunID:       uuid.NewString(),
		Sources: Sources{
			Observations: cfg.Observations,
			Incidents:    cfg.Incidents,
		},
		Assets: map[string]string{},
	}

	if err := runObservations(cfg, resolver, renderer, sum); err != nil {
		return nil, err
	}
	if err := runIncidents(cfg, resolver, renderer, sum); err != nil {
		return nil, err
	}

	data, err := utils.PrettyJSON(sum)
	if err != nil {
		return nil, err
	}
	if err := utils.SafeWriteFile(filepath.Join(cfg.OutDir, summaryFile), data); err != nil {
		return nil, fmt.Errorf("write summary: %w", err)
	}
	return sum, nil
}

func runObservations(cfg *config.Config, resolver dataset.Resolver, renderer *chart.Renderer, sum *Summary) error {
	t, err := dataset.Load(cfg.Observations)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			sum.Observations = ObservationsBlock{Rows: 0, Note: "Observations CSV not found"}
			return nil
		}
		return fmt.Errorf("load observations: %w", err)
	}

	oc := analytics.OpenClosedTally(t, resolver)
	sum.Observations = ObservationsBlock{
		Rows:   t.Len(),
		Total:  &oc.Total,
		Open:   &oc.Open,
		Closed: &oc.Closed,
	}

	if err := barAsset(cfg, renderer, sum, t, resolver, "observation_type", "Observations by type", "observationsByType", byTypeImage); err != nil {
		return err
	}
	return barAsset(cfg, renderer, sum, t, resolver, "observation_site", "Observations by site", "observationsBySite", bySiteImage)
}

func barAsset(cfg *config.Config, renderer *chart.Renderer, sum *Summary, t *dataset.Table, resolver dataset.Resolver, field, title, assetName, file string) error {
	col, ok := resolver.Column(t, field)
	if !ok {
		return nil
	}
	counts := analytics.TopCounts(t.Column(col), cfg.TopN)
	produced, err := renderer.HorizontalBar(counts, title, filepath.Join(cfg.OutDir, file))
	if err != nil {
		return fmt.Errorf("render %s: %w", file, err)
	}
	if produced {
		sum.Assets[assetName] = assetURL(cfg, file)
	}
	return nil
}

func runIncidents(cfg *config.Config, resolver dataset.Resolver, renderer *chart.Renderer, sum *Summary) error {
	t, err := dataset.Load(cfg.Incidents)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			sum.Incidents = IncidentsBlock{Rows: 0, Note: "Incidents CSV not found"}
			sum.Model = model.Disabled(0)
			return nil
		}
		return fmt.Errorf("load incidents: %w", err)
	}
	sum.Incidents = IncidentsBlock{Rows: t.Len()}

	if col, ok := resolver.Column(t, "incident_date"); ok {
		times, valid := t.Dates(col)
		points := analytics.DailyCounts(times, valid)
		produced, err := renderer.DailyLine(points, "Incidents over time", filepath.Join(cfg.OutDir, overTimeImage))
		if err != nil {
			return fmt.Errorf("render %s: %w", overTimeImage, err)
		}
		if produced {
			sum.Assets["incidentsOverTime"] = assetURL(cfg, overTimeImage)
		}
	}

	sum.Model = model.Train(t, resolver)
	return nil
}

func assetURL(cfg *config.Config, file string) string {
	base := cfg.AssetBase
	if base == "" {
		base = "/" + filepath.ToSlash(cfg.OutDir)
	}
	return base + "/" + file
}

// SummaryPath returns where Run persisted (or will persist) the document.
func SummaryPath(cfg *config.Config) string {
	return filepath.Join(cfg.OutDir, summaryFile)
}
