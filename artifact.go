package sqlbench

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// ArtifactFormatVersion changes whenever a field is renamed or its unit
// changes. External tools diff artifacts across runs; the field names and
// the millisecond unit are a stable contract.
const ArtifactFormatVersion = "1.0"

// Params is the dataset shape a comparison was produced under.
type Params struct {
	Persons int `json:"persons"`
	Records int `json:"records"`
}

// Artifact is the machine-readable result document: one entry per
// (variant, parameter set), in ranking order, unavailable variants last.
type Artifact struct {
	FormatVersion string          `json:"format_version"`
	RunID         string          `json:"run_id"`
	GeneratedAt   time.Time       `json:"generated_at"`
	Results       []ArtifactEntry `json:"results"`
}

type ArtifactEntry struct {
	Variant     string  `json:"variant"`
	DisplayName string  `json:"display_name"`
	Persons     int     `json:"persons"`
	Records     int     `json:"records"`
	Samples     int     `json:"samples"`
	AvgMs       float64 `json:"avg_ms"`
	MinMs       float64 `json:"min_ms"`
	MaxMs       float64 `json:"max_ms"`
	MedianMs    float64 `json:"median_ms"`
	P95Ms       float64 `json:"p95_ms"`
	SlowdownPct float64 `json:"slowdown_pct"`
	Failed      bool    `json:"failed"`
}

func NewArtifact() *Artifact {
	return &Artifact{
		FormatVersion: ArtifactFormatVersion,
		RunID:         uuid.NewString(),
		GeneratedAt:   time.Now().UTC(),
	}
}

// Append derives entries for one (report, parameter set) pair. variants
// supplies display names; the report itself is the single source for both
// this artifact and the text summary.
func (a *Artifact) Append(report ComparisonReport, params Params, variants []QueryVariant) {
	names := make(map[string]string, len(variants))
	for _, v := range variants {
		names[v.ID] = v.DisplayName
	}

	for _, r := range report.Ranked {
		a.Results = append(a.Results, ArtifactEntry{
			Variant:     r.VariantID,
			DisplayName: names[r.VariantID],
			Persons:     params.Persons,
			Records:     params.Records,
			Samples:     r.SampleCount,
			AvgMs:       millis(r.Avg),
			MinMs:       durationMillis(r.Min),
			MaxMs:       durationMillis(r.Max),
			MedianMs:    durationMillis(r.Median),
			P95Ms:       durationMillis(r.P95),
			SlowdownPct: r.Slowdown,
		})
	}

	for _, r := range report.Unavailable {
		a.Results = append(a.Results, ArtifactEntry{
			Variant:     r.VariantID,
			DisplayName: names[r.VariantID],
			Persons:     params.Persons,
			Records:     params.Records,
			Failed:      true,
		})
	}
}

func WriteArtifact(path string, a *Artifact) error {
	b, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode artifact: %w", err)
	}

	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("could not write artifact: %w", err)
	}

	return nil
}

func ReadArtifact(path string) (*Artifact, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read artifact: %w", err)
	}

	a := &Artifact{}
	if err := json.Unmarshal(b, a); err != nil {
		return nil, fmt.Errorf("could not parse artifact: %w", err)
	}

	return a, nil
}
