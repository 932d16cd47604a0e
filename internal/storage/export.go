package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/ballsim/internal/sim"
)

type ExportData struct {
	Scenario string             `json:"scenario"`
	Dt       float64            `json:"dt_ms"`
	Duration float64            `json:"duration"`
	Seed     int64              `json:"seed"`
	Width    float64            `json:"width"`
	Height   float64            `json:"height"`
	Steps    int                `json:"steps"`
	Frames   []sim.Frame        `json:"frames"`
	Final    []sim.Snapshot     `json:"final"`
	Metrics  map[string]float64 `json:"metrics"`
}

// ExportJSON writes the run description and its frames as indented JSON.
func ExportJSON(w io.Writer, meta RunMetadata, result *sim.Result) error {
	data := ExportData{
		Scenario: meta.Scenario,
		Dt:       meta.Dt,
		Duration: meta.Duration,
		Seed:     meta.Seed,
		Width:    meta.Width,
		Height:   meta.Height,
		Steps:    result.StepsTaken,
		Frames:   result.Frames,
		Final:    result.Final,
		Metrics:  result.Metrics,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
