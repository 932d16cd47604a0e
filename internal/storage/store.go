package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/ballsim/internal/dynamo"
	"github.com/san-kum/ballsim/internal/sim"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Scenario    string             `json:"scenario"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Dt          float64            `json:"dt_ms"`
	Duration    float64            `json:"duration"`
	Width       float64            `json:"width"`
	Height      float64            `json:"height"`
	MaxBalls    int                `json:"max_balls"`
	Steps       int                `json:"steps"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
	Errors      []string           `json:"errors,omitempty"`
}

var (
	frameHeader = []string{"time_ms", "count", "energy", "momentum", "contacts", "wall_hits"}
	ballHeader  = []string{"x", "y", "vx", "vy", "radius", "current_radius", "mass", "phase", "color"}
)

// Save writes metadata.json, frames.csv and balls.csv into a new run
// directory and returns its ID. ID, Timestamp, Steps, EnergyDrift,
// Metrics and Errors in meta are filled from result.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", meta.Scenario, now.Unix())
	runDir := filepath.Join(s.baseDir, runID)
	for i := 1; exists(runDir); i++ {
		runID = fmt.Sprintf("%s_%d_%d", meta.Scenario, now.Unix(), i)
		runDir = filepath.Join(s.baseDir, runID)
	}

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Steps = result.StepsTaken
	meta.EnergyDrift = result.EnergyDrift
	meta.Metrics = result.Metrics
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}

	if err := writeFile(filepath.Join(runDir, "metadata.json"), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, "frames.csv"), func(w io.Writer) error {
		return WriteFrames(w, result.Frames)
	}); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, "balls.csv"), func(w io.Writer) error {
		return WriteSnapshot(w, result.Final)
	}); err != nil {
		return "", err
	}

	return runID, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func writeFile(path string, fn func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func WriteFrames(w io.Writer, frames []sim.Frame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(frameHeader); err != nil {
		return err
	}
	for _, f := range frames {
		row := []string{
			ftoa(f.Time),
			strconv.Itoa(f.Count),
			ftoa(f.Energy),
			ftoa(f.Momentum),
			strconv.Itoa(f.Contacts),
			strconv.Itoa(f.WallHits),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteSnapshot(w io.Writer, balls []sim.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ballHeader); err != nil {
		return err
	}
	for _, b := range balls {
		row := []string{
			ftoa(b.X), ftoa(b.Y), ftoa(b.VX), ftoa(b.VY),
			ftoa(b.Radius), ftoa(b.CurrentRadius), ftoa(b.Mass),
			b.Phase, b.Color.Hex(),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}

		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) readCSV(runID, name string) ([][]string, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}
	return records[1:], nil
}

func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	records, err := s.readCSV(runID, "frames.csv")
	if err != nil {
		return nil, err
	}

	frames := make([]sim.Frame, 0, len(records))
	for i, rec := range records {
		if len(rec) != len(frameHeader) {
			return nil, fmt.Errorf("frames.csv row %d: expected %d fields, got %d", i+1, len(frameHeader), len(rec))
		}
		p := parser{row: rec}
		f := sim.Frame{
			Time:     p.float(0),
			Count:    p.int(1),
			Energy:   p.float(2),
			Momentum: p.float(3),
			Contacts: p.int(4),
			WallHits: p.int(5),
		}
		if p.err != nil {
			return nil, fmt.Errorf("frames.csv row %d: %w", i+1, p.err)
		}
		frames = append(frames, f)
	}
	return frames, nil
}

func (s *Store) LoadSnapshot(runID string) ([]sim.Snapshot, error) {
	records, err := s.readCSV(runID, "balls.csv")
	if err != nil {
		return nil, err
	}

	balls := make([]sim.Snapshot, 0, len(records))
	for i, rec := range records {
		if len(rec) != len(ballHeader) {
			return nil, fmt.Errorf("balls.csv row %d: expected %d fields, got %d", i+1, len(ballHeader), len(rec))
		}
		p := parser{row: rec}
		b := sim.Snapshot{
			X: p.float(0), Y: p.float(1), VX: p.float(2), VY: p.float(3),
			Radius:        p.float(4),
			CurrentRadius: p.float(5),
			Mass:          p.float(6),
			Phase:         rec[7],
		}
		if p.err != nil {
			return nil, fmt.Errorf("balls.csv row %d: %w", i+1, p.err)
		}
		if b.Color, err = dynamo.ParseHex(rec[8]); err != nil {
			return nil, fmt.Errorf("balls.csv row %d: %w", i+1, err)
		}
		balls = append(balls, b)
	}
	return balls, nil
}

// parser keeps the first conversion error of a row.
type parser struct {
	row []string
	err error
}

func (p *parser) float(i int) float64 {
	v, err := strconv.ParseFloat(p.row[i], 64)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}

func (p *parser) int(i int) int {
	v, err := strconv.Atoi(p.row[i])
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}
