package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/ljsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	metadataFile = "metadata.json"
	seriesFile   = "series.csv"
	finalFile    = "final.csv"
)

var seriesHeader = []string{"step", "time", "kinetic", "potential", "total", "temperature"}

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
	Name        string             `json:"name"`
	Input       string             `json:"input"`
	Integrator  string             `json:"integrator"`
	Timestamp   time.Time          `json:"timestamp"`
	Particles   int                `json:"particles"`
	Params      dynamo.Params      `json:"params"`
	StepsTaken  int                `json:"steps_taken"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
	// NonFinite names the metrics, and "energy_drift_total" for EnergyDrift,
	// whose NaN or infinite values were left out of the metadata.
	NonFinite []string `json:"non_finite,omitempty"`
}

// Save writes a run directory and returns its id. meta.ID and
// meta.Timestamp are filled in. A failed save leaves no directory behind.
func (s *Store) Save(meta RunMetadata, result *dynamo.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", meta.Name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.StepsTaken = result.StepsTaken
	meta.EnergyDrift = result.EnergyDrift
	meta.Metrics = make(map[string]float64, len(result.Metrics))
	for k, v := range result.Metrics {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			meta.NonFinite = append(meta.NonFinite, k)
			continue
		}
		meta.Metrics[k] = v
	}
	sort.Strings(meta.NonFinite)
	if math.IsNaN(meta.EnergyDrift) || math.IsInf(meta.EnergyDrift, 0) {
		meta.EnergyDrift = 0
		meta.NonFinite = append(meta.NonFinite, "energy_drift_total")
	}
	if meta.Particles == 0 {
		meta.Particles = len(result.Final)
	}

	if err := writeRun(runDir, meta, result); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	return runID, nil
}

func writeRun(runDir string, meta RunMetadata, result *dynamo.Result) error {
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return err
	}

	rows := make([][]string, 0, len(result.Samples)+1)
	rows = append(rows, seriesHeader)
	for _, smp := range result.Samples {
		rows = append(rows, []string{
			strconv.Itoa(smp.Step),
			formatFloat(smp.Time),
			formatFloat(smp.Kinetic),
			formatFloat(smp.Potential),
			formatFloat(smp.Total),
			formatFloat(smp.Temperature),
		})
	}
	if err := writeCSV(filepath.Join(runDir, seriesFile), rows); err != nil {
		return err
	}

	final := make([][]string, 0, len(result.Final)+1)
	final = append(final, []string{"x", "y", "vx", "vy"})
	for _, p := range result.Final {
		final = append(final, []string{
			formatFloat(p.Pos.X), formatFloat(p.Pos.Y),
			formatFloat(p.Vel.X), formatFloat(p.Vel.Y),
		})
	}
	if err := writeCSV(filepath.Join(runDir, finalFile), final); err != nil {
		return err
	}

	return nil
}

// List returns the stored runs, oldest first.
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
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadSeries reads back the per-step diagnostics of a run.
func (s *Store) LoadSeries(runID string) ([]dynamo.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(seriesHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []dynamo.Sample{}, nil
	}

	samples := make([]dynamo.Sample, 0, len(records)-1)
	for i, record := range records[1:] {
		step, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", seriesFile, i+1, err)
		}
		vals := make([]float64, 5)
		for j := range vals {
			vals[j], err = strconv.ParseFloat(record[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", seriesFile, i+1, err)
			}
		}
		samples = append(samples, dynamo.Sample{
			Step:        step,
			Time:        vals[0],
			Kinetic:     vals[1],
			Potential:   vals[2],
			Total:       vals[3],
			Temperature: vals[4],
		})
	}

	return samples, nil
}

// LoadFinal reads back the particle state at the end of a run.
func (s *Store) LoadFinal(runID string) ([]dynamo.Particle, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, finalFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 4

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []dynamo.Particle{}, nil
	}

	particles := make([]dynamo.Particle, 0, len(records)-1)
	for i, record := range records[1:] {
		var vals [4]float64
		for j := range vals {
			vals[j], err = strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", finalFile, i+1, err)
			}
		}
		particles = append(particles, dynamo.Particle{
			Pos: r2.Vec{X: vals[0], Y: vals[1]},
			Vel: r2.Vec{X: vals[2], Y: vals[3]},
		})
	}

	return particles, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
