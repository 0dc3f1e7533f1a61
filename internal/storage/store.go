package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/vehsim/internal/dynamo"
	"github.com/san-kum/vehsim/internal/physics"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string                `json:"id"`
	Scenario   string                `json:"scenario"`
	Controller string                `json:"controller"`
	Timestamp  time.Time             `json:"timestamp"`
	Dt         float64               `json:"dt"`
	Duration   float64               `json:"duration"`
	Vehicle    physics.VehicleParams `json:"vehicle"`
	Columns    []string              `json:"columns"`
	Metrics    map[string]float64    `json:"metrics"`
}

// RunInfo describes the run being saved.
type RunInfo struct {
	Scenario   string
	Controller string
	Duration   float64
	Vehicle    physics.VehicleParams
}

// Save writes metadata.json and states.csv into a fresh run directory and
// returns the run id.
// A failed save removes the run directory. Non-finite metrics are left out
// of the metadata.
func (s *Store) Save(info RunInfo, result *dynamo.Result) (_ string, err error) {
	ts := s.now()
	runID := fmt.Sprintf("%s_%d", info.Scenario, ts.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			os.RemoveAll(runDir)
		}
	}()

	header := Header(result)
	meta := RunMetadata{
		ID:         runID,
		Scenario:   info.Scenario,
		Controller: info.Controller,
		Timestamp:  ts,
		Dt:         info.Vehicle.SampleTime,
		Duration:   info.Duration,
		Vehicle:    info.Vehicle,
		Columns:    header,
		Metrics:    finiteMetrics(result.Metrics),
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, statesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := writeRows(w, header, result); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

func finiteMetrics(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for name, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[name] = v
		}
	}
	return out
}

// Header names the CSV columns of a result: time, the state labels, then the
// control labels.
func Header(result *dynamo.Result) []string {
	header := []string{"time"}
	if len(result.States) == 0 {
		return header
	}

	stateDim := len(result.States[0])
	for i := 0; i < stateDim; i++ {
		header = append(header, label(result.StateLabels, i, "x"))
	}

	if len(result.Controls) > 0 {
		for i := range result.Controls[0] {
			header = append(header, label(result.ControlLabels, i, "u"))
		}
	}
	return header
}

func label(labels []string, i int, prefix string) string {
	if i < len(labels) {
		return labels[i]
	}
	return fmt.Sprintf("%s%d", prefix, i)
}

func writeRows(w *csv.Writer, header []string, result *dynamo.Result) error {
	if err := w.Write(header); err != nil {
		return err
	}
	if len(result.States) == 0 {
		return nil
	}

	numControls := 0
	if len(result.Controls) > 0 {
		numControls = len(result.Controls[0])
	}

	for i := range result.States {
		row := []string{formatFloat(result.Times[i])}

		for _, val := range result.States[i] {
			row = append(row, formatFloat(val))
		}

		if i < len(result.Controls) {
			for _, val := range result.Controls[i] {
				row = append(row, formatFloat(val))
			}
		} else {
			// the final sample has no control applied after it
			for j := 0; j < numControls; j++ {
				row = append(row, "")
			}
		}

		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
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

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

// Table is a loaded states.csv.
type Table struct {
	Columns []string
	Rows    [][]float64
}

// Column returns the values of the named column. Empty cells read as NaN.
func (t *Table) Column(name string) ([]float64, error) {
	for i, c := range t.Columns {
		if c != name {
			continue
		}
		out := make([]float64, len(t.Rows))
		for r, row := range t.Rows {
			out[r] = row[i]
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown column %q (available: %v)", name, t.Columns)
}

func (s *Store) LoadTable(runID string) (*Table, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	if len(records) == 0 {
		return &Table{}, nil
	}

	table := &Table{
		Columns: records[0],
		Rows:    make([][]float64, 0, len(records)-1),
	}

	for i := 1; i < len(records); i++ {
		row := make([]float64, len(table.Columns))
		for j := range row {
			if j >= len(records[i]) || records[i][j] == "" {
				row[j] = math.NaN()
				continue
			}
			val, err := strconv.ParseFloat(records[i][j], 64)
			if err != nil {
				return nil, fmt.Errorf("run %s row %d column %s: %w", runID, i, table.Columns[j], err)
			}
			row[j] = val
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}
