package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
)

// WriteSeries writes a two-column delimited table, one row per sample, e.g.
// "time,x". Rows with a missing value are skipped.
func WriteSeries(w io.Writer, names [2]string, times, values []float64) error {
	if len(times) != len(values) {
		return fmt.Errorf("series length mismatch: %d times, %d values", len(times), len(values))
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(names[:]); err != nil {
		return err
	}
	for i := range times {
		if math.IsNaN(values[i]) {
			continue
		}
		if err := cw.Write([]string{formatFloat(times[i]), formatFloat(values[i])}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportSeries writes column name of a stored run against time.
func (s *Store) ExportSeries(w io.Writer, runID, column string) error {
	table, err := s.LoadTable(runID)
	if err != nil {
		return err
	}
	times, err := table.Column("time")
	if err != nil {
		return err
	}
	values, err := table.Column(column)
	if err != nil {
		return err
	}
	return WriteSeries(w, [2]string{"time", column}, times, values)
}

type ExportData struct {
	Metadata *RunMetadata         `json:"metadata"`
	Series   map[string][]float64 `json:"series"`
}

// ExportJSON writes the metadata and every column of a stored run.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	table, err := s.LoadTable(runID)
	if err != nil {
		return err
	}

	data := ExportData{Metadata: meta, Series: make(map[string][]float64, len(table.Columns))}
	for _, c := range table.Columns {
		col, _ := table.Column(c)
		// JSON has no NaN or Inf
		clean := make([]float64, 0, len(col))
		for _, v := range col {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				clean = append(clean, v)
			}
		}
		data.Series[c] = clean
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
