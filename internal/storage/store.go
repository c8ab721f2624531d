// Package storage keeps traced runs on disk: one directory per run holding
// metadata.json, the composite Stokes maps and the per-order crossings.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/kerrtrace/internal/config"
	"github.com/san-kum/kerrtrace/internal/kerr"
	"github.com/san-kum/kerrtrace/internal/metrics"
	"github.com/san-kum/kerrtrace/internal/render"
)

var ErrNoImage = errors.New("storage: run has no image")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type OrderMetadata struct {
	N     int `json:"n"`
	Dim   int `json:"dim"`
	Valid int `json:"valid"`
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Elapsed   float64            `json:"elapsed_seconds"`
	Dim       int                `json:"dim"`
	Times     []float64          `json:"times"`
	Orders    []OrderMetadata    `json:"orders"`
	Config    *config.Config     `json:"config"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Run is a saved trace: the engine result and its composite images.
type Run struct {
	Name    string
	Config  *config.Config
	Result  *kerr.Result
	Images  []render.Image
	Metrics []metrics.Sample
}

// Save writes run under a new directory and returns its id.
func (s *Store) Save(run Run) (string, error) {
	runID := fmt.Sprintf("%s_%d", run.Name, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Name:      run.Name,
		Timestamp: time.Now(),
		Config:    run.Config,
		Metrics:   make(map[string]float64, len(run.Metrics)),
	}
	for _, m := range run.Metrics {
		meta.Metrics[m.Name] = m.Value
	}
	if run.Result != nil {
		meta.Elapsed = run.Result.Elapsed.Seconds()
		meta.Dim = run.Result.Base.Dim
		for k := range run.Result.Orders {
			o := &run.Result.Orders[k]
			meta.Orders = append(meta.Orders, OrderMetadata{N: o.N, Dim: o.Grid.Dim, Valid: o.Count()})
			if err := writeOrder(filepath.Join(runDir, fmt.Sprintf("order_%d.csv", o.N)), o); err != nil {
				return "", err
			}
		}
	}
	for k, img := range run.Images {
		meta.Times = append(meta.Times, img.Time)
		if err := writeImage(filepath.Join(runDir, fmt.Sprintf("image_%d.csv", k)), img); err != nil {
			return "", err
		}
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}
	return runID, nil
}

func writeImage(path string, img render.Image) error {
	rows := make([][]string, 0, len(img.I)+1)
	rows = append(rows, []string{"row", "col", "I", "Q", "U", "V"})
	for i := range img.I {
		rows = append(rows, []string{
			strconv.Itoa(i / img.Dim),
			strconv.Itoa(i % img.Dim),
			formatFloat(img.I[i]),
			formatFloat(img.Q[i]),
			formatFloat(img.U[i]),
			formatFloat(img.V[i]),
		})
	}
	return writeCSV(path, rows)
}

// writeOrder stores the valid crossings of one order.
func writeOrder(path string, o *kerr.SubImage) error {
	rows := [][]string{{"row", "col", "case", "r", "phi", "t", "redshift", "lp", "I", "Q", "U", "V"}}
	dim := o.Grid.Dim
	for i, ok := range o.Valid {
		if !ok {
			continue
		}
		rows = append(rows, []string{
			strconv.Itoa(i / dim),
			strconv.Itoa(i % dim),
			strconv.Itoa(int(o.Cases[i])),
			formatFloat(o.R[i]),
			formatFloat(o.Phi[i]),
			formatFloat(o.T[i]),
			formatFloat(o.Redshift[i]),
			formatFloat(o.LP[i]),
			formatFloat(o.I[i]),
			formatFloat(o.Q[i]),
			formatFloat(o.U[i]),
			formatFloat(o.V[i]),
		})
	}
	return writeCSV(path, rows)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
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
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadImage reads the composite image at time index k.
func (s *Store) LoadImage(runID string, k int) (render.Image, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return render.Image{}, err
	}
	if k < 0 || k >= len(meta.Times) {
		return render.Image{}, fmt.Errorf("%w: index %d of %d", ErrNoImage, k, len(meta.Times))
	}

	records, err := readCSV(filepath.Join(s.baseDir, runID, fmt.Sprintf("image_%d.csv", k)))
	if err != nil {
		return render.Image{}, err
	}
	size := meta.Dim * meta.Dim
	img := render.Image{
		Dim:  meta.Dim,
		Time: meta.Times[k],
		I:    make([]float64, size),
		Q:    make([]float64, size),
		U:    make([]float64, size),
		V:    make([]float64, size),
	}
	for _, rec := range records {
		idx, vals, err := parseRow(rec, meta.Dim, 4)
		if err != nil {
			return render.Image{}, err
		}
		if idx < 0 || idx >= size {
			continue
		}
		img.I[idx], img.Q[idx], img.U[idx], img.V[idx] = vals[0], vals[1], vals[2], vals[3]
	}
	return img, nil
}

// Crossing is one stored row of an order file.
type Crossing struct {
	Row, Col int
	R        float64
	Phi      float64
	T        float64
	Redshift float64
	LP       float64
	I        float64
	Q        float64
	U        float64
	V        float64
}

// LoadOrder reads the valid crossings of order n.
func (s *Store) LoadOrder(runID string, n int) ([]Crossing, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, fmt.Sprintf("order_%d.csv", n)))
	if err != nil {
		return nil, err
	}
	out := make([]Crossing, 0, len(records))
	for _, rec := range records {
		if len(rec) < 12 {
			continue
		}
		row, err1 := strconv.Atoi(rec[0])
		col, err2 := strconv.Atoi(rec[1])
		if err = errors.Join(err1, err2); err != nil {
			return nil, err
		}
		v := make([]float64, 9)
		for j := range v {
			if v[j], err = strconv.ParseFloat(rec[3+j], 64); err != nil {
				return nil, err
			}
		}
		out = append(out, Crossing{
			Row: row, Col: col,
			R: v[0], Phi: v[1], T: v[2], Redshift: v[3], LP: v[4],
			I: v[5], Q: v[6], U: v[7], V: v[8],
		})
	}
	return out, nil
}

// readCSV returns the records after the header.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
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

func parseRow(rec []string, dim, nvals int) (int, []float64, error) {
	if len(rec) < 2+nvals {
		return -1, nil, fmt.Errorf("storage: short record %v", rec)
	}
	row, err := strconv.Atoi(rec[0])
	if err != nil {
		return -1, nil, err
	}
	col, err := strconv.Atoi(rec[1])
	if err != nil {
		return -1, nil, err
	}
	vals := make([]float64, nvals)
	for j := range vals {
		if vals[j], err = strconv.ParseFloat(rec[2+j], 64); err != nil {
			return -1, nil, err
		}
	}
	return row*dim + col, vals, nil
}
