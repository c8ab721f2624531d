package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/kerrtrace/internal/config"
	"github.com/san-kum/kerrtrace/internal/metrics"
	"github.com/san-kum/kerrtrace/internal/render"
)

type OrderData struct {
	N int       `json:"n"`
	I []float64 `json:"I"`
	Q []float64 `json:"Q"`
	U []float64 `json:"U"`
	V []float64 `json:"V"`
}

type FrameData struct {
	Time    float64            `json:"time"`
	I       []float64          `json:"I"`
	Q       []float64          `json:"Q"`
	U       []float64          `json:"U"`
	V       []float64          `json:"V"`
	Orders  []OrderData        `json:"orders,omitempty"`
	Metrics map[string]float64 `json:"metrics"`
}

type ExportData struct {
	Name   string         `json:"name"`
	Dim    int            `json:"dim"`
	Config *config.Config `json:"config,omitempty"`
	Frames []FrameData    `json:"frames"`
}

// NewExportData collects images for encoding. Per-order maps are included
// only when withOrders is set.
func NewExportData(name string, cfg *config.Config, images []render.Image, withOrders bool) ExportData {
	data := ExportData{Name: name, Config: cfg, Frames: make([]FrameData, len(images))}
	for k, img := range images {
		data.Dim = img.Dim
		f := FrameData{
			Time:    img.Time,
			I:       img.I,
			Q:       img.Q,
			U:       img.U,
			V:       img.V,
			Metrics: make(map[string]float64),
		}
		for _, s := range metrics.Observe(img.I, img.Q, img.U, img.V, metrics.Standard()...) {
			f.Metrics[s.Name] = s.Value
		}
		if withOrders {
			for _, o := range img.Orders {
				f.Orders = append(f.Orders, OrderData{N: o.N, I: o.I, Q: o.Q, U: o.U, V: o.V})
			}
		}
		data.Frames[k] = f
	}
	return data
}

// WriteJSON encodes data with indentation.
func WriteJSON(w io.Writer, data ExportData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	if err := WriteJSON(file, data); err != nil {
		return err
	}
	return file.Close()
}
