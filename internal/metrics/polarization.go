package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Metric accumulates one scalar over the pixels of a Stokes image.
type Metric interface {
	Name() string
	Observe(i, q, u, v float64)
	Value() float64
	Reset()
}

// Flux is the total intensity.
type Flux struct {
	name string
	sum  float64
}

func NewFlux() *Flux {
	return &Flux{name: "flux"}
}

func (f *Flux) Name() string { return f.name }

func (f *Flux) Observe(i, q, u, v float64) { f.sum += i }

func (f *Flux) Value() float64 { return f.sum }

func (f *Flux) Reset() { f.sum = 0 }

// stokesSum keeps the running Stokes totals shared by the polarization
// metrics.
type stokesSum struct {
	i, q, u, v float64
}

func (s *stokesSum) add(i, q, u, v float64) {
	s.i += i
	s.q += q
	s.u += u
	s.v += v
}

// NetPolarization is the resolved linear polarization fraction
// |ΣQ + iΣU| / ΣI.
type NetPolarization struct {
	name string
	s    stokesSum
}

func NewNetPolarization() *NetPolarization {
	return &NetPolarization{name: "m_net"}
}

func (m *NetPolarization) Name() string { return m.name }

func (m *NetPolarization) Observe(i, q, u, v float64) { m.s.add(i, q, u, v) }

func (m *NetPolarization) Value() float64 {
	if m.s.i == 0 {
		return 0
	}
	return math.Hypot(m.s.q, m.s.u) / m.s.i
}

func (m *NetPolarization) Reset() { m.s = stokesSum{} }

// AveragePolarization is the intensity-weighted mean of the local linear
// polarization fraction, Σ|Q + iU| / ΣI.
type AveragePolarization struct {
	name    string
	sumP, i float64
}

func NewAveragePolarization() *AveragePolarization {
	return &AveragePolarization{name: "m_avg"}
}

func (m *AveragePolarization) Name() string { return m.name }

func (m *AveragePolarization) Observe(i, q, u, v float64) {
	m.sumP += math.Hypot(q, u)
	m.i += i
}

func (m *AveragePolarization) Value() float64 {
	if m.i == 0 {
		return 0
	}
	return m.sumP / m.i
}

func (m *AveragePolarization) Reset() { m.sumP, m.i = 0, 0 }

// EVPA is the electric vector position angle of the net polarization in
// degrees, ½ atan2(ΣU, ΣQ).
type EVPA struct {
	name string
	s    stokesSum
}

func NewEVPA() *EVPA {
	return &EVPA{name: "evpa"}
}

func (e *EVPA) Name() string { return e.name }

func (e *EVPA) Observe(i, q, u, v float64) { e.s.add(i, q, u, v) }

func (e *EVPA) Value() float64 {
	return 0.5 * math.Atan2(e.s.u, e.s.q) * 180 / math.Pi
}

func (e *EVPA) Reset() { e.s = stokesSum{} }

// CircularPolarization is ΣV / ΣI.
type CircularPolarization struct {
	name string
	s    stokesSum
}

func NewCircularPolarization() *CircularPolarization {
	return &CircularPolarization{name: "v_net"}
}

func (c *CircularPolarization) Name() string { return c.name }

func (c *CircularPolarization) Observe(i, q, u, v float64) { c.s.add(i, q, u, v) }

func (c *CircularPolarization) Value() float64 {
	if c.s.i == 0 {
		return 0
	}
	return c.s.v / c.s.i
}

func (c *CircularPolarization) Reset() { c.s = stokesSum{} }

// Standard returns a fresh set of the image metrics reported by the CLI.
func Standard() []Metric {
	return []Metric{
		NewFlux(),
		NewNetPolarization(),
		NewAveragePolarization(),
		NewEVPA(),
		NewCircularPolarization(),
	}
}

// Sample is one evaluated metric.
type Sample struct {
	Name  string
	Value float64
}

// Observe feeds every pixel of the Stokes maps to ms and returns their
// values in order. Metrics are reset first. V may be nil.
func Observe(i, q, u, v []float64, ms ...Metric) []Sample {
	for _, m := range ms {
		m.Reset()
	}
	for k := range i {
		vk := 0.0
		if v != nil {
			vk = v[k]
		}
		for _, m := range ms {
			m.Observe(i[k], q[k], u[k], vk)
		}
	}
	out := make([]Sample, len(ms))
	for k, m := range ms {
		out[k] = Sample{Name: m.Name(), Value: m.Value()}
	}
	return out
}

// FluxFractions returns each order's share of the summed intensity.
func FluxFractions(orders ...[]float64) []float64 {
	out := make([]float64, len(orders))
	total := 0.0
	for k, o := range orders {
		out[k] = floats.Sum(o)
		total += out[k]
	}
	if total == 0 {
		return out
	}
	floats.Scale(1/total, out)
	return out
}
