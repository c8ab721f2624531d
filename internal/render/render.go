// Package render turns per-order emission maps into a Stokes image: it
// applies an emissivity profile and redshift weighting, composites the
// orders through an optical-depth prescription, brings every order to the
// base resolution, and normalises the total flux.
package render

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/kerrtrace/internal/kerr"
	"github.com/san-kum/kerrtrace/internal/screen"
)

// OpticalDepth selects how sub-images are composited.
type OpticalDepth string

const (
	// Thin weights emission by the path length through the disk.
	Thin OpticalDepth = "thin"
	// Varying uses 1 - exp(-h lp) and attenuates order n+1 by exp(-h lp_n).
	Varying OpticalDepth = "varying"
	// Thick applies no path-length factor.
	Thick OpticalDepth = "thick"
)

var ErrNoProfile = errors.New("render: no emissivity profile")

// ParseOpticalDepth validates an optical-depth name.
func ParseOpticalDepth(s string) (OpticalDepth, error) {
	switch d := OpticalDepth(s); d {
	case Thin, Varying, Thick:
		return d, nil
	case "":
		return Thin, nil
	}
	return "", fmt.Errorf("render: unknown optical depth %q", s)
}

// Params controls image assembly.
type Params struct {
	Profile      Profile
	Spec         float64
	OpticalDepth OpticalDepth
	H            float64
	// Flux is the target total intensity; zero leaves the scale untouched.
	Flux         float64
	PolFrac      float64
	EVPARotation float64
	// PolFlux weights intensity by the local polarized emissivity. When
	// false the image is unpolarized.
	PolFlux bool
	// Times lists observation times for non-stationary runs.
	Times []float64
}

// StokesMap is one order at base resolution.
type StokesMap struct {
	N          int
	I, Q, U, V []float64
}

// Image is the composite at one observation time.
type Image struct {
	Dim        int
	Time       float64
	Orders     []StokesMap
	I, Q, U, V []float64
}

// Compose assembles one image per observation time.
func Compose(res *kerr.Result, p Params) ([]Image, error) {
	if p.Profile == nil {
		return nil, ErrNoProfile
	}
	depth, err := ParseOpticalDepth(string(p.OpticalDepth))
	if err != nil {
		return nil, err
	}
	p.OpticalDepth = depth

	times := p.Times
	if len(times) == 0 || res.Config.Stationary {
		times = []float64{0}
	}
	images := make([]Image, len(times))
	for k, t := range times {
		images[k] = composeAt(res, p, t)
	}
	return images, nil
}

func composeAt(res *kerr.Result, p Params, time float64) Image {
	dim := res.Base.Dim
	size := dim * dim
	img := Image{Dim: dim, Time: time, Orders: make([]StokesMap, len(res.Orders))}

	var prevAtten []float64
	for k := range res.Orders {
		s := &res.Orders[k]
		m, atten := order(s, p, time)
		f := s.Grid.Dim / dim
		m.I = screen.Downsample(m.I, s.Grid.Dim, f)
		m.Q = screen.Downsample(m.Q, s.Grid.Dim, f)
		m.U = screen.Downsample(m.U, s.Grid.Dim, f)
		m.V = screen.Downsample(m.V, s.Grid.Dim, f)

		if prevAtten != nil {
			floats.Mul(m.I, prevAtten)
			floats.Mul(m.Q, prevAtten)
			floats.Mul(m.U, prevAtten)
			floats.Mul(m.V, prevAtten)
		}
		prevAtten = nil
		if atten != nil {
			prevAtten = screen.Downsample(atten, s.Grid.Dim, f)
		}
		img.Orders[k] = m
	}

	total := 0.0
	for _, m := range img.Orders {
		total += floats.Sum(m.I)
	}
	iscale, pscale := 1.0, p.PolFrac
	if p.Flux > 0 && total > 0 {
		iscale = p.Flux / total
		pscale = iscale * p.PolFrac
	}
	s2, c2 := math.Sincos(2 * p.EVPARotation)

	img.I = make([]float64, size)
	img.Q = make([]float64, size)
	img.U = make([]float64, size)
	img.V = make([]float64, size)
	for k := range img.Orders {
		m := &img.Orders[k]
		floats.Scale(iscale, m.I)
		floats.Scale(pscale, m.Q)
		floats.Scale(pscale, m.U)
		floats.Scale(pscale, m.V)
		if p.EVPARotation != 0 {
			for i := range m.Q {
				q, u := m.Q[i], m.U[i]
				m.Q[i] = q*c2 - u*s2
				m.U[i] = q*s2 + u*c2
			}
		}
		floats.Add(img.I, m.I)
		floats.Add(img.Q, m.Q)
		floats.Add(img.U, m.U)
		floats.Add(img.V, m.V)
	}
	return img
}

// order weights one sub-image by the profile on its own grid. For the
// varying prescription it also returns the transmission exp(-h lp), which
// is 1 where the order has no crossing.
func order(s *kerr.SubImage, p Params, time float64) (StokesMap, []float64) {
	n := len(s.Valid)
	m := StokesMap{
		N: s.N,
		I: make([]float64, n),
		Q: make([]float64, n),
		U: make([]float64, n),
		V: make([]float64, n),
	}
	var atten []float64
	if p.OpticalDepth == Varying {
		atten = make([]float64, n)
		for i := range atten {
			atten[i] = 1
		}
	}

	for i, ok := range s.Valid {
		if !ok {
			continue
		}
		prof := p.Profile(Point{R: s.R[i], Phi: s.Phi[i], T: s.T[i] + time})
		prof *= math.Pow(s.Redshift[i], 3+p.Spec)
		switch p.OpticalDepth {
		case Thin:
			prof *= s.LP[i]
		case Varying:
			e := math.Exp(-p.H * s.LP[i])
			prof *= 1 - e
			atten[i] = e
		}
		if math.IsNaN(prof) || math.IsInf(prof, 0) {
			continue
		}
		if !p.PolFlux {
			m.I[i] = prof
			continue
		}
		m.I[i] = s.I[i] * prof
		m.Q[i] = s.Q[i] * prof
		m.U[i] = s.U[i] * prof
		m.V[i] = s.V[i] * prof
	}
	return m, atten
}
