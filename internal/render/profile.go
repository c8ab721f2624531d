package render

import (
	"fmt"
	"math"
	"sort"
)

// Point is where a ray meets the emitting plane.
type Point struct {
	R, Phi, T float64
}

// Profile is a rest-frame emissivity.
type Profile func(p Point) float64

// Factory builds a profile from named arguments. Missing arguments take
// the factory's defaults.
type Factory func(args map[string]float64) (Profile, error)

// Registry maps profile names to factories.
type Registry struct {
	profiles map[string]Factory
	defaults map[string]map[string]float64
}

func NewRegistry() *Registry {
	r := &Registry{
		profiles: make(map[string]Factory),
		defaults: make(map[string]map[string]float64),
	}

	r.Register("power", map[string]float64{"index": 3, "rmin": 0}, func(a map[string]float64) (Profile, error) {
		index, rmin := a["index"], a["rmin"]
		return func(p Point) float64 {
			if p.R < rmin {
				return 0
			}
			return math.Pow(p.R, -index)
		}, nil
	})
	r.Register("gaussian_ring", map[string]float64{"r0": 5, "width": 1}, func(a map[string]float64) (Profile, error) {
		r0, w := a["r0"], a["width"]
		if w <= 0 {
			return nil, fmt.Errorf("gaussian_ring: width must be positive, got %g", w)
		}
		return func(p Point) float64 {
			d := (p.R - r0) / w
			return math.Exp(-0.5 * d * d)
		}, nil
	})
	r.Register("exp", map[string]float64{"scale": 2}, func(a map[string]float64) (Profile, error) {
		s := a["scale"]
		if s <= 0 {
			return nil, fmt.Errorf("exp: scale must be positive, got %g", s)
		}
		return func(p Point) float64 { return math.Exp(-p.R / s) }, nil
	})
	r.Register("spiral", map[string]float64{"index": 3, "amp": 0.5, "arms": 2, "pitch": 1}, func(a map[string]float64) (Profile, error) {
		index, amp, arms, pitch := a["index"], a["amp"], a["arms"], a["pitch"]
		if amp < 0 || amp > 1 {
			return nil, fmt.Errorf("spiral: amp must lie in [0, 1], got %g", amp)
		}
		return func(p Point) float64 {
			return math.Pow(p.R, -index) * (1 + amp*math.Cos(arms*p.Phi-pitch*math.Log(p.R)))
		}, nil
	})
	// hotspot is a Gaussian blob on a Keplerian orbit of radius r0.
	r.Register("hotspot", map[string]float64{"r0": 6, "width": 1, "phi0": 0}, func(a map[string]float64) (Profile, error) {
		r0, w, phi0 := a["r0"], a["width"], a["phi0"]
		if w <= 0 || r0 <= 0 {
			return nil, fmt.Errorf("hotspot: r0 and width must be positive")
		}
		omega := math.Pow(r0, -1.5)
		return func(p Point) float64 {
			phis := phi0 + omega*p.T
			d2 := p.R*p.R + r0*r0 - 2*p.R*r0*math.Cos(p.Phi-phis)
			return math.Exp(-0.5 * d2 / (w * w))
		}, nil
	})

	return r
}

// Register adds or replaces a profile.
func (r *Registry) Register(name string, defaults map[string]float64, f Factory) {
	r.profiles[name] = f
	r.defaults[name] = defaults
}

// Get builds the named profile.
func (r *Registry) Get(name string, args map[string]float64) (Profile, error) {
	fn, ok := r.profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile: %s", name)
	}
	merged := make(map[string]float64, len(r.defaults[name]))
	for k, v := range r.defaults[name] {
		merged[k] = v
	}
	for k, v := range args {
		if _, known := merged[k]; !known {
			return nil, fmt.Errorf("profile %s: unknown argument %q", name, k)
		}
		merged[k] = v
	}
	return fn(merged)
}

// Defaults returns a copy of the named profile's default arguments.
func (r *Registry) Defaults(name string) map[string]float64 {
	out := make(map[string]float64, len(r.defaults[name]))
	for k, v := range r.defaults[name] {
		out[k] = v
	}
	return out
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
