package kerr

import (
	"math"

	"github.com/san-kum/kerrtrace/internal/emission"
	"github.com/san-kum/kerrtrace/internal/geodesic"
)

// Config fixes everything the engine needs for one image.
type Config struct {
	Spin float64
	// Inclination of the observer from the spin axis, in radians.
	Inclination float64
	// MoD is the angular size of M in the units of the screen grid.
	MoD            float64
	Nmax           int
	AdaptiveFactor int
	Axisymmetric   bool
	Stationary     bool
	// ObserverDistance in units of M; zero means infinity.
	ObserverDistance float64
	Fluid            emission.Fluid
}

// Validate rejects configurations the engine cannot evaluate.
func (c Config) Validate() error {
	switch {
	case math.IsNaN(c.Spin) || c.Spin < 0 || c.Spin >= 1:
		return &ConfigError{Field: "spin", Value: c.Spin, Wrapped: ErrSpinBounds}
	case !(c.Inclination > 0 && c.Inclination <= math.Pi/2):
		return &ConfigError{Field: "inclination", Value: c.Inclination, Wrapped: ErrInvalidConfig}
	case !(c.MoD > 0) || math.IsInf(c.MoD, 1):
		return &ConfigError{Field: "mod", Value: c.MoD, Wrapped: ErrInvalidConfig}
	case c.Nmax < 0:
		return &ConfigError{Field: "nmax", Value: c.Nmax, Wrapped: ErrInvalidConfig}
	case c.AdaptiveFactor < 1:
		return &ConfigError{Field: "adaptive_factor", Value: c.AdaptiveFactor, Wrapped: ErrInvalidConfig}
	case c.ObserverDistance < 0 || math.IsNaN(c.ObserverDistance):
		return &ConfigError{Field: "observer_distance", Value: c.ObserverDistance, Wrapped: ErrInvalidConfig}
	case !c.Stationary && !c.finiteObserver():
		return &ConfigError{Field: "observer_distance", Value: c.ObserverDistance, Wrapped: ErrSingularObserver}
	}
	if err := c.Fluid.Validate(); err != nil {
		return &ConfigError{Field: "fluid.boost", Value: c.Fluid.Boost, Wrapped: err}
	}
	return nil
}

func (c Config) finiteObserver() bool {
	return c.ObserverDistance > 0 && !math.IsInf(c.ObserverDistance, 1)
}

// Params returns the per-ray parameters of the geodesic solver.
func (c Config) Params() geodesic.Params {
	return geodesic.Params{
		Spin:             c.Spin,
		Inclination:      c.Inclination,
		ObserverDistance: c.ObserverDistance,
		Mode: geodesic.Mode{
			Axisymmetric: c.Axisymmetric,
			Stationary:   c.Stationary,
		},
	}
}
