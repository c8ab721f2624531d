// Package config reads and writes run configurations as YAML and converts
// them into engine and render parameters.
package config

import (
	"fmt"
	"math"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/kerrtrace/internal/emission"
	"github.com/san-kum/kerrtrace/internal/kerr"
	"github.com/san-kum/kerrtrace/internal/render"
	"github.com/san-kum/kerrtrace/internal/screen"
)

const (
	DefaultSpin        = 0.9
	DefaultInclination = 17.0
	DefaultMoD         = 1.0
	DefaultFOV         = 16.0
	DefaultNpix        = 64
	DefaultNmax        = 2
	DefaultFactor      = 1
	DefaultBoost       = 0.3
	DefaultChi         = -150.0
	DefaultIota        = 45.0
	DefaultSpec        = 1.0
	DefaultProfile     = "power"
	// FiniteObserver replaces an observer at infinity for time-dependent runs.
	FiniteObserver = 1e4
)

// Config is the on-disk form of a run. Angles are in degrees.
type Config struct {
	Spin             float64     `yaml:"spin"`
	Inclination      float64     `yaml:"inclination"`
	MoD              float64     `yaml:"mod"`
	FOV              float64     `yaml:"fov"`
	Npix             int         `yaml:"npix"`
	Nmax             int         `yaml:"nmax"`
	AdaptiveFactor   int         `yaml:"adaptive_factor"`
	Axisymmetric     bool        `yaml:"axisymmetric"`
	Stationary       bool        `yaml:"stationary"`
	ObserverDistance float64     `yaml:"observer_distance,omitempty"`
	Fluid            FluidConfig `yaml:"fluid"`
	Image            ImageConfig `yaml:"image"`
}

type FluidConfig struct {
	Boost      float64  `yaml:"boost"`
	Chi        float64  `yaml:"chi"`
	FieldAngle *float64 `yaml:"field_angle,omitempty"`
	Iota       float64  `yaml:"iota"`
	Spec       float64  `yaml:"spec"`
	AlphaZeta  *float64 `yaml:"alpha_zeta,omitempty"`
	ComputeV   bool     `yaml:"compute_v"`
}

type ImageConfig struct {
	Profile      string             `yaml:"profile"`
	ProfileArgs  map[string]float64 `yaml:"profile_args,omitempty"`
	OpticalDepth string             `yaml:"optical_depth"`
	H            float64            `yaml:"h"`
	Flux         float64            `yaml:"flux"`
	PolFrac      float64            `yaml:"pol_frac"`
	EVPARotation float64            `yaml:"evpa_rotation"`
	PolFlux      bool               `yaml:"pol_flux"`
	Times        []float64          `yaml:"times,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Spin:           DefaultSpin,
		Inclination:    DefaultInclination,
		MoD:            DefaultMoD,
		FOV:            DefaultFOV,
		Npix:           DefaultNpix,
		Nmax:           DefaultNmax,
		AdaptiveFactor: DefaultFactor,
		Axisymmetric:   true,
		Stationary:     true,
		Fluid: FluidConfig{
			Boost: DefaultBoost,
			Chi:   DefaultChi,
			Iota:  DefaultIota,
			Spec:  DefaultSpec,
		},
		Image: ImageConfig{
			Profile:      DefaultProfile,
			OpticalDepth: string(render.Thin),
			H:            1,
			Flux:         1,
			PolFrac:      1,
			PolFlux:      true,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy, so presets can be modified safely.
func (c *Config) Clone() *Config {
	out := *c
	if c.Fluid.FieldAngle != nil {
		v := *c.Fluid.FieldAngle
		out.Fluid.FieldAngle = &v
	}
	if c.Fluid.AlphaZeta != nil {
		v := *c.Fluid.AlphaZeta
		out.Fluid.AlphaZeta = &v
	}
	if c.Image.ProfileArgs != nil {
		out.Image.ProfileArgs = make(map[string]float64, len(c.Image.ProfileArgs))
		for k, v := range c.Image.ProfileArgs {
			out.Image.ProfileArgs[k] = v
		}
	}
	out.Image.Times = append([]float64(nil), c.Image.Times...)
	return &out
}

// Normalize applies the coercions a run needs to be evaluable and logs a
// warning for each one. A time-dependent run is never axisymmetric, needs
// a finite observer, and a run without higher orders is never refined.
func (c *Config) Normalize(log logrus.FieldLogger) {
	if !c.Stationary && c.Axisymmetric {
		log.WithField("axisymmetric", true).Warn("non-stationary run forces axisymmetric = false")
		c.Axisymmetric = false
	}
	if !c.Stationary && (c.ObserverDistance <= 0 || math.IsInf(c.ObserverDistance, 1)) {
		log.WithField("observer_distance", FiniteObserver).Warn("non-stationary run needs a finite observer")
		c.ObserverDistance = FiniteObserver
	}
	if c.Nmax == 0 && c.AdaptiveFactor != 1 {
		log.WithField("adaptive_factor", c.AdaptiveFactor).Warn("nmax = 0 forces adaptive_factor = 1")
		c.AdaptiveFactor = 1
	}
}

// Kerr converts the run into an engine configuration.
func (c *Config) Kerr() kerr.Config {
	return kerr.Config{
		Spin:             c.Spin,
		Inclination:      radians(c.Inclination),
		MoD:              c.MoD,
		Nmax:             c.Nmax,
		AdaptiveFactor:   c.AdaptiveFactor,
		Axisymmetric:     c.Axisymmetric,
		Stationary:       c.Stationary,
		ObserverDistance: c.ObserverDistance,
		Fluid: emission.Fluid{
			Boost:      c.Fluid.Boost,
			Chi:        radians(c.Fluid.Chi),
			FieldAngle: radiansPtr(c.Fluid.FieldAngle),
			Iota:       radians(c.Fluid.Iota),
			Spec:       c.Fluid.Spec,
			AlphaZeta:  c.Fluid.AlphaZeta,
			ComputeV:   c.Fluid.ComputeV,
		},
	}
}

// Grid returns the base screen grid. Npix < 1 is an error.
func (c *Config) Grid() (screen.Grid, error) {
	if c.Npix < 1 {
		return screen.Grid{}, &kerr.ConfigError{Field: "npix", Value: c.Npix, Wrapped: kerr.ErrInvalidConfig}
	}
	if !(c.FOV > 0) || math.IsInf(c.FOV, 1) {
		return screen.Grid{}, &kerr.ConfigError{Field: "fov", Value: c.FOV, Wrapped: kerr.ErrInvalidConfig}
	}
	return screen.New(c.FOV, c.Npix), nil
}

// Render resolves the image section against a profile registry.
func (c *Config) Render(reg *render.Registry) (render.Params, error) {
	depth, err := render.ParseOpticalDepth(c.Image.OpticalDepth)
	if err != nil {
		return render.Params{}, err
	}
	profile, err := reg.Get(c.Image.Profile, c.Image.ProfileArgs)
	if err != nil {
		return render.Params{}, err
	}
	return render.Params{
		Profile:      profile,
		Spec:         c.Fluid.Spec,
		OpticalDepth: depth,
		H:            c.Image.H,
		Flux:         c.Image.Flux,
		PolFrac:      c.Image.PolFrac,
		EVPARotation: radians(c.Image.EVPARotation),
		PolFlux:      c.Image.PolFlux,
		Times:        c.Image.Times,
	}, nil
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func radiansPtr(deg *float64) *float64 {
	if deg == nil {
		return nil
	}
	r := radians(*deg)
	return &r
}
