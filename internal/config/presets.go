package config

import "sort"

var Presets = map[string]*Config{
	"m87": {
		Spin: 0.9, Inclination: 17, MoD: 1, FOV: 16, Npix: 128, Nmax: 2, AdaptiveFactor: 2,
		Axisymmetric: true, Stationary: true,
		Fluid: FluidConfig{Boost: 0.3, Chi: -150, Iota: 45, Spec: 1},
		Image: ImageConfig{Profile: "power", OpticalDepth: "thin", H: 1, Flux: 0.6, PolFrac: 0.5, EVPARotation: 0, PolFlux: true},
	},
	"schwarzschild": {
		Spin: 0, Inclination: 60, MoD: 1, FOV: 20, Npix: 96, Nmax: 2, AdaptiveFactor: 1,
		Axisymmetric: true, Stationary: true,
		Fluid: FluidConfig{Boost: 0, Chi: 0, Iota: 0, Spec: 1},
		Image: ImageConfig{Profile: "gaussian_ring", OpticalDepth: "thick", H: 1, Flux: 1, PolFrac: 1, PolFlux: true},
	},
	"edge_on": {
		Spin: 0.94, Inclination: 85, MoD: 1, FOV: 24, Npix: 96, Nmax: 2, AdaptiveFactor: 1,
		Axisymmetric: false, Stationary: true,
		Fluid: FluidConfig{Boost: 0.5, Chi: -90, Iota: 30, Spec: 1},
		Image: ImageConfig{Profile: "spiral", OpticalDepth: "varying", H: 0.5, Flux: 1, PolFrac: 0.7, PolFlux: true},
	},
	"slowlight": {
		Spin: 0.5, Inclination: 30, MoD: 1, FOV: 20, Npix: 64, Nmax: 1, AdaptiveFactor: 1,
		Axisymmetric: false, Stationary: false, ObserverDistance: FiniteObserver,
		Fluid: FluidConfig{Boost: 0.3, Chi: -90, Iota: 45, Spec: 1},
		Image: ImageConfig{Profile: "hotspot", OpticalDepth: "thin", H: 1, Flux: 1, PolFrac: 1, PolFlux: true, Times: []float64{0, 10, 20, 30}},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
