package kerr

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/kerrtrace/internal/adaptive"
	"github.com/san-kum/kerrtrace/internal/emission"
	"github.com/san-kum/kerrtrace/internal/geodesic"
	"github.com/san-kum/kerrtrace/internal/screen"
)

// SubImage holds the crossings of order N and their emission on Grid.
type SubImage struct {
	N     int
	Grid  screen.Grid
	Valid []bool
	Cases []geodesic.Case

	R, Phi, T []float64

	I, Q, U, V []float64
	Redshift   []float64
	LP         []float64
}

// Count returns the number of valid pixels.
func (s *SubImage) Count() int {
	c := 0
	for _, v := range s.Valid {
		if v {
			c++
		}
	}
	return c
}

// Result is the output of one engine run.
type Result struct {
	Config  Config
	Base    screen.Grid
	Orders  []SubImage
	Elapsed time.Duration
}

// Engine runs validated configurations.
type Engine struct {
	cfg Config
	log logrus.FieldLogger
}

// New validates cfg. A nil logger discards output.
func New(cfg Config, log logrus.FieldLogger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Engine{cfg: cfg, log: log}, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// Run traces every pixel of base and evaluates the emission of each order.
func (e *Engine) Run(ctx context.Context, base screen.Grid) (*Result, error) {
	if base.Size() == 0 {
		return nil, ErrEmptyGrid
	}
	start := time.Now()
	cfg := e.cfg

	log := e.log.WithFields(logrus.Fields{
		"spin": cfg.Spin,
		"npix": base.Dim,
		"nmax": cfg.Nmax,
	})
	log.Debug("tracing")

	layers, err := adaptive.Trace(ctx, adaptive.Plan{
		Params: cfg.Params(),
		Base:   base,
		Scale:  cfg.MoD,
		Factor: cfg.AdaptiveFactor,
		Nmax:   cfg.Nmax,
	})
	if err != nil {
		return nil, fmt.Errorf("trace: %w", err)
	}

	res := &Result{Config: cfg, Base: base, Orders: make([]SubImage, len(layers))}
	for k, l := range layers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		st, err := emission.Evaluate(cfg.Spin, cfg.Inclination, cfg.Fluid, emission.Input{
			R:          l.R,
			SignPr:     l.SignPr,
			SignPtheta: l.SignPtheta,
			Lam:        l.Lam,
			Eta:        l.Eta,
			Alpha:      l.Alpha,
			Beta:       l.Beta,
			Valid:      l.Valid,
		})
		if err != nil {
			return nil, fmt.Errorf("emission n=%d: %w", l.N, err)
		}
		res.Orders[k] = SubImage{
			N:        l.N,
			Grid:     l.Grid,
			Valid:    l.Valid,
			Cases:    l.Cases,
			R:        l.R,
			Phi:      l.Phi,
			T:        l.T,
			I:        st.I,
			Q:        st.Q,
			U:        st.U,
			V:        st.V,
			Redshift: st.Redshift,
			LP:       st.LP,
		}
		log.WithFields(logrus.Fields{
			"n":     l.N,
			"dim":   l.Grid.Dim,
			"valid": res.Orders[k].Count(),
		}).Debug("order traced")
	}
	if k := res.Orders[0]; len(k.Cases) > 0 {
		log.WithFields(casePopulation(k.Cases)).Debug("case populations")
	}

	res.Elapsed = time.Since(start)
	log.WithField("elapsed", res.Elapsed).Info("run complete")
	return res, nil
}

func casePopulation(cases []geodesic.Case) logrus.Fields {
	counts := map[geodesic.Case]int{}
	for _, c := range cases {
		counts[c]++
	}
	f := logrus.Fields{}
	for _, c := range []geodesic.Case{geodesic.Case1, geodesic.Case2, geodesic.Case3, geodesic.Unsupported} {
		f[c.String()] = counts[c]
	}
	return f
}
