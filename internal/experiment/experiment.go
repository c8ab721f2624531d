// Package experiment runs a configuration end to end: normalisation, the
// engine, image composition and metrics.
package experiment

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/kerrtrace/internal/config"
	"github.com/san-kum/kerrtrace/internal/kerr"
	"github.com/san-kum/kerrtrace/internal/metrics"
	"github.com/san-kum/kerrtrace/internal/render"
	"github.com/san-kum/kerrtrace/internal/storage"
)

// Outcome is everything produced by one run.
type Outcome struct {
	Result  *kerr.Result
	Images  []render.Image
	Metrics []metrics.Sample
	Orders  []metrics.OrderStats
}

// Run converts the outcome into a storable run.
func (o *Outcome) Run(name string, cfg *config.Config) storage.Run {
	return storage.Run{
		Name:    name,
		Config:  cfg,
		Result:  o.Result,
		Images:  o.Images,
		Metrics: o.Metrics,
	}
}

type Experiment struct {
	cfg      *config.Config
	log      logrus.FieldLogger
	profiles *render.Registry
}

// New copies cfg so normalisation does not leak into the caller's value.
func New(cfg *config.Config, log logrus.FieldLogger) *Experiment {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Experiment{
		cfg:      cfg.Clone(),
		log:      log,
		profiles: render.NewRegistry(),
	}
}

// Config returns the normalised configuration after Run.
func (e *Experiment) Config() *config.Config { return e.cfg }

// Profiles exposes the emissivity registry so callers can add profiles.
func (e *Experiment) Profiles() *render.Registry { return e.profiles }

func (e *Experiment) Run(ctx context.Context) (*Outcome, error) {
	e.cfg.Normalize(e.log)

	grid, err := e.cfg.Grid()
	if err != nil {
		return nil, err
	}
	params, err := e.cfg.Render(e.profiles)
	if err != nil {
		return nil, fmt.Errorf("image settings: %w", err)
	}
	eng, err := kerr.New(e.cfg.Kerr(), e.log)
	if err != nil {
		return nil, err
	}

	res, err := eng.Run(ctx, grid)
	if err != nil {
		return nil, err
	}
	images, err := render.Compose(res, params)
	if err != nil {
		return nil, err
	}

	first := images[0]
	out := &Outcome{
		Result:  res,
		Images:  images,
		Metrics: metrics.Observe(first.I, first.Q, first.U, first.V, metrics.Standard()...),
		Orders:  metrics.Orders(res),
	}
	for _, s := range out.Metrics {
		e.log.WithField(s.Name, s.Value).Debug("image metric")
	}
	return out, nil
}
