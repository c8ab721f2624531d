package kerr_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/kerrtrace/internal/emission"
	"github.com/san-kum/kerrtrace/internal/kerr"
	"github.com/san-kum/kerrtrace/internal/screen"
)

func baseConfig() kerr.Config {
	return kerr.Config{
		Spin:           0.9,
		Inclination:    17 * math.Pi / 180,
		MoD:            1,
		Nmax:           2,
		AdaptiveFactor: 1,
		Axisymmetric:   true,
		Stationary:     true,
		Fluid: emission.Fluid{
			Boost: 0.3,
			Chi:   -150 * math.Pi / 180,
			Iota:  math.Pi / 3,
			Spec:  1,
		},
	}
}

func allMaps(s kerr.SubImage) map[string][]float64 {
	return map[string][]float64{
		"r": s.R, "phi": s.Phi, "t": s.T,
		"I": s.I, "Q": s.Q, "U": s.U, "V": s.V,
		"redshift": s.Redshift, "lp": s.LP,
	}
}

func run(cfg kerr.Config, grid screen.Grid) *kerr.Result {
	eng, err := kerr.New(cfg, nil)
	Expect(err).NotTo(HaveOccurred())
	res, err := eng.Run(context.Background(), grid)
	Expect(err).NotTo(HaveOccurred())
	return res
}

var _ = Describe("Engine", func() {
	Context("flat sampling at a=0.9, i=17°", Ordered, func() {
		var res *kerr.Result

		BeforeAll(func() {
			res = run(baseConfig(), screen.New(16, 64))
		})

		It("returns one sub-image per order", func() {
			Expect(res.Orders).To(HaveLen(3))
			for n, s := range res.Orders {
				Expect(s.N).To(Equal(n))
				Expect(s.Grid.Dim).To(Equal(64))
				Expect(s.R).To(HaveLen(64 * 64))
			}
		})

		It("has non-empty, strictly shrinking sub-images", func() {
			prev := math.MaxInt
			for _, s := range res.Orders {
				c := s.Count()
				Expect(c).To(BeNumerically(">", 0))
				Expect(c).To(BeNumerically("<", prev))
				prev = c
			}
		})

		It("zeroes every masked entry", func() {
			for _, s := range res.Orders {
				for name, m := range allMaps(s) {
					for i, ok := range s.Valid {
						if !ok {
							Expect(m[i]).To(BeZero(), "%s at n=%d pixel %d", name, s.N, i)
						}
					}
				}
			}
		})

		It("lands valid rays outside the horizon with positive redshift", func() {
			rp := 1 + math.Sqrt(1-0.81)
			for _, s := range res.Orders {
				for i, ok := range s.Valid {
					if ok {
						Expect(s.R[i]).To(BeNumerically(">=", rp-1e-6))
						Expect(s.Redshift[i]).To(BeNumerically(">", 0))
					}
				}
			}
		})
	})

	Context("adaptive sampling", func() {
		It("refines each order by the adaptive factor", func() {
			cfg := baseConfig()
			cfg.AdaptiveFactor = 2
			res := run(cfg, screen.New(16, 32))

			Expect(res.Orders).To(HaveLen(3))
			for n, s := range res.Orders {
				Expect(s.Grid.Dim).To(Equal(32 << n))
				Expect(s.Count()).To(BeNumerically(">", 0))
			}
		})
	})

	Context("near-zero spin", func() {
		It("produces only finite values", func() {
			cfg := baseConfig()
			cfg.Spin = 1e-6
			res := run(cfg, screen.New(20, 48))
			for _, s := range res.Orders {
				for name, m := range allMaps(s) {
					for i, v := range m {
						Expect(math.IsNaN(v) || math.IsInf(v, 0)).To(BeFalse(), "%s at n=%d pixel %d", name, s.N, i)
					}
				}
			}
		})
	})

	Context("non-stationary with a finite observer", func() {
		It("computes finite azimuths and times", func() {
			cfg := baseConfig()
			cfg.Spin = 0.5
			cfg.Nmax = 1
			cfg.Axisymmetric = false
			cfg.Stationary = false
			cfg.ObserverDistance = 1e4
			res := run(cfg, screen.New(20, 24))

			seen := 0
			for _, s := range res.Orders {
				for i, ok := range s.Valid {
					if !ok {
						continue
					}
					seen++
					Expect(math.IsNaN(s.T[i])).To(BeFalse())
					Expect(math.IsInf(s.Phi[i], 0)).To(BeFalse())
				}
			}
			Expect(seen).To(BeNumerically(">", 0))
		})
	})

	It("stops when the context is cancelled", func() {
		eng, err := kerr.New(baseConfig(), nil)
		Expect(err).NotTo(HaveOccurred())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = eng.Run(ctx, screen.New(16, 16))
		Expect(err).To(MatchError(context.Canceled))
	})

	It("rejects an empty grid", func() {
		eng, err := kerr.New(baseConfig(), nil)
		Expect(err).NotTo(HaveOccurred())
		_, err = eng.Run(context.Background(), screen.Grid{})
		Expect(err).To(MatchError(kerr.ErrEmptyGrid))
	})
})

var _ = Describe("Config", func() {
	DescribeTable("validation",
		func(mutate func(*kerr.Config), want error) {
			cfg := baseConfig()
			mutate(&cfg)
			err := cfg.Validate()
			if want == nil {
				Expect(err).NotTo(HaveOccurred())
				return
			}
			Expect(err).To(MatchError(want))
			var ce *kerr.ConfigError
			Expect(err).To(BeAssignableToTypeOf(ce))
		},
		Entry("default", func(c *kerr.Config) {}, nil),
		Entry("zero spin", func(c *kerr.Config) { c.Spin = 0 }, nil),
		Entry("extremal spin", func(c *kerr.Config) { c.Spin = 1 }, kerr.ErrSpinBounds),
		Entry("negative spin", func(c *kerr.Config) { c.Spin = -0.1 }, kerr.ErrSpinBounds),
		Entry("face-on", func(c *kerr.Config) { c.Inclination = 0 }, kerr.ErrInvalidConfig),
		Entry("past edge-on", func(c *kerr.Config) { c.Inclination = 2 }, kerr.ErrInvalidConfig),
		Entry("zero MoD", func(c *kerr.Config) { c.MoD = 0 }, kerr.ErrInvalidConfig),
		Entry("negative nmax", func(c *kerr.Config) { c.Nmax = -1 }, kerr.ErrInvalidConfig),
		Entry("zero adaptive factor", func(c *kerr.Config) { c.AdaptiveFactor = 0 }, kerr.ErrInvalidConfig),
		Entry("time at infinity", func(c *kerr.Config) { c.Stationary = false }, kerr.ErrSingularObserver),
		Entry("time at finite distance", func(c *kerr.Config) {
			c.Stationary = false
			c.Axisymmetric = false
			c.ObserverDistance = 1e4
		}, nil),
		Entry("luminal boost", func(c *kerr.Config) { c.Fluid.Boost = 1 }, emission.ErrBoost),
	)

	It("names the offending field", func() {
		cfg := baseConfig()
		cfg.Nmax = -3
		err := cfg.Validate()
		Expect(err.Error()).To(ContainSubstring("nmax = -3"))
	})
})
