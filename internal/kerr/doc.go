// Package kerr is the entry point of the ray tracer. It validates a run
// configuration, traces every screen pixel to its equatorial crossings
// (refining higher orders adaptively when asked), and evaluates the
// polarized emission at each crossing.
//
//   - [Config]: spacetime, observer, sampling and fluid parameters
//   - [Engine]: validated configuration bound to a logger
//   - [Result]: one [SubImage] per order n, each on its own grid
//
// # Example
//
//	eng, err := kerr.New(cfg, log)
//	res, err := eng.Run(ctx, screen.New(fov, 128))
//	for _, s := range res.Orders {
//		fmt.Println(s.N, s.Count())
//	}
//
// Pixels without a crossing of a given order are masked: Valid is false and
// every numeric field is exactly zero.
package kerr
