package metrics

import (
	"math"

	"github.com/san-kum/kerrtrace/internal/geodesic"
	"github.com/san-kum/kerrtrace/internal/kerr"
)

// OrderStats summarises the crossings of one order.
type OrderStats struct {
	N            int
	Dim          int
	Valid        int
	Fraction     float64 // valid / pixels
	MeanRadius   float64
	MinRadius    float64
	MaxRadius    float64
	MeanRedshift float64
	Cases        map[geodesic.Case]int
}

// Orders reports per-order crossing statistics over valid pixels.
func Orders(res *kerr.Result) []OrderStats {
	out := make([]OrderStats, len(res.Orders))
	for k := range res.Orders {
		out[k] = order(&res.Orders[k])
	}
	return out
}

func order(s *kerr.SubImage) OrderStats {
	st := OrderStats{
		N:         s.N,
		Dim:       s.Grid.Dim,
		MinRadius: math.Inf(1),
		MaxRadius: math.Inf(-1),
		Cases:     make(map[geodesic.Case]int),
	}
	var sumR, sumG float64
	for i, ok := range s.Valid {
		if !ok {
			continue
		}
		st.Valid++
		sumR += s.R[i]
		sumG += s.Redshift[i]
		st.MinRadius = math.Min(st.MinRadius, s.R[i])
		st.MaxRadius = math.Max(st.MaxRadius, s.R[i])
		if i < len(s.Cases) {
			st.Cases[s.Cases[i]]++
		}
	}
	if n := len(s.Valid); n > 0 {
		st.Fraction = float64(st.Valid) / float64(n)
	}
	if st.Valid == 0 {
		st.MinRadius, st.MaxRadius = 0, 0
		return st
	}
	st.MeanRadius = sumR / float64(st.Valid)
	st.MeanRedshift = sumG / float64(st.Valid)
	return st
}
