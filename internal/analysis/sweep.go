package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/san-kum/ballsim/internal/sim"
)

type SweepPoint struct {
	Param float64
	Value float64
	Err   error
}

// Sweep runs one simulation per parameter value in [lo, hi] and records
// measure of each result. Runs that fail keep their error and a zero value.
func Sweep(
	ctx context.Context,
	lo, hi float64,
	steps int,
	run func(ctx context.Context, param float64) (*sim.Result, error),
	measure func(*sim.Result) float64,
) []SweepPoint {
	if steps < 2 {
		steps = 2
	}
	step := (hi - lo) / float64(steps-1)

	points := make([]SweepPoint, 0, steps)
	for i := 0; i < steps; i++ {
		if ctx.Err() != nil {
			break
		}
		p := SweepPoint{Param: lo + float64(i)*step}
		result, err := run(ctx, p.Param)
		if err != nil {
			p.Err = err
		} else {
			p.Value = measure(result)
		}
		points = append(points, p)
	}
	return points
}

// SweepToASCII draws one bar per point, scaled to width.
func SweepToASCII(points []SweepPoint, width int) string {
	peak := 0.0
	for _, p := range points {
		peak = max(peak, p.Value)
	}
	if peak == 0 {
		peak = 1
	}

	var sb strings.Builder
	for _, p := range points {
		if p.Err != nil {
			fmt.Fprintf(&sb, "%10.3g │ error: %v\n", p.Param, p.Err)
			continue
		}
		bar := int(p.Value / peak * float64(width))
		fmt.Fprintf(&sb, "%10.3g │%s %.4g\n", p.Param, strings.Repeat("█", max(bar, 0)), p.Value)
	}
	return sb.String()
}
