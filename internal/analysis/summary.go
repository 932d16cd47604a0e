package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/ballsim/internal/sim"
)

type Summary struct {
	Frames       int
	DurationMs   float64
	MeanCount    float64
	PeakCount    int
	MeanEnergy   float64
	EnergyStdDev float64
	PeakMomentum float64
	Contacts     int
	WallHits     int
	// Rates are per simulated second.
	ContactRate float64
	WallRate    float64
	// EnergyPeriod is the dominant period of the energy series in ms.
	EnergyPeriod float64
}

func Summarize(frames []sim.Frame) Summary {
	var s Summary
	if len(frames) == 0 {
		return s
	}

	s.Frames = len(frames)
	s.DurationMs = frames[len(frames)-1].Time - frames[0].Time

	energy := make([]float64, len(frames))
	for i, f := range frames {
		energy[i] = f.Energy
		s.MeanCount += float64(f.Count)
		s.PeakCount = max(s.PeakCount, f.Count)
		s.MeanEnergy += f.Energy
		s.PeakMomentum = math.Max(s.PeakMomentum, f.Momentum)
		s.Contacts += f.Contacts
		s.WallHits += f.WallHits
	}
	n := float64(len(frames))
	s.MeanCount /= n
	s.MeanEnergy /= n

	for _, e := range energy {
		s.EnergyStdDev += (e - s.MeanEnergy) * (e - s.MeanEnergy)
	}
	s.EnergyStdDev = math.Sqrt(s.EnergyStdDev / n)

	if s.DurationMs > 0 {
		s.ContactRate = float64(s.Contacts) / (s.DurationMs / 1000)
		s.WallRate = float64(s.WallHits) / (s.DurationMs / 1000)
		if len(frames) > 1 {
			s.EnergyPeriod = DominantPeriod(energy, s.DurationMs/float64(len(frames)-1))
		}
	}
	return s
}

func (s Summary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "frames:         %d (%.1f s)\n", s.Frames, s.DurationMs/1000)
	fmt.Fprintf(&sb, "balls:          mean %.1f, peak %d\n", s.MeanCount, s.PeakCount)
	fmt.Fprintf(&sb, "kinetic energy: mean %.4g, std %.4g\n", s.MeanEnergy, s.EnergyStdDev)
	fmt.Fprintf(&sb, "momentum:       peak %.4g\n", s.PeakMomentum)
	fmt.Fprintf(&sb, "contacts:       %d (%.1f/s)\n", s.Contacts, s.ContactRate)
	fmt.Fprintf(&sb, "wall hits:      %d (%.1f/s)\n", s.WallHits, s.WallRate)
	if s.EnergyPeriod > 0 {
		fmt.Fprintf(&sb, "energy period:  %.0f ms\n", s.EnergyPeriod)
	}
	return sb.String()
}
