package export

import (
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/san-kum/ballsim/internal/dynamo"
	"github.com/san-kum/ballsim/internal/sim"
)

func wellFormed(t *testing.T, doc string) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		_, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return
			}
			t.Fatalf("malformed svg: %v", err)
		}
	}
}

func TestSnapshotToSVG(t *testing.T) {
	balls := []sim.Snapshot{
		{X: 100, Y: 50, CurrentRadius: 20, Color: dynamo.RGB(255, 0, 0)},
		{X: 300, Y: 50, CurrentRadius: 0, Color: dynamo.RGB(0, 255, 0)},
	}
	svg := SnapshotToSVG(balls, dynamo.Bounds{Width: 400, Height: 200})

	wellFormed(t, svg)
	if !strings.Contains(svg, `fill="#c8d7ff"`) {
		t.Error("missing background color")
	}
	if !strings.Contains(svg, `stroke="#000000" stroke-width="3"`) {
		t.Error("missing black outline")
	}
	if !strings.Contains(svg, `<circle cx="100.0" cy="50.0" r="20.0" fill="#ff0000"/>`) {
		t.Errorf("missing ball circle:\n%s", svg)
	}
	if strings.Count(svg, "<circle") != 1 {
		t.Error("invisible balls should be skipped")
	}
}

func TestEnergyToSVG(t *testing.T) {
	frames := []sim.Frame{{Time: 0, Energy: 1}, {Time: 10, Energy: 2}, {Time: 20, Energy: 1.5}}
	svg := EnergyToSVG(frames, 200, 100)

	wellFormed(t, svg)
	if strings.Count(svg, " L") != 2 {
		t.Errorf("expected 2 line segments:\n%s", svg)
	}
}

func TestSeriesToSVGDegenerate(t *testing.T) {
	if SeriesToSVG([]float64{1}, []float64{1}, 10, 10, "#fff") != "" {
		t.Error("a single point has no line")
	}
	if SeriesToSVG([]float64{1, 2}, []float64{1}, 10, 10, "#fff") != "" {
		t.Error("mismatched series should render nothing")
	}
	svg := SeriesToSVG([]float64{0, 1}, []float64{5, 5}, 10, 10, "#fff")
	if strings.Contains(svg, "NaN") {
		t.Error("flat series must not divide by zero")
	}
}
