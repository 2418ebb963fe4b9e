package weld

import "arcweld/gcode"
import "fmt"
import "math"
import "testing"

// arcSegments builds n linear segments tracing a counterclockwise arc
// of the given radius around the origin, starting at angle 0, with
// extrusion proportional to travel.
func arcSegments(n int, radius, sweep float64) []Segment {
	segs := make([]Segment, 0, n)
	pos := func(i int) gcode.Position {
		a := sweep * float64(i) / float64(n)
		return gcode.Position{
			X: radius * math.Cos(a),
			Y: radius * math.Sin(a),
			E: 0.01 * float64(i),
			F: 1800,
		}
	}
	for i := 0; i < n; i++ {
		to := pos(i + 1)
		segs = append(segs, Segment{
			From:             pos(i),
			To:               to,
			Raw:              fmt.Sprintf("G1 X%.4f Y%.4f E%.5f", to.X, to.Y, to.E),
			HasE:             true,
			HasF:             i == 0,
			XYZDecimals:      4,
			EDecimals:        5,
			ExtruderAbsolute: true,
		})
	}
	return segs
}

func collect(f *Fitter, segs []Segment) []Emission {
	var all []Emission
	for _, s := range segs {
		all = append(all, f.Add(s)...)
	}
	return append(all, f.Finish()...)
}

func countArcs(emissions []Emission) (arcs, raw int) {
	for _, em := range emissions {
		if em.Arc != nil {
			arcs++
		} else {
			raw += len(em.Sources)
		}
	}
	return arcs, raw
}

func TestFitterWeldsArc(t *testing.T) {
	cfg := DefaultConfig()
	f := NewFitter(&cfg)

	emissions := collect(f, arcSegments(16, 10, math.Pi/2))
	arcs, raw := countArcs(emissions)
	if arcs != 1 || raw != 0 {
		t.Fatalf("got %d arcs and %d raw lines, want 1 arc", arcs, raw)
	}

	arc := emissions[len(emissions)-1].Arc
	if arc.Clockwise {
		t.Error("counterclockwise arc rendered as G2")
	}
	if math.Abs(arc.X) > 1e-6 || math.Abs(arc.Y-10) > 1e-6 {
		t.Errorf("arc endpoint = (%g, %g), want (0, 10)", arc.X, arc.Y)
	}
	// I/J point from the start (10, 0) back to the center (0, 0).
	if math.Abs(arc.I+10) > 1e-6 || math.Abs(arc.J) > 1e-6 {
		t.Errorf("arc offset = (%g, %g), want (-10, 0)", arc.I, arc.J)
	}
	if len(emissions[len(emissions)-1].Sources) != 16 {
		t.Errorf("arc replaces %d lines, want 16", len(emissions[len(emissions)-1].Sources))
	}
}

func TestFitterCollinearStaysRaw(t *testing.T) {
	cfg := DefaultConfig()
	f := NewFitter(&cfg)

	segs := make([]Segment, 0, 10)
	for i := 0; i < 10; i++ {
		from := gcode.Position{X: float64(i), E: 0.01 * float64(i), F: 1800}
		to := gcode.Position{X: float64(i + 1), E: 0.01 * float64(i+1), F: 1800}
		segs = append(segs, Segment{
			From: from, To: to,
			Raw:              fmt.Sprintf("G1 X%d", i+1),
			HasE:             true,
			ExtruderAbsolute: true,
		})
	}

	arcs, raw := countArcs(collect(f, segs))
	if arcs != 0 {
		t.Errorf("welded %d arcs from a straight line", arcs)
	}
	if raw != 10 {
		t.Errorf("replayed %d raw lines, want 10", raw)
	}
}

func TestFitterTooFewSegments(t *testing.T) {
	cfg := DefaultConfig()
	f := NewFitter(&cfg)

	arcs, raw := countArcs(collect(f, arcSegments(1, 10, math.Pi/16)))
	if arcs != 0 || raw != 1 {
		t.Errorf("got %d arcs and %d raw lines, want 0 arcs and 1 raw", arcs, raw)
	}
}

func TestFitterRadiusCeiling(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRadiusMM = 5
	f := NewFitter(&cfg)

	arcs, raw := countArcs(collect(f, arcSegments(16, 10, math.Pi/2)))
	if arcs != 0 {
		t.Errorf("welded %d arcs past the radius ceiling", arcs)
	}
	if raw != 16 {
		t.Errorf("replayed %d raw lines, want 16", raw)
	}
}

func TestFitterRetractionSplits(t *testing.T) {
	cfg := DefaultConfig()
	f := NewFitter(&cfg)

	segs := arcSegments(8, 10, math.Pi/4)
	last := segs[len(segs)-1]
	retract := Segment{
		From:             last.To,
		To:               gcode.Position{X: last.To.X, Y: last.To.Y + 1, E: last.To.E - 0.5, F: 1800},
		Raw:              "G1 Y1 E-0.5",
		HasE:             true,
		ExtruderAbsolute: true,
	}

	var emissions []Emission
	for _, s := range segs {
		emissions = append(emissions, f.Add(s)...)
	}
	emissions = append(emissions, f.Add(retract)...)

	// The retraction forces the extrusion candidate out as an arc.
	arcs, _ := countArcs(emissions)
	if arcs != 1 {
		t.Fatalf("got %d arcs before the retraction, want 1", arcs)
	}
	if emissions[len(emissions)-1].Arc == nil && emissions[0].Arc == nil {
		t.Error("no arc emitted at the class boundary")
	}

	arcs, raw := countArcs(f.Finish())
	if arcs != 0 || raw != 1 {
		t.Errorf("retraction remainder: %d arcs, %d raw; want 0 arcs, 1 raw", arcs, raw)
	}
}

func TestFitterFeedrateChangeSplits(t *testing.T) {
	cfg := DefaultConfig()
	f := NewFitter(&cfg)

	segs := arcSegments(16, 10, math.Pi/2)
	for i := 8; i < 16; i++ {
		segs[i].From.F = 900
		segs[i].To.F = 900
	}

	arcs, _ := countArcs(collect(f, segs))
	if arcs != 2 {
		t.Errorf("got %d arcs across a feedrate change, want 2", arcs)
	}
}

func TestFitterFlushExcludesBreakingSegment(t *testing.T) {
	cfg := DefaultConfig()
	f := NewFitter(&cfg)

	segs := arcSegments(16, 10, math.Pi/2)
	// A tangent run leaving the circle at the same extrusion rate: it
	// cannot join the fit, but it is class and rate compatible.
	lastTo := segs[len(segs)-1].To
	ratio := 0.01 / (2 * 10 * math.Sin(math.Pi/128))
	var tangent []Segment
	from := lastTo
	for i := 0; i < 3; i++ {
		to := gcode.Position{X: from.X - 1, Y: from.Y, E: from.E + ratio, F: 1800}
		tangent = append(tangent, Segment{
			From: from, To: to,
			Raw:              fmt.Sprintf("G1 X%.4f Y%.4f E%.5f", to.X, to.Y, to.E),
			HasE:             true,
			ExtruderAbsolute: true,
		})
		from = to
	}

	emissions := collect(f, append(segs, tangent...))
	arcs, raw := countArcs(emissions)
	if arcs != 1 {
		t.Fatalf("got %d arcs, want 1", arcs)
	}
	if raw != 3 {
		t.Errorf("replayed %d raw lines, want the 3 tangent lines", raw)
	}

	// The arc covers exactly the on-circle segments.
	for _, em := range emissions {
		if em.Arc != nil && len(em.Sources) != 16 {
			t.Errorf("arc replaces %d lines, want 16", len(em.Sources))
		}
	}
}

func TestFitterExtrusionVarianceSplits(t *testing.T) {
	cfg := DefaultConfig()
	f := NewFitter(&cfg)

	segs := arcSegments(8, 10, math.Pi/4)
	// Double the extrusion rate on the last segment.
	segs[7].To.E = segs[7].From.E + 0.02

	emissions := collect(f, segs)
	for _, em := range emissions {
		if em.Arc != nil {
			for _, src := range em.Sources {
				if src == segs[7].Raw {
					t.Error("over-extruding segment welded into the arc")
				}
			}
		}
	}
}
