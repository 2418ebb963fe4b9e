package straighten

import "arcweld/firmware"
import "arcweld/gcode"
import "arcweld/weld"
import "fmt"
import "math"
import "strings"
import "testing"

func marlin2(t *testing.T) *firmware.Firmware {
	t.Helper()
	fw, err := firmware.New(firmware.Marlin2, firmware.LatestVersion)
	if err != nil {
		t.Fatalf("firmware.New failed: %s", err)
	}
	return fw
}

func TestProcessExpandsArc(t *testing.T) {
	input := "G90\nG1 X10 Y0 F1800\nG3 X0 Y10 I-10 J0 E0.16\nM400\n"
	p := New(DefaultConfig(), marlin2(t), nil)

	var out strings.Builder
	stats, err := p.Process(strings.NewReader(input), int64(len(input)), &out)
	if err != nil {
		t.Fatalf("Process failed: %s", err)
	}

	if stats.ArcsInterpolated != 1 {
		t.Errorf("ArcsInterpolated = %d, want 1", stats.ArcsInterpolated)
	}
	if stats.SegmentsGenerated != 16 {
		t.Errorf("SegmentsGenerated = %d, want 16", stats.SegmentsGenerated)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 3+16 {
		t.Fatalf("got %d output lines, want 19:\n%s", len(lines), out.String())
	}
	if lines[0] != "G90" || lines[1] != "G1 X10 Y0 F1800" {
		t.Errorf("header not passed through: %q, %q", lines[0], lines[1])
	}
	if lines[len(lines)-1] != "M400" {
		t.Errorf("trailer = %q, want M400", lines[len(lines)-1])
	}

	// Every generated line is a linear move, and the last one lands on
	// the declared target.
	for _, text := range lines[2 : len(lines)-1] {
		l := gcode.ParseLine(text)
		if !l.IsCommand('G', 1) {
			t.Fatalf("generated line is not a G1: %q", text)
		}
		x, _ := l.Word('X')
		y, _ := l.Word('Y')
		if r := math.Hypot(x, y); math.Abs(r-10) > 0.01 {
			t.Errorf("generated point (%g, %g) off the circle by %g", x, y, math.Abs(r-10))
		}
	}
	last := gcode.ParseLine(lines[len(lines)-2])
	if x, _ := last.Word('X'); x != 0 {
		t.Errorf("final X = %g, want 0", x)
	}
	if y, _ := last.Word('Y'); y != 10 {
		t.Errorf("final Y = %g, want 10", y)
	}
	if e, _ := last.Word('E'); e != 0.16 {
		t.Errorf("final E = %g, want 0.16", e)
	}
}

func TestProcessRelativeExtruder(t *testing.T) {
	input := "G90\nM83\nG1 X10 Y0 F1800\nG3 X0 Y10 I-10 J0 E0.16\n"
	p := New(DefaultConfig(), marlin2(t), nil)

	var out strings.Builder
	if _, err := p.Process(strings.NewReader(input), int64(len(input)), &out); err != nil {
		t.Fatalf("Process failed: %s", err)
	}

	// In relative mode the E words are deltas; they must sum to the
	// arc's total extrusion.
	var total float64
	for _, text := range strings.Split(out.String(), "\n") {
		l := gcode.ParseLine(text)
		if l.IsCommand('G', 1) {
			if e, ok := l.Word('E'); ok {
				if e < 0 {
					t.Errorf("negative extrusion delta in %q", text)
				}
				total += e
			}
		}
	}
	if math.Abs(total-0.16) > 0.001 {
		t.Errorf("extrusion deltas sum to %g, want 0.16", total)
	}
}

func TestProcessDecoratesComments(t *testing.T) {
	input := "G1 X10 Y0 F1800\nG3 X0 Y10 I-10 J0\n"
	cfg := DefaultConfig()
	cfg.DecorateComments = true
	p := New(cfg, marlin2(t), nil)

	var out strings.Builder
	if _, err := p.Process(strings.NewReader(input), int64(len(input)), &out); err != nil {
		t.Fatalf("Process failed: %s", err)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if strings.Contains(lines[0], ";") {
		t.Errorf("passthrough line decorated: %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "; arc segment 1 of 16") {
		t.Errorf("first generated line = %q, want segment marker", lines[1])
	}
	if !strings.HasSuffix(lines[len(lines)-1], "; arc segment 16 of 16") {
		t.Errorf("last generated line = %q, want segment marker", lines[len(lines)-1])
	}
}

func TestRoundTripWithinTolerance(t *testing.T) {
	// A quarter circle of radius 10 drawn as 16 chords, welded into an
	// arc and expanded back by the firmware: every point the firmware
	// draws must stay within the welder's resolution of the true path.
	var b strings.Builder
	b.WriteString("G90\n")
	b.WriteString("G1 X10.0000 Y0 F1800\n")
	for i := 1; i <= 16; i++ {
		a := math.Pi / 2 * float64(i) / 16
		fmt.Fprintf(&b, "G1 X%.4f Y%.4f E%.5f\n",
			10*math.Cos(a), 10*math.Sin(a), 0.01*float64(i))
	}
	input := b.String()

	cfg := weld.DefaultConfig()
	w := weld.New(cfg, nil)
	var welded strings.Builder
	stats, err := w.Process(strings.NewReader(input), int64(len(input)), &welded)
	if err != nil {
		t.Fatalf("weld failed: %s", err)
	}
	if stats.ArcsCreated != 1 {
		t.Fatalf("welded %d arcs, want 1", stats.ArcsCreated)
	}

	p := New(DefaultConfig(), marlin2(t), nil)
	var expanded strings.Builder
	if _, err := p.Process(strings.NewReader(welded.String()), int64(welded.Len()), &expanded); err != nil {
		t.Fatalf("expansion failed: %s", err)
	}

	for _, text := range strings.Split(expanded.String(), "\n") {
		l := gcode.ParseLine(text)
		if !l.IsCommand('G', 1) || !l.Has('X') || !l.Has('Y') {
			continue
		}
		x, _ := l.Word('X')
		y, _ := l.Word('Y')
		if dev := math.Abs(math.Hypot(x, y) - 10); dev > cfg.ResolutionMM {
			t.Errorf("round-trip point (%g, %g) deviates by %g, allowed %g", x, y, dev, cfg.ResolutionMM)
		}
	}
}

func TestProcessUnresolvableArcPassesThrough(t *testing.T) {
	input := "G1 X10 Y0\nG2 X0 Y10\n"
	p := New(DefaultConfig(), marlin2(t), nil)

	var out strings.Builder
	stats, err := p.Process(strings.NewReader(input), int64(len(input)), &out)
	if err != nil {
		t.Fatalf("Process failed: %s", err)
	}
	if stats.ArcsAborted != 1 {
		t.Errorf("ArcsAborted = %d, want 1", stats.ArcsAborted)
	}
	if !strings.Contains(out.String(), "G2 X0 Y10") {
		t.Error("unresolvable arc was not passed through")
	}
}
