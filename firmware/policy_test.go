package firmware

import "math"
import "testing"

func near(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestSegmentLengthMarlin2(t *testing.T) {
	fw, err := New(Marlin2, LatestVersion)
	if err != nil {
		t.Fatalf("New failed: %s", err)
	}

	// Large radius: the per-circle rule allows more than the fixed
	// segment length, so the fixed length wins.
	if got := fw.segmentLength(10, 1800); !near(got, 1.0, 1e-9) {
		t.Errorf("segmentLength(r=10) = %g, want 1.0", got)
	}

	// Small radius: the per-circle rule shrinks segments, floored at
	// the minimum.
	small := fw.segmentLength(0.3, 1800)
	byCircle := 2 * math.Pi * 0.3 / 24
	if !near(small, math.Max(byCircle, 0.1), 1e-9) {
		t.Errorf("segmentLength(r=0.3) = %g, want %g", small, math.Max(byCircle, 0.1))
	}

	// Tiny radius: the minimum segment length takes over.
	if got := fw.segmentLength(0.05, 1800); !near(got, 0.1, 1e-9) {
		t.Errorf("segmentLength(r=0.05) = %g, want 0.1", got)
	}
}

func TestSegmentLengthPerSecond(t *testing.T) {
	fw, err := New(Marlin2, LatestVersion)
	if err != nil {
		t.Fatalf("New failed: %s", err)
	}
	fw.Settings.ArcSegmentsPerSec = 50

	// 600 mm/min = 10 mm/s; at 50 segments/s a segment is 0.2 mm.
	if got := fw.segmentLength(10, 600); !near(got, 0.2, 1e-9) {
		t.Errorf("segmentLength = %g, want 0.2", got)
	}
	// Without a feedrate the per-second rule cannot apply.
	if got := fw.segmentLength(10, 0); !near(got, 1.0, 1e-9) {
		t.Errorf("segmentLength without feedrate = %g, want 1.0", got)
	}
}

func TestSegmentLengthSmoothieware(t *testing.T) {
	fw, err := New(Smoothieware, LatestVersion)
	if err != nil {
		t.Fatalf("New failed: %s", err)
	}
	// Longest chord whose sagitta stays within mm_max_arc_error.
	want := 2 * math.Sqrt(2*10*0.01-0.01*0.01)
	if got := fw.segmentLength(10, 1800); !near(got, want, 1e-9) {
		t.Errorf("segmentLength = %g, want %g", got, want)
	}
}

func TestSegmentLengthRepetierPerR(t *testing.T) {
	fw, err := New(Repetier, "1.0.5")
	if err != nil {
		t.Fatalf("New failed: %s", err)
	}
	fw.Settings.ArcSegmentsPerR = 2

	// ceil(2 * 3) = 6 segments over the full circle.
	want := 2 * math.Pi * 3 / 6
	if want > fw.Settings.MMPerArcSegment {
		want = fw.Settings.MMPerArcSegment
	}
	if got := fw.segmentLength(3, 1800); !near(got, want, 1e-9) {
		t.Errorf("segmentLength = %g, want %g", got, want)
	}
}

func TestSegmentCount(t *testing.T) {
	fw, err := New(Marlin2, LatestVersion)
	if err != nil {
		t.Fatalf("New failed: %s", err)
	}

	// Quarter circle of radius 10 at 1 mm per segment.
	travel := math.Pi / 2 * 10
	if got := fw.segmentCount(travel, 10, 1800); got != 16 {
		t.Errorf("segmentCount = %d, want 16", got)
	}
	if got := fw.segmentCount(0.001, 10, 1800); got != 1 {
		t.Errorf("segmentCount for tiny travel = %d, want 1", got)
	}
}
