package gcode

import "testing"

func apply(t *Tracker, lines ...string) {
	for _, text := range lines {
		l := ParseLine(text)
		t.Update(&l)
	}
}

func TestTrackerAbsolute(t *testing.T) {
	var tr Tracker
	apply(&tr, "G1 X10 Y20 Z0.2 E1.5 F1800", "G1 X12")
	if tr.Pos.X != 12 || tr.Pos.Y != 20 || tr.Pos.Z != 0.2 || tr.Pos.E != 1.5 || tr.Pos.F != 1800 {
		t.Errorf("pos = %+v", tr.Pos)
	}
}

func TestTrackerRelative(t *testing.T) {
	var tr Tracker
	apply(&tr, "G1 X10 Y10", "G91", "G1 X5 Y-2", "G90", "G1 X1")
	if tr.Pos.X != 1 || tr.Pos.Y != 8 {
		t.Errorf("pos = %+v, want X1 Y8", tr.Pos)
	}
}

func TestTrackerExtruderMode(t *testing.T) {
	var tr Tracker
	apply(&tr, "M83", "G1 X1 E2", "G1 X2 E3")
	if tr.Pos.E != 5 {
		t.Errorf("relative E = %g, want 5", tr.Pos.E)
	}
	apply(&tr, "M82", "G1 X3 E10")
	if tr.Pos.E != 10 {
		t.Errorf("absolute E = %g, want 10", tr.Pos.E)
	}
}

func TestTrackerG90InfluencesExtruder(t *testing.T) {
	var tr Tracker
	tr.State.G90InfluencesExtruder = true
	apply(&tr, "G91")
	if !tr.State.ExtruderRelative {
		t.Error("G91 did not switch the extruder axis")
	}
	apply(&tr, "G90")
	if tr.State.ExtruderRelative {
		t.Error("G90 did not switch the extruder axis back")
	}

	var plain Tracker
	apply(&plain, "G91")
	if plain.State.ExtruderRelative {
		t.Error("G91 switched the extruder axis without the flag")
	}
}

func TestTrackerSetPosition(t *testing.T) {
	var tr Tracker
	apply(&tr, "G1 X10 Y10 E5", "G92 E0")
	if tr.Pos.E != 0 || tr.Pos.X != 10 {
		t.Errorf("pos = %+v, want E0 X10", tr.Pos)
	}
	apply(&tr, "G92")
	if tr.Pos.X != 0 || tr.Pos.Y != 0 || tr.Pos.Z != 0 || tr.Pos.E != 0 {
		t.Errorf("bare G92 did not zero axes: %+v", tr.Pos)
	}
}

func TestTrackerImperial(t *testing.T) {
	var tr Tracker
	apply(&tr, "G20", "G1 X1", "G21", "G1 Y1")
	if tr.Pos.X != 25.4 || tr.Pos.Y != 1 {
		t.Errorf("pos = %+v, want X25.4 Y1", tr.Pos)
	}
}

func TestTrackerHome(t *testing.T) {
	var tr Tracker
	apply(&tr, "G1 X10 Y10 Z10", "G28 Z")
	if tr.Pos.Z != 0 || tr.Pos.X != 10 {
		t.Errorf("pos = %+v, want Z0 X10", tr.Pos)
	}
	apply(&tr, "G28")
	if tr.Pos.X != 0 || tr.Pos.Y != 0 || tr.Pos.Z != 0 {
		t.Errorf("bare G28 did not home all axes: %+v", tr.Pos)
	}
}
