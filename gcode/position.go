package gcode

import "arcweld/geometry"

// Position is the current tool location, extruder position and
// feedrate.
type Position struct {
	X, Y, Z, E, F float64
}

func (p Position) Point() geometry.Point {
	return geometry.Point{X: p.X, Y: p.Y, Z: p.Z}
}

// State holds the positioning mode flags needed to interpret a move.
// The extruder axis is tracked independently since firmwares disagree
// on whether G90/G91 affects it.
type State struct {
	Relative              bool
	ExtruderRelative      bool
	Imperial              bool
	G90InfluencesExtruder bool
}

// Tracker applies parsed lines to a position and mode state, one line
// at a time. All coordinates are kept in mm.
type Tracker struct {
	Pos   Position
	State State
}

const mmPerInch = 25.4

func (t *Tracker) scale(v float64) float64 {
	if t.State.Imperial {
		return v * mmPerInch
	}
	return v
}

// Update mutates the tracker according to the line. Lines that do not
// affect position or mode state are ignored.
func (t *Tracker) Update(l *Line) {
	cmd, ok := l.Command()
	if !ok {
		return
	}

	switch cmd.Address {
	case 'G':
		switch cmd.Value {
		case 0, 1, 2, 3:
			t.applyMove(l)
		case 20:
			t.State.Imperial = true
		case 21:
			t.State.Imperial = false
		case 28:
			t.home(l)
		case 90:
			t.State.Relative = false
			if t.State.G90InfluencesExtruder {
				t.State.ExtruderRelative = false
			}
		case 91:
			t.State.Relative = true
			if t.State.G90InfluencesExtruder {
				t.State.ExtruderRelative = true
			}
		case 92:
			t.setPosition(l)
		}
	case 'M':
		switch cmd.Value {
		case 82:
			t.State.ExtruderRelative = false
		case 83:
			t.State.ExtruderRelative = true
		}
	}
}

func (t *Tracker) applyMove(l *Line) {
	if v, ok := l.Word('X'); ok {
		if t.State.Relative {
			t.Pos.X += t.scale(v)
		} else {
			t.Pos.X = t.scale(v)
		}
	}
	if v, ok := l.Word('Y'); ok {
		if t.State.Relative {
			t.Pos.Y += t.scale(v)
		} else {
			t.Pos.Y = t.scale(v)
		}
	}
	if v, ok := l.Word('Z'); ok {
		if t.State.Relative {
			t.Pos.Z += t.scale(v)
		} else {
			t.Pos.Z = t.scale(v)
		}
	}
	if v, ok := l.Word('E'); ok {
		if t.State.ExtruderRelative {
			t.Pos.E += t.scale(v)
		} else {
			t.Pos.E = t.scale(v)
		}
	}
	if v, ok := l.Word('F'); ok {
		t.Pos.F = t.scale(v)
	}
}

func (t *Tracker) setPosition(l *Line) {
	axes := false
	if v, ok := l.Word('X'); ok {
		t.Pos.X = t.scale(v)
		axes = true
	}
	if v, ok := l.Word('Y'); ok {
		t.Pos.Y = t.scale(v)
		axes = true
	}
	if v, ok := l.Word('Z'); ok {
		t.Pos.Z = t.scale(v)
		axes = true
	}
	if v, ok := l.Word('E'); ok {
		t.Pos.E = t.scale(v)
		axes = true
	}
	// G92 with no axis words zeroes everything.
	if !axes {
		t.Pos.X, t.Pos.Y, t.Pos.Z, t.Pos.E = 0, 0, 0, 0
	}
}

func (t *Tracker) home(l *Line) {
	any := l.Has('X') || l.Has('Y') || l.Has('Z')
	if !any || l.Has('X') {
		t.Pos.X = 0
	}
	if !any || l.Has('Y') {
		t.Pos.Y = 0
	}
	if !any || l.Has('Z') {
		t.Pos.Z = 0
	}
}
