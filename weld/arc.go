package weld

import "arcweld/gcode"
import "strings"

// ArcCommand is a finalized arc ready to be rendered as a G2/G3 line.
// I and J are the center offset relative to the start point, per gcode
// convention.
type ArcCommand struct {
	Clockwise bool
	X, Y, Z   float64
	I, J      float64
	E         float64
	F         float64
	HasZ      bool
	HasE      bool
	HasF      bool

	// Output precision, decided by the fitter from the config and,
	// when dynamic precision is on, the source coordinates.
	XYZPrecision int
	EPrecision   int
}

// Render formats the command as a gcode line.
func (a *ArcCommand) Render() string {
	var b strings.Builder
	if a.Clockwise {
		b.WriteString("G2")
	} else {
		b.WriteString("G3")
	}

	word := func(address byte, value float64, precision int) {
		b.WriteByte(' ')
		b.WriteByte(address)
		b.WriteString(gcode.FormatFloat(value, precision))
	}

	word('X', a.X, a.XYZPrecision)
	word('Y', a.Y, a.XYZPrecision)
	if a.HasZ {
		word('Z', a.Z, a.XYZPrecision)
	}
	word('I', a.I, a.XYZPrecision)
	word('J', a.J, a.XYZPrecision)
	if a.HasE {
		word('E', a.E, a.EPrecision)
	}
	if a.HasF {
		word('F', a.F, 0)
	}
	return b.String()
}
