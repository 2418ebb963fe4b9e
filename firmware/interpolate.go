package firmware

import "arcweld/gcode"
import "arcweld/geometry"
import "math"

// Move is one linear segment produced by arc interpolation. All
// coordinates are absolute; the output layer converts the extruder
// axis back to relative form when the stream is in relative mode.
type Move struct {
	X, Y, Z float64
	E       float64
	F       float64
	HasZ    bool
	HasE    bool
	HasF    bool
}

// Interpolate expands a G2/G3 line into the linear moves the active
// firmware would draw for it. prev is the position before the command,
// cur the position after it (as resolved by the stream's tracker). The
// final move always lands exactly on cur, matching the firmware's own
// final-snap behavior.
func (f *Firmware) Interpolate(line *gcode.Line, prev, cur gcode.Position) ([]Move, error) {
	clockwise := line.IsCommand('G', 2)
	i := line.WordDefault('I', 0)
	j := line.WordDefault('J', 0)
	r := line.WordDefault('R', 0)

	start := geometry.Point{X: prev.X, Y: prev.Y}
	end := geometry.Point{X: cur.X, Y: cur.Y}
	arc, err := geometry.ResolveArc(start, end, i, j, r, clockwise)
	if err != nil {
		return nil, err
	}

	linearTravel := cur.Z - prev.Z
	travel := arc.Length()
	if linearTravel != 0 {
		travel = math.Hypot(travel, linearTravel)
	}

	count := f.segmentCount(travel, arc.Radius, cur.F)
	f.segments += count

	hasZ := line.Has('Z') || linearTravel != 0
	hasE := line.Has('E')
	hasF := line.Has('F')
	eDelta := cur.E - prev.E

	moves := make([]Move, 0, count)

	thetaPerSegment := arc.SweepAngle / float64(count)
	linearPerSegment := linearTravel / float64(count)
	ePerSegment := eDelta / float64(count)

	// Vector from the arc center to the current point, rotated
	// incrementally. The small-angle approximation follows Marlin:
	// sin t ~ t, cos t ~ 1 - t^2/2, resynced with exact cos/sin every
	// NArcCorrection segments.
	rx := start.X - arc.Center.X
	ry := start.Y - arc.Center.Y
	approximate := f.Settings.NArcCorrection > 1
	sinT := thetaPerSegment - thetaPerSegment*thetaPerSegment*thetaPerSegment/6
	cosT := 1 - 0.5*thetaPerSegment*thetaPerSegment

	correction := 0
	for k := 1; k < count; k++ {
		if approximate {
			correction++
			if correction >= f.Settings.NArcCorrection {
				correction = 0
				angle := thetaPerSegment * float64(k)
				cosK, sinK := math.Cos(angle), math.Sin(angle)
				rx = (start.X-arc.Center.X)*cosK - (start.Y-arc.Center.Y)*sinK
				ry = (start.X-arc.Center.X)*sinK + (start.Y-arc.Center.Y)*cosK
			} else {
				rx, ry = rx*cosT-ry*sinT, rx*sinT+ry*cosT
			}
		} else {
			angle := arc.StartAngle + thetaPerSegment*float64(k)
			p := arc.PointAt(angle)
			rx, ry = p.X-arc.Center.X, p.Y-arc.Center.Y
		}

		moves = append(moves, Move{
			X:    arc.Center.X + rx,
			Y:    arc.Center.Y + ry,
			Z:    prev.Z + linearPerSegment*float64(k),
			E:    prev.E + ePerSegment*float64(k),
			F:    cur.F,
			HasZ: hasZ,
			HasE: hasE,
			HasF: hasF,
		})
	}

	// The last move is the declared target, not the last interpolated
	// point, to avoid compounding floating point drift.
	moves = append(moves, Move{
		X:    cur.X,
		Y:    cur.Y,
		Z:    cur.Z,
		E:    cur.E,
		F:    cur.F,
		HasZ: hasZ,
		HasE: hasE,
		HasF: hasF,
	})
	return moves, nil
}
