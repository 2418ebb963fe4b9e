package firmware

import "math"

// segmentLength computes the effective segment length for an arc of
// the given radius at the given feedrate (mm/min), combining whichever
// rules the active settings enable. The smallest applicable length
// wins, floored at the configured minimum.
func (f *Firmware) segmentLength(radius, feedrate float64) float64 {
	length := f.Settings.MMPerArcSegment
	circumference := 2 * math.Pi * radius

	if f.Settings.MinArcSegments > 0 {
		byCircle := circumference / float64(f.Settings.MinArcSegments)
		if length <= 0 || byCircle < length {
			length = byCircle
		}
	}

	if f.Settings.ArcSegmentsPerSec > 0 && feedrate > 0 {
		bySecond := (feedrate / 60.0) / f.Settings.ArcSegmentsPerSec
		if length <= 0 || bySecond < length {
			length = bySecond
		}
	}

	if f.Settings.ArcSegmentsPerR > 0 {
		segments := math.Ceil(f.Settings.ArcSegmentsPerR * radius)
		if byRadius := circumference / segments; length <= 0 || byRadius < length {
			length = byRadius
		}
	}

	if e := f.Settings.MMMaxArcError; e > 0 && e < radius {
		// Longest chord whose sagitta stays within the error.
		byError := 2 * math.Sqrt(2*radius*e-e*e)
		if length <= 0 || byError < length {
			length = byError
		}
	}

	if f.Settings.MinMMPerArcSegment > 0 && length < f.Settings.MinMMPerArcSegment {
		length = f.Settings.MinMMPerArcSegment
	}
	return length
}

// segmentCount is the number of chords the firmware would draw for the
// given travel length, never less than one.
func (f *Firmware) segmentCount(travel, radius, feedrate float64) int {
	length := f.segmentLength(radius, feedrate)
	if length <= 0 {
		return 1
	}
	count := int(math.Ceil(travel / length))
	if count < 1 {
		count = 1
	}
	return count
}
