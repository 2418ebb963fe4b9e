package weld

import "fmt"
import "strings"

// CategoryStats counts source and output segments for one move class.
type CategoryStats struct {
	SourceSegments int
	TargetSegments int
	Arcs           int
}

func (c CategoryStats) add(o CategoryStats) CategoryStats {
	return CategoryStats{
		SourceSegments: c.SourceSegments + o.SourceSegments,
		TargetSegments: c.TargetSegments + o.TargetSegments,
		Arcs:           c.Arcs + o.Arcs,
	}
}

// Statistics accumulates the running counts reported after a weld.
type Statistics struct {
	LinesRead    int
	LinesWritten int
	BytesRead    int64
	BytesWritten int64
	ArcsCreated  int

	Extrusion  CategoryStats
	Travel     CategoryStats
	Retraction CategoryStats
}

func (s *Statistics) category(class moveClass) *CategoryStats {
	switch class {
	case classTravel:
		return &s.Travel
	case classRetraction:
		return &s.Retraction
	}
	return &s.Extrusion
}

func (s *Statistics) recordEmission(em Emission) {
	cat := s.category(em.Class)
	cat.SourceSegments += len(em.Sources)
	if em.Arc != nil {
		cat.TargetSegments++
		cat.Arcs++
		s.ArcsCreated++
	} else {
		cat.TargetSegments += len(em.Sources)
	}
}

// SizeReductionPercent is how much smaller the output is than the
// input.
func (s Statistics) SizeReductionPercent() float64 {
	if s.BytesRead == 0 {
		return 0
	}
	return (1 - float64(s.BytesWritten)/float64(s.BytesRead)) * 100
}

func (s Statistics) String() string {
	var b strings.Builder
	row := func(name string, c CategoryStats) {
		fmt.Fprintf(&b, "%-11s %8d %8d %6d\n", name, c.SourceSegments, c.TargetSegments, c.Arcs)
	}
	fmt.Fprintf(&b, "%-11s %8s %8s %6s\n", "category", "source", "target", "arcs")
	row("extrusion", s.Extrusion)
	row("travel", s.Travel)
	row("retraction", s.Retraction)
	row("total", s.Extrusion.add(s.Travel).add(s.Retraction))
	fmt.Fprintf(&b, "lines: %d in, %d out; bytes: %d in, %d out (%.1f%% reduction)\n",
		s.LinesRead, s.LinesWritten, s.BytesRead, s.BytesWritten, s.SizeReductionPercent())
	return b.String()
}
