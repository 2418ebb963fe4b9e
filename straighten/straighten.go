// Package straighten expands G2/G3 arc commands back into the linear
// moves a specific firmware would draw for them, so a welded file can
// be compared against what the printer actually runs.
package straighten

import "arcweld/firmware"
import "arcweld/gcode"
import "arcweld/log"
import "bufio"
import "errors"
import "fmt"
import "io"
import "strings"

// ErrCanceled is returned when a progress callback stops the run.
var ErrCanceled = errors.New("processing canceled")

type Progress struct {
	PercentComplete   float64
	LinesRead         int
	LinesWritten      int
	ArcsInterpolated  int
	SegmentsGenerated int
}

type ProgressFunc func(Progress) bool

const progressInterval = 1000

type Config struct {
	// XYZPrecision and EPrecision are the decimal digit counts for the
	// rendered G1 words. Clamped to 3..6.
	XYZPrecision int
	EPrecision   int
	// DecorateComments appends a firmware-style comment to each
	// generated line, marking its position within the expanded arc.
	DecorateComments bool
	// G90InfluencesExtruder selects whether G90/G91 also switches the
	// extruder axis mode.
	G90InfluencesExtruder bool
}

func DefaultConfig() Config {
	return Config{XYZPrecision: 3, EPrecision: 5}
}

func (c *Config) normalize() {
	clamp := func(v int) int {
		if v < 3 {
			return 3
		}
		if v > 6 {
			return 6
		}
		return v
	}
	c.XYZPrecision = clamp(c.XYZPrecision)
	c.EPrecision = clamp(c.EPrecision)
}

// Statistics accumulates the counts reported after a run.
type Statistics struct {
	LinesRead         int
	LinesWritten      int
	BytesRead         int64
	BytesWritten      int64
	ArcsInterpolated  int
	SegmentsGenerated int
	ArcsAborted       int
}

func (s Statistics) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "arcs interpolated: %d (%d segments generated", s.ArcsInterpolated, s.SegmentsGenerated)
	if s.ArcsAborted > 0 {
		fmt.Fprintf(&b, ", %d arcs passed through unresolved", s.ArcsAborted)
	}
	b.WriteString(")\n")
	fmt.Fprintf(&b, "lines: %d in, %d out; bytes: %d in, %d out\n",
		s.LinesRead, s.LinesWritten, s.BytesRead, s.BytesWritten)
	return b.String()
}

// Processor replays a gcode stream through a firmware's arc
// interpolation.
type Processor struct {
	cfg    Config
	fw     *firmware.Firmware
	logger *log.Logger

	OnProgress ProgressFunc
}

func New(cfg Config, fw *firmware.Firmware, logger *log.Logger) *Processor {
	cfg.normalize()
	if logger == nil {
		logger = log.New("arcstraighten")
	}
	return &Processor{cfg: cfg, fw: fw, logger: logger}
}

// Process expands the source stream into out. size is the total source
// size in bytes for progress percentages, 0 when unknown.
func (p *Processor) Process(src io.Reader, size int64, out io.Writer) (*Statistics, error) {
	var (
		stats   Statistics
		tracker gcode.Tracker
		writer  = bufio.NewWriter(out)
		scanner = bufio.NewScanner(src)
	)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	tracker.State.G90InfluencesExtruder = p.cfg.G90InfluencesExtruder || p.fw.Settings.G90InfluencesExtruder

	writeLine := func(line string) error {
		stats.LinesWritten++
		stats.BytesWritten += int64(len(line)) + 1
		if _, err := writer.WriteString(line); err != nil {
			return err
		}
		return writer.WriteByte('\n')
	}

	for scanner.Scan() {
		text := scanner.Text()
		stats.LinesRead++
		stats.BytesRead += int64(len(text)) + 1

		line := gcode.ParseLine(text)
		if line.IsArcMove() {
			prev := tracker.Pos
			tracker.Update(&line)

			moves, err := p.fw.Interpolate(&line, prev, tracker.Pos)
			if err != nil {
				// An arc the firmware cannot resolve passes through
				// untouched; real firmware would fault here.
				p.logger.Warning("Line %d: %v; passing through %q.", stats.LinesRead, err, text)
				stats.ArcsAborted++
				if werr := writeLine(text); werr != nil {
					return &stats, werr
				}
				continue
			}

			stats.ArcsInterpolated++
			stats.SegmentsGenerated += len(moves)
			lastE := prev.E
			for i, m := range moves {
				rendered := p.render(m, i+1, len(moves), lastE, tracker.State.ExtruderRelative)
				lastE = m.E
				if err := writeLine(rendered); err != nil {
					return &stats, err
				}
			}
		} else {
			tracker.Update(&line)
			if err := writeLine(text); err != nil {
				return &stats, err
			}
		}

		if p.OnProgress != nil && stats.LinesRead%progressInterval == 0 {
			if !p.OnProgress(p.progress(&stats, size)) {
				p.logger.Info("Canceled after %d lines.", stats.LinesRead)
				if err := writer.Flush(); err != nil {
					return &stats, err
				}
				return &stats, ErrCanceled
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return &stats, err
	}
	if err := writer.Flush(); err != nil {
		return &stats, err
	}

	if p.OnProgress != nil {
		p.OnProgress(p.progress(&stats, size))
	}
	p.logger.Debug("Interpolated %d arcs into %d segments.", stats.ArcsInterpolated, stats.SegmentsGenerated)
	return &stats, nil
}

// render turns one interpolated move into a G1 line. The extruder word
// is converted back to a delta when the stream is in relative extruder
// mode.
func (p *Processor) render(m firmware.Move, idx, total int, lastE float64, extruderRelative bool) string {
	var b strings.Builder
	b.WriteString("G1 X")
	b.WriteString(gcode.FormatFloat(m.X, p.cfg.XYZPrecision))
	b.WriteString(" Y")
	b.WriteString(gcode.FormatFloat(m.Y, p.cfg.XYZPrecision))
	if m.HasZ {
		b.WriteString(" Z")
		b.WriteString(gcode.FormatFloat(m.Z, p.cfg.XYZPrecision))
	}
	if m.HasE {
		e := m.E
		if extruderRelative {
			e = m.E - lastE
		}
		b.WriteString(" E")
		b.WriteString(gcode.FormatFloat(e, p.cfg.EPrecision))
	}
	if m.HasF {
		b.WriteString(" F")
		b.WriteString(gcode.FormatFloat(m.F, p.cfg.XYZPrecision))
	}
	if p.cfg.DecorateComments {
		fmt.Fprintf(&b, " ; arc segment %d of %d", idx, total)
	}
	return b.String()
}

func (p *Processor) progress(stats *Statistics, size int64) Progress {
	pr := Progress{
		LinesRead:         stats.LinesRead,
		LinesWritten:      stats.LinesWritten,
		ArcsInterpolated:  stats.ArcsInterpolated,
		SegmentsGenerated: stats.SegmentsGenerated,
	}
	if size > 0 {
		pr.PercentComplete = float64(stats.BytesRead) / float64(size) * 100
		if pr.PercentComplete > 100 {
			pr.PercentComplete = 100
		}
	}
	return pr
}
