package weld

import "arcweld/gcode"
import "arcweld/log"
import "bufio"
import "errors"
import "io"

// ErrCanceled is returned when a progress callback stops the run.
var ErrCanceled = errors.New("processing canceled")

// Progress is handed to the progress callback at a bounded frequency.
// A false return cancels the run; the current candidate is aborted and
// the output flushed, never leaving a half-emitted command.
type Progress struct {
	PercentComplete float64
	LinesRead       int
	LinesWritten    int
	ArcsCreated     int
}

type ProgressFunc func(Progress) bool

// progressInterval is the number of source lines between progress
// callbacks.
const progressInterval = 1000

// Welder drives the fitter over a gcode stream, maintaining position
// and mode state and writing the transformed output.
type Welder struct {
	cfg    Config
	logger *log.Logger

	OnProgress ProgressFunc
}

func New(cfg Config, logger *log.Logger) *Welder {
	cfg.Normalize()
	if logger == nil {
		logger = log.New("arcweld")
	}
	return &Welder{cfg: cfg, logger: logger}
}

// Process welds the source stream into out. size is the total source
// size in bytes for progress percentages, 0 when unknown. The returned
// statistics are valid even when the run is canceled.
func (w *Welder) Process(src io.Reader, size int64, out io.Writer) (*Statistics, error) {
	var (
		stats   Statistics
		tracker gcode.Tracker
		fitter  = NewFitter(&w.cfg)
		writer  = bufio.NewWriter(out)
		scanner = bufio.NewScanner(src)
	)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	tracker.State.G90InfluencesExtruder = w.cfg.G90InfluencesExtruder

	writeLine := func(line string) error {
		stats.LinesWritten++
		stats.BytesWritten += int64(len(line)) + 1
		if _, err := writer.WriteString(line); err != nil {
			return err
		}
		return writer.WriteByte('\n')
	}

	writeEmissions := func(emissions []Emission) error {
		for _, em := range emissions {
			stats.recordEmission(em)
			if em.Arc != nil {
				if err := writeLine(em.Arc.Render()); err != nil {
					return err
				}
				continue
			}
			for _, src := range em.Sources {
				if err := writeLine(src); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for scanner.Scan() {
		text := scanner.Text()
		stats.LinesRead++
		stats.BytesRead += int64(len(text)) + 1

		line := gcode.ParseLine(text)
		if w.weldable(&line, &tracker) {
			prev := tracker.Pos
			tracker.Update(&line)
			seg := Segment{
				From:             prev,
				To:               tracker.Pos,
				Raw:              text,
				HasE:             line.Has('E'),
				HasF:             line.Has('F'),
				XYZDecimals:      xyzDecimals(&line),
				EDecimals:        eDecimals(&line),
				ExtruderAbsolute: !tracker.State.ExtruderRelative,
			}
			if err := writeEmissions(fitter.Add(seg)); err != nil {
				return &stats, err
			}
		} else {
			// Any other command interrupts the candidate and passes
			// through untouched.
			if err := writeEmissions(fitter.Finish()); err != nil {
				return &stats, err
			}
			tracker.Update(&line)
			if err := writeLine(text); err != nil {
				return &stats, err
			}
		}

		if w.OnProgress != nil && stats.LinesRead%progressInterval == 0 {
			if !w.OnProgress(w.progress(&stats, size)) {
				w.logger.Info("Canceled after %d lines.", stats.LinesRead)
				if err := writeEmissions(fitter.Finish()); err != nil {
					return &stats, err
				}
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

	if err := writeEmissions(fitter.Finish()); err != nil {
		return &stats, err
	}
	if err := writer.Flush(); err != nil {
		return &stats, err
	}

	if w.OnProgress != nil {
		w.OnProgress(w.progress(&stats, size))
	}
	w.logger.Debug("Welded %d arcs from %d lines.", stats.ArcsCreated, stats.LinesRead)
	return &stats, nil
}

// weldable reports whether the line is a linear move the fitter can
// consume: it must actually displace the tool in XY.
func (w *Welder) weldable(line *gcode.Line, tracker *gcode.Tracker) bool {
	if !line.IsLinearMove() {
		return false
	}
	if !line.Has('X') && !line.Has('Y') {
		return false
	}
	// A move that lands on the current position cannot contribute a
	// chord.
	probe := *tracker
	probe.Update(line)
	return probe.Pos.X != tracker.Pos.X || probe.Pos.Y != tracker.Pos.Y
}

func (w *Welder) progress(stats *Statistics, size int64) Progress {
	p := Progress{
		LinesRead:    stats.LinesRead,
		LinesWritten: stats.LinesWritten,
		ArcsCreated:  stats.ArcsCreated,
	}
	if size > 0 {
		p.PercentComplete = float64(stats.BytesRead) / float64(size) * 100
		if p.PercentComplete > 100 {
			p.PercentComplete = 100
		}
	}
	return p
}

func xyzDecimals(line *gcode.Line) int {
	max := 0
	for _, w := range line.Words {
		switch w.Address {
		case 'X', 'Y', 'Z':
			if d := w.Decimals(); d > max {
				max = d
			}
		}
	}
	return max
}

func eDecimals(line *gcode.Line) int {
	for _, w := range line.Words {
		if w.Address == 'E' {
			return w.Decimals()
		}
	}
	return 0
}
