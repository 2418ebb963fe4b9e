package gcode

import "strconv"
import "strings"

// Word is a single address/value pair from a gcode line. Raw holds the
// value exactly as written in the source, so the original precision can
// be recovered for dynamic precision output.
type Word struct {
	Address rune
	Value   float64
	Raw     string
}

// Decimals returns the number of decimal digits the source used for
// this word's value.
func (w Word) Decimals() int {
	idx := strings.IndexRune(w.Raw, '.')
	if idx == -1 {
		return 0
	}
	return len(w.Raw) - idx - 1
}

func (w Word) String() string {
	if w.Raw != "" {
		return string(w.Address) + w.Raw
	}
	return string(w.Address) + FormatFloat(w.Value, -1)
}

// Line is one parsed gcode line. Raw preserves the source text exactly,
// so unmodified lines can be passed through losslessly.
type Line struct {
	Raw     string
	Words   []Word
	Comment string
}

// Word returns the value for the given address.
func (l *Line) Word(address rune) (float64, bool) {
	for _, w := range l.Words {
		if w.Address == address {
			return w.Value, true
		}
	}
	return 0, false
}

func (l *Line) WordDefault(address rune, def float64) float64 {
	if v, ok := l.Word(address); ok {
		return v
	}
	return def
}

func (l *Line) Has(address rune) bool {
	_, ok := l.Word(address)
	return ok
}

// Command returns the first word of the line, which identifies the
// command for well-formed input.
func (l *Line) Command() (Word, bool) {
	if len(l.Words) == 0 {
		return Word{}, false
	}
	return l.Words[0], true
}

func (l *Line) IsCommand(address rune, value float64) bool {
	w, ok := l.Command()
	return ok && w.Address == address && w.Value == value
}

// IsLinearMove reports whether the line is a G0 or G1.
func (l *Line) IsLinearMove() bool {
	return l.IsCommand('G', 0) || l.IsCommand('G', 1)
}

// IsArcMove reports whether the line is a G2 or G3.
func (l *Line) IsArcMove() bool {
	return l.IsCommand('G', 2) || l.IsCommand('G', 3)
}

// FormatFloat renders a float with the given number of decimals,
// trimming trailing zeroes. A negative precision uses the shortest
// representation that round-trips.
func FormatFloat(f float64, precision int) string {
	x := strconv.FormatFloat(f, 'f', precision, 64)
	if strings.IndexRune(x, '.') != -1 {
		x = strings.TrimRight(x, "0")
		x = strings.TrimSuffix(x, ".")
	}
	if x == "-0" {
		x = "0"
	}
	return x
}
