package gcode

import "strconv"
import "strings"

// ParseLine parses a single gcode line into its words and comment. The
// parser is a small rune state machine; it never fails, since unknown
// content is preserved in Raw and passed through untouched.
func ParseLine(input string) Line {
	const (
		normal = iota
		comment
		eolcomment
		word
	)

	line := Line{Raw: input}

	var (
		state   = normal
		buffer  strings.Builder
		com     strings.Builder
		address rune
	)

	flushWord := func() {
		raw := buffer.String()
		if raw == "" {
			// Bare address, as in "G28 Z". The value reads as zero.
			line.Words = append(line.Words, Word{Address: address})
		} else if f, err := strconv.ParseFloat(raw, 64); err == nil {
			line.Words = append(line.Words, Word{Address: address, Value: f, Raw: raw})
		}
		buffer.Reset()
		state = normal
	}

	var parseNormal func(c rune)
	parseNormal = func(c rune) {
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			// Ignore
		case c == '(':
			state = comment
		case c == ';' || c == '*':
			// Checksums and EOL comments terminate the command
			// portion of the line.
			state = eolcomment
		case c >= 'a' && c <= 'z':
			state = word
			address = c - 32
		case c >= 'A' && c <= 'Z':
			state = word
			address = c
		default:
			// Unknown character; the raw line still carries it.
		}
	}

	for _, c := range input {
		switch state {
		case normal:
			parseNormal(c)
		case comment:
			if c == ')' {
				state = normal
			} else {
				com.WriteRune(c)
			}
		case eolcomment:
			com.WriteRune(c)
		case word:
			if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+' {
				buffer.WriteRune(c)
			} else {
				flushWord()
				parseNormal(c)
			}
		}
	}
	if state == word {
		flushWord()
	}

	line.Comment = com.String()
	return line
}
