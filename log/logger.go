// Leveled logging for the gcode conversion tools. The level names
// match the ones printed by the converter CLIs.
package log

import "fmt"
import "io"
import "os"
import "strings"
import "sync"
import "time"

type Level int

const (
	NOSET Level = iota
	VERBOSE
	DEBUG
	INFO
	WARNING
	ERROR
	CRITICAL
)

var levelNames = []string{"NOSET", "VERBOSE", "DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL"}

func (l Level) String() string {
	if l < NOSET || l > CRITICAL {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel maps a level name to its Level. Unknown names report
// false.
func ParseLevel(s string) (Level, bool) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), true
		}
	}
	return INFO, false
}

// LevelNames lists the accepted level names, for CLI help text.
func LevelNames() []string {
	names := make([]string, len(levelNames))
	copy(names, levelNames)
	return names
}

type Logger struct {
	mu     sync.Mutex
	name   string
	level  Level
	writer io.Writer
}

// New creates a named logger writing to stderr at INFO.
func New(name string) *Logger {
	return &Logger{name: name, level: INFO, writer: os.Stderr}
}

func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	l.writer = w
	l.mu.Unlock()
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level || l.level == NOSET {
		return
	}
	ts := time.Now().Format("2006-01-02 15:04:05.000")
	fmt.Fprintf(l.writer, "%s - %s - %s - %s\n", ts, l.name, level, fmt.Sprintf(format, args...))
}

func (l *Logger) Verbose(format string, args ...interface{}) {
	l.log(VERBOSE, format, args...)
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(DEBUG, format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.log(INFO, format, args...)
}

func (l *Logger) Warning(format string, args ...interface{}) {
	l.log(WARNING, format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.log(ERROR, format, args...)
}

func (l *Logger) Critical(format string, args ...interface{}) {
	l.log(CRITICAL, format, args...)
}
