// Package streaming sends finished gcode to a controller over a serial
// link, pacing the stream against the controller's receive buffer.
package streaming

type Streamer interface {
	Connect(name string) error
	Check(lines []string) error
	Send(lines []string, progress chan int) error
	Stop()
}
