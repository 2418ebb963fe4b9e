package streaming

import "io"
import "bufio"
import "strings"
import "github.com/joushou/goserial"
import "arcweld/gcode"
import "errors"
import "fmt"

type Result struct {
	level   string
	message string
}

// GrblStreamer feeds gcode lines to a GRBL controller, keeping its
// 127 byte receive buffer as full as possible.
type GrblStreamer struct {
	serialPort io.ReadWriteCloser
	reader     *bufio.Reader
	writer     *bufio.Writer
}

func serialReader(reader *bufio.Reader) Result {
	c, err := reader.ReadBytes('\n')
	if err != nil {
		return Result{"serial-error", fmt.Sprintf("%s", err)}
	}
	b := string(c)
	if b == "ok\r\n" {
		return Result{"ok", ""}
	} else if len(b) >= 5 && b[:5] == "error" {
		return Result{"error", b[6 : len(b)-1]}
	} else if len(b) >= 5 && b[:5] == "alarm" {
		return Result{"alarm", b[6 : len(b)-1]}
	} else {
		return Result{"info", b[:len(b)-1]}
	}
}

func (s *GrblStreamer) Connect(name string) error {
	c := &serial.Config{Name: name, Baud: 115200}
	var err error
	s.serialPort, err = serial.OpenPort(c)
	if err != nil {
		return err
	}

	s.reader = bufio.NewReader(s.serialPort)
	s.writer = bufio.NewWriter(s.serialPort)

	for {
		c, err := s.reader.ReadBytes('\n')
		m := string(c)
		if len(m) == 26 && m[:5] == "Grbl " && m[9:] == " ['$' for help]\r\n" {
			fmt.Printf("Grbl version %s initialized\n", m[5:9])
			break
		} else if m == "\r\n" {
			continue
		}

		if err != nil {
			return errors.New("Unable to detect initialized GRBL")
		}
	}

	return nil
}

func (s *GrblStreamer) Stop() {
	_, _ = s.serialPort.Write([]byte("\x18\n"))
	s.serialPort.Close()
}

// Check scans the stream for commands GRBL does not implement, so a
// long send does not fault halfway through.
func (s *GrblStreamer) Check(lines []string) error {
	for n, text := range lines {
		line := gcode.ParseLine(text)
		cmd, ok := line.Command()
		if !ok {
			continue
		}
		if cmd.Address == 'M' {
			switch cmd.Value {
			case 82, 83, 104, 106, 109, 140, 190:
				return fmt.Errorf("line %d: Grbl does not support M%d", n+1, int(cmd.Value))
			}
		}
		if cmd.Address == 'T' {
			return fmt.Errorf("line %d: Grbl does not support tool changes", n+1)
		}
	}
	return nil
}

func (s *GrblStreamer) Send(lines []string, progress chan int) (err error) {
	defer func() {
		close(progress)
		if r := recover(); r != nil {
			err = errors.New(fmt.Sprintf("%s", r))
		}
	}()

	var length, okCnt int
	list := make([]string, 0)

	// handle results
	handleRes := func(res Result) {
		switch res.level {
		case "error":
			panic("Received error from controller: " + res.message)
		case "alarm":
			panic("Received alarm from controller: " + res.message)
		case "info":
			fmt.Printf("\nReceived info from controller: %s\n", res.message)
		default:
			x := list[0]
			list = list[1:]
			length -= len(x)
			progress <- okCnt
			okCnt++
		}
	}

	for _, text := range lines {
		trimmed := strings.TrimSpace(text)
		x := trimmed + "\n"
		length += len(x)
		list = append(list, x)

		// Blank and comment-only lines never reach the wire; fake the
		// ok so the pending list and window accounting pop them in
		// order.
		if trimmed == "" || trimmed[0] == ';' || trimmed[0] == '(' {
			handleRes(Result{"ok", ""})
			continue
		}

		// If Grbl is full...
		for length > 127 {
			handleRes(serialReader(s.reader))
		}

		_, err := s.writer.WriteString(x)
		if err != nil {
			return errors.New("\nError while sending data:" + fmt.Sprintf("%s", err))
		}
		err = s.writer.Flush()
		if err != nil {
			return errors.New("\nError while flushing writer:" + fmt.Sprintf("%s", err))
		}
	}

	for okCnt < len(lines) {
		handleRes(serialReader(s.reader))
	}

	return nil
}
