package streaming

import "bufio"
import "bytes"
import "strings"
import "testing"

func TestSendAcksCommentLines(t *testing.T) {
	var wire bytes.Buffer
	s := &GrblStreamer{
		// The controller acks the two lines that actually get sent.
		reader: bufio.NewReader(strings.NewReader("ok\r\nok\r\n")),
		writer: bufio.NewWriter(&wire),
	}

	lines := []string{"; generated header", "G90", "", "G1 X1 Y0"}
	progress := make(chan int)
	done := make(chan error, 1)
	go func() { done <- s.Send(lines, progress) }()

	var acks int
	for range progress {
		acks++
	}
	if err := <-done; err != nil {
		t.Fatalf("Send failed: %s", err)
	}
	if acks != len(lines) {
		t.Errorf("acked %d lines, want %d", acks, len(lines))
	}

	sent := wire.String()
	if strings.Contains(sent, "header") {
		t.Errorf("comment reached the wire: %q", sent)
	}
	if !strings.Contains(sent, "G90\n") || !strings.Contains(sent, "G1 X1 Y0\n") {
		t.Errorf("commands missing from the wire: %q", sent)
	}
}

func TestSendErrorFromController(t *testing.T) {
	var wire bytes.Buffer
	s := &GrblStreamer{
		reader: bufio.NewReader(strings.NewReader("error:20\r\n")),
		writer: bufio.NewWriter(&wire),
	}

	progress := make(chan int)
	done := make(chan error, 1)
	go func() { done <- s.Send([]string{"G90", "G1 X1"}, progress) }()
	for range progress {
	}
	if err := <-done; err == nil {
		t.Fatal("Send swallowed a controller error")
	}
}

func TestCheckRejectsUnsupported(t *testing.T) {
	var s GrblStreamer
	if err := s.Check([]string{"G90", "M104 S200"}); err == nil {
		t.Error("Check accepted a heater command")
	}
	if err := s.Check([]string{"G90", "G1 X1", "; comment"}); err != nil {
		t.Errorf("Check rejected plain motion: %s", err)
	}
}
