package stream

import (
	"bufio"
	"io"
	"strings"
)

// Event is a single server-sent event.
type Event struct {
	// Type is the "event:" field; empty for the default type.
	Type string
	// Data is the payload, with multiple "data:" lines joined by
	// newlines per the SSE specification.
	Data string
}

// Scanner reads server-sent events from an io.Reader. Events are
// delimited by blank lines; comment lines (":") and unrecognised
// fields are skipped.
type Scanner struct {
	lines   *bufio.Scanner
	current Event
}

// NewScanner wraps reader in an SSE event scanner.
func NewScanner(reader io.Reader) *Scanner {
	lines := bufio.NewScanner(reader)
	lines.Buffer(make([]byte, 0, 4096), 1<<20)
	return &Scanner{lines: lines}
}

// Next advances to the next event. It returns false on end of stream
// or read error; call Err afterwards to tell them apart.
func (s *Scanner) Next() bool {
	var data []string
	eventType := ""

	for s.lines.Scan() {
		line := strings.TrimSuffix(s.lines.Text(), "\r")

		if line == "" {
			if len(data) > 0 {
				s.current = Event{Type: eventType, Data: strings.Join(data, "\n")}
				return true
			}
			eventType = ""
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, found := strings.Cut(line, ":")
		if found {
			value = strings.TrimPrefix(value, " ")
		}
		switch field {
		case "data":
			data = append(data, value)
		case "event":
			eventType = value
		}
	}

	// Stream ended; emit any final unterminated event.
	if len(data) > 0 {
		s.current = Event{Type: eventType, Data: strings.Join(data, "\n")}
		return true
	}
	return false
}

// Event returns the event parsed by the last successful Next.
func (s *Scanner) Event() Event {
	return s.current
}

// Err returns the read error that stopped scanning, if any.
func (s *Scanner) Err() error {
	return s.lines.Err()
}
