package sse

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"
)

// maxLine bounds a single event-stream line.
const maxLine = 1 << 20

// frame is one dispatched event.
type frame struct {
	Event string
	Data  string
	ID    string
}

// decoder reads text/event-stream frames. It tracks the last event id and
// the retry delay across frames the way a browser EventSource does.
type decoder struct {
	sc     *bufio.Scanner
	lastID string
	retry  time.Duration
}

func newDecoder(r io.Reader) *decoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLine)
	return &decoder{sc: sc}
}

// next returns the next frame carrying data. Frames without data lines are
// skipped; comment lines are ignored. Returns io.EOF at end of stream.
func (d *decoder) next() (frame, error) {
	var (
		event string
		data  []string
	)

	for d.sc.Scan() {
		line := d.sc.Text()

		if line == "" {
			if len(data) == 0 {
				event = ""
				continue
			}
			if event == "" {
				event = "message"
			}
			return frame{Event: event, Data: strings.Join(data, "\n"), ID: d.lastID}, nil
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, found := strings.Cut(line, ":")
		if found {
			value = strings.TrimPrefix(value, " ")
		}

		switch field {
		case "event":
			event = value
		case "data":
			data = append(data, value)
		case "id":
			if !strings.ContainsRune(value, 0) {
				d.lastID = value
			}
		case "retry":
			if ms, ok := parseRetry(value); ok {
				d.retry = ms
			}
		}
	}

	if err := d.sc.Err(); err != nil {
		return frame{}, err
	}
	return frame{}, io.EOF
}

// parseRetry accepts ASCII digits only.
func parseRetry(value string) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	ms, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return time.Duration(ms) * time.Millisecond, true
}
