package engine

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// Event is one logical server-sent event. Data is nil when the event carried
// no data lines or its payload was not valid JSON.
type Event struct {
	Name string
	Data json.RawMessage
}

const defaultEventName = "message"

var eventSeparator = regexp.MustCompile(`\r?\n\r?\n`)

// Decoder extracts events from a chunked event stream. Events are separated
// by a blank line; both "\n\n" and "\r\n\r\n" are accepted.
type Decoder struct {
	r   io.Reader
	log *slog.Logger

	buf   strings.Builder
	chunk []byte
	eof   bool
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader, log *slog.Logger) *Decoder {
	return &Decoder{r: r, log: log, chunk: make([]byte, 4096)}
}

// Next returns the next event. At end of stream any unterminated buffered
// event is flushed before io.EOF is returned. Other read errors are returned
// as is and end the stream.
func (d *Decoder) Next() (Event, error) {
	for {
		if evt, ok := d.extract(); ok {
			return evt, nil
		}

		if d.eof {
			rest := d.buf.String()
			d.buf.Reset()
			if strings.TrimSpace(rest) != "" {
				if evt, ok := d.parse(rest); ok {
					return evt, nil
				}
			}
			return Event{}, io.EOF
		}

		n, err := d.r.Read(d.chunk)
		if n > 0 {
			d.buf.Write(d.chunk[:n])
		}
		if errors.Is(err, io.EOF) {
			d.eof = true
		} else if err != nil {
			return Event{}, err
		}
	}
}

// extract pops complete events off the buffer, skipping blocks that hold no
// event or data line.
func (d *Decoder) extract() (Event, bool) {
	for {
		s := d.buf.String()
		loc := eventSeparator.FindStringIndex(s)
		if loc == nil {
			return Event{}, false
		}

		raw, rest := s[:loc[0]], s[loc[1]:]
		d.buf.Reset()
		d.buf.WriteString(rest)

		if evt, ok := d.parse(raw); ok {
			return evt, true
		}
	}
}

func (d *Decoder) parse(raw string) (Event, bool) {
	var (
		name    string
		data    []string
		hasData bool
	)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSuffix(line, "\r")
		switch {
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(line[len("event:"):])
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimSpace(line[len("data:"):]))
			hasData = true
		}
	}

	if name == "" && !hasData {
		return Event{}, false
	}
	if name == "" {
		name = defaultEventName
	}

	evt := Event{Name: name}
	payload := strings.Join(data, "\n")
	if payload == "" {
		return evt, true
	}
	if !json.Valid([]byte(payload)) {
		d.log.Warn("malformed event payload",
			slog.String("event", name),
			slog.Int("size", len(payload)),
		)
		return evt, true
	}
	evt.Data = json.RawMessage(payload)
	return evt, true
}
