package scraper

import (
	"bufio"
	"io"
	"strings"

	"github.com/gin-contrib/sse"
)

const maxEventLine = 1024 * 1024

// eventReader frames a text/event-stream body into blank-line delimited
// blocks and hands each block to the sse decoder. Decoding the whole body at
// once is not an option since the stream stays open for the length of a job.
type eventReader struct {
	lines   *bufio.Scanner
	pending []sse.Event
}

func newEventReader(r io.Reader) *eventReader {
	lines := bufio.NewScanner(r)
	lines.Buffer(make([]byte, 0, 64*1024), maxEventLine)
	lines.Split(scanEventLines)
	return &eventReader{lines: lines}
}

// next blocks until a complete event is available. A block cut off by the
// end of the body is dropped and io.EOF is returned.
func (er *eventReader) next() (sse.Event, error) {
	for len(er.pending) == 0 {
		block, hasData, err := er.readBlock()
		if err != nil {
			return sse.Event{}, err
		}
		events, err := sse.Decode(strings.NewReader(block))
		if err != nil {
			return sse.Event{}, err
		}
		// The decoder skips unnamed events whose data is empty, but a
		// "data:" field with nothing after it is still a line of output.
		if len(events) == 0 && hasData {
			events = []sse.Event{{Event: EventMessage, Data: ""}}
		}
		er.pending = events
	}

	ev := er.pending[0]
	er.pending = er.pending[1:]
	return ev, nil
}

// readBlock returns the next block with LF line endings and whether it
// carries a data field.
func (er *eventReader) readBlock() (string, bool, error) {
	var b strings.Builder
	hasData := false
	for er.lines.Scan() {
		line := er.lines.Text()
		if line == "" {
			if b.Len() == 0 {
				continue
			}
			return b.String(), hasData, nil
		}
		if line == "data" || strings.HasPrefix(line, "data:") {
			hasData = true
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := er.lines.Err(); err != nil {
		return "", false, err
	}
	return "", false, io.EOF
}

// scanEventLines splits on CRLF, LF or a lone CR. A trailing line with no
// terminator is never returned.
func scanEventLines(data []byte, atEOF bool) (int, []byte, error) {
	for i, c := range data {
		switch c {
		case '\n':
			return i + 1, data[:i], nil
		case '\r':
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, data[:i], nil
				}
				return i + 1, data[:i], nil
			}
			if atEOF {
				return i + 1, data[:i], nil
			}
			// wait for the next byte in case it is the LF of a CRLF
			return 0, nil, nil
		}
	}
	return 0, nil, nil
}

func eventData(ev sse.Event) string {
	if data, ok := ev.Data.(string); ok {
		return data
	}
	return ""
}
