package chat

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/solho/setlist/internal/errors"
)

const dataPrefix = "data: "

// maxLineSize bounds a single streamed line. Complete payloads carry
// full responses, so this is well above typical event sizes.
const maxLineSize = 1 << 20

// Result is the folded outcome of a streaming chat round-trip.
type Result struct {
	SessionID string
	Mode      string
	Status    string
	Response  string
	Images    []string
}

// Decoder reads newline-delimited "data: {json}" events from a
// chunked byte stream. Lines split across chunk boundaries are
// rejoined before parsing; lines without the data prefix are ignored.
type Decoder struct {
	scanner *bufio.Scanner
}

// NewDecoder creates a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 4096), maxLineSize)
	return &Decoder{scanner: s}
}

// Next returns the next decoded event. It returns io.EOF when the
// stream ends cleanly and ErrStreamProtocol when a data line does not
// parse as JSON.
func (d *Decoder) Next() (StreamEvent, error) {
	for d.scanner.Scan() {
		line := d.scanner.Text()
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}

		var ev StreamEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, dataPrefix)), &ev); err != nil {
			return StreamEvent{}, fmt.Errorf("%w: %v", errors.ErrStreamProtocol, err)
		}
		return ev, nil
	}

	if err := d.scanner.Err(); err != nil {
		return StreamEvent{}, err
	}
	return StreamEvent{}, io.EOF
}

// Decode consumes the stream to completion, folding events into a
// Result. onEvent, when non-nil, is called for every event in arrival
// order. An error event aborts the decode with the carried message; a
// stream that ends without a complete event is a failed round-trip.
func (d *Decoder) Decode(onEvent func(StreamEvent)) (*Result, error) {
	res := &Result{}
	completed := false

	for {
		ev, err := d.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, err
		}

		if onEvent != nil {
			onEvent(ev)
		}

		switch ev.Type {
		case EventConnected:
			if res.SessionID == "" {
				res.SessionID = ev.SessionID
			}
		case EventMode:
			res.Mode = ev.Mode
		case EventTaskStart:
			res.Status = ev.Task
		case EventTaskComplete, EventStep:
			res.Status = ev.Message
		case EventComplete:
			res.Response = ev.Response
			res.Images = ev.Images
			if ev.Mode != "" {
				res.Mode = ev.Mode
			}
			completed = true
		case EventError:
			return res, fmt.Errorf("chat service error: %s", ev.Error)
		}
	}

	if !completed {
		return res, errors.ErrStreamIncomplete
	}
	return res, nil
}
