package chat

import (
	"errors"
	"io"
	"strings"
	"testing"

	slerrors "github.com/solho/setlist/internal/errors"
)

// chunkReader returns at most n bytes per Read call.
type chunkReader struct {
	data []byte
	n    int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := r.n
	if n > len(r.data) {
		n = len(r.data)
	}
	if n > len(p) {
		n = len(p)
	}
	copy(p, r.data[:n])
	r.data = r.data[n:]
	return n, nil
}

func TestDecoderNext(t *testing.T) {
	input := "data: {\"type\":\"connected\",\"session_id\":\"abc\"}\n" +
		": keepalive comment\n" +
		"data: {\"type\":\"step\",\"message\":\"searching\"}\n"

	d := NewDecoder(strings.NewReader(input))

	ev, err := d.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if ev.Type != EventConnected || ev.SessionID != "abc" {
		t.Errorf("Next() = %+v, want connected/abc", ev)
	}

	ev, err = d.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if ev.Type != EventStep || ev.Message != "searching" {
		t.Errorf("Next() = %+v, want step/searching", ev)
	}

	if _, err = d.Next(); err != io.EOF {
		t.Errorf("Next() error = %v, want io.EOF", err)
	}
}

func TestDecoderChunkSplitInvariance(t *testing.T) {
	line := "data: {\"type\":\"step\",\"message\":\"x\"}\n"

	// Every chunk size must yield the same single event.
	for n := 1; n <= len(line); n++ {
		d := NewDecoder(&chunkReader{data: []byte(line), n: n})

		ev, err := d.Next()
		if err != nil {
			t.Fatalf("chunk size %d: Next() error = %v", n, err)
		}
		if ev.Type != EventStep || ev.Message != "x" {
			t.Errorf("chunk size %d: Next() = %+v, want step/x", n, ev)
		}

		if _, err = d.Next(); err != io.EOF {
			t.Errorf("chunk size %d: second Next() error = %v, want io.EOF", n, err)
		}
	}
}

func TestDecoderProtocolError(t *testing.T) {
	d := NewDecoder(strings.NewReader("data: {not json\n"))
	if _, err := d.Next(); !errors.Is(err, slerrors.ErrStreamProtocol) {
		t.Errorf("Next() error = %v, want ErrStreamProtocol", err)
	}
}

func TestDecodeFoldsEvents(t *testing.T) {
	input := strings.Join([]string{
		`data: {"type":"connected","session_id":"s1"}`,
		`data: {"type":"mode","mode":"playlist"}`,
		`data: {"type":"task_start","task":"Finding tracks"}`,
		`data: {"type":"step","message":"Searching catalog"}`,
		`data: {"type":"task_complete","message":"Found 10 tracks"}`,
		`data: {"type":"complete","response":"Here is your playlist","images":["http://img/1"]}`,
	}, "\n") + "\n"

	var statuses []string
	res, err := NewDecoder(strings.NewReader(input)).Decode(func(ev StreamEvent) {
		switch ev.Type {
		case EventTaskStart:
			statuses = append(statuses, ev.Task)
		case EventStep, EventTaskComplete:
			statuses = append(statuses, ev.Message)
		}
	})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if res.SessionID != "s1" {
		t.Errorf("SessionID = %q, want s1", res.SessionID)
	}
	if res.Mode != "playlist" {
		t.Errorf("Mode = %q, want playlist", res.Mode)
	}
	if res.Response != "Here is your playlist" {
		t.Errorf("Response = %q", res.Response)
	}
	if len(res.Images) != 1 || res.Images[0] != "http://img/1" {
		t.Errorf("Images = %v", res.Images)
	}

	want := []string{"Finding tracks", "Searching catalog", "Found 10 tracks"}
	if len(statuses) != len(want) {
		t.Fatalf("statuses = %v, want %v", statuses, want)
	}
	for i := range want {
		if statuses[i] != want[i] {
			t.Errorf("statuses[%d] = %q, want %q", i, statuses[i], want[i])
		}
	}
}

func TestDecodeErrorEventAborts(t *testing.T) {
	input := `data: {"type":"step","message":"working"}` + "\n" +
		`data: {"type":"error","error":"model overloaded"}` + "\n" +
		`data: {"type":"complete","response":"never seen"}` + "\n"

	var seen []string
	res, err := NewDecoder(strings.NewReader(input)).Decode(func(ev StreamEvent) {
		seen = append(seen, ev.Type)
	})
	if err == nil || !strings.Contains(err.Error(), "model overloaded") {
		t.Fatalf("Decode() error = %v, want carried message", err)
	}
	if res.Response != "" {
		t.Errorf("Response = %q, want empty after abort", res.Response)
	}
	// The complete event after error must not have been consumed.
	for _, typ := range seen {
		if typ == EventComplete {
			t.Error("complete event consumed after error abort")
		}
	}
}

func TestDecodeIncompleteStream(t *testing.T) {
	input := `data: {"type":"step","message":"working"}` + "\n"

	_, err := NewDecoder(strings.NewReader(input)).Decode(nil)
	if !errors.Is(err, slerrors.ErrStreamIncomplete) {
		t.Errorf("Decode() error = %v, want ErrStreamIncomplete", err)
	}
}

func TestDecodeIgnoresUnprefixedLines(t *testing.T) {
	input := "event: step\n" +
		"\n" +
		`data: {"type":"complete","response":"ok","session_id":"s2"}` + "\n"

	res, err := NewDecoder(strings.NewReader(input)).Decode(nil)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if res.Response != "ok" {
		t.Errorf("Response = %q, want ok", res.Response)
	}
}
