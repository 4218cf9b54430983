package llm

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"
)

func drainEvents(t *testing.T, s Stream) []Event {
	t.Helper()
	defer s.Close()
	var events []Event
	for {
		ev, err := s.Recv()
		if err == io.EOF {
			return events
		}
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		events = append(events, ev)
	}
}

func contains(s, sub string) bool {
	return strings.Contains(s, sub)
}

func jsonDecode(r io.Reader, v interface{}) error {
	return json.NewDecoder(r).Decode(v)
}

func TestEventStreamDeliversInOrder(t *testing.T) {
	stream := newEventStream(context.Background(), func(ctx context.Context, events chan<- Event) error {
		events <- Event{Type: EventTextDelta, Text: "a"}
		events <- Event{Type: EventTextDelta, Text: "b"}
		events <- Event{Type: EventDone}
		return nil
	})

	events := drainEvents(t, stream)
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].Text != "a" || events[1].Text != "b" {
		t.Fatalf("order broken: %+v", events)
	}
	if events[2].Type != EventDone {
		t.Fatalf("terminal event=%+v", events[2])
	}
}

func TestEventStreamErrorIsTerminal(t *testing.T) {
	stream := newEventStream(context.Background(), func(ctx context.Context, events chan<- Event) error {
		events <- Event{Type: EventTextDelta, Text: "partial"}
		return streamErrorf(ErrStatus, "Error: status 502")
	})

	events := drainEvents(t, stream)
	if len(events) != 2 {
		t.Fatalf("got %d events, want delta then error", len(events))
	}
	if events[0].Text != "partial" {
		t.Fatalf("partial output lost: %+v", events[0])
	}
	last := events[1]
	if last.Type != EventError || last.Err == nil || last.Err.Kind != ErrStatus {
		t.Fatalf("terminal event=%+v, want typed EventError", last)
	}
}

func TestEventStreamCancel(t *testing.T) {
	started := make(chan struct{})
	stream := newEventStream(context.Background(), func(ctx context.Context, events chan<- Event) error {
		close(started)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
			return nil
		}
	})

	<-started
	stream.Close()

	_, err := stream.Recv()
	if err == nil {
		t.Fatal("Recv succeeded after Close")
	}
}

func TestErrorStreamYieldsExactlyOneEvent(t *testing.T) {
	stream := errorStream(streamErrorf(ErrCredential, "Error: Claude API key not provided."))
	events := drainEvents(t, stream)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Type != EventError || events[0].Err.Kind != ErrCredential {
		t.Fatalf("event=%+v", events[0])
	}
}

func TestCollectTextKeepsPartialOutputOnFailure(t *testing.T) {
	stream := newEventStream(context.Background(), func(ctx context.Context, events chan<- Event) error {
		events <- Event{Type: EventTextDelta, Text: "hello "}
		events <- Event{Type: EventTextDelta, Text: "wor"}
		return streamErrorf(ErrConnectivity, "Error: connection lost")
	})

	text, serr := CollectText(stream)
	if text != "hello wor" {
		t.Fatalf("text=%q, partial output must survive the failure", text)
	}
	if serr == nil || serr.Kind != ErrConnectivity {
		t.Fatalf("serr=%+v", serr)
	}
}
