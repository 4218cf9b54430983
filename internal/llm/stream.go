package llm

import (
	"context"
	"io"
	"strings"
)

type channelStream struct {
	ctx    context.Context
	cancel context.CancelFunc
	events <-chan Event
}

// newEventStream runs fn in a goroutine feeding the stream. fn emits
// deltas and a final EventDone; returning a non-nil error instead emits
// a terminal EventError. Cancelling the context aborts the stream.
func newEventStream(ctx context.Context, fn func(context.Context, chan<- Event) error) Stream {
	streamCtx, cancel := context.WithCancel(ctx)
	ch := make(chan Event, 16)
	go func() {
		defer close(ch)
		if err := fn(streamCtx, ch); err != nil {
			ch <- Event{Type: EventError, Err: asStreamError(err)}
		}
	}()
	return &channelStream{ctx: streamCtx, cancel: cancel, events: ch}
}

// errorStream yields exactly one EventError and terminates. Used when a
// request is rejected before any transport is dialed.
func errorStream(serr *StreamError) Stream {
	ch := make(chan Event, 1)
	ch <- Event{Type: EventError, Err: serr}
	close(ch)
	ctx, cancel := context.WithCancel(context.Background())
	return &channelStream{ctx: ctx, cancel: cancel, events: ch}
}

func (s *channelStream) Recv() (Event, error) {
	// Drain buffered events before checking ctx.Done() so a terminal
	// event is never dropped when both channels are ready.
	select {
	case event, ok := <-s.events:
		if !ok {
			return Event{}, io.EOF
		}
		return event, nil
	default:
	}

	select {
	case <-s.ctx.Done():
		return Event{}, s.ctx.Err()
	case event, ok := <-s.events:
		if !ok {
			return Event{}, io.EOF
		}
		return event, nil
	}
}

func (s *channelStream) Close() error {
	s.cancel()
	return nil
}

func asStreamError(err error) *StreamError {
	if serr, ok := err.(*StreamError); ok {
		return serr
	}
	return &StreamError{Kind: ErrInternal, Message: err.Error()}
}

// CollectText drains a stream, concatenating every delta. The returned
// error is the stream's terminal StreamError, if any; text produced
// before the failure is still returned.
func CollectText(s Stream) (string, *StreamError) {
	defer s.Close()
	var sb strings.Builder
	var serr *StreamError
	for {
		event, err := s.Recv()
		if err != nil {
			break
		}
		switch event.Type {
		case EventTextDelta:
			sb.WriteString(event.Text)
		case EventError:
			serr = event.Err
		}
	}
	return sb.String(), serr
}
