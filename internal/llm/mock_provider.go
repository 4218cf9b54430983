package llm

import (
	"context"
	"sync"
)

// MockProvider is a scripted provider for tests. It emits configured
// deltas (or a terminal error) and records every request it receives.
type MockProvider struct {
	name     string
	key      Backend
	deltas   []string
	err      *StreamError
	Requests []Request
	mu       sync.Mutex
}

func NewMockProvider(name string) *MockProvider {
	return &MockProvider{name: name, key: BackendOllama}
}

func (m *MockProvider) Key() Backend { return m.key }

func (m *MockProvider) Name() string { return m.name }

// WithDeltas sets the text deltas to emit, for chaining.
func (m *MockProvider) WithDeltas(deltas ...string) *MockProvider {
	m.deltas = deltas
	return m
}

// WithError makes the stream fail after any configured deltas.
func (m *MockProvider) WithError(serr *StreamError) *MockProvider {
	m.err = serr
	return m
}

func (m *MockProvider) Stream(ctx context.Context, req Request) (Stream, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()

	return newEventStream(ctx, func(ctx context.Context, events chan<- Event) error {
		for _, d := range m.deltas {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case events <- Event{Type: EventTextDelta, Text: d}:
			}
		}
		if m.err != nil {
			return m.err
		}
		events <- Event{Type: EventDone}
		return nil
	}), nil
}
