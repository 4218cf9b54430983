package llm

import (
	"context"
	"fmt"
)

// Role identifies who authored a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation turn. Slices of Message are ordered;
// the order is replayed verbatim to the backend. Turns are appended,
// never edited in place.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Backend selects one of the four generation providers.
type Backend string

const (
	BackendOllama  Backend = "ollama"
	BackendClaude  Backend = "claude"
	BackendChatGPT Backend = "chatgpt"
	BackendGrok    Backend = "grok"
)

// Request carries everything needed for one generation call.
// It is built fresh per call and never persisted.
type Request struct {
	Messages     []Message
	Backend      Backend
	Model        string // empty selects the backend's default
	SystemPrompt string
	APIKey       string // required for cloud backends only
}

// EventType discriminates stream events.
type EventType string

const (
	// EventTextDelta carries an incremental piece of generated text.
	EventTextDelta EventType = "text_delta"
	// EventError is terminal: the stream failed after any prior deltas.
	EventError EventType = "error"
	// EventDone is terminal: the backend closed the stream cleanly.
	EventDone EventType = "done"
)

// Event is one item in a generation stream. Exactly one terminal event
// (EventError or EventDone) ends every stream; text already delivered
// before a failure remains valid and should stay visible to the user.
type Event struct {
	Type EventType
	Text string
	Err  *StreamError
}

// ErrorKind classifies stream failures so callers can react without
// pattern-matching on message text.
type ErrorKind string

const (
	// ErrConnectivity covers refused connections and timeouts.
	ErrConnectivity ErrorKind = "connectivity"
	// ErrStatus is a non-success HTTP status from the backend.
	ErrStatus ErrorKind = "status"
	// ErrCredential means a cloud backend was selected without an API key.
	ErrCredential ErrorKind = "credential"
	// ErrBackend means the request named an unknown backend.
	ErrBackend ErrorKind = "backend"
	// ErrInternal covers SDK and transport failures with no finer class.
	ErrInternal ErrorKind = "internal"
)

// StreamError is the in-band failure record carried by an EventError.
type StreamError struct {
	Kind    ErrorKind
	Message string
}

func (e *StreamError) Error() string {
	return e.Message
}

func streamErrorf(kind ErrorKind, format string, args ...interface{}) *StreamError {
	return &StreamError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Stream is a lazy, finite sequence of events. Recv blocks until the
// next event arrives and returns io.EOF once the stream is exhausted.
// Streams are not restartable; construct a new one to retry.
type Stream interface {
	Recv() (Event, error)
	Close() error
}

// Provider adapts one backend's wire protocol into a Stream.
type Provider interface {
	Key() Backend
	Name() string
	Stream(ctx context.Context, req Request) (Stream, error)
}
