package llm

import "context"

// BackendInfo describes one backend in the static registry.
type BackendInfo struct {
	Key          Backend
	Label        string
	NeedsAPIKey  bool
	DefaultModel string
}

const (
	labelOllama  = "Ollama (Local)"
	labelClaude  = "Claude (Anthropic)"
	labelChatGPT = "ChatGPT (OpenAI)"
	labelGrok    = "Grok (xAI)"
)

var backendTable = []BackendInfo{
	{Key: BackendOllama, Label: labelOllama, NeedsAPIKey: false, DefaultModel: ""},
	{Key: BackendClaude, Label: labelClaude, NeedsAPIKey: true, DefaultModel: claudeDefaultModel},
	{Key: BackendChatGPT, Label: labelChatGPT, NeedsAPIKey: true, DefaultModel: chatGPTDefaultModel},
	{Key: BackendGrok, Label: labelGrok, NeedsAPIKey: true, DefaultModel: grokDefaultModel},
}

// Backends returns the static descriptor table, in display order.
func Backends() []BackendInfo {
	out := make([]BackendInfo, len(backendTable))
	copy(out, backendTable)
	return out
}

// Lookup returns the descriptor for a backend key.
func Lookup(key Backend) (BackendInfo, bool) {
	for _, info := range backendTable {
		if info.Key == key {
			return info, true
		}
	}
	return BackendInfo{}, false
}

// Keys reports which cloud API keys are configured. Presence only; the
// values never travel through the registry.
type Keys struct {
	Claude bool
	Grok   bool
	OpenAI bool
}

// Probe reports whether the local model server answered a liveness
// check. It is re-run on every availability call, never cached.
type Probe func(ctx context.Context) bool

// Available returns the display labels of usable backends. The local
// backend is listed iff the probe succeeds right now; each cloud backend
// iff its key is configured. An empty result falls back to the local
// label so a caller always has something to select, even though that
// fallback may be unreachable.
func Available(ctx context.Context, keys Keys, probe Probe) []string {
	var labels []string
	if probe != nil && probe(ctx) {
		labels = append(labels, labelOllama)
	}
	if keys.Claude {
		labels = append(labels, labelClaude)
	}
	if keys.OpenAI {
		labels = append(labels, labelChatGPT)
	}
	if keys.Grok {
		labels = append(labels, labelGrok)
	}
	if len(labels) == 0 {
		labels = append(labels, labelOllama)
	}
	return labels
}

// KeyForLabel maps a display label back to its backend key. Total:
// unrecognized labels resolve to the local backend, never an error.
func KeyForLabel(label string) Backend {
	for _, info := range backendTable {
		if info.Label == label {
			return info.Key
		}
	}
	return BackendOllama
}
