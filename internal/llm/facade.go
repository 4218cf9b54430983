package llm

import "context"

// Generator is the single entry point for text generation. It owns the
// local backend's configuration and dispatches each request to the
// matching provider. All failures surface as in-band stream events so
// callers can render partial output up to the point of failure.
type Generator struct {
	ollama *OllamaProvider
}

// NewGenerator creates a façade. host and defaultModel configure the
// local Ollama backend; cloud backends are constructed per call from
// the request's API key.
func NewGenerator(host, defaultModel string) *Generator {
	return &Generator{ollama: NewOllamaProvider(host, defaultModel)}
}

// Ollama exposes the local provider for model directory operations and
// connectivity probes.
func (g *Generator) Ollama() *OllamaProvider {
	return g.ollama
}

// Generate dispatches the request to its backend's adapter and returns
// a lazy event stream. It never returns an error: a missing credential,
// an unknown backend, or a provider failure all become a single
// terminal EventError. Selection is single-shot; there are no retries
// and no cross-backend merging.
func (g *Generator) Generate(ctx context.Context, req Request) Stream {
	var provider Provider

	switch req.Backend {
	case BackendOllama:
		provider = g.ollama
	case BackendClaude:
		if req.APIKey == "" {
			return errorStream(streamErrorf(ErrCredential, "Error: Claude API key not provided."))
		}
		provider = NewClaudeProvider(req.APIKey, req.Model)
	case BackendChatGPT:
		if req.APIKey == "" {
			return errorStream(streamErrorf(ErrCredential, "Error: ChatGPT API key not provided."))
		}
		provider = NewChatGPTProvider(req.APIKey, req.Model)
	case BackendGrok:
		if req.APIKey == "" {
			return errorStream(streamErrorf(ErrCredential, "Error: Grok API key not provided."))
		}
		provider = NewGrokProvider(req.APIKey, req.Model)
	default:
		return errorStream(streamErrorf(ErrBackend,
			"Error: unknown backend %q. Use %q, %q, %q, or %q.",
			string(req.Backend), BackendOllama, BackendClaude, BackendChatGPT, BackendGrok))
	}

	stream, err := provider.Stream(ctx, req)
	if err != nil {
		return errorStream(asStreamError(err))
	}
	return stream
}

// Available lists the usable backend labels given the configured cloud
// keys, probing the local server live.
func (g *Generator) Available(ctx context.Context, keys Keys) []string {
	return Available(ctx, keys, g.ollama.Probe)
}
