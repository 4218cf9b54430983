package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"
)

// Timeouts mirror the workload: probes are quick, generation is slow,
// registry pulls download multi-gigabyte models.
const (
	ollamaProbeTimeout  = 5 * time.Second
	ollamaChatTimeout   = 120 * time.Second
	ollamaPullTimeout   = 600 * time.Second
	ollamaDeleteTimeout = 30 * time.Second
)

var (
	ollamaProbeClient  = &http.Client{Timeout: ollamaProbeTimeout}
	ollamaChatClient   = &http.Client{Timeout: ollamaChatTimeout}
	ollamaPullClient   = &http.Client{Timeout: ollamaPullTimeout}
	ollamaDeleteClient = &http.Client{Timeout: ollamaDeleteTimeout}
)

// OllamaProvider implements Provider against a local Ollama server's
// newline-delimited JSON streaming API. It also exposes the model
// directory operations (list, pull, delete) that only the local backend
// supports.
type OllamaProvider struct {
	host  string
	model string
}

// NewOllamaProvider creates a provider for the Ollama server at host.
// model is the process-wide default used when a request names none.
func NewOllamaProvider(host, model string) *OllamaProvider {
	return &OllamaProvider{host: host, model: model}
}

func (p *OllamaProvider) Key() Backend { return BackendOllama }

func (p *OllamaProvider) Name() string {
	return fmt.Sprintf("Ollama (%s)", p.host)
}

// Host returns the configured endpoint URL.
func (p *OllamaProvider) Host() string { return p.host }

type ollamaChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type ollamaChatChunk struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

// Stream sends the conversation to /api/chat and yields content deltas.
// The system prompt is normalized inline: prepended as a system turn
// unless one is already present.
func (p *OllamaProvider) Stream(ctx context.Context, req Request) (Stream, error) {
	messages := Normalize(req.Messages, req.SystemPrompt)
	payload := ollamaChatRequest{
		Model:    chooseModel(req.Model, p.model),
		Messages: messages,
		Stream:   true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	return newEventStream(ctx, func(ctx context.Context, events chan<- Event) error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+"/api/chat", bytes.NewReader(body))
		if err != nil {
			return streamErrorf(ErrInternal, "Error: %v", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := ollamaChatClient.Do(httpReq)
		if err != nil {
			return streamErrorf(ErrConnectivity, "Error: could not connect to Ollama at %s", p.host)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return streamErrorf(ErrStatus, "Error: Ollama returned status code %d", resp.StatusCode)
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			var chunk ollamaChatChunk
			if err := json.Unmarshal(line, &chunk); err != nil {
				// Partial or corrupted frames are tolerated; the
				// stream keeps going.
				continue
			}
			if chunk.Message.Content != "" {
				events <- Event{Type: EventTextDelta, Text: chunk.Message.Content}
			}
		}
		if err := scanner.Err(); err != nil {
			return streamErrorf(ErrConnectivity, "Error: request to Ollama timed out")
		}
		events <- Event{Type: EventDone}
		return nil
	}), nil
}

// Probe reports whether the server answers /api/tags within the probe
// timeout. Called on every availability check, never cached.
func (p *OllamaProvider) Probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.host+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := ollamaProbeClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

type ollamaTagsResponse struct {
	Models []json.RawMessage `json:"models"`
}

// ListModels fetches installed model names from /api/tags, sorted and
// deduplicated. Any failure yields an empty list. Entries may be
// objects carrying a name field or plain name strings.
func (p *OllamaProvider) ListModels(ctx context.Context) []string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.host+"/api/tags", nil)
	if err != nil {
		return nil
	}
	resp, err := ollamaProbeClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var names []string
	for _, raw := range tags.Models {
		var entry struct {
			Name string `json:"name"`
		}
		var name string
		if err := json.Unmarshal(raw, &entry); err == nil && entry.Name != "" {
			name = entry.Name
		} else if err := json.Unmarshal(raw, &name); err != nil {
			continue
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type ollamaPullChunk struct {
	Status string `json:"status"`
}

// PullModel downloads a model from the registry, yielding status text as
// the pull progresses. Failures terminate the stream with an in-band
// error, same as generation.
func (p *OllamaProvider) PullModel(ctx context.Context, name string) Stream {
	body, _ := json.Marshal(map[string]string{"name": name})

	return newEventStream(ctx, func(ctx context.Context, events chan<- Event) error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+"/api/pull", bytes.NewReader(body))
		if err != nil {
			return streamErrorf(ErrInternal, "Error: %v", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := ollamaPullClient.Do(httpReq)
		if err != nil {
			return streamErrorf(ErrConnectivity, "Error: could not pull model %s", name)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return streamErrorf(ErrStatus, "Error: could not pull model %s (status %d)", name, resp.StatusCode)
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			var chunk ollamaPullChunk
			if err := json.Unmarshal(line, &chunk); err != nil {
				continue
			}
			if chunk.Status != "" {
				events <- Event{Type: EventTextDelta, Text: chunk.Status}
			}
		}
		if err := scanner.Err(); err != nil {
			return streamErrorf(ErrConnectivity, "Error: pull of %s interrupted", name)
		}
		events <- Event{Type: EventDone}
		return nil
	})
}

// DeleteModel removes an installed model. Soft failure: false on any
// transport or status error.
func (p *OllamaProvider) DeleteModel(ctx context.Context, name string) bool {
	body, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, p.host+"/api/delete", bytes.NewReader(body))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := ollamaDeleteClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
