package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	grokAPIURL       = "https://api.x.ai/v1/chat/completions"
	grokDefaultModel = "grok-beta"
	grokHTTPTimeout  = 120 * time.Second
)

var grokHTTPClient = &http.Client{Timeout: grokHTTPTimeout}

// GrokProvider implements Provider against xAI's OpenAI-compatible
// chat completions API using server-sent-events framing.
type GrokProvider struct {
	apiKey string
	model  string
	apiURL string
}

func NewGrokProvider(apiKey, model string) *GrokProvider {
	return &GrokProvider{
		apiKey: apiKey,
		model:  chooseModel(model, grokDefaultModel),
		apiURL: grokAPIURL,
	}
}

func (p *GrokProvider) Key() Backend { return BackendGrok }

func (p *GrokProvider) Name() string {
	return fmt.Sprintf("Grok (%s)", p.model)
}

type grokChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type grokChatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Stream sends the conversation and yields SSE content deltas. The
// system prompt travels as a leading system message; any system turns
// already in the history are folded into it first.
func (p *GrokProvider) Stream(ctx context.Context, req Request) (Stream, error) {
	system, rest := SplitSystem(req.Messages, req.SystemPrompt)
	messages := Normalize(rest, system)

	payload := grokChatRequest{
		Model:    chooseModel(req.Model, p.model),
		Messages: messages,
		Stream:   true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	return newEventStream(ctx, func(ctx context.Context, events chan<- Event) error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
		if err != nil {
			return streamErrorf(ErrInternal, "Error: %v", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Accept", "text/event-stream")

		resp, err := grokHTTPClient.Do(httpReq)
		if err != nil {
			return streamErrorf(ErrConnectivity, "Error: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return streamErrorf(ErrStatus, "Error: xAI API returned status %d", resp.StatusCode)
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			data := strings.TrimPrefix(line, "data: ")
			if data == "[DONE]" {
				break
			}
			var chunk grokChatChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				// Keepalives and partial frames are skipped.
				continue
			}
			if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
				events <- Event{Type: EventTextDelta, Text: chunk.Choices[0].Delta.Content}
			}
		}
		if err := scanner.Err(); err != nil {
			return streamErrorf(ErrConnectivity, "Error: xAI streaming failed: %v", err)
		}
		events <- Event{Type: EventDone}
		return nil
	}), nil
}
