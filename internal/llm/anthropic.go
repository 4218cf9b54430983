package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	claudeDefaultModel  = "claude-3-5-sonnet-20241022"
	claudeDefaultSystem = "You are a helpful assistant."
	claudeMaxTokens     = 2048
)

// ClaudeProvider implements Provider using the Anthropic SDK's native
// streaming. Anthropic carries the system prompt in a dedicated request
// field, so system turns are extracted from the history rather than
// sent inline.
type ClaudeProvider struct {
	client *anthropic.Client
	model  string
}

func NewClaudeProvider(apiKey, model string) *ClaudeProvider {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &ClaudeProvider{
		client: &client,
		model:  chooseModel(model, claudeDefaultModel),
	}
}

func (p *ClaudeProvider) Key() Backend { return BackendClaude }

func (p *ClaudeProvider) Name() string {
	return fmt.Sprintf("Claude (%s)", p.model)
}

func (p *ClaudeProvider) Stream(ctx context.Context, req Request) (Stream, error) {
	system, rest := SplitSystem(req.Messages, req.SystemPrompt)
	if system == "" {
		system = claudeDefaultSystem
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(chooseModel(req.Model, p.model)),
		MaxTokens: claudeMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: buildClaudeMessages(rest),
	}

	return newEventStream(ctx, func(ctx context.Context, events chan<- Event) error {
		stream := p.client.Messages.NewStreaming(ctx, params)
		for stream.Next() {
			event := stream.Current()
			switch variant := event.AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				switch delta := variant.Delta.AsAny().(type) {
				case anthropic.TextDelta:
					if delta.Text != "" {
						events <- Event{Type: EventTextDelta, Text: delta.Text}
					}
				}
			}
		}
		if err := stream.Err(); err != nil {
			return streamErrorf(ErrInternal, "Error: %v", err)
		}
		events <- Event{Type: EventDone}
		return nil
	}), nil
}

func buildClaudeMessages(messages []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleAssistant:
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return out
}
