package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const chatGPTDefaultModel = "gpt-4o-mini"

// ChatGPTProvider implements Provider using the OpenAI SDK's chat
// completions streaming. Like Claude, the system prompt is extracted
// from the history and resent as the leading system message.
type ChatGPTProvider struct {
	client *openai.Client
	model  string
}

func NewChatGPTProvider(apiKey, model string) *ChatGPTProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &ChatGPTProvider{
		client: &client,
		model:  chooseModel(model, chatGPTDefaultModel),
	}
}

func (p *ChatGPTProvider) Key() Backend { return BackendChatGPT }

func (p *ChatGPTProvider) Name() string {
	return fmt.Sprintf("ChatGPT (%s)", p.model)
}

func (p *ChatGPTProvider) Stream(ctx context.Context, req Request) (Stream, error) {
	system, rest := SplitSystem(req.Messages, req.SystemPrompt)

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(chooseModel(req.Model, p.model)),
		Messages: buildChatGPTMessages(system, rest),
	}

	return newEventStream(ctx, func(ctx context.Context, events chan<- Event) error {
		stream := p.client.Chat.Completions.NewStreaming(ctx, params)
		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			// Only chunks with non-empty content are forwarded.
			if content := chunk.Choices[0].Delta.Content; content != "" {
				events <- Event{Type: EventTextDelta, Text: content}
			}
		}
		if err := stream.Err(); err != nil {
			return streamErrorf(ErrInternal, "Error: %v", err)
		}
		events <- Event{Type: EventDone}
		return nil
	}), nil
}

func buildChatGPTMessages(system string, messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	if system != "" {
		out = append(out, openai.SystemMessage(system))
	}
	for _, m := range messages {
		switch m.Role {
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
