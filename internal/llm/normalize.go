package llm

import "strings"

// knowledgeSeparator joins an assistant's system prompt to its raw
// knowledge-base text. The knowledge base rides inside the system prompt
// and is never sent as a separate turn.
const knowledgeSeparator = "\n\n**Knowledge Base Context:**\n"

// KnowledgeBaseLimit caps how much uploaded text is stuffed into the
// system prompt.
const KnowledgeBaseLimit = 5000

// Normalize returns messages with systemPrompt prepended as a system
// turn, unless one is already present. An existing system turn wins and
// the argument is ignored. The input slice is never mutated.
func Normalize(messages []Message, systemPrompt string) []Message {
	if strings.TrimSpace(systemPrompt) == "" {
		return messages
	}
	for _, m := range messages {
		if m.Role == RoleSystem {
			return messages
		}
	}
	out := make([]Message, 0, len(messages)+1)
	out = append(out, Message{Role: RoleSystem, Content: systemPrompt})
	return append(out, messages...)
}

// SplitSystem extracts system turns for backends that carry the system
// prompt in a dedicated request field. The first system turn's content
// wins when the caller passed no explicit prompt; remaining turns are
// returned in order with all system turns removed.
func SplitSystem(messages []Message, systemPrompt string) (string, []Message) {
	system := systemPrompt
	rest := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			if system == "" {
				system = m.Content
			}
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}

// JoinKnowledge merges knowledge-base text into the system prompt,
// capped at KnowledgeBaseLimit characters.
func JoinKnowledge(systemPrompt, knowledge string) string {
	knowledge = strings.TrimSpace(knowledge)
	if knowledge == "" {
		return systemPrompt
	}
	if len(knowledge) > KnowledgeBaseLimit {
		knowledge = knowledge[:KnowledgeBaseLimit]
	}
	if systemPrompt == "" {
		return strings.TrimPrefix(knowledgeSeparator, "\n\n") + knowledge
	}
	return systemPrompt + knowledgeSeparator + knowledge
}
