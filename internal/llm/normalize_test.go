package llm

import (
	"reflect"
	"strings"
	"testing"
)

func TestNormalizePrependsSystem(t *testing.T) {
	messages := []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	}
	got := Normalize(messages, "be terse")
	if len(got) != 3 {
		t.Fatalf("len=%d, want 3", len(got))
	}
	if got[0].Role != RoleSystem || got[0].Content != "be terse" {
		t.Fatalf("first turn = %+v, want system prompt", got[0])
	}
	if !reflect.DeepEqual(got[1:], messages) {
		t.Fatalf("conversation order changed: %+v", got[1:])
	}
}

func TestNormalizeFirstWriterWins(t *testing.T) {
	messages := []Message{
		{Role: RoleSystem, Content: "original"},
		{Role: RoleUser, Content: "hi"},
	}
	got := Normalize(messages, "ignored")
	if !reflect.DeepEqual(got, messages) {
		t.Fatalf("existing system turn was not left untouched: %+v", got)
	}
}

func TestNormalizeEmptyPromptIsNoOp(t *testing.T) {
	messages := []Message{{Role: RoleUser, Content: "hi"}}
	if got := Normalize(messages, "  "); !reflect.DeepEqual(got, messages) {
		t.Fatalf("blank prompt changed messages: %+v", got)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	messages := []Message{
		{Role: RoleUser, Content: "a"},
		{Role: RoleAssistant, Content: "b"},
	}
	once := Normalize(messages, "sp")
	twice := Normalize(once, "sp")
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("re-normalizing changed the list:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	messages := []Message{{Role: RoleUser, Content: "hi"}}
	Normalize(messages, "sp")
	if messages[0].Role != RoleUser {
		t.Fatalf("input slice was mutated: %+v", messages)
	}
}

func TestSplitSystem(t *testing.T) {
	messages := []Message{
		{Role: RoleSystem, Content: "from history"},
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	}

	system, rest := SplitSystem(messages, "")
	if system != "from history" {
		t.Fatalf("system=%q, want content of history turn", system)
	}
	if len(rest) != 2 || rest[0].Role != RoleUser || rest[1].Role != RoleAssistant {
		t.Fatalf("rest=%+v", rest)
	}

	// An explicit prompt beats the history turn, which is still removed.
	system, rest = SplitSystem(messages, "explicit")
	if system != "explicit" {
		t.Fatalf("system=%q, want explicit prompt", system)
	}
	for _, m := range rest {
		if m.Role == RoleSystem {
			t.Fatalf("system turn survived extraction: %+v", rest)
		}
	}
}

func TestJoinKnowledge(t *testing.T) {
	got := JoinKnowledge("You are a librarian.", "Open 9-5.")
	want := "You are a librarian." + knowledgeSeparator + "Open 9-5."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	if got := JoinKnowledge("prompt", ""); got != "prompt" {
		t.Fatalf("empty knowledge changed prompt: %q", got)
	}
}

func TestJoinKnowledgeCapsLength(t *testing.T) {
	kb := strings.Repeat("x", KnowledgeBaseLimit+100)
	got := JoinKnowledge("p", kb)
	wantLen := len("p") + len(knowledgeSeparator) + KnowledgeBaseLimit
	if len(got) != wantLen {
		t.Fatalf("len=%d, want %d", len(got), wantLen)
	}
}
