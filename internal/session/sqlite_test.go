package session

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/halcyon-labs/assistant-builder/internal/llm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndList(t *testing.T) {
	s := newTestStore(t)

	sess, err := s.Create("Librarian", "ollama", "llama3")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("session has no ID")
	}

	sessions, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != sess.ID {
		t.Fatalf("sessions=%+v", sessions)
	}
	if sessions[0].Assistant != "Librarian" || sessions[0].Backend != "ollama" {
		t.Fatalf("metadata lost: %+v", sessions[0])
	}
}

func TestAppendPreservesOrder(t *testing.T) {
	s := newTestStore(t)
	sess, err := s.Create("", "chatgpt", "")
	if err != nil {
		t.Fatal(err)
	}

	turns := []llm.Message{
		{Role: llm.RoleUser, Content: "first"},
		{Role: llm.RoleAssistant, Content: "second"},
		{Role: llm.RoleUser, Content: "third"},
	}
	for _, m := range turns {
		if err := s.Append(sess.ID, m); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := s.Messages(sess.ID)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(got) != len(turns) {
		t.Fatalf("got %d messages, want %d", len(got), len(turns))
	}
	for i := range turns {
		if got[i] != turns[i] {
			t.Fatalf("turn %d = %+v, want %+v", i, got[i], turns[i])
		}
	}
}

func TestExport(t *testing.T) {
	s := newTestStore(t)
	sess, err := s.Create("", "grok", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Append(sess.ID, llm.Message{Role: llm.RoleUser, Content: "hi"}); err != nil {
		t.Fatal(err)
	}

	data, err := s.Export(sess.ID)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	var messages []llm.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if len(messages) != 1 || messages[0].Content != "hi" {
		t.Fatalf("messages=%+v", messages)
	}
}

func TestDeleteCascades(t *testing.T) {
	s := newTestStore(t)
	sess, err := s.Create("", "ollama", "llama3")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Append(sess.ID, llm.Message{Role: llm.RoleUser, Content: "hi"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	sessions, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 0 {
		t.Fatalf("session survived delete: %+v", sessions)
	}
	messages, err := s.Messages(sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(messages) != 0 {
		t.Fatalf("messages survived cascade: %+v", messages)
	}
}
