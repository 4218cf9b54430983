// Package store persists assistant records as a flat JSON file,
// rewritten wholesale on every change. A per-user file naming scheme
// keeps each user's assistants separate.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status of an assistant. Draft assistants are hidden from chat.
const (
	StatusActive = "Active"
	StatusDraft  = "Draft"
)

// Assistant is one configured AI assistant. The generation core reads
// only SystemPrompt and KnowledgeBase; everything else is directory
// metadata.
type Assistant struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	SystemPrompt  string `json:"system_prompt"`
	KnowledgeBase string `json:"knowledge_base,omitempty"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

// Store reads and rewrites one user's assistant file. A process-local
// mutex serializes writers; cross-process writers are not coordinated.
type Store struct {
	path string
	mu   sync.Mutex
}

// FileName returns the per-user assistant file name: lowercased
// username prefix, or the shared default when username is empty.
func FileName(username string) string {
	if username == "" {
		return "assistants.json"
	}
	return strings.ToLower(username) + "_assistants.json"
}

// New creates a store for username's assistants under dir.
func New(dir, username string) *Store {
	return &Store{path: filepath.Join(dir, FileName(username))}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load returns all assistants. A missing or unreadable file yields an
// empty list, never an error.
func (s *Store) Load() []Assistant {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var assistants []Assistant
	if err := json.Unmarshal(data, &assistants); err != nil {
		return nil
	}
	return assistants
}

// Save rewrites the whole file.
func (s *Store) Save(assistants []Assistant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if assistants == nil {
		assistants = []Assistant{}
	}
	data, err := json.MarshalIndent(assistants, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal assistants: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	return os.WriteFile(s.path, data, 0644)
}

// Add appends an assistant, filling in ID, Status and CreatedAt when
// absent, and persists.
func (s *Store) Add(a Assistant) (Assistant, error) {
	applyDefaults(&a)
	assistants := append(s.Load(), a)
	if err := s.Save(assistants); err != nil {
		return Assistant{}, err
	}
	return a, nil
}

// Delete removes the assistant with the given ID. Returns false when no
// record matched.
func (s *Store) Delete(id string) (bool, error) {
	assistants := s.Load()
	kept := assistants[:0]
	for _, a := range assistants {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	if len(kept) == len(assistants) {
		return false, nil
	}
	return true, s.Save(kept)
}

// FindByName returns the first assistant with the given name.
func (s *Store) FindByName(name string) (Assistant, bool) {
	for _, a := range s.Load() {
		if a.Name == name {
			return a, true
		}
	}
	return Assistant{}, false
}

// Filter returns assistants matching a case-insensitive search over
// name and description, restricted to status when non-empty.
func Filter(assistants []Assistant, search, status string) []Assistant {
	search = strings.ToLower(search)
	var out []Assistant
	for _, a := range assistants {
		if status != "" && a.Status != status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(a.Name), search) &&
			!strings.Contains(strings.ToLower(a.Description), search) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Import validates an exported assistant record and fills in the fields
// an export may omit. Required: name, description, system_prompt.
func Import(data []byte) (Assistant, error) {
	var a Assistant
	if err := json.Unmarshal(data, &a); err != nil {
		return Assistant{}, fmt.Errorf("invalid JSON: %w", err)
	}
	if a.Name == "" || a.Description == "" || a.SystemPrompt == "" {
		return Assistant{}, fmt.Errorf("missing required fields: name, description, system_prompt")
	}
	applyDefaults(&a)
	return a, nil
}

// Export marshals one assistant the way Import expects it back.
func Export(a Assistant) ([]byte, error) {
	return json.MarshalIndent(a, "", "  ")
}

func applyDefaults(a *Assistant) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = StatusActive
	}
	if a.CreatedAt == "" {
		a.CreatedAt = time.Now().Format(time.RFC3339)
	}
}
