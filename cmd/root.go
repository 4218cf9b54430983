package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/halcyon-labs/assistant-builder/internal/config"
	"github.com/halcyon-labs/assistant-builder/internal/llm"
	"github.com/halcyon-labs/assistant-builder/internal/store"
	"github.com/halcyon-labs/assistant-builder/internal/usage"
)

var rootCmd = &cobra.Command{
	Use:   "assistant-builder",
	Short: "Build and chat with configurable AI assistants",
	Long: `assistant-builder configures AI assistants (a name, a system prompt and
optional knowledge text) and chats with them through one of several
interchangeable backends: a local Ollama server, Claude, ChatGPT or Grok.

Examples:
  assistant-builder chat                          # chat with the default backend
  assistant-builder chat --assistant Librarian    # chat with a saved assistant
  assistant-builder backends                      # show which backends are usable
  assistant-builder models list                   # list local Ollama models
  assistant-builder assistants create --name X --prompt "..." `,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	SilenceUsage:      true,
}

var flagUser string

func init() {
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "", "Username for per-user assistant files")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig wraps config.Load with a uniform error message.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func newGenerator(cfg *config.Config) *llm.Generator {
	return llm.NewGenerator(cfg.Ollama.Host, cfg.Ollama.Model)
}

func configuredKeys(cfg *config.Config) llm.Keys {
	return llm.Keys{
		Claude: cfg.Claude.APIKey != "",
		Grok:   cfg.Grok.APIKey != "",
		OpenAI: cfg.OpenAI.APIKey != "",
	}
}

func apiKeyFor(cfg *config.Config, backend llm.Backend) string {
	switch backend {
	case llm.BackendClaude:
		return cfg.Claude.APIKey
	case llm.BackendChatGPT:
		return cfg.OpenAI.APIKey
	case llm.BackendGrok:
		return cfg.Grok.APIKey
	}
	return ""
}

// username resolves the per-user store name: the --user flag wins over
// the configured one.
func username(cfg *config.Config) string {
	if flagUser != "" {
		return flagUser
	}
	return cfg.Username
}

func openAssistantStore(cfg *config.Config) (*store.Store, error) {
	dir, err := config.DataDir()
	if err != nil {
		return nil, err
	}
	return store.New(dir, username(cfg)), nil
}

func openUsageLogger() (*usage.Logger, error) {
	dir, err := config.DataDir()
	if err != nil {
		return nil, err
	}
	return usage.NewLogger(filepath.Join(dir, "usage.log.jsonl")), nil
}
