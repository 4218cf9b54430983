package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/halcyon-labs/assistant-builder/internal/config"
	"github.com/halcyon-labs/assistant-builder/internal/llm"
	"github.com/halcyon-labs/assistant-builder/internal/session"
	"github.com/halcyon-labs/assistant-builder/internal/usage"
)

var (
	chatAssistant string
	chatBackend   string
	chatModel     string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with an assistant through any backend",
	Long: `Start an interactive chat. Fragments stream to the terminal as the
backend produces them; if the stream fails mid-way, the partial output
stays visible with the error appended as trailing text.

Examples:
  assistant-builder chat
  assistant-builder chat --backend claude
  assistant-builder chat --assistant Librarian --backend ollama --model mistral`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVarP(&chatAssistant, "assistant", "a", "", "Assistant to chat with (by name)")
	chatCmd.Flags().StringVarP(&chatBackend, "backend", "b", "", "Backend key: ollama, claude, chatgpt, grok")
	chatCmd.Flags().StringVarP(&chatModel, "model", "m", "", "Model name (backend default when empty)")
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gen := newGenerator(cfg)

	backend := llm.Backend(chatBackend)
	if chatBackend == "" {
		labels := gen.Available(cmd.Context(), configuredKeys(cfg))
		backend = llm.KeyForLabel(labels[0])
	}

	// Resolve the assistant's prompt and knowledge base, if one was named.
	var systemPrompt, assistantName string
	if chatAssistant != "" {
		assistants, err := openAssistantStore(cfg)
		if err != nil {
			return err
		}
		a, ok := assistants.FindByName(chatAssistant)
		if !ok {
			return fmt.Errorf("no assistant named %q", chatAssistant)
		}
		assistantName = a.Name
		systemPrompt = llm.JoinKnowledge(a.SystemPrompt, a.KnowledgeBase)
	}

	logger, err := openUsageLogger()
	if err != nil {
		return err
	}

	dataDir, err := config.DataDir()
	if err != nil {
		return err
	}
	sessions, err := session.NewStore(filepath.Join(dataDir, "sessions.db"))
	if err != nil {
		return err
	}
	defer sessions.Close()

	sess, err := sessions.Create(assistantName, string(backend), chatModel)
	if err != nil {
		return err
	}

	header := color.New(color.FgCyan, color.Bold)
	if assistantName != "" {
		header.Printf("Chat with %s", assistantName)
	} else {
		header.Printf("Chat")
	}
	fmt.Printf(" [%s]\n", backend)
	fmt.Println("Type a message, or /quit to exit.")

	var history []llm.Message
	scanner := bufio.NewScanner(os.Stdin)
	prompt := color.New(color.FgGreen).Sprint("> ")

	for {
		fmt.Print(prompt)
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/quit" || input == "/exit" {
			break
		}
		if input == "/clear" {
			history = nil
			fmt.Println("History cleared.")
			continue
		}

		history = append(history, llm.Message{Role: llm.RoleUser, Content: input})
		if err := sessions.Append(sess.ID, history[len(history)-1]); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not persist message: %v\n", err)
		}

		reply, _ := exchangeOnce(cmd.Context(), gen, llm.Request{
			Messages:     history,
			Backend:      backend,
			Model:        chatModel,
			SystemPrompt: systemPrompt,
			APIKey:       apiKeyFor(cfg, backend),
		}, os.Stdout, logger, assistantName)

		if reply != "" {
			history = append(history, llm.Message{Role: llm.RoleAssistant, Content: reply})
			if err := sessions.Append(sess.ID, history[len(history)-1]); err != nil {
				fmt.Fprintf(os.Stderr, "warning: could not persist message: %v\n", err)
			}
		}
	}
	return scanner.Err()
}

// exchangeOnce streams one reply and records the exchange in the usage
// log whether or not the stream failed; an errored exchange is still an
// exchange.
func exchangeOnce(ctx context.Context, gen *llm.Generator, req llm.Request, w io.Writer, logger *usage.Logger, assistant string) (string, bool) {
	reply, failed := streamReply(ctx, gen, req, w)
	if err := logger.Log(usage.Entry{
		Action:    "chat_message",
		Backend:   string(req.Backend),
		Assistant: assistant,
		Model:     req.Model,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not log usage: %v\n", err)
	}
	return reply, failed
}

// streamReply renders fragments to w as they arrive and returns the
// accumulated text plus whether the stream ended in failure. Error text
// is appended after whatever partial output already rendered.
func streamReply(ctx context.Context, gen *llm.Generator, req llm.Request, w io.Writer) (string, bool) {
	stream := gen.Generate(ctx, req)
	defer stream.Close()

	errText := color.New(color.FgRed)
	var sb strings.Builder
	failed := false
	for {
		event, err := stream.Recv()
		if err != nil {
			break
		}
		switch event.Type {
		case llm.EventTextDelta:
			sb.WriteString(event.Text)
			fmt.Fprint(w, event.Text)
		case llm.EventError:
			failed = true
			if sb.Len() > 0 {
				fmt.Fprintln(w)
			}
			errText.Fprintln(w, event.Err.Error())
		}
	}
	if !failed {
		fmt.Fprintln(w)
	}
	return sb.String(), failed
}
