package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/halcyon-labs/assistant-builder/internal/llm"
	"github.com/halcyon-labs/assistant-builder/internal/store"
)

var assistantsCmd = &cobra.Command{
	Use:   "assistants",
	Short: "Manage saved assistants",
}

func preview(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

var (
	createName        string
	createDescription string
	createPrompt      string
	createKnowledge   string
	createDraft       bool
	listSearch        string
	listStatus        string
)

var assistantsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved assistants",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		assistants, err := openAssistantStore(cfg)
		if err != nil {
			return err
		}

		matched := store.Filter(assistants.Load(), listSearch, listStatus)
		if len(matched) == 0 {
			fmt.Println("No assistants yet. Create one with: assistant-builder assistants create")
			return nil
		}
		name := color.New(color.Bold)
		for _, a := range matched {
			name.Printf("%-20s", a.Name)
			fmt.Printf(" [%s] %s", a.Status, a.Description)
			if a.KnowledgeBase != "" {
				fmt.Print(" (knowledge base)")
			}
			fmt.Printf("\n  id=%s  system=%s\n", a.ID, preview(a.SystemPrompt, 40))
		}
		return nil
	},
}

var assistantsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new assistant",
	RunE: func(cmd *cobra.Command, args []string) error {
		if createName == "" || createPrompt == "" {
			return fmt.Errorf("--name and --prompt are required")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		assistants, err := openAssistantStore(cfg)
		if err != nil {
			return err
		}

		knowledge := createKnowledge
		if knowledge != "" {
			// A path argument loads the file; inline text passes through.
			if data, err := os.ReadFile(knowledge); err == nil {
				knowledge = string(data)
			}
			if len(knowledge) > llm.KnowledgeBaseLimit {
				knowledge = knowledge[:llm.KnowledgeBaseLimit]
			}
		}

		status := store.StatusActive
		if createDraft {
			status = store.StatusDraft
		}
		a, err := assistants.Add(store.Assistant{
			Name:          createName,
			Description:   createDescription,
			SystemPrompt:  createPrompt,
			KnowledgeBase: knowledge,
			Status:        status,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created %q (id=%s)\n", a.Name, a.ID)
		return nil
	},
}

var assistantsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an assistant by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		assistants, err := openAssistantStore(cfg)
		if err != nil {
			return err
		}
		ok, err := assistants.Delete(args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no assistant with id %s", args[0])
		}
		fmt.Println("Deleted.")
		return nil
	},
}

var assistantsExportCmd = &cobra.Command{
	Use:   "export <name>",
	Short: "Export an assistant as JSON to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		assistants, err := openAssistantStore(cfg)
		if err != nil {
			return err
		}
		a, ok := assistants.FindByName(args[0])
		if !ok {
			return fmt.Errorf("no assistant named %q", args[0])
		}
		data, err := store.Export(a)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var assistantsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a previously exported assistant JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		a, err := store.Import(data)
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		assistants, err := openAssistantStore(cfg)
		if err != nil {
			return err
		}
		if _, err := assistants.Add(a); err != nil {
			return err
		}
		fmt.Printf("Imported %q\n", a.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(assistantsCmd)
	assistantsCmd.AddCommand(assistantsListCmd)
	assistantsCmd.AddCommand(assistantsCreateCmd)
	assistantsCmd.AddCommand(assistantsDeleteCmd)
	assistantsCmd.AddCommand(assistantsExportCmd)
	assistantsCmd.AddCommand(assistantsImportCmd)

	assistantsListCmd.Flags().StringVar(&listSearch, "search", "", "Filter by name or description")
	assistantsListCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status (Active or Draft)")

	assistantsCreateCmd.Flags().StringVar(&createName, "name", "", "Assistant name")
	assistantsCreateCmd.Flags().StringVar(&createDescription, "description", "", "Short description")
	assistantsCreateCmd.Flags().StringVar(&createPrompt, "prompt", "", "System prompt")
	assistantsCreateCmd.Flags().StringVar(&createKnowledge, "knowledge", "", "Knowledge base text, or a path to a text file")
	assistantsCreateCmd.Flags().BoolVar(&createDraft, "draft", false, "Create as a draft")
}
