package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/halcyon-labs/assistant-builder/internal/llm"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Manage models on the local Ollama server",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed models",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ollama := newGenerator(cfg).Ollama()

		names := ollama.ListModels(cmd.Context())
		if len(names) == 0 {
			fmt.Println("No models available. Is Ollama running? Try: ollama pull llama3")
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var modelsPullCmd = &cobra.Command{
	Use:   "pull <name>",
	Short: "Pull a model from the registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ollama := newGenerator(cfg).Ollama()

		stream := ollama.PullModel(cmd.Context(), args[0])
		defer stream.Close()

		status := color.New(color.FgCyan)
		for {
			event, err := stream.Recv()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			switch event.Type {
			case llm.EventTextDelta:
				status.Println(event.Text)
			case llm.EventError:
				color.Red(event.Err.Error())
				return nil
			}
		}
	},
}

var modelsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete an installed model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ollama := newGenerator(cfg).Ollama()

		if !ollama.DeleteModel(cmd.Context(), args[0]) {
			color.Red("Could not delete %s", args[0])
			return nil
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsPullCmd)
	modelsCmd.AddCommand(modelsDeleteCmd)
}
