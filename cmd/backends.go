package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/halcyon-labs/assistant-builder/internal/llm"
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "Show which generation backends are usable right now",
	Long: `Lists usable backends. The local Ollama backend is probed live on
every invocation; cloud backends appear when their API key is
configured. With nothing usable, the local backend is listed anyway as
a fallback even though it may be unreachable.`,
	RunE: runBackends,
}

func init() {
	rootCmd.AddCommand(backendsCmd)
}

func runBackends(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gen := newGenerator(cfg)

	labels := gen.Available(cmd.Context(), configuredKeys(cfg))
	bold := color.New(color.Bold)
	for _, label := range labels {
		key := llm.KeyForLabel(label)
		bold.Printf("%-22s", label)
		fmt.Printf(" key=%s", key)
		if info, ok := llm.Lookup(key); ok && info.DefaultModel != "" {
			fmt.Printf(" default=%s", info.DefaultModel)
		}
		fmt.Println()
	}
	return nil
}
