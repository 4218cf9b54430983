package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/halcyon-labs/assistant-builder/internal/usage"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show usage counts from the activity log",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := openUsageLogger()
		if err != nil {
			return err
		}
		entries, err := logger.Read()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No usage recorded yet.")
			return nil
		}

		total, perBackend := summarizeUsage(entries)
		fmt.Printf("%d actions\n", total)
		backends := make([]string, 0, len(perBackend))
		for b := range perBackend {
			backends = append(backends, b)
		}
		sort.Strings(backends)
		for _, b := range backends {
			fmt.Printf("  %-10s %d\n", b, perBackend[b])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usageCmd)
}

// summarizeUsage counts entries overall and per backend. Entries with
// no backend are grouped under "(none)".
func summarizeUsage(entries []usage.Entry) (int, map[string]int) {
	perBackend := make(map[string]int)
	for _, e := range entries {
		b := e.Backend
		if b == "" {
			b = "(none)"
		}
		perBackend[b]++
	}
	return len(entries), perBackend
}
