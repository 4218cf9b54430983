package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/halcyon-labs/assistant-builder/internal/config"
	"github.com/halcyon-labs/assistant-builder/internal/session"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List and export stored chat transcripts",
}

func openSessionStore() (*session.Store, error) {
	dir, err := config.DataDir()
	if err != nil {
		return nil, err
	}
	return session.NewStore(filepath.Join(dir, "sessions.db"))
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := openSessionStore()
		if err != nil {
			return err
		}
		defer sessions.Close()

		all, err := sessions.List()
		if err != nil {
			return err
		}
		if len(all) == 0 {
			fmt.Println("No sessions yet.")
			return nil
		}
		for _, s := range all {
			name := s.Assistant
			if name == "" {
				name = "(no assistant)"
			}
			fmt.Printf("%s  %s  backend=%s  %s\n",
				s.ID, s.UpdatedAt.Format("2006-01-02 15:04"), s.Backend, name)
		}
		return nil
	},
}

var sessionsExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a session transcript as JSON to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := openSessionStore()
		if err != nil {
			return err
		}
		defer sessions.Close()

		data, err := sessions.Export(args[0])
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a session and its transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := openSessionStore()
		if err != nil {
			return err
		}
		defer sessions.Close()

		if err := sessions.Delete(args[0]); err != nil {
			return err
		}
		fmt.Println("Deleted.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsExportCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
}
