package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/halcyon-labs/assistant-builder/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change configuration",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save",
	Long: `Sets one config value and rewrites the config file.

Keys: username, ollama.host, ollama.model, claude.api_key,
openai.api_key, grok.api_key.

API keys are never stored in plaintext; set them to an environment
reference instead, for example:

  assistant-builder config set claude.api_key '${ANTHROPIC_API_KEY}'`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	if strings.HasSuffix(key, ".api_key") && !strings.HasPrefix(value, "$") {
		return fmt.Errorf("API keys are not stored on disk; set %s to an environment reference like '${ANTHROPIC_API_KEY}'", key)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	switch key {
	case "username":
		cfg.Username = value
	case "ollama.host":
		cfg.Ollama.Host = value
	case "ollama.model":
		cfg.Ollama.Model = value
	case "claude.api_key":
		cfg.Claude.APIKey = value
	case "openai.api_key":
		cfg.OpenAI.APIKey = value
	case "grok.api_key":
		cfg.Grok.APIKey = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}

	if err := config.Save(cfg); err != nil {
		return err
	}
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	fmt.Printf("Saved %s\n", path)
	return nil
}
