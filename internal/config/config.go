package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the process-wide configuration. API keys live here and in
// process memory only; nothing writes them anywhere else.
type Config struct {
	Username string       `mapstructure:"username" yaml:"username,omitempty"`
	Ollama   OllamaConfig `mapstructure:"ollama" yaml:"ollama"`
	Claude   KeyConfig    `mapstructure:"claude" yaml:"claude,omitempty"`
	OpenAI   KeyConfig    `mapstructure:"openai" yaml:"openai,omitempty"`
	Grok     KeyConfig    `mapstructure:"grok" yaml:"grok,omitempty"`
}

type OllamaConfig struct {
	Host  string `mapstructure:"host" yaml:"host"`
	Model string `mapstructure:"model" yaml:"model"`
}

type KeyConfig struct {
	APIKey string `mapstructure:"api_key" yaml:"api_key,omitempty"`
}

const (
	defaultOllamaHost  = "http://localhost:11434"
	defaultOllamaModel = "llama3"
)

func Load() (*Config, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(configDir, "assistant-builder"))
	v.AddConfigPath(".")

	v.SetDefault("ollama.host", defaultOllamaHost)
	v.SetDefault("ollama.model", defaultOllamaModel)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Environment overrides, for parity with the .env the server setups use.
	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		cfg.Ollama.Host = host
	}
	if model := os.Getenv("DEFAULT_MODEL"); model != "" {
		cfg.Ollama.Model = model
	}

	cfg.Claude.APIKey = expandEnv(cfg.Claude.APIKey)
	cfg.OpenAI.APIKey = expandEnv(cfg.OpenAI.APIKey)
	cfg.Grok.APIKey = expandEnv(cfg.Grok.APIKey)

	if cfg.Claude.APIKey == "" {
		cfg.Claude.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Grok.APIKey == "" {
		cfg.Grok.APIKey = os.Getenv("XAI_API_KEY")
	}

	return &cfg, nil
}

// expandEnv expands ${VAR} or $VAR in a string
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	if strings.HasPrefix(s, "$") {
		return os.Getenv(s[1:])
	}
	return s
}

// GetConfigPath returns the path where the config file should be located
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "assistant-builder", "config.yaml"), nil
}

// Save writes the config to disk. API key fields are written back only
// when they hold a ${VAR} or $VAR environment reference; resolved
// secret values are dropped before marshalling so keys never land on
// disk in plaintext.
func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	redacted := *cfg
	redacted.Claude.APIKey = envReferenceOnly(cfg.Claude.APIKey)
	redacted.OpenAI.APIKey = envReferenceOnly(cfg.OpenAI.APIKey)
	redacted.Grok.APIKey = envReferenceOnly(cfg.Grok.APIKey)

	content, err := yaml.Marshal(&redacted)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, content, 0600)
}

// envReferenceOnly keeps ${VAR} and $VAR references and drops any other
// value.
func envReferenceOnly(s string) string {
	if strings.HasPrefix(s, "$") {
		return s
	}
	return ""
}

// DataDir returns the directory for databases and logs.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".local", "share", "assistant-builder")
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		dir = filepath.Join(xdg, "assistant-builder")
	}
	return dir, nil
}
