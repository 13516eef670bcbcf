package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and saves the result
// to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to cortex! Let's configure your workspace.")
	fmt.Println()

	cfg := DefaultConfig()

	rootPrompt := promptui.Prompt{
		Label:   "Workspace root (directory containing your repos)",
		Default: cfg.WorkspaceRoot,
		Validate: func(s string) error {
			info, err := os.Stat(s)
			if err != nil {
				return err
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", s)
			}
			return nil
		},
	}
	root, err := rootPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("workspace root: %w", err)
	}
	cfg.WorkspaceRoot = root

	excludePrompt := promptui.Prompt{
		Label:   "Extra directories to skip (comma-separated globs, blank for none)",
		Default: "",
	}
	excludeStr, err := excludePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}
	cfg.Exclude = splitAndTrim(excludeStr)

	sqlPrompt := promptui.Prompt{
		Label:   "Name of the SQL migrations repo",
		Default: cfg.SQLRepoName,
	}
	if cfg.SQLRepoName, err = sqlPrompt.Run(); err != nil {
		return nil, fmt.Errorf("sql repo name: %w", err)
	}

	embedPrompt := promptui.Select{
		Label: "Semantic search embeddings",
		Items: []string{"disabled", "openai", "ollama"},
	}
	_, embed, err := embedPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("embedding selection: %w", err)
	}
	if embed != "disabled" {
		cfg.Embeddings.Enabled = true
		cfg.Embeddings.Provider = EmbeddingProvider(embed)
		cfg.Embeddings.Model = DefaultEmbeddingModel(cfg.Embeddings.Provider)
		if envVar := APIKeyEnvVar(cfg.Embeddings.Provider); envVar != "" && os.Getenv(envVar) == "" {
			fmt.Printf("\nNote: Set %s in your environment before running cortex refresh.\n", envVar)
		}
	}

	portPrompt := promptui.Prompt{
		Label:   "HTTP API port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			_, err := parsePort(s)
			return err
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	if cfg.Server.Port, err = parsePort(portStr); err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// parsePort parses a TCP port in 1..65535.
func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range 1-65535", port)
	}
	return port, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
