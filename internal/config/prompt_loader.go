package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// loadPromptTemplates loads stage prompt templates from external files when a
// file path is configured. File content wins over the inline config value.
func (c *Config) loadPromptTemplates() error {
	stages := []struct {
		name  string
		stage *StageAIConfig
	}{
		{"tailor", &c.AI.Tailor},
		{"critique", &c.AI.Critique},
		{"revise", &c.AI.Revise},
	}

	for _, s := range stages {
		if s.stage.PromptTemplateFile == "" {
			continue
		}
		content, err := loadPromptFromFile(s.stage.PromptTemplateFile, s.name)
		if err != nil {
			return err
		}
		s.stage.loadedTemplate = content
	}

	return nil
}

// loadPromptFromFile loads a prompt template from a file, validating that the
// file exists and is not empty.
func loadPromptFromFile(filePath, stage string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s prompt file '%s': %w", stage, filePath, err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s prompt file not found: %s", stage, absPath)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s prompt file '%s': %w", stage, absPath, err)
	}

	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" {
		return "", fmt.Errorf("%s prompt file '%s' is empty", stage, absPath)
	}

	return trimmed, nil
}
