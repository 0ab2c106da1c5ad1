package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// PromptPair holds a system and user prompt template.
type PromptPair struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

// SearchPrompts holds the prompt templates driving the search pipeline.
type SearchPrompts struct {
	Plan   PromptPair `yaml:"plan"`
	Verify PromptPair `yaml:"verify"`
}

// RecommendPrompts holds the dish recommendation prompt templates.
type RecommendPrompts struct {
	Suggest PromptPair `yaml:"suggest"`
}

// Prompts is the top-level prompt configuration loaded from YAML.
type Prompts struct {
	Search    SearchPrompts    `yaml:"search"`
	Recommend RecommendPrompts `yaml:"recommend"`
}

// LoadPrompts reads and parses a YAML prompt configuration file.
func LoadPrompts(path string) (*Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	var prompts Prompts
	if err := yaml.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompts YAML: %w", err)
	}

	return &prompts, nil
}

// RenderPrompt executes Go template interpolation on a prompt string.
// The data map provides values for template placeholders like
// {{.Ingredients}}, {{.Dish}}, and {{.PageText}}.
func RenderPrompt(tmpl string, data map[string]interface{}) (string, error) {
	t, err := template.New("prompt").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse prompt template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt template: %w", err)
	}

	return strings.TrimSpace(buf.String()), nil
}

// RenderPromptPair renders both halves of a PromptPair with the same data
// and joins them into a single prompt, since the Gemini generateContent
// endpoint takes one flat text part.
func RenderPromptPair(pair PromptPair, data map[string]interface{}) (string, error) {
	system, err := RenderPrompt(pair.System, data)
	if err != nil {
		return "", fmt.Errorf("render system prompt: %w", err)
	}
	user, err := RenderPrompt(pair.User, data)
	if err != nil {
		return "", fmt.Errorf("render user prompt: %w", err)
	}
	if system == "" {
		return user, nil
	}
	return system + "\n\n" + user, nil
}
