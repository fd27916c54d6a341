// Package config loads agent definitions and environment configuration.
//
// Two sources are supported: .env files (conventional key material such as
// OPENAI_API_KEY) and declarative YAML agent definitions that mirror the
// Options of hermes.New. Declarative definitions keep prompts and model
// selections out of application code so they can be tuned without a rebuild.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	hermes "github.com/hermes-ai/hermes"
)

// LoadEnv loads environment variables from the given .env files (or ".env"
// in the working directory when none are named). Missing files are skipped
// silently; variables already present in the environment are not overridden.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to load env file %s: %w", file, err)
		}
	}

	return nil
}

// AgentConfig is the YAML representation of an agent definition.
type AgentConfig struct {
	Name                 string   `yaml:"name"`
	Description          string   `yaml:"description"`
	Provider             string   `yaml:"provider"`
	Model                string   `yaml:"model"`
	APIKey               string   `yaml:"api_key,omitempty"`
	Prompt               string   `yaml:"prompt"`
	Temperature          *float64 `yaml:"temperature,omitempty"`
	MaxChatHistoryLength int      `yaml:"max_chat_history_length,omitempty"`
	HistoryTokenBudget   int      `yaml:"history_token_budget,omitempty"`
}

// Validate checks the definition for required fields.
func (c *AgentConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("agent config: name is required")
	}
	if c.Provider == "" {
		return fmt.Errorf("agent config %s: provider is required", c.Name)
	}
	if c.Model == "" {
		return fmt.Errorf("agent config %s: model is required", c.Name)
	}
	return nil
}

// Options converts the definition into a hermes option function, ready to be
// combined with programmatic options (tools, logger):
//
//	cfg, _ := config.FromFile("agents/analyst.yaml")
//	agent, err := hermes.New(cfg.Options(), func(o *hermes.Options) {
//	  o.Tools = []tool.Tool{marketTool}
//	})
func (c *AgentConfig) Options() func(o *hermes.Options) {
	return func(o *hermes.Options) {
		o.Name = c.Name
		o.Description = c.Description
		o.Provider = c.Provider
		o.Model = c.Model
		o.APIKey = c.APIKey
		o.Prompt = hermes.NewInstructionFromText(c.Prompt)
		if c.Temperature != nil {
			o.Temperature = *c.Temperature
		}
		if c.MaxChatHistoryLength > 0 {
			o.MaxChatHistoryLength = c.MaxChatHistoryLength
		}
		if c.HistoryTokenBudget > 0 {
			o.HistoryTokenBudget = c.HistoryTokenBudget
		}
	}
}

// FromBytes parses a single agent definition from YAML.
func FromBytes(data []byte) (*AgentConfig, error) {
	var cfg AgentConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse agent config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromFile reads and parses a single agent definition from a YAML file.
func FromFile(path string) (*AgentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read agent config %s: %w", path, err)
	}
	return FromBytes(data)
}
