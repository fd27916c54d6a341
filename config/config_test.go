package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hermes "github.com/hermes-ai/hermes"
)

const validYAML = `
name: Market Analyst
description: Analyzes financial markets
provider: openai
model: gpt-4o-mini
prompt: Provide detailed market analysis.
temperature: 0.4
max_chat_history_length: 12
`

func TestFromBytes(t *testing.T) {
	cfg, err := FromBytes([]byte(validYAML))
	require.NoError(t, err)

	assert.Equal(t, "Market Analyst", cfg.Name)
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	require.NotNil(t, cfg.Temperature)
	assert.Equal(t, 0.4, *cfg.Temperature)
	assert.Equal(t, 12, cfg.MaxChatHistoryLength)
}

func TestFromBytes_InvalidYAML(t *testing.T) {
	_, err := FromBytes([]byte("name: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse agent config")
}

func TestFromBytes_MissingFields(t *testing.T) {
	_, err := FromBytes([]byte("name: NoProvider\nmodel: gpt-4o"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider is required")

	_, err = FromBytes([]byte("provider: openai\nmodel: gpt-4o"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validYAML), 0o600))

	cfg, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Market Analyst", cfg.Name)

	_, err = FromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestAgentConfig_Options(t *testing.T) {
	cfg, err := FromBytes([]byte(validYAML))
	require.NoError(t, err)

	var opts hermes.Options
	cfg.Options()(&opts)

	assert.Equal(t, "Market Analyst", opts.Name)
	assert.Equal(t, "openai", opts.Provider)
	assert.Equal(t, 0.4, opts.Temperature)
	assert.Equal(t, 12, opts.MaxChatHistoryLength)

	prompt, err := opts.Prompt.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Provide detailed market analysis.", prompt)
}

func TestAgentConfig_OptionsDefaultsPreserved(t *testing.T) {
	cfg := &AgentConfig{Name: "A", Provider: "openai", Model: "gpt-4o"}

	opts := hermes.Options{Temperature: 0.7, MaxChatHistoryLength: 20}
	cfg.Options()(&opts)

	assert.Equal(t, 0.7, opts.Temperature)
	assert.Equal(t, 20, opts.MaxChatHistoryLength)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envPath, []byte("HERMES_TEST_VAR=from-file\n"), 0o600))

	t.Setenv("HERMES_TEST_VAR", "")
	os.Unsetenv("HERMES_TEST_VAR")

	require.NoError(t, LoadEnv(envPath))
	assert.Equal(t, "from-file", os.Getenv("HERMES_TEST_VAR"))
}

func TestLoadEnv_MissingFileIgnored(t *testing.T) {
	assert.NoError(t, LoadEnv(filepath.Join(t.TempDir(), "nope.env")))
}
